package domain

import (
	"context"
	"time"
)

// DashboardStats feeds the admin dashboard cards.
type DashboardStats struct {
	TotalStudents        int64            `json:"total_students"`
	PlacedStudents       int64            `json:"placed_students"`
	PlacementRate        float64          `json:"placement_rate"`
	TotalCompanies       int64            `json:"total_companies"`
	OpenJobs             int64            `json:"open_jobs"`
	TotalApplications    int64            `json:"total_applications"`
	ApplicationsByStatus map[string]int64 `json:"applications_by_status"`
	UpcomingDrives       int64            `json:"upcoming_drives"`
	ProfilesByRole       map[string]int64 `json:"profiles_by_role"`
	TodayAttendance      *AttendanceStats `json:"today_attendance,omitempty"`
	ActiveUsers          *ActiveUsers     `json:"active_users,omitempty"`
	GeneratedAt          time.Time        `json:"generated_at"`
}

// Counts is what the repository aggregates in one round trip.
type Counts struct {
	TotalStudents     int64
	PlacedStudents    int64
	TotalCompanies    int64
	OpenJobs          int64
	TotalApplications int64
	UpcomingDrives    int64
}

type DepartmentStats struct {
	Department     string  `json:"department"`
	Total          int     `json:"total"`
	Placed         int     `json:"placed"`
	PlacementRate  float64 `json:"placement_rate"`
	AveragePackage float64 `json:"average_package"`
}

type CompanyHires struct {
	CompanyID   int64  `json:"company_id"`
	CompanyName string `json:"company_name"`
	Hires       int    `json:"hires"`
}

type PlacementAnalytics struct {
	BatchYear             int               `json:"batch_year,omitempty"`
	TotalStudents         int               `json:"total_students"`
	PlacedStudents        int               `json:"placed_students"`
	PlacementRate         float64           `json:"placement_rate"`
	AveragePackage        float64           `json:"average_package"`
	HighestPackage        float64           `json:"highest_package"`
	MedianPackage         float64           `json:"median_package"`
	AverageCGPA           float64           `json:"average_cgpa"`
	ByDepartment          []DepartmentStats `json:"by_department"`
	TopCompanies          []CompanyHires    `json:"top_companies"`
	ApplicationsByStatus  map[string]int64  `json:"applications_by_status"`
	ApplicationConversion float64           `json:"application_conversion"`
}

type AnalyticsRepository interface {
	Counts(ctx context.Context, now time.Time) (*Counts, error)
}

type AnalyticsUsecase interface {
	GetDashboardStats(ctx context.Context, actor Actor) (*DashboardStats, error)
	GetPlacementAnalytics(ctx context.Context, actor Actor, batchYear int) (*PlacementAnalytics, error)
	InvalidateDashboard(ctx context.Context)
}

// ReportUsecase renders placement exports.
type ReportUsecase interface {
	ExportPlacements(ctx context.Context, actor Actor, format string, batchYear int, departments []string) ([]byte, string, error)
}
