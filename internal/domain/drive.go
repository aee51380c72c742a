package domain

import (
	"context"
	"time"
)

const (
	DriveStatusScheduled = "scheduled"
	DriveStatusOngoing   = "ongoing"
	DriveStatusCompleted = "completed"
	DriveStatusCancelled = "cancelled"
)

var driveTransitions = map[string][]string{
	DriveStatusScheduled: {DriveStatusOngoing, DriveStatusCancelled},
	DriveStatusOngoing:   {DriveStatusCompleted, DriveStatusCancelled},
}

func CanTransitionDrive(from, to string) bool {
	for _, s := range driveTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CampusDrive is an on-campus recruitment event run by one company.
type CampusDrive struct {
	ID                   int64     `json:"id"`
	CompanyID            int64     `json:"company_id" validate:"required,gt=0"`
	Title                string    `json:"title" validate:"required,min=3,max=150"`
	Description          *string   `json:"description,omitempty" validate:"omitempty,max=4000"`
	Venue                string    `json:"venue" validate:"required,max=150"`
	DriveDate            time.Time `json:"drive_date" validate:"required"`
	RegistrationDeadline time.Time `json:"registration_deadline" validate:"required"`
	EligibleDepartments  []string  `json:"eligible_departments"`
	MinCGPA              float64   `json:"min_cgpa" validate:"gte=0,lte=10"`
	Status               string    `json:"status"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`

	// Joined
	CompanyName       string `json:"company_name,omitempty"`
	RegistrationCount int    `json:"registration_count"`
}

type DriveRegistration struct {
	DriveID      int64     `json:"drive_id"`
	StudentID    int64     `json:"student_id"`
	RegisteredAt time.Time `json:"registered_at"`

	StudentName       string  `json:"student_name,omitempty"`
	StudentRollNumber string  `json:"student_roll_number,omitempty"`
	Department        string  `json:"department,omitempty"`
	StudentProfileID  *string `json:"student_profile_id,omitempty"`
}

type DriveFilter struct {
	Status    string
	CompanyID int64
	Upcoming  bool
	Page      Page
}

type DriveRepository interface {
	Create(ctx context.Context, d *CampusDrive) error
	GetByID(ctx context.Context, id int64) (*CampusDrive, error)
	List(ctx context.Context, f DriveFilter, now time.Time) ([]CampusDrive, int64, error)
	Update(ctx context.Context, d *CampusDrive) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error

	Register(ctx context.Context, driveID, studentID int64) error
	Unregister(ctx context.Context, driveID, studentID int64) error
	IsRegistered(ctx context.Context, driveID, studentID int64) (bool, error)
	ListRegistrations(ctx context.Context, driveID int64) ([]DriveRegistration, error)
	// StartingBetween lists scheduled drives whose date falls in [from, to).
	StartingBetween(ctx context.Context, from, to time.Time) ([]CampusDrive, error)
}

type DriveUsecase interface {
	CreateDrive(ctx context.Context, actor Actor, d *CampusDrive) error
	GetDrive(ctx context.Context, id int64) (*CampusDrive, error)
	ListDrives(ctx context.Context, f DriveFilter) (*PaginatedResult[CampusDrive], error)
	UpdateDrive(ctx context.Context, actor Actor, d *CampusDrive) error
	SetDriveStatus(ctx context.Context, actor Actor, id int64, status string) error
	DeleteDrive(ctx context.Context, actor Actor, id int64) error
	Register(ctx context.Context, actor Actor, driveID int64) error
	Unregister(ctx context.Context, actor Actor, driveID int64) error
	ListRegistrations(ctx context.Context, actor Actor, driveID int64) ([]DriveRegistration, error)
	SendReminders(ctx context.Context, within time.Duration) (int, error)
}
