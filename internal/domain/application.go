package domain

import (
	"context"
	"time"
)

// Application status constants
const (
	ApplicationStatusPending     = "pending"
	ApplicationStatusShortlisted = "shortlisted"
	ApplicationStatusInterviewed = "interviewed"
	ApplicationStatusRejected    = "rejected"
	ApplicationStatusAccepted    = "accepted"
)

var ApplicationStatuses = []string{
	ApplicationStatusPending,
	ApplicationStatusShortlisted,
	ApplicationStatusInterviewed,
	ApplicationStatusRejected,
	ApplicationStatusAccepted,
}

var applicationTransitions = map[string][]string{
	ApplicationStatusPending:     {ApplicationStatusShortlisted, ApplicationStatusRejected},
	ApplicationStatusShortlisted: {ApplicationStatusInterviewed, ApplicationStatusRejected},
	ApplicationStatusInterviewed: {ApplicationStatusAccepted, ApplicationStatusRejected},
}

// CanTransition reports whether an application may move from one status to another.
// accepted and rejected are final.
func CanTransition(from, to string) bool {
	for _, s := range applicationTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func ValidApplicationStatus(s string) bool {
	for _, v := range ApplicationStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// JobApplication is a student's application to a job.
type JobApplication struct {
	ID          int64     `json:"id"`
	JobID       int64     `json:"job_id"`
	StudentID   int64     `json:"student_id"`
	CoverLetter *string   `json:"cover_letter,omitempty"`
	ResumeURL   *string   `json:"resume_url,omitempty"`
	Status      string    `json:"status"`
	Remarks     *string   `json:"remarks,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Joined data for list responses
	JobTitle          string  `json:"job_title,omitempty"`
	CompanyID         int64   `json:"company_id,omitempty"`
	CompanyName       string  `json:"company_name,omitempty"`
	StudentName       string  `json:"student_name,omitempty"`
	StudentRollNumber string  `json:"student_roll_number,omitempty"`
	StudentProfileID  *string `json:"student_profile_id,omitempty"`
}

type ApplicationFilter struct {
	JobID     int64
	StudentID int64
	CompanyID int64
	Status    string
	Page      Page
}

// PlacementUpdate marks a student placed when an application is accepted.
type PlacementUpdate struct {
	StudentID  int64
	CompanyID  int64
	PackageLPA float64
}

type ApplicationRepository interface {
	Create(ctx context.Context, app *JobApplication) error
	GetByID(ctx context.Context, id int64) (*JobApplication, error)
	List(ctx context.Context, f ApplicationFilter) ([]JobApplication, int64, error)
	Exists(ctx context.Context, jobID, studentID int64) (bool, error)
	CountActiveByStudent(ctx context.Context, studentID int64) (int, error)
	// UpdateStatus changes status only if the row is still in expectedStatus.
	// When placement is non-nil the student is marked placed in the same transaction.
	UpdateStatus(ctx context.Context, id int64, expectedStatus, status string, remarks *string, placement *PlacementUpdate) error
	Delete(ctx context.Context, id int64) error
	// CountByStatus counts applications per status; batchYear > 0 restricts to that batch's students.
	CountByStatus(ctx context.Context, batchYear int) (map[string]int64, error)
}

type ApplicationUsecase interface {
	Apply(ctx context.Context, actor Actor, jobID int64, coverLetter *string) (*JobApplication, error)
	Withdraw(ctx context.Context, actor Actor, id int64) error
	ListMine(ctx context.Context, actor Actor, page Page) (*PaginatedResult[JobApplication], error)
	ListByJob(ctx context.Context, actor Actor, jobID int64, status string, page Page) (*PaginatedResult[JobApplication], error)
	ListApplications(ctx context.Context, actor Actor, f ApplicationFilter) (*PaginatedResult[JobApplication], error)
	GetApplication(ctx context.Context, actor Actor, id int64) (*JobApplication, error)
	UpdateStatus(ctx context.Context, actor Actor, id int64, status string, remarks *string) (*JobApplication, error)
}
