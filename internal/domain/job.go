package domain

import (
	"context"
	"strings"
	"time"
)

const (
	JobTypeFullTime   = "full_time"
	JobTypeInternship = "internship"
	JobTypePartTime   = "part_time"
	JobTypeContract   = "contract"
)

const (
	JobStatusDraft  = "draft"
	JobStatusOpen   = "open"
	JobStatusClosed = "closed"
)

func ValidJobType(t string) bool {
	switch t {
	case JobTypeFullTime, JobTypeInternship, JobTypePartTime, JobTypeContract:
		return true
	}
	return false
}

type Job struct {
	ID                  int64     `json:"id"`
	CompanyID           int64     `json:"company_id" validate:"required,gt=0"`
	Title               string    `json:"title" validate:"required,min=3,max=150,no_emoji"`
	Description         string    `json:"description" validate:"max=10000"`
	JobType             string    `json:"job_type" validate:"required,oneof=full_time internship part_time contract"`
	Location            string    `json:"location" validate:"max=120"`
	PackageLPA          float64   `json:"package_lpa" validate:"gte=0"`
	MinCGPA             float64   `json:"min_cgpa" validate:"gte=0,lte=10"`
	EligibleDepartments []string  `json:"eligible_departments"`
	Skills              []string  `json:"skills" validate:"max=30,dive,max=40"`
	Openings            int       `json:"openings" validate:"gte=1"`
	Deadline            time.Time `json:"deadline" validate:"required"`
	Status              string    `json:"status" validate:"omitempty,oneof=draft open closed"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	// Joined
	CompanyName    string  `json:"company_name,omitempty"`
	CompanyLogoURL *string `json:"company_logo_url,omitempty"`
}

// AcceptsApplications reports whether the job is open and its deadline has not passed at now.
func (j *Job) AcceptsApplications(now time.Time) bool {
	return j.Status == JobStatusOpen && now.Before(j.Deadline)
}

// DepartmentEligible reports whether dept may apply. An empty list admits every department.
func DepartmentEligible(eligible []string, dept string) bool {
	if len(eligible) == 0 {
		return true
	}
	for _, d := range eligible {
		if strings.EqualFold(d, dept) {
			return true
		}
	}
	return false
}

// JobFilter is the job board's search box and type selector plus paging.
type JobFilter struct {
	Search     string
	JobType    string
	CompanyID  int64
	Status     string
	Department string
	Page       Page
}

// Matches applies the search term and type selector to one job.
// The term is matched case-insensitively against title, description, company name and location.
func (f JobFilter) Matches(j *Job) bool {
	if f.JobType != "" && j.JobType != f.JobType {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	for _, field := range []string{j.Title, j.Description, j.CompanyName, j.Location} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, id int64) (*Job, error)
	List(ctx context.Context, f JobFilter) ([]Job, int64, error)
	Update(ctx context.Context, job *Job) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error
	// CloseExpired closes open jobs whose deadline passed before now and returns them as closed.
	CloseExpired(ctx context.Context, now time.Time) ([]Job, error)
}

type JobUsecase interface {
	CreateJob(ctx context.Context, actor Actor, job *Job) error
	GetJob(ctx context.Context, actor Actor, id int64) (*Job, error)
	ListJobs(ctx context.Context, actor Actor, f JobFilter) (*PaginatedResult[Job], error)
	UpdateJob(ctx context.Context, actor Actor, job *Job) error
	SetJobStatus(ctx context.Context, actor Actor, id int64, status string) error
	DeleteJob(ctx context.Context, actor Actor, id int64) error
	CloseExpiredJobs(ctx context.Context) (int, error)
}
