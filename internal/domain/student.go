package domain

import (
	"context"
	"time"
)

type Student struct {
	ID              int64     `json:"id"`
	ProfileID       *string   `json:"profile_id,omitempty"`
	RollNumber      string    `json:"roll_number" validate:"required,roll_number"`
	FullName        string    `json:"full_name" validate:"required,min=2,max=120,valid_name,no_emoji"`
	Email           string    `json:"email" validate:"required,email"`
	Phone           *string   `json:"phone,omitempty" validate:"omitempty,valid_phone"`
	Department      string    `json:"department" validate:"required,max=80"`
	BatchYear       int       `json:"batch_year" validate:"required,batch_year"`
	CGPA            float64   `json:"cgpa" validate:"gte=0,lte=10"`
	Skills          []string  `json:"skills" validate:"max=30,dive,max=40"`
	ResumeURL       *string   `json:"resume_url,omitempty" validate:"omitempty,url"`
	PhotoURL        *string   `json:"photo_url,omitempty" validate:"omitempty,url"`
	IsPlaced        bool      `json:"is_placed"`
	PlacedCompanyID *int64    `json:"placed_company_id,omitempty"`
	PackageLPA      *float64  `json:"package_lpa,omitempty" validate:"omitempty,gte=0"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Joined
	PlacedCompanyName *string `json:"placed_company_name,omitempty"`
}

// StudentFilter narrows SearchStudents. Zero values mean "no constraint".
type StudentFilter struct {
	Search      string
	Departments []string
	BatchYear   int
	MinCGPA     *float64
	IsPlaced    *bool
	Skills      []string
	SortBy      string // name, cgpa, batch_year, created_at
	SortOrder   string // asc, desc
	Page        Page
}

type StudentRepository interface {
	Create(ctx context.Context, s *Student) error
	GetByID(ctx context.Context, id int64) (*Student, error)
	GetByProfileID(ctx context.Context, profileID string) (*Student, error)
	Update(ctx context.Context, s *Student) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, f StudentFilter) ([]Student, int64, error)
	// ListForAnalytics returns every student of a batch (0 = all batches).
	ListForAnalytics(ctx context.Context, batchYear int, departments []string) ([]Student, error)
}

type StudentUsecase interface {
	CreateStudent(ctx context.Context, actor Actor, s *Student) error
	GetStudent(ctx context.Context, actor Actor, id int64) (*Student, error)
	GetMyStudent(ctx context.Context, actor Actor) (*Student, error)
	UpdateStudent(ctx context.Context, actor Actor, s *Student) error
	UpsertMyStudent(ctx context.Context, actor Actor, s *Student) (*Student, error)
	DeleteStudent(ctx context.Context, actor Actor, id int64) error
	SearchStudents(ctx context.Context, actor Actor, f StudentFilter) (*PaginatedResult[Student], error)
}
