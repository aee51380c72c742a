package domain

import (
	"context"
	"time"
)

const (
	CompanyStatusActive   = "active"
	CompanyStatusInactive = "inactive"
)

type Company struct {
	ID           int64     `json:"id"`
	OwnerID      *string   `json:"owner_id,omitempty"`
	Name         string    `json:"name" validate:"required,min=2,max=120,no_emoji"`
	Industry     *string   `json:"industry,omitempty" validate:"omitempty,max=80"`
	Website      *string   `json:"website,omitempty" validate:"omitempty,url"`
	LogoURL      *string   `json:"logo_url,omitempty" validate:"omitempty,url"`
	Description  *string   `json:"description,omitempty" validate:"omitempty,max=4000"`
	Location     *string   `json:"location,omitempty" validate:"omitempty,max=120"`
	ContactEmail *string   `json:"contact_email,omitempty" validate:"omitempty,email"`
	Status       string    `json:"status" validate:"omitempty,oneof=active inactive"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CompanyRepository interface {
	Create(ctx context.Context, c *Company) error
	GetByID(ctx context.Context, id int64) (*Company, error)
	GetByOwnerID(ctx context.Context, ownerID string) (*Company, error)
	List(ctx context.Context, search, status string, page Page) ([]Company, int64, error)
	Update(ctx context.Context, c *Company) error
	Delete(ctx context.Context, id int64) error
}

type CompanyUsecase interface {
	CreateCompany(ctx context.Context, actor Actor, c *Company) error
	GetCompany(ctx context.Context, id int64) (*Company, error)
	ListCompanies(ctx context.Context, search, status string, page Page) (*PaginatedResult[Company], error)
	UpdateCompany(ctx context.Context, actor Actor, c *Company) error
	DeleteCompany(ctx context.Context, actor Actor, id int64) error
}
