package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"placement-backend/internal/domain"
	"placement-backend/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

type companyUsecase struct {
	companies domain.CompanyRepository
	validate  *validator.Validate
	activity  domain.ActivityRecorder
	events    domain.EventPublisher
}

func NewCompanyUsecase(companies domain.CompanyRepository, validate *validator.Validate, activity domain.ActivityRecorder, events domain.EventPublisher) domain.CompanyUsecase {
	return &companyUsecase{
		companies: companies,
		validate:  validate,
		activity:  activity,
		events:    events,
	}
}

// CreateCompany registers a company. A recruiter becomes its owner and may own only one.
func (u *companyUsecase) CreateCompany(ctx context.Context, actor domain.Actor, c *domain.Company) error {
	switch {
	case actor.IsAdmin():
	case actor.IsRecruiter():
		if _, err := u.companies.GetByOwnerID(ctx, actor.ID); err == nil {
			return apperror.Conflict("You already manage a company")
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		owner := actor.ID
		c.OwnerID = &owner
		c.Status = domain.CompanyStatusActive
	default:
		return apperror.Forbidden("Only admins and recruiters can create companies")
	}

	c.Name = strings.TrimSpace(c.Name)
	if c.Status == "" {
		c.Status = domain.CompanyStatusActive
	}
	if err := validateStruct(u.validate, c); err != nil {
		return err
	}
	if err := u.companies.Create(ctx, c); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return apperror.Conflict("A company with this name already exists")
		}
		return err
	}
	publish(ctx, u.events, domain.TableCompanies, domain.EventInsert, c, "")
	recordActivity(ctx, u.activity, actor, "create", "company", strconv.FormatInt(c.ID, 10), map[string]any{"name": c.Name})
	return nil
}

func (u *companyUsecase) GetCompany(ctx context.Context, id int64) (*domain.Company, error) {
	c, err := u.companies.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Company")
	}
	return c, nil
}

func (u *companyUsecase) ListCompanies(ctx context.Context, search, status string, page domain.Page) (*domain.PaginatedResult[domain.Company], error) {
	if status != "" && status != domain.CompanyStatusActive && status != domain.CompanyStatusInactive {
		return nil, apperror.BadRequest("Status must be active or inactive")
	}
	page = page.Normalize()
	companies, total, err := u.companies.List(ctx, strings.TrimSpace(search), status, page)
	if err != nil {
		return nil, err
	}
	return domain.NewPaginatedResult(companies, total, page), nil
}

func (u *companyUsecase) UpdateCompany(ctx context.Context, actor domain.Actor, c *domain.Company) error {
	existing, err := u.companies.GetByID(ctx, c.ID)
	if err != nil {
		return notFound(err, "Company")
	}
	if err := ownsCompany(ctx, u.companies, actor, existing.ID); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		c.OwnerID = existing.OwnerID
		c.Status = existing.Status
	}
	if c.Status == "" {
		c.Status = existing.Status
	}
	c.Name = strings.TrimSpace(c.Name)
	c.CreatedAt = existing.CreatedAt
	if err := validateStruct(u.validate, c); err != nil {
		return err
	}
	if err := u.companies.Update(ctx, c); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return apperror.Conflict("A company with this name already exists")
		}
		return notFound(err, "Company")
	}
	publish(ctx, u.events, domain.TableCompanies, domain.EventUpdate, c, "")
	recordActivity(ctx, u.activity, actor, "update", "company", strconv.FormatInt(c.ID, 10), nil)
	return nil
}

func (u *companyUsecase) DeleteCompany(ctx context.Context, actor domain.Actor, id int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := u.companies.Delete(ctx, id); err != nil {
		return notFound(err, "Company")
	}
	idStr := strconv.FormatInt(id, 10)
	publish(ctx, u.events, domain.TableCompanies, domain.EventDelete, nil, idStr)
	recordActivity(ctx, u.activity, actor, "delete", "company", idStr, nil)
	return nil
}
