package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"placement-backend/internal/domain"
	"placement-backend/internal/usecase"
	"placement-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateCompany(t *testing.T) {
	ctx := context.Background()

	t.Run("Should forbid students", func(t *testing.T) {
		uc := usecase.NewCompanyUsecase(new(MockCompanyRepo), validation.New(), nil, nil)
		err := uc.CreateCompany(ctx, studentActor, &domain.Company{Name: "Acme"})
		assert.Equal(t, http.StatusForbidden, errCode(t, err))
	})

	t.Run("Should allow one company per recruiter", func(t *testing.T) {
		companies := new(MockCompanyRepo)
		uc := usecase.NewCompanyUsecase(companies, validation.New(), nil, nil)
		companies.On("GetByOwnerID", mock.Anything, recruiterActor.ID).Return(&domain.Company{ID: 5}, nil)

		err := uc.CreateCompany(ctx, recruiterActor, &domain.Company{Name: "Second Co"})
		assert.Equal(t, http.StatusConflict, errCode(t, err))
		companies.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Should make the recruiter the owner", func(t *testing.T) {
		companies := new(MockCompanyRepo)
		events := &recordingPublisher{}
		uc := usecase.NewCompanyUsecase(companies, validation.New(), nil, events)
		companies.On("GetByOwnerID", mock.Anything, recruiterActor.ID).Return(nil, domain.ErrNotFound)
		companies.On("Create", mock.Anything, mock.AnythingOfType("*domain.Company")).Return(nil)

		c := &domain.Company{Name: "  Acme Corp ", Status: domain.CompanyStatusInactive}
		require.NoError(t, uc.CreateCompany(ctx, recruiterActor, c))
		require.NotNil(t, c.OwnerID)
		assert.Equal(t, recruiterActor.ID, *c.OwnerID)
		assert.Equal(t, domain.CompanyStatusActive, c.Status)
		assert.Equal(t, "Acme Corp", c.Name)
		assert.Equal(t, []string{"companies:INSERT"}, events.tables())
	})

	t.Run("Should map duplicate names to 409", func(t *testing.T) {
		companies := new(MockCompanyRepo)
		uc := usecase.NewCompanyUsecase(companies, validation.New(), nil, nil)
		companies.On("Create", mock.Anything, mock.Anything).Return(domain.ErrConflict)

		err := uc.CreateCompany(ctx, adminActor, &domain.Company{Name: "Acme"})
		assert.Equal(t, http.StatusConflict, errCode(t, err))
	})
}

func TestUpdateCompany(t *testing.T) {
	ctx := context.Background()

	t.Run("Should forbid recruiters of other companies", func(t *testing.T) {
		companies := new(MockCompanyRepo)
		uc := usecase.NewCompanyUsecase(companies, validation.New(), nil, nil)
		companies.On("GetByID", mock.Anything, int64(5)).Return(&domain.Company{ID: 5, Name: "Acme"}, nil)
		companies.On("GetByOwnerID", mock.Anything, recruiterActor.ID).Return(&domain.Company{ID: 6}, nil)

		err := uc.UpdateCompany(ctx, recruiterActor, &domain.Company{ID: 5, Name: "Acme"})
		assert.Equal(t, http.StatusForbidden, errCode(t, err))
	})

	t.Run("Should keep owner and status for recruiters", func(t *testing.T) {
		companies := new(MockCompanyRepo)
		uc := usecase.NewCompanyUsecase(companies, validation.New(), nil, nil)
		existing := &domain.Company{ID: 5, Name: "Acme", OwnerID: strPtr(recruiterActor.ID), Status: domain.CompanyStatusActive}
		companies.On("GetByID", mock.Anything, int64(5)).Return(existing, nil)
		companies.On("GetByOwnerID", mock.Anything, recruiterActor.ID).Return(existing, nil)
		companies.On("Update", mock.Anything, mock.AnythingOfType("*domain.Company")).Return(nil)

		c := &domain.Company{ID: 5, Name: "Acme Labs", Status: domain.CompanyStatusInactive}
		require.NoError(t, uc.UpdateCompany(ctx, recruiterActor, c))
		assert.Equal(t, domain.CompanyStatusActive, c.Status)
		assert.Equal(t, recruiterActor.ID, *c.OwnerID)
	})
}

func TestListCompaniesValidatesStatus(t *testing.T) {
	companies := new(MockCompanyRepo)
	uc := usecase.NewCompanyUsecase(companies, validation.New(), nil, nil)

	_, err := uc.ListCompanies(context.Background(), "", "bankrupt", domain.Page{})
	assert.Equal(t, http.StatusBadRequest, errCode(t, err))

	companies.On("List", mock.Anything, "acme", "", domain.Page{Page: 1, PageSize: domain.DefaultPageSize}).
		Return([]domain.Company{{ID: 1}}, int64(1), nil)
	res, err := uc.ListCompanies(context.Background(), " acme ", "", domain.Page{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalPages)
}

func TestDeleteCompanyIsAdminOnly(t *testing.T) {
	uc := usecase.NewCompanyUsecase(new(MockCompanyRepo), validation.New(), nil, nil)
	err := uc.DeleteCompany(context.Background(), recruiterActor, 5)
	assert.Equal(t, http.StatusForbidden, errCode(t, err))
}
