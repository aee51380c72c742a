package postgres

import (
	"context"
	"strings"

	"placement-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type companyRepo struct {
	db *pgxpool.Pool
}

func NewCompanyRepository(db *pgxpool.Pool) domain.CompanyRepository {
	return &companyRepo{db: db}
}

const companyColumns = `id, owner_id, name, industry, website, logo_url, description, location,
	contact_email, status, created_at, updated_at`

func scanCompany(row rowScanner) (*domain.Company, error) {
	var c domain.Company
	err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Industry, &c.Website, &c.LogoURL, &c.Description,
		&c.Location, &c.ContactEmail, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *companyRepo) Create(ctx context.Context, c *domain.Company) error {
	query := `INSERT INTO companies (owner_id, name, industry, website, logo_url, description, location,
                  contact_email, status, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
              RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		c.OwnerID, c.Name, c.Industry, c.Website, c.LogoURL, c.Description, c.Location, c.ContactEmail, c.Status,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return mapErr(err)
}

func (r *companyRepo) GetByID(ctx context.Context, id int64) (*domain.Company, error) {
	return scanCompany(r.db.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id))
}

func (r *companyRepo) GetByOwnerID(ctx context.Context, ownerID string) (*domain.Company, error) {
	return scanCompany(r.db.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE owner_id = $1`, ownerID))
}

func (r *companyRepo) List(ctx context.Context, search, status string, page domain.Page) ([]domain.Company, int64, error) {
	var w where
	if term := strings.TrimSpace(search); term != "" {
		like := containsPattern(term)
		w.add("(name ILIKE ? OR COALESCE(industry, '') ILIKE ? OR COALESCE(location, '') ILIKE ?)", like, like, like)
	}
	if status != "" {
		w.add("status = ?", status)
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM companies`+w.clause(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + companyColumns + ` FROM companies` + w.clause() +
		` ORDER BY name ASC LIMIT ` + w.next(page.PageSize) + ` OFFSET ` + w.next(page.Offset())
	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var companies []domain.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, 0, err
		}
		companies = append(companies, *c)
	}
	return companies, total, rows.Err()
}

func (r *companyRepo) Update(ctx context.Context, c *domain.Company) error {
	query := `UPDATE companies SET name = $2, industry = $3, website = $4, logo_url = $5, description = $6,
                  location = $7, contact_email = $8, status = $9, owner_id = $10, updated_at = NOW()
              WHERE id = $1 RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		c.ID, c.Name, c.Industry, c.Website, c.LogoURL, c.Description, c.Location, c.ContactEmail, c.Status, c.OwnerID,
	).Scan(&c.UpdatedAt)
	return mapErr(err)
}

func (r *companyRepo) Delete(ctx context.Context, id int64) error {
	return affected(r.db.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id))
}
