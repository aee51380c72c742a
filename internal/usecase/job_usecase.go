package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"placement-backend/internal/domain"
	"placement-backend/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

type jobUsecase struct {
	jobs      domain.JobRepository
	companies domain.CompanyRepository
	validate  *validator.Validate
	activity  domain.ActivityRecorder
	events    domain.EventPublisher
	now       func() time.Time
}

func NewJobUsecase(jobs domain.JobRepository, companies domain.CompanyRepository, validate *validator.Validate, activity domain.ActivityRecorder, events domain.EventPublisher) domain.JobUsecase {
	return &jobUsecase{
		jobs:      jobs,
		companies: companies,
		validate:  validate,
		activity:  activity,
		events:    events,
		now:       time.Now,
	}
}

func normalizeJob(job *domain.Job) {
	job.Title = strings.TrimSpace(job.Title)
	job.Location = strings.TrimSpace(job.Location)
	job.EligibleDepartments = cleanList(job.EligibleDepartments)
	job.Skills = cleanList(job.Skills)
}

func (u *jobUsecase) CreateJob(ctx context.Context, actor domain.Actor, job *domain.Job) error {
	var company *domain.Company
	var err error
	switch {
	case actor.IsRecruiter():
		company, err = u.companies.GetByOwnerID(ctx, actor.ID)
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.Forbidden("Create a company profile before posting jobs")
		}
	case actor.IsAdmin():
		company, err = u.companies.GetByID(ctx, job.CompanyID)
		err = notFound(err, "Company")
	default:
		return apperror.Forbidden("Only admins and recruiters can post jobs")
	}
	if err != nil {
		return err
	}

	job.CompanyID = company.ID
	if job.Status == "" {
		job.Status = domain.JobStatusDraft
	}
	normalizeJob(job)
	if err := validateStruct(u.validate, job); err != nil {
		return err
	}
	if !job.Deadline.After(u.now()) {
		return apperror.BadRequest("Deadline must be in the future")
	}

	if err := u.jobs.Create(ctx, job); err != nil {
		return err
	}
	job.CompanyName = company.Name
	job.CompanyLogoURL = company.LogoURL
	publishScoped(ctx, u.events, jobScope(job), domain.TableJobs, domain.EventInsert, job, "")
	recordActivity(ctx, u.activity, actor, "create", "job", strconv.FormatInt(job.ID, 10), map[string]any{"title": job.Title})
	return nil
}

// GetJob hides non-open jobs from students.
func (u *jobUsecase) GetJob(ctx context.Context, actor domain.Actor, id int64) (*domain.Job, error) {
	job, err := u.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Job")
	}
	if actor.IsStudent() && job.Status != domain.JobStatusOpen {
		return nil, apperror.NotFound("Job not found")
	}
	return job, nil
}

func (u *jobUsecase) ListJobs(ctx context.Context, actor domain.Actor, f domain.JobFilter) (*domain.PaginatedResult[domain.Job], error) {
	if f.JobType != "" && !domain.ValidJobType(f.JobType) {
		return nil, apperror.BadRequest("Invalid job type")
	}
	if actor.IsStudent() {
		f.Status = domain.JobStatusOpen
	}
	f.Page = f.Page.Normalize()

	jobs, total, err := u.jobs.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return domain.NewPaginatedResult(jobs, total, f.Page), nil
}

func (u *jobUsecase) UpdateJob(ctx context.Context, actor domain.Actor, job *domain.Job) error {
	existing, err := u.jobs.GetByID(ctx, job.ID)
	if err != nil {
		return notFound(err, "Job")
	}
	if err := ownsCompany(ctx, u.companies, actor, existing.CompanyID); err != nil {
		return err
	}

	job.CompanyID = existing.CompanyID
	job.CreatedAt = existing.CreatedAt
	if job.Status == "" {
		job.Status = existing.Status
	}
	normalizeJob(job)
	if err := validateStruct(u.validate, job); err != nil {
		return err
	}
	if !job.Deadline.Equal(existing.Deadline) && !job.Deadline.After(u.now()) {
		return apperror.BadRequest("Deadline must be in the future")
	}

	if err := u.jobs.Update(ctx, job); err != nil {
		return notFound(err, "Job")
	}
	job.CompanyName = existing.CompanyName
	job.CompanyLogoURL = existing.CompanyLogoURL
	publishScoped(ctx, u.events, jobScope(job), domain.TableJobs, domain.EventUpdate, job, "")
	recordActivity(ctx, u.activity, actor, "update", "job", strconv.FormatInt(job.ID, 10), nil)
	return nil
}

func (u *jobUsecase) SetJobStatus(ctx context.Context, actor domain.Actor, id int64, status string) error {
	switch status {
	case domain.JobStatusDraft, domain.JobStatusOpen, domain.JobStatusClosed:
	default:
		return apperror.BadRequest("Status must be draft, open or closed")
	}
	job, err := u.jobs.GetByID(ctx, id)
	if err != nil {
		return notFound(err, "Job")
	}
	if err := ownsCompany(ctx, u.companies, actor, job.CompanyID); err != nil {
		return err
	}
	if status == domain.JobStatusOpen && !job.Deadline.After(u.now()) {
		return apperror.BadRequest("Cannot open a job whose deadline has passed")
	}
	if err := u.jobs.UpdateStatus(ctx, id, status); err != nil {
		return notFound(err, "Job")
	}
	job.Status = status
	publishScoped(ctx, u.events, jobScope(job), domain.TableJobs, domain.EventUpdate, job, "")
	recordActivity(ctx, u.activity, actor, "set_status", "job", strconv.FormatInt(id, 10), map[string]any{"status": status})
	return nil
}

func (u *jobUsecase) DeleteJob(ctx context.Context, actor domain.Actor, id int64) error {
	job, err := u.jobs.GetByID(ctx, id)
	if err != nil {
		return notFound(err, "Job")
	}
	if err := ownsCompany(ctx, u.companies, actor, job.CompanyID); err != nil {
		return err
	}
	if err := u.jobs.Delete(ctx, id); err != nil {
		return notFound(err, "Job")
	}
	idStr := strconv.FormatInt(id, 10)
	publish(ctx, u.events, domain.TableJobs, domain.EventDelete, nil, idStr)
	recordActivity(ctx, u.activity, actor, "delete", "job", idStr, nil)
	return nil
}

// CloseExpiredJobs closes open jobs past their deadline.
func (u *jobUsecase) CloseExpiredJobs(ctx context.Context) (int, error) {
	closed, err := u.jobs.CloseExpired(ctx, u.now())
	if err != nil {
		return 0, err
	}
	for i := range closed {
		job := &closed[i]
		publishScoped(ctx, u.events, jobScope(job), domain.TableJobs, domain.EventUpdate, job, "")
	}
	return len(closed), nil
}
