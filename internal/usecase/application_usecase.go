package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"placement-backend/internal/domain"
	"placement-backend/pkg/apperror"
)

// Notifier is the part of the notification use case other use cases depend on.
type Notifier interface {
	Notify(ctx context.Context, profileID, typ, title, message string, link *string) error
}

const maxCoverLetterLength = 5000

type applicationUsecase struct {
	apps      domain.ApplicationRepository
	jobs      domain.JobRepository
	students  domain.StudentRepository
	companies domain.CompanyRepository
	settings  domain.SettingsRepository
	notifier  Notifier
	activity  domain.ActivityRecorder
	events    domain.EventPublisher
	now       func() time.Time
}

func NewApplicationUsecase(
	apps domain.ApplicationRepository,
	jobs domain.JobRepository,
	students domain.StudentRepository,
	companies domain.CompanyRepository,
	settings domain.SettingsRepository,
	notifier Notifier,
	activity domain.ActivityRecorder,
	events domain.EventPublisher,
) domain.ApplicationUsecase {
	return &applicationUsecase{
		apps:      apps,
		jobs:      jobs,
		students:  students,
		companies: companies,
		settings:  settings,
		notifier:  notifier,
		activity:  activity,
		events:    events,
		now:       time.Now,
	}
}

func loadSettings(ctx context.Context, repo domain.SettingsRepository) (*domain.SystemSettings, error) {
	s, err := repo.Get(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		d := domain.DefaultSettings()
		return &d, nil
	}
	return s, err
}

func (u *applicationUsecase) myStudent(ctx context.Context, actor domain.Actor) (*domain.Student, error) {
	if !actor.IsStudent() {
		return nil, apperror.Forbidden("Only students can do this")
	}
	s, err := u.students.GetByProfileID(ctx, actor.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.BadRequest("Complete your student profile first")
	}
	return s, err
}

func (u *applicationUsecase) Apply(ctx context.Context, actor domain.Actor, jobID int64, coverLetter *string) (*domain.JobApplication, error) {
	student, err := u.myStudent(ctx, actor)
	if err != nil {
		return nil, err
	}
	job, err := u.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, notFound(err, "Job")
	}

	if !job.AcceptsApplications(u.now()) {
		return nil, apperror.BadRequest("This job is not accepting applications")
	}
	if student.CGPA < job.MinCGPA {
		return nil, apperror.BadRequest(fmt.Sprintf("A minimum CGPA of %.2f is required", job.MinCGPA))
	}
	if !domain.DepartmentEligible(job.EligibleDepartments, student.Department) {
		return nil, apperror.BadRequest("Your department is not eligible for this job")
	}

	settings, err := loadSettings(ctx, u.settings)
	if err != nil {
		return nil, err
	}
	if student.IsPlaced && !settings.AllowPlacedStudentsToApply {
		return nil, apperror.BadRequest("Placed students cannot apply to more jobs")
	}

	exists, err := u.apps.Exists(ctx, jobID, student.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.Conflict("You have already applied to this job")
	}
	active, err := u.apps.CountActiveByStudent(ctx, student.ID)
	if err != nil {
		return nil, err
	}
	if active >= settings.MaxApplicationsPerStudent {
		return nil, apperror.BadRequest(fmt.Sprintf("You have reached the limit of %d active applications", settings.MaxApplicationsPerStudent))
	}

	if coverLetter != nil {
		trimmed := strings.TrimSpace(*coverLetter)
		if utf8.RuneCountInString(trimmed) > maxCoverLetterLength {
			return nil, apperror.BadRequest("Cover letter must be at most 5000 characters")
		}
		coverLetter = &trimmed
		if trimmed == "" {
			coverLetter = nil
		}
	}

	app := &domain.JobApplication{
		JobID:       job.ID,
		StudentID:   student.ID,
		CoverLetter: coverLetter,
		ResumeURL:   student.ResumeURL,
		Status:      domain.ApplicationStatusPending,
	}
	if err := u.apps.Create(ctx, app); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, apperror.Conflict("You have already applied to this job")
		}
		return nil, err
	}
	app.JobTitle = job.Title
	app.CompanyID = job.CompanyID
	app.CompanyName = job.CompanyName
	app.StudentName = student.FullName
	app.StudentRollNumber = student.RollNumber
	app.StudentProfileID = student.ProfileID

	owner := u.companyOwner(ctx, job.CompanyID)
	publishScoped(ctx, u.events, applicationScope(student.ProfileID, owner), domain.TableApplications, domain.EventInsert, app, "")
	u.notifyRecruiter(ctx, owner, job, student)
	return app, nil
}

// companyOwner returns the recruiter owning companyID, or nil when there is none.
func (u *applicationUsecase) companyOwner(ctx context.Context, companyID int64) *string {
	company, err := u.companies.GetByID(ctx, companyID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logWarn("load company owner failed", err, "company_id", companyID)
		}
		return nil
	}
	return company.OwnerID
}

// applicationScope limits application rows to the applicant, the hiring recruiter and admins.
func applicationScope(studentProfileID, ownerID *string) eventScope {
	scope := staffAnd(studentProfileID, ownerID)
	scope.roles = []string{domain.RoleAdmin}
	return scope
}

func (u *applicationUsecase) notifyRecruiter(ctx context.Context, owner *string, job *domain.Job, student *domain.Student) {
	if u.notifier == nil || owner == nil {
		return
	}
	link := fmt.Sprintf("/jobs/%d/applications", job.ID)
	msg := fmt.Sprintf("%s (%s) applied for %s.", student.FullName, student.RollNumber, job.Title)
	if err := u.notifier.Notify(ctx, *owner, domain.NotificationInfo, "New application", msg, &link); err != nil {
		logWarn("notify recruiter failed", err, "job_id", job.ID)
	}
}

// Withdraw deletes the caller's application while it is still pending.
func (u *applicationUsecase) Withdraw(ctx context.Context, actor domain.Actor, id int64) error {
	student, err := u.myStudent(ctx, actor)
	if err != nil {
		return err
	}
	app, err := u.apps.GetByID(ctx, id)
	if err != nil {
		return notFound(err, "Application")
	}
	if app.StudentID != student.ID {
		return apperror.NotFound("Application not found")
	}
	if app.Status != domain.ApplicationStatusPending {
		return apperror.BadRequest("Only pending applications can be withdrawn")
	}
	if err := u.apps.Delete(ctx, id); err != nil {
		return notFound(err, "Application")
	}
	owner := u.companyOwner(ctx, app.CompanyID)
	publishScoped(ctx, u.events, applicationScope(&actor.ID, owner), domain.TableApplications, domain.EventDelete, nil, strconv.FormatInt(id, 10))
	return nil
}

func (u *applicationUsecase) ListMine(ctx context.Context, actor domain.Actor, page domain.Page) (*domain.PaginatedResult[domain.JobApplication], error) {
	page = page.Normalize()
	if !actor.IsStudent() {
		return nil, apperror.Forbidden("Only students have applications")
	}
	student, err := u.students.GetByProfileID(ctx, actor.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewPaginatedResult[domain.JobApplication](nil, 0, page), nil
	}
	if err != nil {
		return nil, err
	}
	apps, total, err := u.apps.List(ctx, domain.ApplicationFilter{StudentID: student.ID, Page: page})
	if err != nil {
		return nil, err
	}
	return domain.NewPaginatedResult(apps, total, page), nil
}

func (u *applicationUsecase) ListByJob(ctx context.Context, actor domain.Actor, jobID int64, status string, page domain.Page) (*domain.PaginatedResult[domain.JobApplication], error) {
	if status != "" && !domain.ValidApplicationStatus(status) {
		return nil, apperror.BadRequest("Invalid application status")
	}
	job, err := u.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, notFound(err, "Job")
	}
	if err := ownsCompany(ctx, u.companies, actor, job.CompanyID); err != nil {
		return nil, err
	}
	page = page.Normalize()
	apps, total, err := u.apps.List(ctx, domain.ApplicationFilter{JobID: jobID, Status: status, Page: page})
	if err != nil {
		return nil, err
	}
	return domain.NewPaginatedResult(apps, total, page), nil
}

// ListApplications lists everything for admins and the own company's applications for recruiters.
func (u *applicationUsecase) ListApplications(ctx context.Context, actor domain.Actor, f domain.ApplicationFilter) (*domain.PaginatedResult[domain.JobApplication], error) {
	if f.Status != "" && !domain.ValidApplicationStatus(f.Status) {
		return nil, apperror.BadRequest("Invalid application status")
	}
	switch {
	case actor.IsAdmin():
	case actor.IsRecruiter():
		company, err := u.companies.GetByOwnerID(ctx, actor.ID)
		if err != nil {
			return nil, notFound(err, "Company")
		}
		f.CompanyID = company.ID
	default:
		return nil, apperror.Forbidden("You cannot list all applications")
	}
	f.Page = f.Page.Normalize()
	apps, total, err := u.apps.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return domain.NewPaginatedResult(apps, total, f.Page), nil
}

func (u *applicationUsecase) GetApplication(ctx context.Context, actor domain.Actor, id int64) (*domain.JobApplication, error) {
	app, err := u.apps.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Application")
	}
	if actor.IsStudent() {
		if app.StudentProfileID == nil || *app.StudentProfileID != actor.ID {
			return nil, apperror.NotFound("Application not found")
		}
		return app, nil
	}
	if err := ownsCompany(ctx, u.companies, actor, app.CompanyID); err != nil {
		return nil, err
	}
	return app, nil
}

func (u *applicationUsecase) UpdateStatus(ctx context.Context, actor domain.Actor, id int64, status string, remarks *string) (*domain.JobApplication, error) {
	if !domain.ValidApplicationStatus(status) {
		return nil, apperror.BadRequest("Invalid application status")
	}
	app, err := u.apps.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Application")
	}
	if err := ownsCompany(ctx, u.companies, actor, app.CompanyID); err != nil {
		return nil, err
	}
	if !domain.CanTransition(app.Status, status) {
		return nil, apperror.BadRequest(fmt.Sprintf("Cannot move an application from %s to %s", app.Status, status))
	}

	var placement *domain.PlacementUpdate
	if status == domain.ApplicationStatusAccepted {
		job, err := u.jobs.GetByID(ctx, app.JobID)
		if err != nil {
			return nil, notFound(err, "Job")
		}
		placement = &domain.PlacementUpdate{StudentID: app.StudentID, CompanyID: job.CompanyID, PackageLPA: job.PackageLPA}
	}

	if err := u.apps.UpdateStatus(ctx, id, app.Status, status, remarks, placement); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.Conflict("The application was changed by someone else, reload and try again")
		}
		return nil, err
	}

	previous := app.Status
	app.Status = status
	if remarks != nil {
		app.Remarks = remarks
	}
	app.UpdatedAt = u.now().UTC()

	idStr := strconv.FormatInt(id, 10)
	owner := &actor.ID
	if !actor.IsRecruiter() {
		owner = u.companyOwner(ctx, app.CompanyID)
	}
	publishScoped(ctx, u.events, applicationScope(app.StudentProfileID, owner), domain.TableApplications, domain.EventUpdate, app, "")
	if placement != nil {
		publishScoped(ctx, u.events, staffAnd(app.StudentProfileID), domain.TableStudents, domain.EventUpdate, map[string]any{
			"id":                placement.StudentID,
			"is_placed":         true,
			"placed_company_id": placement.CompanyID,
			"package_lpa":       placement.PackageLPA,
		}, "")
	}
	recordActivity(ctx, u.activity, actor, "update_status", "application", idStr, map[string]any{"from": previous, "to": status})
	u.notifyStudent(ctx, app)
	return app, nil
}

func (u *applicationUsecase) notifyStudent(ctx context.Context, app *domain.JobApplication) {
	if u.notifier == nil || app.StudentProfileID == nil {
		return
	}
	typ := domain.NotificationInfo
	switch app.Status {
	case domain.ApplicationStatusAccepted:
		typ = domain.NotificationSuccess
	case domain.ApplicationStatusRejected:
		typ = domain.NotificationWarning
	}
	link := "/applications"
	title := "Application " + app.Status
	msg := fmt.Sprintf("Your application for %s at %s is now %s.", app.JobTitle, app.CompanyName, app.Status)
	if err := u.notifier.Notify(ctx, *app.StudentProfileID, typ, title, msg, &link); err != nil {
		logWarn("notify student failed", err, "application_id", app.ID)
	}
}
