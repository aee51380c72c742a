package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"placement-backend/internal/domain"
	"placement-backend/pkg/apperror"
	"placement-backend/pkg/cache"

	"github.com/go-playground/validator/v10"
)

type driveUsecase struct {
	drives    domain.DriveRepository
	students  domain.StudentRepository
	companies domain.CompanyRepository
	notifier  Notifier
	sent      cache.Cache
	validate  *validator.Validate
	activity  domain.ActivityRecorder
	events    domain.EventPublisher
	now       func() time.Time
}

// NewDriveUsecase builds the campus drive use case. sent remembers which reminders went out.
func NewDriveUsecase(
	drives domain.DriveRepository,
	students domain.StudentRepository,
	companies domain.CompanyRepository,
	notifier Notifier,
	sent cache.Cache,
	validate *validator.Validate,
	activity domain.ActivityRecorder,
	events domain.EventPublisher,
) domain.DriveUsecase {
	return &driveUsecase{
		drives:    drives,
		students:  students,
		companies: companies,
		notifier:  notifier,
		sent:      sent,
		validate:  validate,
		activity:  activity,
		events:    events,
		now:       time.Now,
	}
}

func (u *driveUsecase) checkDates(d *domain.CampusDrive) error {
	if !d.DriveDate.After(u.now()) {
		return apperror.BadRequest("Drive date must be in the future")
	}
	if d.RegistrationDeadline.After(d.DriveDate) {
		return apperror.BadRequest("Registration deadline must be before the drive date")
	}
	return nil
}

func (u *driveUsecase) CreateDrive(ctx context.Context, actor domain.Actor, d *domain.CampusDrive) error {
	if actor.IsRecruiter() {
		company, err := u.companies.GetByOwnerID(ctx, actor.ID)
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.Forbidden("Create a company profile before scheduling drives")
		}
		if err != nil {
			return err
		}
		d.CompanyID = company.ID
	} else if !actor.IsAdmin() {
		return apperror.Forbidden("Only admins and recruiters can schedule drives")
	}

	d.Title = strings.TrimSpace(d.Title)
	d.Venue = strings.TrimSpace(d.Venue)
	d.EligibleDepartments = cleanList(d.EligibleDepartments)
	d.Status = domain.DriveStatusScheduled
	if err := validateStruct(u.validate, d); err != nil {
		return err
	}
	if err := u.checkDates(d); err != nil {
		return err
	}
	company, err := u.companies.GetByID(ctx, d.CompanyID)
	if err != nil {
		return notFound(err, "Company")
	}

	if err := u.drives.Create(ctx, d); err != nil {
		return notFound(err, "Company")
	}
	d.CompanyName = company.Name
	publish(ctx, u.events, domain.TableDrives, domain.EventInsert, d, "")
	recordActivity(ctx, u.activity, actor, "create", "campus_drive", strconv.FormatInt(d.ID, 10), map[string]any{"title": d.Title})
	return nil
}

func (u *driveUsecase) GetDrive(ctx context.Context, id int64) (*domain.CampusDrive, error) {
	d, err := u.drives.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Drive")
	}
	return d, nil
}

func (u *driveUsecase) ListDrives(ctx context.Context, f domain.DriveFilter) (*domain.PaginatedResult[domain.CampusDrive], error) {
	switch f.Status {
	case "", domain.DriveStatusScheduled, domain.DriveStatusOngoing, domain.DriveStatusCompleted, domain.DriveStatusCancelled:
	default:
		return nil, apperror.BadRequest("Invalid drive status")
	}
	f.Page = f.Page.Normalize()
	drives, total, err := u.drives.List(ctx, f, u.now())
	if err != nil {
		return nil, err
	}
	return domain.NewPaginatedResult(drives, total, f.Page), nil
}

func (u *driveUsecase) UpdateDrive(ctx context.Context, actor domain.Actor, d *domain.CampusDrive) error {
	existing, err := u.drives.GetByID(ctx, d.ID)
	if err != nil {
		return notFound(err, "Drive")
	}
	if err := ownsCompany(ctx, u.companies, actor, existing.CompanyID); err != nil {
		return err
	}
	if existing.Status != domain.DriveStatusScheduled {
		return apperror.BadRequest("Only scheduled drives can be edited")
	}

	d.CompanyID = existing.CompanyID
	d.Status = existing.Status
	d.CreatedAt = existing.CreatedAt
	d.Title = strings.TrimSpace(d.Title)
	d.Venue = strings.TrimSpace(d.Venue)
	d.EligibleDepartments = cleanList(d.EligibleDepartments)
	if err := validateStruct(u.validate, d); err != nil {
		return err
	}
	if err := u.checkDates(d); err != nil {
		return err
	}
	if err := u.drives.Update(ctx, d); err != nil {
		return notFound(err, "Drive")
	}
	d.CompanyName = existing.CompanyName
	d.RegistrationCount = existing.RegistrationCount
	publish(ctx, u.events, domain.TableDrives, domain.EventUpdate, d, "")
	recordActivity(ctx, u.activity, actor, "update", "campus_drive", strconv.FormatInt(d.ID, 10), nil)
	return nil
}

func (u *driveUsecase) SetDriveStatus(ctx context.Context, actor domain.Actor, id int64, status string) error {
	d, err := u.drives.GetByID(ctx, id)
	if err != nil {
		return notFound(err, "Drive")
	}
	if err := ownsCompany(ctx, u.companies, actor, d.CompanyID); err != nil {
		return err
	}
	if !domain.CanTransitionDrive(d.Status, status) {
		return apperror.BadRequest(fmt.Sprintf("Cannot move a drive from %s to %s", d.Status, status))
	}
	if err := u.drives.UpdateStatus(ctx, id, status); err != nil {
		return notFound(err, "Drive")
	}
	d.Status = status
	publish(ctx, u.events, domain.TableDrives, domain.EventUpdate, d, "")
	recordActivity(ctx, u.activity, actor, "set_status", "campus_drive", strconv.FormatInt(id, 10), map[string]any{"status": status})

	if status == domain.DriveStatusCancelled {
		u.notifyRegistered(ctx, d, domain.NotificationWarning, "Drive cancelled",
			fmt.Sprintf("%s by %s has been cancelled.", d.Title, d.CompanyName))
	}
	return nil
}

func (u *driveUsecase) DeleteDrive(ctx context.Context, actor domain.Actor, id int64) error {
	d, err := u.drives.GetByID(ctx, id)
	if err != nil {
		return notFound(err, "Drive")
	}
	if err := ownsCompany(ctx, u.companies, actor, d.CompanyID); err != nil {
		return err
	}
	if err := u.drives.Delete(ctx, id); err != nil {
		return notFound(err, "Drive")
	}
	idStr := strconv.FormatInt(id, 10)
	publish(ctx, u.events, domain.TableDrives, domain.EventDelete, nil, idStr)
	recordActivity(ctx, u.activity, actor, "delete", "campus_drive", idStr, nil)
	return nil
}

func (u *driveUsecase) studentAndDrive(ctx context.Context, actor domain.Actor, driveID int64) (*domain.Student, *domain.CampusDrive, error) {
	if !actor.IsStudent() {
		return nil, nil, apperror.Forbidden("Only students can register for drives")
	}
	student, err := u.students.GetByProfileID(ctx, actor.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil, apperror.BadRequest("Complete your student profile first")
	}
	if err != nil {
		return nil, nil, err
	}
	d, err := u.drives.GetByID(ctx, driveID)
	if err != nil {
		return nil, nil, notFound(err, "Drive")
	}
	return student, d, nil
}

func (u *driveUsecase) Register(ctx context.Context, actor domain.Actor, driveID int64) error {
	student, d, err := u.studentAndDrive(ctx, actor, driveID)
	if err != nil {
		return err
	}
	if d.Status != domain.DriveStatusScheduled {
		return apperror.BadRequest("Registration is closed for this drive")
	}
	if u.now().After(d.RegistrationDeadline) {
		return apperror.BadRequest("The registration deadline has passed")
	}
	if student.CGPA < d.MinCGPA {
		return apperror.BadRequest(fmt.Sprintf("A minimum CGPA of %.2f is required", d.MinCGPA))
	}
	if !domain.DepartmentEligible(d.EligibleDepartments, student.Department) {
		return apperror.BadRequest("Your department is not eligible for this drive")
	}
	if err := u.drives.Register(ctx, driveID, student.ID); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return apperror.Conflict("You are already registered for this drive")
		}
		return err
	}
	d.RegistrationCount++
	publish(ctx, u.events, domain.TableDrives, domain.EventUpdate, d, "")
	return nil
}

func (u *driveUsecase) Unregister(ctx context.Context, actor domain.Actor, driveID int64) error {
	student, d, err := u.studentAndDrive(ctx, actor, driveID)
	if err != nil {
		return err
	}
	if u.now().After(d.RegistrationDeadline) {
		return apperror.BadRequest("The registration deadline has passed")
	}
	if err := u.drives.Unregister(ctx, driveID, student.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("You are not registered for this drive")
		}
		return err
	}
	if d.RegistrationCount > 0 {
		d.RegistrationCount--
	}
	publish(ctx, u.events, domain.TableDrives, domain.EventUpdate, d, "")
	return nil
}

func (u *driveUsecase) ListRegistrations(ctx context.Context, actor domain.Actor, driveID int64) ([]domain.DriveRegistration, error) {
	d, err := u.drives.GetByID(ctx, driveID)
	if err != nil {
		return nil, notFound(err, "Drive")
	}
	if err := ownsCompany(ctx, u.companies, actor, d.CompanyID); err != nil {
		return nil, err
	}
	regs, err := u.drives.ListRegistrations(ctx, driveID)
	if err != nil {
		return nil, err
	}
	if regs == nil {
		regs = []domain.DriveRegistration{}
	}
	return regs, nil
}

// SendReminders notifies registered students of drives starting within the window.
// Each student is reminded once per drive.
func (u *driveUsecase) SendReminders(ctx context.Context, within time.Duration) (int, error) {
	now := u.now()
	drives, err := u.drives.StartingBetween(ctx, now, now.Add(within))
	if err != nil {
		return 0, err
	}
	sent := 0
	for i := range drives {
		d := &drives[i]
		regs, err := u.drives.ListRegistrations(ctx, d.ID)
		if err != nil {
			return sent, err
		}
		for _, reg := range regs {
			if reg.StudentProfileID == nil {
				continue
			}
			key := fmt.Sprintf("drive-reminder:%d:%d", d.ID, reg.StudentID)
			first, err := u.sent.SetNX(ctx, key, "1", within+time.Hour)
			if err != nil {
				return sent, err
			}
			if !first {
				continue
			}
			link := fmt.Sprintf("/drives/%d", d.ID)
			msg := fmt.Sprintf("%s by %s starts %s at %s.", d.Title, d.CompanyName,
				d.DriveDate.UTC().Format("Mon 02 Jan 15:04 MST"), d.Venue)
			if err := u.notifier.Notify(ctx, *reg.StudentProfileID, domain.NotificationInfo, "Upcoming campus drive", msg, &link); err != nil {
				logWarn("drive reminder failed", err, "drive_id", d.ID, "student_id", reg.StudentID)
				// release the claim so the next run retries
				if err := u.sent.Delete(ctx, key); err != nil {
					logWarn("release drive reminder claim failed", err, "key", key)
				}
				continue
			}
			sent++
		}
	}
	return sent, nil
}

func (u *driveUsecase) notifyRegistered(ctx context.Context, d *domain.CampusDrive, typ, title, msg string) {
	if u.notifier == nil {
		return
	}
	regs, err := u.drives.ListRegistrations(ctx, d.ID)
	if err != nil {
		logWarn("list registrations failed", err, "drive_id", d.ID)
		return
	}
	link := fmt.Sprintf("/drives/%d", d.ID)
	for _, reg := range regs {
		if reg.StudentProfileID == nil {
			continue
		}
		if err := u.notifier.Notify(ctx, *reg.StudentProfileID, typ, title, msg, &link); err != nil {
			logWarn("notify registered student failed", err, "drive_id", d.ID)
		}
	}
}
