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

type studentUsecase struct {
	students domain.StudentRepository
	validate *validator.Validate
	activity domain.ActivityRecorder
	events   domain.EventPublisher
}

func NewStudentUsecase(students domain.StudentRepository, validate *validator.Validate, activity domain.ActivityRecorder, events domain.EventPublisher) domain.StudentUsecase {
	return &studentUsecase{
		students: students,
		validate: validate,
		activity: activity,
		events:   events,
	}
}

func normalizeStudent(s *domain.Student) {
	s.RollNumber = strings.ToUpper(strings.TrimSpace(s.RollNumber))
	s.FullName = strings.TrimSpace(s.FullName)
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	s.Department = strings.TrimSpace(s.Department)
	s.Skills = cleanList(s.Skills)
}

func (u *studentUsecase) CreateStudent(ctx context.Context, actor domain.Actor, s *domain.Student) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	normalizeStudent(s)
	if err := validateStruct(u.validate, s); err != nil {
		return err
	}
	if !s.IsPlaced {
		s.PlacedCompanyID = nil
		s.PackageLPA = nil
	}
	if err := u.students.Create(ctx, s); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return apperror.Conflict("A student with this roll number already exists")
		}
		return err
	}
	publishScoped(ctx, u.events, staffAnd(s.ProfileID), domain.TableStudents, domain.EventInsert, s, "")
	recordActivity(ctx, u.activity, actor, "create", "student", strconv.FormatInt(s.ID, 10), map[string]any{"roll_number": s.RollNumber})
	return nil
}

// GetStudent lets admins and recruiters read any record; students only their own.
func (u *studentUsecase) GetStudent(ctx context.Context, actor domain.Actor, id int64) (*domain.Student, error) {
	s, err := u.students.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Student")
	}
	if actor.IsStudent() && (s.ProfileID == nil || *s.ProfileID != actor.ID) {
		return nil, apperror.Forbidden("You can only view your own student record")
	}
	return s, nil
}

func (u *studentUsecase) GetMyStudent(ctx context.Context, actor domain.Actor) (*domain.Student, error) {
	s, err := u.students.GetByProfileID(ctx, actor.ID)
	if err != nil {
		return nil, notFound(err, "Student record")
	}
	return s, nil
}

func (u *studentUsecase) UpdateStudent(ctx context.Context, actor domain.Actor, s *domain.Student) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	existing, err := u.students.GetByID(ctx, s.ID)
	if err != nil {
		return notFound(err, "Student")
	}
	normalizeStudent(s)
	s.CreatedAt = existing.CreatedAt
	if err := validateStruct(u.validate, s); err != nil {
		return err
	}
	if !s.IsPlaced {
		s.PlacedCompanyID = nil
		s.PackageLPA = nil
	}
	if err := u.students.Update(ctx, s); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return apperror.Conflict("A student with this roll number already exists")
		}
		return notFound(err, "Student")
	}
	publishScoped(ctx, u.events, staffAnd(s.ProfileID), domain.TableStudents, domain.EventUpdate, s, "")
	recordActivity(ctx, u.activity, actor, "update", "student", strconv.FormatInt(s.ID, 10), nil)
	return nil
}

// UpsertMyStudent creates or edits the caller's own record. Placement fields stay as they are.
func (u *studentUsecase) UpsertMyStudent(ctx context.Context, actor domain.Actor, s *domain.Student) (*domain.Student, error) {
	if !actor.IsStudent() {
		return nil, apperror.Forbidden("Only students have a student record")
	}
	existing, err := u.students.GetByProfileID(ctx, actor.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	profileID := actor.ID
	s.ProfileID = &profileID
	if existing != nil {
		s.ID = existing.ID
		s.IsPlaced = existing.IsPlaced
		s.PlacedCompanyID = existing.PlacedCompanyID
		s.PackageLPA = existing.PackageLPA
		s.CreatedAt = existing.CreatedAt
	} else {
		s.ID = 0
		s.IsPlaced = false
		s.PlacedCompanyID = nil
		s.PackageLPA = nil
	}

	normalizeStudent(s)
	if err := validateStruct(u.validate, s); err != nil {
		return nil, err
	}

	eventType := domain.EventUpdate
	if existing == nil {
		eventType = domain.EventInsert
		err = u.students.Create(ctx, s)
	} else {
		err = u.students.Update(ctx, s)
	}
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, apperror.Conflict("A student with this roll number already exists")
		}
		return nil, err
	}
	publishScoped(ctx, u.events, staffAnd(s.ProfileID), domain.TableStudents, eventType, s, "")
	return s, nil
}

func (u *studentUsecase) DeleteStudent(ctx context.Context, actor domain.Actor, id int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := u.students.Delete(ctx, id); err != nil {
		return notFound(err, "Student")
	}
	idStr := strconv.FormatInt(id, 10)
	publishScoped(ctx, u.events, staffAnd(), domain.TableStudents, domain.EventDelete, nil, idStr)
	recordActivity(ctx, u.activity, actor, "delete", "student", idStr, nil)
	return nil
}

func (u *studentUsecase) SearchStudents(ctx context.Context, actor domain.Actor, f domain.StudentFilter) (*domain.PaginatedResult[domain.Student], error) {
	if actor.IsStudent() {
		return nil, apperror.Forbidden("Students cannot search student records")
	}
	if f.MinCGPA != nil && (*f.MinCGPA < 0 || *f.MinCGPA > 10) {
		return nil, apperror.BadRequest("Minimum CGPA must be between 0 and 10")
	}
	if f.SortOrder != "" && f.SortOrder != "asc" && f.SortOrder != "desc" {
		return nil, apperror.BadRequest("Sort order must be asc or desc")
	}
	f.Departments = cleanList(f.Departments)
	f.Skills = cleanList(f.Skills)
	f.Page = f.Page.Normalize()

	students, total, err := u.students.Search(ctx, f)
	if err != nil {
		return nil, err
	}
	return domain.NewPaginatedResult(students, total, f.Page), nil
}
