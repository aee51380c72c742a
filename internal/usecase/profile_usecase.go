package usecase

import (
	"context"
	"strings"

	"placement-backend/internal/domain"
	"placement-backend/pkg/apperror"
)

type profileUsecase struct {
	profiles domain.ProfileRepository
	activity domain.ActivityRecorder
}

func NewProfileUsecase(profiles domain.ProfileRepository, activity domain.ActivityRecorder) domain.ProfileUsecase {
	return &profileUsecase{profiles: profiles, activity: activity}
}

// SyncProfile creates the profile on first login. New profiles are students.
func (u *profileUsecase) SyncProfile(ctx context.Context, id, email, fullName string) (*domain.Profile, error) {
	if id == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	p := &domain.Profile{
		ID:       id,
		Email:    strings.ToLower(strings.TrimSpace(email)),
		FullName: strings.TrimSpace(fullName),
		Role:     domain.RoleStudent,
	}
	if err := u.profiles.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (u *profileUsecase) GetCurrentProfile(ctx context.Context, id string) (*domain.Profile, error) {
	p, err := u.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Profile")
	}
	return p, nil
}

func (u *profileUsecase) UpdateOwnProfile(ctx context.Context, id, fullName string, avatarURL *string) (*domain.Profile, error) {
	fullName = strings.TrimSpace(fullName)
	if n := len([]rune(fullName)); n < 2 || n > 120 {
		return nil, apperror.BadRequest("Full name must be between 2 and 120 characters")
	}
	p, err := u.profiles.UpdateOwn(ctx, id, fullName, avatarURL)
	if err != nil {
		return nil, notFound(err, "Profile")
	}
	return p, nil
}

func (u *profileUsecase) ListProfiles(ctx context.Context, actor domain.Actor, role string, page domain.Page) (*domain.PaginatedResult[domain.Profile], error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if role != "" && !domain.ValidRole(role) {
		return nil, apperror.BadRequest("Invalid role")
	}
	page = page.Normalize()
	profiles, total, err := u.profiles.List(ctx, role, page)
	if err != nil {
		return nil, err
	}
	return domain.NewPaginatedResult(profiles, total, page), nil
}

func (u *profileUsecase) AssignRole(ctx context.Context, actor domain.Actor, id, role string) (*domain.Profile, error) {
	if !actor.IsAdmin() {
		return nil, apperror.Forbidden("Only admins can assign roles")
	}
	if !domain.ValidRole(role) {
		return nil, apperror.BadRequest("Invalid role")
	}
	if id == actor.ID && role != domain.RoleAdmin {
		return nil, apperror.BadRequest("You cannot remove your own admin role")
	}
	p, err := u.profiles.SetRole(ctx, id, role)
	if err != nil {
		return nil, notFound(err, "Profile")
	}
	recordActivity(ctx, u.activity, actor, "assign_role", "profile", id, map[string]any{"role": role})
	return p, nil
}

func (u *profileUsecase) SetDisabled(ctx context.Context, actor domain.Actor, id string, disabled bool) (*domain.Profile, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if id == actor.ID {
		return nil, apperror.BadRequest("You cannot disable your own account")
	}
	p, err := u.profiles.SetDisabled(ctx, id, disabled)
	if err != nil {
		return nil, notFound(err, "Profile")
	}
	action := "enable_profile"
	if disabled {
		action = "disable_profile"
	}
	recordActivity(ctx, u.activity, actor, action, "profile", id, nil)
	return p, nil
}
