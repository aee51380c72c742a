package domain

import (
	"context"
	"time"
)

const (
	RoleAdmin     = "admin"
	RoleStudent   = "student"
	RoleRecruiter = "recruiter"
)

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleStudent || role == RoleRecruiter
}

// Profile is the portal identity linked 1:1 to an auth-provider user.
type Profile struct {
	ID         string    `json:"id"` // auth subject (uuid)
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	Role       string    `json:"role"`
	AvatarURL  *string   `json:"avatar_url,omitempty"`
	IsDisabled bool      `json:"is_disabled"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Actor is the authenticated caller of a use case.
type Actor struct {
	ID   string
	Role string
}

func (a Actor) IsAdmin() bool     { return a.Role == RoleAdmin }
func (a Actor) IsStudent() bool   { return a.Role == RoleStudent }
func (a Actor) IsRecruiter() bool { return a.Role == RoleRecruiter }

type ProfileRepository interface {
	Upsert(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, id string) (*Profile, error)
	List(ctx context.Context, role string, page Page) ([]Profile, int64, error)
	ListIDsByRole(ctx context.Context, role string) ([]string, error)
	UpdateOwn(ctx context.Context, id, fullName string, avatarURL *string) (*Profile, error)
	SetRole(ctx context.Context, id, role string) (*Profile, error)
	SetDisabled(ctx context.Context, id string, disabled bool) (*Profile, error)
	CountByRole(ctx context.Context) (map[string]int64, error)
}

type ProfileUsecase interface {
	SyncProfile(ctx context.Context, id, email, fullName string) (*Profile, error)
	GetCurrentProfile(ctx context.Context, id string) (*Profile, error)
	UpdateOwnProfile(ctx context.Context, id, fullName string, avatarURL *string) (*Profile, error)
	ListProfiles(ctx context.Context, actor Actor, role string, page Page) (*PaginatedResult[Profile], error)
	AssignRole(ctx context.Context, actor Actor, id, role string) (*Profile, error)
	SetDisabled(ctx context.Context, actor Actor, id string, disabled bool) (*Profile, error)
}
