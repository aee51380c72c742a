package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"placement-backend/internal/domain"
	"placement-backend/pkg/apperror"
	"placement-backend/pkg/logger"
	"placement-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

func validateStruct(v *validator.Validate, s any) error {
	if err := v.Struct(s); err != nil {
		return apperror.BadRequest(strings.Join(validation.FormatValidationErrors(err), "; "))
	}
	return nil
}

func requireAdmin(actor domain.Actor) error {
	if !actor.IsAdmin() {
		return apperror.Forbidden("Only admins can perform this action")
	}
	return nil
}

// notFound turns a repository ErrNotFound into a 404 naming what is missing.
func notFound(err error, what string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return apperror.NotFound(what + " not found")
	}
	return err
}

func today(now time.Time) time.Time {
	return now.UTC().Truncate(24 * time.Hour)
}

// eventScope limits who receives an event. The zero value broadcasts.
type eventScope struct {
	audience []string
	roles    []string
}

// staffAnd scopes an event to admins, recruiters and the given profiles.
func staffAnd(profileIDs ...*string) eventScope {
	scope := eventScope{roles: domain.StaffRoles}
	for _, id := range profileIDs {
		if id != nil && *id != "" {
			scope.audience = append(scope.audience, *id)
		}
	}
	return scope
}

// jobScope hides jobs students cannot open over REST.
func jobScope(job *domain.Job) eventScope {
	if job.Status == domain.JobStatusOpen {
		return eventScope{}
	}
	return eventScope{roles: domain.StaffRoles}
}

// publish is a no-op when no publisher is wired.
func publish(ctx context.Context, events domain.EventPublisher, table, typ string, record any, oldID string) {
	publishScoped(ctx, events, eventScope{}, table, typ, record, oldID)
}

func publishScoped(ctx context.Context, events domain.EventPublisher, scope eventScope, table, typ string, record any, oldID string) {
	if events == nil {
		return
	}
	events.Publish(ctx, domain.ChangeEvent{
		ID:              uuid.NewString(),
		Table:           table,
		Type:            typ,
		Record:          record,
		OldRecordID:     oldID,
		CommitTimestamp: time.Now().UTC(),
		Audience:        scope.audience,
		Roles:           scope.roles,
	})
}

func recordActivity(ctx context.Context, rec domain.ActivityRecorder, actor domain.Actor, action, entity, entityID string, details map[string]any) {
	if rec == nil {
		return
	}
	rec.Record(ctx, actor.ID, action, entity, entityID, details)
}

// ownsCompany authorizes actor against companyID: admins always, recruiters only for their own company.
func ownsCompany(ctx context.Context, companies domain.CompanyRepository, actor domain.Actor, companyID int64) error {
	if actor.IsAdmin() {
		return nil
	}
	if !actor.IsRecruiter() {
		return apperror.Forbidden("You do not have access to this company")
	}
	c, err := companies.GetByOwnerID(ctx, actor.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return apperror.Forbidden("You do not have access to this company")
	}
	if err != nil {
		return err
	}
	if c.ID != companyID {
		return apperror.Forbidden("You do not have access to this company")
	}
	return nil
}

// cleanList trims entries, drops empties and case-insensitive duplicates.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

func logWarn(msg string, err error, args ...any) {
	logger.Log.Warn(msg, append(args, "error", err)...)
}
