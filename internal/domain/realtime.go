package domain

import (
	"context"
	"slices"
	"time"
)

const (
	EventInsert   = "INSERT"
	EventUpdate   = "UPDATE"
	EventDelete   = "DELETE"
	EventSnapshot = "SNAPSHOT"
)

// Tables (channels) a realtime subscriber can listen on.
const (
	TableStudents        = "students"
	TableCompanies       = "companies"
	TableJobs            = "jobs"
	TableApplications    = "applications"
	TableDrives          = "campus_drives"
	TableAttendance      = "attendance"
	TableAttendanceStats = "attendance_stats"
	TableNotifications   = "notifications"
	TableSettings        = "system_settings"
	TableActiveUsers     = "active_users"
)

// ChangeEvent is one row change (or statistics snapshot) pushed to subscribers.
type ChangeEvent struct {
	ID              string    `json:"id"`
	Table           string    `json:"table"`
	Type            string    `json:"type"`
	Record          any       `json:"record,omitempty"`
	OldRecordID     string    `json:"old_record_id,omitempty"`
	CommitTimestamp time.Time `json:"commit_timestamp"`
	// Audience and Roles restrict delivery: a subscriber receives the event when
	// its profile is in Audience or its role is in Roles. Both empty means everyone.
	Audience []string `json:"audience,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	Origin   string   `json:"origin,omitempty"`
}

// StaffRoles see every row the placement office manages.
var StaffRoles = []string{RoleAdmin, RoleRecruiter}

func (e ChangeEvent) VisibleTo(profileID, role string) bool {
	if len(e.Audience) == 0 && len(e.Roles) == 0 {
		return true
	}
	if profileID != "" && slices.Contains(e.Audience, profileID) {
		return true
	}
	return role != "" && slices.Contains(e.Roles, role)
}

// EventPublisher is implemented by the realtime hub and its Redis bridge.
type EventPublisher interface {
	Publish(ctx context.Context, ev ChangeEvent)
}

// ActiveUsers counts profiles seen within the presence window.
type ActiveUsers struct {
	Total  int64            `json:"total"`
	ByRole map[string]int64 `json:"by_role"`
	Window string           `json:"window"`
}

type PresenceTracker interface {
	Heartbeat(ctx context.Context, profileID, role string) error
	ActiveUsers(ctx context.Context) (*ActiveUsers, error)
	Prune(ctx context.Context) (int64, error)
}
