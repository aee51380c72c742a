package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"placement-backend/internal/domain"
	"placement-backend/internal/realtime"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServices struct {
	refreshed int
	purged    int
	reminded  time.Duration
	closed    int
}

func (f *fakeServices) RefreshStats(context.Context) (*domain.AttendanceStats, error) {
	f.refreshed++
	return &domain.AttendanceStats{}, nil
}

func (f *fakeServices) PurgeExpired(context.Context) (int64, error) {
	f.purged++
	return 3, nil
}

func (f *fakeServices) SendReminders(_ context.Context, within time.Duration) (int, error) {
	f.reminded = within
	return 0, errors.New("smtp down")
}

func (f *fakeServices) CloseExpiredJobs(context.Context) (int, error) {
	f.closed++
	return 1, nil
}

func TestAddRejectsInvalidSpec(t *testing.T) {
	s := New(time.Second)
	err := s.Add(Job{Name: "bad", Spec: "every tuesday", Run: func(context.Context) error { return nil }})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schedule bad")
}

func TestRunGivesEachJobADeadline(t *testing.T) {
	s := New(50 * time.Millisecond)
	called := false
	s.run(Job{Name: "probe", Run: func(ctx context.Context) error {
		called = true
		deadline, ok := ctx.Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 50*time.Millisecond)
		return errors.New("failure is logged, not returned")
	}})
	assert.True(t, called)
}

func TestPlacementJobs(t *testing.T) {
	fake := &fakeServices{}
	presence := realtime.NewMemoryPresence(5 * time.Minute)
	require.NoError(t, presence.Heartbeat(context.Background(), "p1", domain.RoleStudent))

	hub := realtime.NewHub(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := hub.Subscribe(ctx, realtime.SubscribeOptions{Tables: []string{domain.TableActiveUsers}})

	jobs := PlacementJobs(Services{
		Attendance:     fake,
		Presence:       presence,
		Notifications:  fake,
		Drives:         fake,
		Jobs:           fake,
		Events:         hub,
		AttendanceSpec: "*/30 * * * * *",
	})
	require.Len(t, jobs, 5)
	require.NoError(t, New(time.Second).Register(jobs), "every spec must parse")

	byName := make(map[string]Job, len(jobs))
	for _, j := range jobs {
		byName[j.Name] = j
	}

	require.NoError(t, byName["attendance_stats_refresh"].Run(ctx))
	assert.Equal(t, 1, fake.refreshed)

	require.NoError(t, byName["presence_prune"].Run(ctx))
	select {
	case ev := <-sub.C:
		assert.Equal(t, domain.EventSnapshot, ev.Type)
		active, ok := ev.Record.(*domain.ActiveUsers)
		require.True(t, ok)
		assert.Equal(t, int64(1), active.Total)
		assert.Equal(t, int64(1), active.ByRole[domain.RoleStudent])
	default:
		t.Fatal("expected an active users snapshot")
	}

	require.NoError(t, byName["notification_purge"].Run(ctx))
	assert.Equal(t, 1, fake.purged)

	assert.Error(t, byName["drive_reminders"].Run(ctx))
	assert.Equal(t, DriveReminderWindow, fake.reminded)

	require.NoError(t, byName["close_expired_jobs"].Run(ctx))
	assert.Equal(t, 1, fake.closed)
}
