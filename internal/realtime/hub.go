package realtime

import (
	"context"
	"sync"
	"sync/atomic"

	"placement-backend/internal/domain"

	"github.com/google/uuid"
)

const DefaultBuffer = 64

// SubscribeOptions selects which events a subscription receives.
type SubscribeOptions struct {
	// Tables to listen on; empty means every table.
	Tables []string
	// JobFilter, when set, drops job events whose record does not match it.
	JobFilter *domain.JobFilter
	// ProfileID and Role decide which restricted events the subscriber may see.
	ProfileID string
	Role      string
}

// Subscription is one subscriber's view of the hub.
type Subscription struct {
	ID string
	C  <-chan domain.ChangeEvent

	ch        chan domain.ChangeEvent
	tables    map[string]bool
	jobFilter *domain.JobFilter
	profileID string
	role      string
	dropped   atomic.Int64
}

// Dropped reports how many events were discarded because the buffer was full.
func (s *Subscription) Dropped() int64 {
	return s.dropped.Load()
}

func (s *Subscription) wants(ev domain.ChangeEvent) bool {
	if !ev.VisibleTo(s.profileID, s.role) {
		return false
	}
	if len(s.tables) > 0 && !s.tables[ev.Table] {
		return false
	}
	if s.jobFilter != nil && ev.Table == domain.TableJobs {
		if job, ok := ev.Record.(*domain.Job); ok && !s.jobFilter.Matches(job) {
			return false
		}
	}
	return true
}

// Hub fans change events out to in-process subscribers. Publish never blocks.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]*Subscription
	buffer int
}

func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = DefaultBuffer
	}
	return &Hub{subs: make(map[string]*Subscription), buffer: buffer}
}

// Subscribe registers a subscriber. Cancelling ctx unsubscribes it.
func (h *Hub) Subscribe(ctx context.Context, opts SubscribeOptions) *Subscription {
	ch := make(chan domain.ChangeEvent, h.buffer)
	sub := &Subscription{
		ID:        uuid.NewString(),
		C:         ch,
		ch:        ch,
		jobFilter: opts.JobFilter,
		profileID: opts.ProfileID,
		role:      opts.Role,
	}
	if len(opts.Tables) > 0 {
		sub.tables = make(map[string]bool, len(opts.Tables))
		for _, t := range opts.Tables {
			sub.tables[t] = true
		}
	}

	h.mu.Lock()
	h.subs[sub.ID] = sub
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.Unsubscribe(sub.ID)
	}()
	return sub
}

// Unsubscribe removes the subscriber and closes its channel. Unknown ids are ignored.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sub, ok := h.subs[id]
	if !ok {
		return
	}
	delete(h.subs, id)
	close(sub.ch)
}

// Publish delivers ev to every matching subscriber. A full buffer drops the event for that subscriber only.
func (h *Hub) Publish(_ context.Context, ev domain.ChangeEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if !sub.wants(ev) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			sub.dropped.Add(1)
		}
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
