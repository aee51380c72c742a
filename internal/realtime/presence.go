package realtime

import (
	"context"
	"strconv"
	"sync"
	"time"

	"placement-backend/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	presenceKey      = "presence:active"
	presenceRolesKey = "presence:roles"
)

func newActiveUsers(window time.Duration) *domain.ActiveUsers {
	return &domain.ActiveUsers{
		ByRole: map[string]int64{domain.RoleAdmin: 0, domain.RoleStudent: 0, domain.RoleRecruiter: 0},
		Window: window.String(),
	}
}

// RedisPresence keeps last-seen times in a sorted set of profile ids scored by unix milliseconds,
// and each profile's current role in a hash. A role change overwrites the hash field.
type RedisPresence struct {
	client *redis.Client
	window time.Duration
	now    func() time.Time
}

func NewRedisPresence(client *redis.Client, window time.Duration) *RedisPresence {
	return &RedisPresence{client: client, window: window, now: time.Now}
}

func (p *RedisPresence) Heartbeat(ctx context.Context, profileID, role string) error {
	_, err := p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, presenceKey, redis.Z{Score: float64(p.now().UnixMilli()), Member: profileID})
		pipe.HSet(ctx, presenceRolesKey, profileID, role)
		return nil
	})
	return err
}

func (p *RedisPresence) ActiveUsers(ctx context.Context) (*domain.ActiveUsers, error) {
	since := p.now().Add(-p.window).UnixMilli()
	ids, err := p.client.ZRangeByScore(ctx, presenceKey, &redis.ZRangeBy{
		Min: strconv.FormatInt(since, 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return newActiveUsers(p.window), nil
	}
	roles, err := p.client.HMGet(ctx, presenceRolesKey, ids...).Result()
	if err != nil {
		return nil, err
	}
	return tallyRoles(p.window, roles), nil
}

// tallyRoles counts one user per HMGET value; missing fields come back nil and are skipped.
func tallyRoles(window time.Duration, roles []any) *domain.ActiveUsers {
	out := newActiveUsers(window)
	for _, r := range roles {
		role, ok := r.(string)
		if !ok || role == "" {
			continue
		}
		out.ByRole[role]++
		out.Total++
	}
	return out
}

// Prune removes profiles not seen within the window, together with their role.
func (p *RedisPresence) Prune(ctx context.Context) (int64, error) {
	cutoff := "(" + strconv.FormatInt(p.now().Add(-p.window).UnixMilli(), 10)
	stale, err := p.client.ZRangeByScore(ctx, presenceKey, &redis.ZRangeBy{Min: "-inf", Max: cutoff}).Result()
	if err != nil || len(stale) == 0 {
		return 0, err
	}
	var removed *redis.IntCmd
	_, err = p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.ZRemRangeByScore(ctx, presenceKey, "-inf", cutoff)
		pipe.HDel(ctx, presenceRolesKey, stale...)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed.Val(), nil
}

type seen struct {
	role string
	at   time.Time
}

// MemoryPresence is the single-instance fallback when Redis is not configured.
type MemoryPresence struct {
	mu     sync.Mutex
	seen   map[string]seen
	window time.Duration
	now    func() time.Time
}

func NewMemoryPresence(window time.Duration) *MemoryPresence {
	return &MemoryPresence{seen: make(map[string]seen), window: window, now: time.Now}
}

func (p *MemoryPresence) Heartbeat(_ context.Context, profileID, role string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen[profileID] = seen{role: role, at: p.now()}
	return nil
}

func (p *MemoryPresence) ActiveUsers(_ context.Context) (*domain.ActiveUsers, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	since := p.now().Add(-p.window)
	out := newActiveUsers(p.window)
	for _, s := range p.seen {
		if s.at.Before(since) {
			continue
		}
		out.ByRole[s.role]++
		out.Total++
	}
	return out, nil
}

func (p *MemoryPresence) Prune(_ context.Context) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	since := p.now().Add(-p.window)
	var n int64
	for id, s := range p.seen {
		if s.at.Before(since) {
			delete(p.seen, id)
			n++
		}
	}
	return n, nil
}
