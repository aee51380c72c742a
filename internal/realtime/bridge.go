package realtime

import (
	"context"
	"encoding/json"
	"time"

	"placement-backend/internal/domain"
	"placement-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const Channel = "placement:changes"

// RedisBridge relays events between API instances through Redis pub/sub.
// Local publishes go straight to the local hub; relayed copies of them are skipped by origin.
type RedisBridge struct {
	hub    *Hub
	client *redis.Client
	origin string
}

func NewRedisBridge(hub *Hub, client *redis.Client) *RedisBridge {
	return &RedisBridge{hub: hub, client: client, origin: uuid.NewString()}
}

func (b *RedisBridge) Origin() string {
	return b.origin
}

func (b *RedisBridge) Publish(ctx context.Context, ev domain.ChangeEvent) {
	ev.Origin = b.origin
	b.hub.Publish(ctx, ev)

	data, err := json.Marshal(ev)
	if err != nil {
		logger.Log.Warn("encode change event failed", "table", ev.Table, "error", err)
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := b.client.Publish(pubCtx, Channel, data).Err(); err != nil {
		logger.Log.Warn("redis publish failed", "table", ev.Table, "error", err)
	}
}

// Run relays remote events into the local hub until ctx is cancelled.
func (b *RedisBridge) Run(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, Channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	logger.Log.Info("realtime bridge subscribed", "channel", Channel, "origin", b.origin)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			ev, err := DecodeEvent([]byte(msg.Payload))
			if err != nil {
				logger.Log.Warn("decode change event failed", "error", err)
				continue
			}
			if ev.Origin == b.origin {
				continue
			}
			b.hub.Publish(ctx, ev)
		}
	}
}

// DecodeEvent parses a relayed event. Job records are decoded as *domain.Job so job filters still apply.
func DecodeEvent(data []byte) (domain.ChangeEvent, error) {
	var wire struct {
		domain.ChangeEvent
		Record json.RawMessage `json:"record,omitempty"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return domain.ChangeEvent{}, err
	}
	ev := wire.ChangeEvent
	if len(wire.Record) == 0 || string(wire.Record) == "null" {
		ev.Record = nil
		return ev, nil
	}

	if ev.Table == domain.TableJobs {
		var job domain.Job
		if err := json.Unmarshal(wire.Record, &job); err == nil && job.ID != 0 {
			ev.Record = &job
			return ev, nil
		}
	}
	var record any
	if err := json.Unmarshal(wire.Record, &record); err != nil {
		return domain.ChangeEvent{}, err
	}
	ev.Record = record
	return ev, nil
}
