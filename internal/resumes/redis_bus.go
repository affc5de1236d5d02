package resumes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"cv-backend/internal/shared/telemetry"
)

// DefaultChannel is the pub/sub channel used when none is configured.
const DefaultChannel = "resumes.changes"

// RedisBus relays record changes between instances over Redis pub/sub.
type RedisBus struct {
	rdb     *goredis.Client
	channel string
}

// NewRedisBus wraps an existing client. An empty channel uses DefaultChannel.
func NewRedisBus(rdb *goredis.Client, channel string) *RedisBus {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBus{rdb: rdb, channel: channel}
}

// Publish sends the change to every instance, including this one.
func (b *RedisBus) Publish(ctx context.Context, change Change) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis bus not initialized")
	}
	raw, err := json.Marshal(change)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

// Start subscribes to the channel and forwards each change to onChange until
// ctx is done. It returns once the subscription is confirmed.
func (b *RedisBus) Start(ctx context.Context, onChange func(Change)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis bus not initialized")
	}
	if onChange == nil {
		return fmt.Errorf("onChange callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var change Change
				if err := json.Unmarshal([]byte(m.Payload), &change); err != nil {
					telemetry.Warn("resumes.bus.bad_payload", map[string]any{"error": err.Error()})
					continue
				}
				onChange(change)
			}
		}
	}()
	return nil
}

var _ Notifier = (*RedisBus)(nil)
