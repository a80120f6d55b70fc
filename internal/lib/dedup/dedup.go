// Package dedup records which provider notifications have already been
// handled so redeliveries can be acknowledged without side effects.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "webhook:stripe:"

type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// Claim returns true if the caller is the first to see eventID.
func (r *Redis) Claim(ctx context.Context, eventID string) (bool, error) {
	const op = "dedup.Claim"

	ok, err := r.client.SetNX(ctx, keyPrefix+eventID, time.Now().UTC().Format(time.RFC3339), r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return ok, nil
}

// Release forgets eventID so a provider retry gets processed again.
func (r *Redis) Release(ctx context.Context, eventID string) error {
	const op = "dedup.Release"

	if err := r.client.Del(ctx, keyPrefix+eventID).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Noop is used when no Redis is configured. Every event is new; the
// database state machine still keeps processing idempotent.
type Noop struct{}

func (Noop) Claim(context.Context, string) (bool, error) { return true, nil }

func (Noop) Release(context.Context, string) error { return nil }
