package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultDedupTTL is how long a processed event id is remembered.
const DefaultDedupTTL = 48 * time.Hour

// DedupStore remembers handled event ids so redelivered messages are skipped.
type DedupStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewDedupStore(client redis.Cmdable, ttl time.Duration) *DedupStore {
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	return &DedupStore{client: client, ttl: ttl}
}

// Seen reports whether the event was already handled.
func (s *DedupStore) Seen(ctx context.Context, scope, eventID string) (bool, error) {
	n, err := s.client.Exists(ctx, DedupKey(scope, eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("check %s event %s: %w", scope, eventID, err)
	}
	return n > 0, nil
}

// Mark records the event as handled. Call it only once the outcome is durable;
// a crash before Mark means the event is handled again.
func (s *DedupStore) Mark(ctx context.Context, scope, eventID string) error {
	err := s.client.Set(ctx, DedupKey(scope, eventID), time.Now().UTC().Format(time.RFC3339), s.ttl).Err()
	if err != nil {
		return fmt.Errorf("mark %s event %s: %w", scope, eventID, err)
	}
	return nil
}

// DedupKey returns dh:dedup:{scope}:{eventID}.
func DedupKey(scope, eventID string) string {
	return buildKey("dedup", scope, eventID)
}
