// Package cache keeps a short-lived Redis copy of the support inbox. The UI
// polls the listing, so most fetches within the TTL can skip Postgres; any
// ticket write invalidates the whole inbox.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

const inboxKey = "helpdesk:inbox"

// ErrMiss is returned when no cached inbox is available.
var ErrMiss = errors.New("inbox cache miss")

// InboxCache stores the unfiltered support listing.
type InboxCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewInboxCache creates a cache with the given entry lifetime.
func NewInboxCache(client *redis.Client, ttl time.Duration) *InboxCache {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &InboxCache{client: client, ttl: ttl}
}

// Get returns the cached inbox or ErrMiss.
func (c *InboxCache) Get(ctx context.Context) ([]domain.Ticket, error) {
	if c == nil || c.client == nil {
		return nil, ErrMiss
	}
	raw, err := c.client.Get(ctx, inboxKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, err
	}
	var tickets []domain.Ticket
	if err := json.Unmarshal(raw, &tickets); err != nil {
		// Corrupt entry, treat as absent.
		return nil, ErrMiss
	}
	return tickets, nil
}

// Set stores the inbox listing.
func (c *InboxCache) Set(ctx context.Context, tickets []domain.Ticket) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(tickets)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, inboxKey, raw, c.ttl).Err()
}

// Invalidate drops the cached inbox after any ticket write.
func (c *InboxCache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, inboxKey).Err()
}
