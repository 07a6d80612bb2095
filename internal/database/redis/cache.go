package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/eventmind/eventmind/internal/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// statuses enumerates every cacheable list filter, the empty string
// being the unfiltered list.
var statuses = []entity.EventStatus{
	"",
	entity.EventStatusUpcoming,
	entity.EventStatusInProgress,
	entity.EventStatusCompleted,
	entity.EventStatusCancelled,
}

// EventListCache keeps per-user event lists in redis so dashboard
// polling does not hit postgres on every request. Writers (the CRUD
// service and the reminder scanner) invalidate a user's keys after
// every mutation.
type EventListCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewEventListCache(client *redis.Client, ttl time.Duration) *EventListCache {
	return &EventListCache{
		client: client,
		ttl:    ttl,
	}
}

func key(userID uuid.UUID, status entity.EventStatus) string {
	return "events:" + userID.String() + ":" + string(status)
}

func (c *EventListCache) Set(ctx context.Context, userID uuid.UUID, status entity.EventStatus, events []*entity.Event) error {
	data, err := json.Marshal(events)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key(userID, status), data, c.ttl).Err()
}

func (c *EventListCache) Get(ctx context.Context, userID uuid.UUID, status entity.EventStatus) ([]*entity.Event, error) {
	data, err := c.client.Get(ctx, key(userID, status)).Result()
	if err != nil {
		return nil, err
	}

	var events []*entity.Event
	if err := json.Unmarshal([]byte(data), &events); err != nil {
		return nil, err
	}

	return events, nil
}

// Invalidate drops every cached list for the user.
func (c *EventListCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	keys := make([]string, 0, len(statuses))
	for _, status := range statuses {
		keys = append(keys, key(userID, status))
	}

	return c.client.Del(ctx, keys...).Err()
}
