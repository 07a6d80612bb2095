package repository

import (
	"context"
	"time"

	"github.com/eventmind/eventmind/internal/entity"

	"github.com/google/uuid"
)

type EventRepository interface {
	// Owner-facing CRUD
	Create(ctx context.Context, event *entity.Event) error
	GetByOwnerAndID(ctx context.Context, userID, eventID uuid.UUID) (*entity.Event, error)
	GetByOwner(ctx context.Context, userID uuid.UUID, status entity.EventStatus) ([]*entity.Event, error)
	// Update writes the full row only when status and
	// notification_sent still hold the values the caller read, so an
	// owner edit cannot clobber a concurrent scanner write. Returns
	// ErrEventConflict when the predicate no longer matches.
	Update(ctx context.Context, event *entity.Event, prevStatus entity.EventStatus, prevSent bool) error
	Delete(ctx context.Context, userID, eventID uuid.UUID) error

	// Reminder scan operations
	BulkCompleteExpired(ctx context.Context, now time.Time) (int64, []uuid.UUID, error)
	FindReminderCandidates(ctx context.Context, now time.Time) ([]*entity.Event, error)
	MarkReminderSent(ctx context.Context, eventID uuid.UUID, sentAt time.Time) error
}

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByUserName(ctx context.Context, userName string) (*entity.User, error)
}

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *entity.PushSubscription) error
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.PushSubscription, error)
	DeleteByEndpoint(ctx context.Context, userID uuid.UUID, endpoint string) error
	// DeleteByEndpoints removes exactly the given endpoints and
	// nothing else, so subscriptions added concurrently survive.
	DeleteByEndpoints(ctx context.Context, userID uuid.UUID, endpoints []string) error
}
