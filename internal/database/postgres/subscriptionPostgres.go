package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/eventmind/eventmind/internal/entity"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type subscriptionRepository struct {
	db *sql.DB
}

func NewSubscriptionRepository(db *sql.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Create registers a delivery target. Re-registering an endpoint the
// user already has is a no-op, which keeps endpoint membership unique
// without a read-check-write race.
func (r *subscriptionRepository) Create(ctx context.Context, sub *entity.PushSubscription) error {
	query := `
		INSERT INTO push_subscriptions (id, user_id, endpoint, p256dh, auth, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, endpoint) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		sub.ID,
		sub.UserID,
		sub.Endpoint,
		sub.P256dh,
		sub.Auth,
		sub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create push subscription: %w", err)
	}

	return nil
}

func (r *subscriptionRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.PushSubscription, error) {
	query := `
		SELECT id, user_id, endpoint, p256dh, auth, created_at
		FROM push_subscriptions
		WHERE user_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*entity.PushSubscription
	for rows.Next() {
		var sub entity.PushSubscription
		err := rows.Scan(
			&sub.ID,
			&sub.UserID,
			&sub.Endpoint,
			&sub.P256dh,
			&sub.Auth,
			&sub.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		subs = append(subs, &sub)
	}

	return subs, rows.Err()
}

func (r *subscriptionRepository) DeleteByEndpoint(ctx context.Context, userID uuid.UUID, endpoint string) error {
	query := `DELETE FROM push_subscriptions WHERE user_id = $1 AND endpoint = $2`

	result, err := r.db.ExecContext(ctx, query, userID, endpoint)
	if err != nil {
		return fmt.Errorf("failed to delete push subscription: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrSubscriptionNotFound
	}

	return nil
}

// DeleteByEndpoints removes exactly the listed endpoints. Targeted
// deletes leave subscriptions registered between the scanner's read
// and this write untouched.
func (r *subscriptionRepository) DeleteByEndpoints(ctx context.Context, userID uuid.UUID, endpoints []string) error {
	if len(endpoints) == 0 {
		return nil
	}

	query := `DELETE FROM push_subscriptions WHERE user_id = $1 AND endpoint = ANY($2)`

	if _, err := r.db.ExecContext(ctx, query, userID, pq.Array(endpoints)); err != nil {
		return fmt.Errorf("failed to delete push subscriptions: %w", err)
	}

	return nil
}
