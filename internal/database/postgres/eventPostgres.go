package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/eventmind/eventmind/internal/entity"

	"github.com/google/uuid"
)

const eventColumns = `id, user_id, title, description, location, start_time, end_time,
		status, remind_before_minutes, reminder_enabled, notification_sent, sent_at,
		created_at, updated_at`

type eventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *entity.Event) error {
	query := `
		INSERT INTO events (id, user_id, title, description, location, start_time, end_time,
			status, remind_before_minutes, reminder_enabled, notification_sent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.UserID,
		event.Title,
		event.Description,
		event.Location,
		event.StartTime,
		event.EndTime,
		event.Status,
		event.Reminder.RemindBeforeMinutes,
		event.Reminder.Enabled,
		event.Reminder.NotificationSent,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	return nil
}

func (r *eventRepository) GetByOwnerAndID(ctx context.Context, userID, eventID uuid.UUID) (*entity.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 AND user_id = $2`

	event, err := scanEvent(r.db.QueryRowContext(ctx, query, eventID, userID))
	if err == sql.ErrNoRows {
		return nil, entity.ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}

	return event, nil
}

func (r *eventRepository) GetByOwner(ctx context.Context, userID uuid.UUID, status entity.EventStatus) ([]*entity.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE user_id = $1`
	args := []interface{}{userID}

	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

// Update carries the status and notification_sent values the caller
// read into the WHERE clause. When the scanner completed the event or
// marked its reminder sent in between, zero rows match and the caller
// must re-read before retrying.
func (r *eventRepository) Update(ctx context.Context, event *entity.Event, prevStatus entity.EventStatus, prevSent bool) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, location = $3, start_time = $4, end_time = $5,
			status = $6, remind_before_minutes = $7, reminder_enabled = $8,
			notification_sent = $9, updated_at = $10
		WHERE id = $11 AND user_id = $12 AND status = $13 AND notification_sent = $14
	`

	result, err := r.db.ExecContext(ctx, query,
		event.Title,
		event.Description,
		event.Location,
		event.StartTime,
		event.EndTime,
		event.Status,
		event.Reminder.RemindBeforeMinutes,
		event.Reminder.Enabled,
		event.Reminder.NotificationSent,
		time.Now(),
		event.ID,
		event.UserID,
		prevStatus,
		prevSent,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrEventConflict
	}

	return nil
}

func (r *eventRepository) Delete(ctx context.Context, userID, eventID uuid.UUID) error {
	query := `DELETE FROM events WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, eventID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrEventNotFound
	}

	return nil
}

// BulkCompleteExpired transitions every UPCOMING or IN_PROGRESS event
// whose end time (or start time when no end time is set) has passed
// to COMPLETED. The status filter keeps the scanner from touching
// events the owner cancelled concurrently. Returns the number of
// completed events and the distinct owners affected.
func (r *eventRepository) BulkCompleteExpired(ctx context.Context, now time.Time) (int64, []uuid.UUID, error) {
	query := `
		UPDATE events
		SET status = $1, updated_at = $2
		WHERE status IN ($3, $4)
			AND ((end_time IS NOT NULL AND end_time < $2)
				OR (end_time IS NULL AND start_time < $2))
		RETURNING user_id
	`

	rows, err := r.db.QueryContext(ctx, query,
		entity.EventStatusCompleted,
		now,
		entity.EventStatusUpcoming,
		entity.EventStatusInProgress,
	)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to complete expired events: %w", err)
	}
	defer rows.Close()

	var count int64
	seen := make(map[uuid.UUID]struct{})
	var owners []uuid.UUID

	for rows.Next() {
		var userID uuid.UUID
		if err := rows.Scan(&userID); err != nil {
			return count, owners, err
		}
		count++
		if _, ok := seen[userID]; !ok {
			seen[userID] = struct{}{}
			owners = append(owners, userID)
		}
	}

	return count, owners, rows.Err()
}

func (r *eventRepository) FindReminderCandidates(ctx context.Context, now time.Time) ([]*entity.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events
		WHERE status = $1
			AND notification_sent = FALSE
			AND reminder_enabled = TRUE
			AND start_time > $2
		ORDER BY start_time
	`

	rows, err := r.db.QueryContext(ctx, query, entity.EventStatusUpcoming, now)
	if err != nil {
		return nil, fmt.Errorf("failed to find reminder candidates: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// MarkReminderSent commits the one-shot reminder flag. Idempotent:
// re-marking an already sent event is a no-op, not an error.
func (r *eventRepository) MarkReminderSent(ctx context.Context, eventID uuid.UUID, sentAt time.Time) error {
	query := `
		UPDATE events
		SET notification_sent = TRUE, sent_at = $1, updated_at = $1
		WHERE id = $2
	`

	result, err := r.db.ExecContext(ctx, query, sentAt, eventID)
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrEventNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEventInto(event *entity.Event, s rowScanner) error {
	return s.Scan(
		&event.ID,
		&event.UserID,
		&event.Title,
		&event.Description,
		&event.Location,
		&event.StartTime,
		&event.EndTime,
		&event.Status,
		&event.Reminder.RemindBeforeMinutes,
		&event.Reminder.Enabled,
		&event.Reminder.NotificationSent,
		&event.Reminder.SentAt,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
}

func scanEvent(row *sql.Row) (*entity.Event, error) {
	var event entity.Event
	if err := scanEventInto(&event, row); err != nil {
		return nil, err
	}
	return &event, nil
}

func scanEvents(rows *sql.Rows) ([]*entity.Event, error) {
	var events []*entity.Event
	for rows.Next() {
		var event entity.Event
		if err := scanEventInto(&event, rows); err != nil {
			return nil, err
		}
		events = append(events, &event)
	}
	return events, rows.Err()
}
