package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/eventmind/eventmind/internal/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEventRepoMock(t *testing.T) (EventRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewEventRepository(db), mock
}

func eventRows(events ...*entity.Event) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "title", "description", "location", "start_time", "end_time",
		"status", "remind_before_minutes", "reminder_enabled", "notification_sent", "sent_at",
		"created_at", "updated_at",
	})
	for _, e := range events {
		rows.AddRow(
			e.ID.String(), e.UserID.String(), e.Title, e.Description, e.Location,
			e.StartTime, e.EndTime, string(e.Status), e.Reminder.RemindBeforeMinutes,
			e.Reminder.Enabled, e.Reminder.NotificationSent, e.Reminder.SentAt,
			e.CreatedAt, e.UpdatedAt,
		)
	}
	return rows
}

func TestMarkReminderSent(t *testing.T) {
	repo, mock := newEventRepoMock(t)

	eventID := uuid.New()
	sentAt := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE events`)).
		WithArgs(sentAt, eventID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkReminderSent(context.Background(), eventID, sentAt)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkReminderSentMissingEvent(t *testing.T) {
	repo, mock := newEventRepoMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE events`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkReminderSent(context.Background(), uuid.New(), time.Now())
	assert.ErrorIs(t, err, entity.ErrEventNotFound)
}

func TestFindReminderCandidates(t *testing.T) {
	repo, mock := newEventRepoMock(t)

	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	candidate := &entity.Event{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Title:     "Standup",
		Location:  "TBD",
		StartTime: now.Add(10 * time.Minute),
		Status:    entity.EventStatusUpcoming,
		Reminder:  entity.Reminder{RemindBeforeMinutes: 15, Enabled: true},
		CreatedAt: now.Add(-time.Hour),
		UpdatedAt: now.Add(-time.Hour),
	}

	mock.ExpectQuery(regexp.QuoteMeta(`notification_sent = FALSE`)).
		WithArgs(string(entity.EventStatusUpcoming), now).
		WillReturnRows(eventRows(candidate))

	candidates, err := repo.FindReminderCandidates(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, candidate.ID, candidates[0].ID)
	assert.Equal(t, 15, candidates[0].Reminder.RemindBeforeMinutes)
	assert.True(t, candidates[0].Reminder.Enabled)
	assert.False(t, candidates[0].Reminder.NotificationSent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkCompleteExpired(t *testing.T) {
	repo, mock := newEventRepoMock(t)

	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	ownerA := uuid.New()
	ownerB := uuid.New()

	// Two expired events for owner A, one for owner B.
	mock.ExpectQuery(regexp.QuoteMeta(`RETURNING user_id`)).
		WithArgs(string(entity.EventStatusCompleted), now,
			string(entity.EventStatusUpcoming), string(entity.EventStatusInProgress)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).
			AddRow(ownerA.String()).
			AddRow(ownerB.String()).
			AddRow(ownerA.String()))

	count, owners, err := repo.BulkCompleteExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.ElementsMatch(t, []uuid.UUID{ownerA, ownerB}, owners)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByOwnerAndIDNotFound(t *testing.T) {
	repo, mock := newEventRepoMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM events WHERE id = $1 AND user_id = $2`)).
		WillReturnRows(eventRows())

	_, err := repo.GetByOwnerAndID(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, entity.ErrEventNotFound)
}

func TestGetByOwnerStatusFilter(t *testing.T) {
	repo, mock := newEventRepoMock(t)

	userID := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`AND status = $2`)).
		WithArgs(userID, string(entity.EventStatusUpcoming)).
		WillReturnRows(eventRows())

	events, err := repo.GetByOwner(context.Background(), userID, entity.EventStatusUpcoming)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOptimisticPredicate(t *testing.T) {
	repo, mock := newEventRepoMock(t)

	event := &entity.Event{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Title:     "Standup",
		Location:  "TBD",
		StartTime: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC),
		Status:    entity.EventStatusUpcoming,
		Reminder:  entity.Reminder{RemindBeforeMinutes: 15, Enabled: true},
	}

	mock.ExpectExec(regexp.QuoteMeta(`AND status = $13 AND notification_sent = $14`)).
		WithArgs(
			event.Title, event.Description, event.Location, event.StartTime, event.EndTime,
			string(event.Status), event.Reminder.RemindBeforeMinutes, event.Reminder.Enabled,
			event.Reminder.NotificationSent, sqlmock.AnyArg(), event.ID, event.UserID,
			string(entity.EventStatusUpcoming), false,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), event, entity.EventStatusUpcoming, false)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateConflictWhenRowChanged(t *testing.T) {
	repo, mock := newEventRepoMock(t)

	event := &entity.Event{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Status: entity.EventStatusUpcoming,
	}

	// The scanner marked the reminder sent after the caller's read, so
	// the predicate matches nothing.
	mock.ExpectExec(regexp.QuoteMeta(`AND status = $13 AND notification_sent = $14`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), event, entity.EventStatusUpcoming, false)
	assert.ErrorIs(t, err, entity.ErrEventConflict)
}

func TestDeleteScopedToOwner(t *testing.T) {
	repo, mock := newEventRepoMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM events WHERE id = $1 AND user_id = $2`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, entity.ErrEventNotFound)
}
