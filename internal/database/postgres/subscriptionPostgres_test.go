package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/eventmind/eventmind/internal/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSubRepoMock(t *testing.T) (SubscriptionRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSubscriptionRepository(db), mock
}

func TestDeleteByEndpointsTargeted(t *testing.T) {
	repo, mock := newSubRepoMock(t)

	userID := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta(`endpoint = ANY($2)`)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := repo.DeleteByEndpoints(context.Background(), userID, []string{
		"https://push.example.com/gone-1",
		"https://push.example.com/gone-2",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByEndpointsEmptyIsNoop(t *testing.T) {
	repo, mock := newSubRepoMock(t)

	err := repo.DeleteByEndpoints(context.Background(), uuid.New(), nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByEndpointNotFound(t *testing.T) {
	repo, mock := newSubRepoMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM push_subscriptions`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteByEndpoint(context.Background(), uuid.New(), "https://push.example.com/missing")
	assert.ErrorIs(t, err, entity.ErrSubscriptionNotFound)
}
