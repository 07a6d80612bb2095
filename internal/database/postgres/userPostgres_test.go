package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/eventmind/eventmind/internal/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserRepoMock(t *testing.T) (UserRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserRepository(db), mock
}

func TestUserCreateUniqueViolation(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&pq.Error{Code: uniqueViolation})

	err := repo.Create(context.Background(), &entity.User{
		ID:        uuid.New(),
		UserName:  "alice",
		Email:     "alice@example.com",
		CreatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, entity.ErrUserAlreadyExists)
}

func TestUserGetByEmail(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	userID := uuid.New()
	createdAt := time.Date(2026, time.January, 5, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE email = $1`)).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "first_name", "last_name", "user_name", "email", "password_hash", "created_at",
		}).AddRow(userID.String(), "Alice", "Smith", "alice", "alice@example.com", "hash", createdAt))

	user, err := repo.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, "alice", user.UserName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGetByIDNotFound(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "first_name", "last_name", "user_name", "email", "password_hash", "created_at",
		}))

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, entity.ErrUserNotFound)
}
