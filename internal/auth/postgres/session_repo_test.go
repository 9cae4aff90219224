// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Aikagi Contributors

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aikagi/aikagi/internal/auth"
	"github.com/aikagi/aikagi/internal/auth/postgres"
)

var sessionColumns = []string{"id", "user_id", "expires_at", "created_at"}

func newTestSession(t *testing.T, userID ulid.ULID) *auth.Session {
	t.Helper()
	token, err := auth.GenerateSessionToken()
	require.NoError(t, err)
	session, err := auth.NewSession(token, userID, time.Now().Add(auth.SessionTTL))
	require.NoError(t, err)
	return session
}

func TestSessionRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts session row", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		session := newTestSession(t, ulid.Make())
		mock.ExpectExec(`INSERT INTO sessions`).
			WithArgs(session.ID, session.UserID.String(), session.ExpiresAt, session.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		repo := postgres.NewSessionRepository(mock)
		require.NoError(t, repo.Create(ctx, session))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSessionRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	userID := ulid.Make()

	t.Run("returns session", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		rows := pgxmock.NewRows(sessionColumns).
			AddRow("tok-abc", userID.String(), now.Add(auth.SessionTTL), now)
		mock.ExpectQuery(`FROM sessions`).
			WithArgs("tok-abc").
			WillReturnRows(rows)

		repo := postgres.NewSessionRepository(mock)
		session, err := repo.GetByID(ctx, "tok-abc")
		require.NoError(t, err)
		assert.Equal(t, "tok-abc", session.ID)
		assert.Equal(t, userID, session.UserID)
		assert.Equal(t, now.Add(auth.SessionTTL), session.ExpiresAt)
	})

	t.Run("returns ErrNotFound for unknown token", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`FROM sessions`).
			WithArgs("tok-missing").
			WillReturnRows(pgxmock.NewRows(sessionColumns))

		repo := postgres.NewSessionRepository(mock)
		_, err = repo.GetByID(ctx, "tok-missing")
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("rejects corrupt user ID", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		rows := pgxmock.NewRows(sessionColumns).
			AddRow("tok-abc", "not-a-ulid", now.Add(auth.SessionTTL), now)
		mock.ExpectQuery(`FROM sessions`).
			WithArgs("tok-abc").
			WillReturnRows(rows)

		repo := postgres.NewSessionRepository(mock)
		_, err = repo.GetByID(ctx, "tok-abc")
		assert.Error(t, err)
	})
}

func TestSessionRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes existing session", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`DELETE FROM sessions WHERE id = \$1`).
			WithArgs("tok-abc").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		repo := postgres.NewSessionRepository(mock)
		require.NoError(t, repo.Delete(ctx, "tok-abc"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound when nothing deletes", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`DELETE FROM sessions WHERE id = \$1`).
			WithArgs("tok-missing").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		repo := postgres.NewSessionRepository(mock)
		assert.ErrorIs(t, repo.Delete(ctx, "tok-missing"), auth.ErrNotFound)
	})
}

func TestSessionRepository_DeleteByUser(t *testing.T) {
	ctx := context.Background()
	userID := ulid.Make()

	t.Run("removes all sessions for the user", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`DELETE FROM sessions WHERE user_id = \$1`).
			WithArgs(userID.String()).
			WillReturnResult(pgxmock.NewResult("DELETE", 2))

		repo := postgres.NewSessionRepository(mock)
		require.NoError(t, repo.DeleteByUser(ctx, userID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("succeeds when the user has no sessions", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`DELETE FROM sessions WHERE user_id = \$1`).
			WithArgs(userID.String()).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		repo := postgres.NewSessionRepository(mock)
		assert.NoError(t, repo.DeleteByUser(ctx, userID))
	})
}

func TestSessionRepository_DeleteExpired(t *testing.T) {
	ctx := context.Background()

	t.Run("reports removed row count", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`DELETE FROM sessions WHERE expires_at < \$1`).
			WithArgs(pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("DELETE", 3))

		repo := postgres.NewSessionRepository(mock)
		count, err := repo.DeleteExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
