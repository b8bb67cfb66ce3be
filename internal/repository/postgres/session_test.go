package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newSessionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "start_time", "end_time", "total_active_seconds", "total_inactive_seconds",
	})
}

func TestSessionRepository_Start(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewSessionRepository(db)
	ctx := context.Background()
	userID := uuid.NewString()
	at := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

	t.Run("FirstLogin", func(t *testing.T) {
		sessionID := uuid.NewString()
		mock.ExpectQuery(`INSERT INTO sessions (.+) ON CONFLICT \(user_id\) DO UPDATE`).
			WithArgs(sqlmock.AnyArg(), userID, at).
			WillReturnRows(newSessionRows().AddRow(sessionID, userID, at, nil, 0, 0))

		session, err := repo.Start(ctx, userID, at)
		assert.NoError(t, err)
		assert.Equal(t, sessionID, session.ID)
		assert.Nil(t, session.EndTime)
	})

	t.Run("ReactivationKeepsTotals", func(t *testing.T) {
		// The conflict update resets the interval but the accumulated
		// totals come back from the surviving row.
		existingID := uuid.NewString()
		mock.ExpectQuery(`INSERT INTO sessions (.+) ON CONFLICT \(user_id\) DO UPDATE`).
			WithArgs(sqlmock.AnyArg(), userID, at).
			WillReturnRows(newSessionRows().AddRow(existingID, userID, at, nil, 3600, 240))

		session, err := repo.Start(ctx, userID, at)
		assert.NoError(t, err)
		assert.Equal(t, existingID, session.ID)
		assert.Equal(t, int64(3600), session.TotalActiveSeconds)
		assert.Equal(t, int64(240), session.TotalInactiveSeconds)
	})
}

func TestSessionRepository_Close(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewSessionRepository(db)
	sessionID := uuid.NewString()
	end := time.Date(2026, time.March, 10, 17, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE sessions SET end_time = \$1`).
		WithArgs(end, int64(120), int64(30), sessionID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Close(context.Background(), sessionID, end, 120, 30))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_Aggregates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewSessionRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM sessions WHERE end_time IS NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(total_active_seconds\), 0\) FROM sessions`).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(7200))

	active, err := repo.CountActive(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), active)

	total, err := repo.SumActiveSeconds(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(7200), total)
}

func TestSessionRepository_ListStale(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewSessionRepository(db)
	cutoff := time.Date(2026, time.March, 9, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM sessions WHERE end_time IS NULL AND start_time < \$1`).
		WithArgs(cutoff).
		WillReturnRows(newSessionRows().
			AddRow(uuid.NewString(), uuid.NewString(), cutoff.Add(-time.Hour), nil, 0, 0).
			AddRow(uuid.NewString(), uuid.NewString(), cutoff.Add(-2*time.Hour), nil, 10, 5))

	stale, err := repo.ListStale(context.Background(), cutoff)
	assert.NoError(t, err)
	assert.Len(t, stale, 2)
}
