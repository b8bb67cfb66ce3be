package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"tenantadmin-backend/internal/domain"
	"tenantadmin-backend/internal/repository"
)

const sessionColumns = `id, user_id, start_time, end_time, total_active_seconds, total_inactive_seconds`

type sessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func scanSession(row interface{ Scan(...interface{}) error }) (*domain.Session, error) {
	s := &domain.Session{}
	var endTime sql.NullTime
	err := row.Scan(&s.ID, &s.UserID, &s.StartTime, &endTime, &s.TotalActiveSeconds, &s.TotalInactiveSeconds)
	if err != nil {
		return nil, err
	}
	if endTime.Valid {
		s.EndTime = &endTime.Time
	}
	return s, nil
}

// Start relies on the unique constraint on user_id as the synchronization
// point: concurrent logins race on insertion and the loser converges on
// the winner's row through the conflict update. Totals survive; only the
// open interval resets.
func (r *sessionRepository) Start(ctx context.Context, userID string, at time.Time) (*domain.Session, error) {
	query := `INSERT INTO sessions (id, user_id, start_time, end_time, total_active_seconds, total_inactive_seconds)
	          VALUES ($1, $2, $3, NULL, 0, 0)
	          ON CONFLICT (user_id) DO UPDATE SET start_time = EXCLUDED.start_time, end_time = NULL
	          RETURNING ` + sessionColumns
	return scanSession(r.db.QueryRowContext(ctx, query, uuid.NewString(), userID, at))
}

func (r *sessionRepository) GetByUserID(ctx context.Context, userID string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE user_id = $1`
	return scanSession(r.db.QueryRowContext(ctx, query, userID))
}

// Close adds the interval deltas to the running totals; it never
// overwrites them.
func (r *sessionRepository) Close(ctx context.Context, sessionID string, endTime time.Time, activeDelta, inactiveDelta int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET end_time = $1,
		   total_active_seconds = total_active_seconds + $2,
		   total_inactive_seconds = total_inactive_seconds + $3
		 WHERE id = $4`,
		endTime, activeDelta, inactiveDelta, sessionID)
	return err
}

func (r *sessionRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions WHERE end_time IS NULL`).Scan(&count)
	return count, err
}

func (r *sessionRepository) SumActiveSeconds(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total_active_seconds), 0) FROM sessions`).Scan(&total)
	return total, err
}

func (r *sessionRepository) ListStale(ctx context.Context, cutoff time.Time) ([]domain.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE end_time IS NULL AND start_time < $1`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}
