package domain

import "time"

// Session tracks one user's login activity. At most one row exists per
// user: a relogin reactivates the row in place, and totals accumulate
// across intervals instead of being overwritten.
type Session struct {
	ID                   string     `json:"id"`
	UserID               string     `json:"user_id"`
	StartTime            time.Time  `json:"start_time"`
	EndTime              *time.Time `json:"end_time,omitempty"`
	TotalActiveSeconds   int64      `json:"total_active_seconds"`
	TotalInactiveSeconds int64      `json:"total_inactive_seconds"`
}

// Active reports whether the session's current interval is still open.
func (s *Session) Active() bool {
	return s.EndTime == nil
}

// SessionStats is the superAdmin-only aggregate projection.
type SessionStats struct {
	ActiveUsers        int64 `json:"active_users"`
	TotalActiveSeconds int64 `json:"total_active_seconds"`
}
