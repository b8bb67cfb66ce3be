package domain

import "time"

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

func (s UserStatus) Valid() bool {
	return s == UserStatusActive || s == UserStatusInactive
}

type User struct {
	ID           string     `json:"id"`
	UserName     string     `json:"user_name"`
	Email        string     `json:"email"`
	Role         Role       `json:"role"`
	CompanyID    *string    `json:"company_id,omitempty"` // set iff role=user
	Status       UserStatus `json:"status"`
	PasswordHash string     `json:"-"`
	DateCreated  time.Time  `json:"date_created"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	LastActivity *time.Time `json:"last_activity,omitempty"`
}

// PasswordRecord is one entry of a user's bounded password history,
// most-recent-first when listed.
type PasswordRecord struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Actor converts a user row to the identity the policy layer consumes.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role, CompanyID: u.CompanyID}
}
