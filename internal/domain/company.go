package domain

import "time"

type CompanyStatus string

const (
	CompanyStatusActive    CompanyStatus = "active"
	CompanyStatusInactive  CompanyStatus = "inactive"
	CompanyStatusPending   CompanyStatus = "pending"
	CompanyStatusSuspended CompanyStatus = "suspended"
)

func (s CompanyStatus) Valid() bool {
	switch s {
	case CompanyStatusActive, CompanyStatusInactive, CompanyStatusPending, CompanyStatusSuspended:
		return true
	}
	return false
}

type Company struct {
	ID                        string        `json:"id"`
	CompanyName               string        `json:"company_name"`
	Address                   string        `json:"address,omitempty"`
	Phone                     string        `json:"phone,omitempty"`
	Email                     string        `json:"email"`
	Status                    CompanyStatus `json:"status"`
	DateJoined                time.Time     `json:"date_joined"`
	LastActivity              *time.Time    `json:"last_activity,omitempty"`
	PreferredSubscriptionPlan string        `json:"preferred_subscription_plan,omitempty"`
	NumOfEmployees            int32         `json:"num_of_employees"`
}

// CompanyAdmin links an admin user to a company they administer. Every
// company must have at least one link at all times.
type CompanyAdmin struct {
	CompanyID string `json:"company_id"`
	UserID    string `json:"user_id"`
}
