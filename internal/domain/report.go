package domain

import "time"

type ReportStatus string

const (
	ReportStatusActive   ReportStatus = "active"
	ReportStatusInactive ReportStatus = "inactive"
)

func (s ReportStatus) Valid() bool {
	return s == ReportStatusActive || s == ReportStatusInactive
}

type Report struct {
	ID             string       `json:"id"`
	ReportName     string       `json:"report_name"`
	ReportURL      string       `json:"report_url"`
	CompanyID      string       `json:"company_id"`
	Status         ReportStatus `json:"status"`
	AccessCount    int64        `json:"access_count"`
	DateCreated    time.Time    `json:"date_created"`
	LastModifiedAt time.Time    `json:"last_modified_at"`
}

// UserReport grants a user view access to a report independent of the
// report's owning company.
type UserReport struct {
	ReportID string `json:"report_id"`
	UserID   string `json:"user_id"`
}
