package repository

import (
	"context"
	"time"

	"tenantadmin-backend/internal/authz"
	"tenantadmin-backend/internal/domain"
)

// CompanyFilter narrows a company list query. Scope is mandatory and is
// compiled into the WHERE clause. SortBy is a validated column name.
type CompanyFilter struct {
	Scope    authz.Scope
	Search   string
	Status   *domain.CompanyStatus
	SortBy   string
	SortDesc bool
	Page     domain.PageRequest
}

type UserFilter struct {
	Scope     authz.Scope
	CompanyID string
	Role      *domain.Role
	Status    *domain.UserStatus
	Search    string
	SortBy    string
	SortDesc  bool
	Page      domain.PageRequest
}

type ReportFilter struct {
	Scope     authz.Scope
	CompanyID string
	Status    *domain.ReportStatus
	Search    string
	SortBy    string
	SortDesc  bool
	Page      domain.PageRequest
}

type BillingFilter struct {
	Scope     authz.Scope
	CompanyID string
	SortDesc  bool
	Page      domain.PageRequest
}

type CompanyRepository interface {
	// Create writes the company row and its initial admin link atomically.
	Create(ctx context.Context, company *domain.Company, adminUserID string) error
	GetByID(ctx context.Context, id string, scope authz.Scope) (*domain.Company, error)
	GetByEmail(ctx context.Context, email string) (*domain.Company, error)
	List(ctx context.Context, f CompanyFilter) ([]domain.Company, int64, error)
	Update(ctx context.Context, company *domain.Company) error
	// Delete cascades: reports and their grants, role=user members and the
	// company's admin links all go in one transaction.
	Delete(ctx context.Context, id string) error

	AdminIDs(ctx context.Context, companyID string) ([]string, error)
	AdminCompanies(ctx context.Context, userID string) ([]string, error)
	AddAdmin(ctx context.Context, companyID, userID string) error
	RemoveAdmin(ctx context.Context, companyID, userID string) error
	CountAdmins(ctx context.Context, companyID string) (int64, error)
}

type UserRepository interface {
	// Create writes the user row, its initial password-history record and
	// any admin-company links atomically.
	Create(ctx context.Context, user *domain.User, rec *domain.PasswordRecord, adminCompanyIDs []string, historyKeep int) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUserName(ctx context.Context, userName string) (*domain.User, error)
	List(ctx context.Context, f UserFilter) ([]domain.User, int64, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error

	// Password history, most-recent-first, pruned to historyKeep rows per
	// user. SetPassword swaps the hash and appends the record atomically.
	PasswordHistory(ctx context.Context, userID string, limit int) ([]domain.PasswordRecord, error)
	SetPassword(ctx context.Context, rec *domain.PasswordRecord, historyKeep int) error
}

type ReportRepository interface {
	// Create writes the report and its initial grant set atomically.
	Create(ctx context.Context, report *domain.Report, userIDs []string) error
	GetByID(ctx context.Context, id string, scope authz.Scope) (*domain.Report, error)
	// FindDuplicate returns a report whose name or URL matches, excluding
	// excludeID. sql.ErrNoRows when no clash exists.
	FindDuplicate(ctx context.Context, name, reportURL, excludeID string) (*domain.Report, error)
	List(ctx context.Context, f ReportFilter) ([]domain.Report, int64, error)
	Update(ctx context.Context, report *domain.Report) error
	Delete(ctx context.Context, id string) error

	// ReplaceGrants swaps the full grant set: remove-then-add, one tx.
	ReplaceGrants(ctx context.Context, reportID string, userIDs []string) error
	GranteeIDs(ctx context.Context, reportID string) ([]string, error)
	HasGrant(ctx context.Context, reportID, userID string) (bool, error)
	// IncrementAccessCount bumps the counter atomically in SQL so
	// concurrent views never lose updates.
	IncrementAccessCount(ctx context.Context, reportID string) (int64, error)
}

type BillingRepository interface {
	Create(ctx context.Context, rec *domain.BillingRecord) error
	GetByID(ctx context.Context, id string, scope authz.Scope) (*domain.BillingRecord, error)
	GetByExternalID(ctx context.Context, externalInvoiceID string) (*domain.BillingRecord, error)
	List(ctx context.Context, f BillingFilter) ([]domain.BillingRecord, int64, error)
	Update(ctx context.Context, rec *domain.BillingRecord) error
}

type SubscriptionRepository interface {
	// Upsert matches on external_subscription_id; when the row lands as
	// active it deactivates any other active row of the same company in
	// the same transaction.
	Upsert(ctx context.Context, sub *domain.Subscription) error
	GetCurrent(ctx context.Context, companyID string) (*domain.Subscription, error)
	ListByCompany(ctx context.Context, companyID string, scope authz.Scope) ([]domain.Subscription, error)
	// MarkExpired flips active rows whose period end has passed and
	// returns how many were touched.
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
}

type SessionRepository interface {
	// Start upserts on the user_id uniqueness constraint: an existing row
	// is reactivated in place (start reset, end cleared, totals kept).
	Start(ctx context.Context, userID string, at time.Time) (*domain.Session, error)
	GetByUserID(ctx context.Context, userID string) (*domain.Session, error)
	// Close accumulates the interval deltas and stamps end_time.
	Close(ctx context.Context, sessionID string, endTime time.Time, activeDelta, inactiveDelta int64) error
	CountActive(ctx context.Context) (int64, error)
	SumActiveSeconds(ctx context.Context) (int64, error)
	ListStale(ctx context.Context, cutoff time.Time) ([]domain.Session, error)
}
