package service

import (
	"context"
	"time"

	"tenantadmin-backend/internal/domain"
)

// Every procedure takes the resolved actor explicitly. A missing or
// invalid actor fails with Unauthenticated before any policy or invariant
// logic runs; policy denials follow as Unauthorized with a reason code.

type CreateCompanyInput struct {
	CompanyName               string `json:"company_name"`
	Address                   string `json:"address"`
	Phone                     string `json:"phone"`
	Email                     string `json:"email"`
	Status                    string `json:"status"`
	PreferredSubscriptionPlan string `json:"preferred_subscription_plan"`
	NumOfEmployees            int32  `json:"num_of_employees"`
	// AdminUserID is the designated admin attached at creation; required.
	AdminUserID string `json:"admin_user_id"`
}

type UpdateCompanyPatch struct {
	CompanyName               *string `json:"company_name,omitempty"`
	Address                   *string `json:"address,omitempty"`
	Phone                     *string `json:"phone,omitempty"`
	Email                     *string `json:"email,omitempty"`
	Status                    *string `json:"status,omitempty"`
	PreferredSubscriptionPlan *string `json:"preferred_subscription_plan,omitempty"`
	NumOfEmployees            *int32  `json:"num_of_employees,omitempty"`
}

type ListCompaniesInput struct {
	Search string
	Status string
	Page   domain.PageRequest
}

type CompanyService interface {
	Create(ctx context.Context, actor domain.Actor, in CreateCompanyInput) (*domain.Company, error)
	GetByID(ctx context.Context, actor domain.Actor, id string) (*domain.Company, error)
	List(ctx context.Context, actor domain.Actor, in ListCompaniesInput) ([]domain.Company, domain.PageInfo, error)
	Update(ctx context.Context, actor domain.Actor, id string, patch UpdateCompanyPatch) (*domain.Company, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
	AssignAdmin(ctx context.Context, actor domain.Actor, companyID, userID string) error
	UnassignAdmin(ctx context.Context, actor domain.Actor, companyID, userID string) error
	ListAdmins(ctx context.Context, actor domain.Actor, companyID string) ([]string, error)
}

type CreateUserInput struct {
	UserName  string  `json:"user_name"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	CompanyID *string `json:"company_id,omitempty"`
	Password  string  `json:"password"`
	// AdminCompanyIDs links a role=admin user to the companies it will
	// administer.
	AdminCompanyIDs []string `json:"admin_company_ids,omitempty"`
}

type UpdateUserPatch struct {
	UserName  *string `json:"user_name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Status    *string `json:"status,omitempty"`
	CompanyID *string `json:"company_id,omitempty"`
}

type ListUsersInput struct {
	CompanyID string
	Role      string
	Status    string
	Search    string
	Page      domain.PageRequest
}

type UserService interface {
	Create(ctx context.Context, actor domain.Actor, in CreateUserInput) (*domain.User, error)
	GetByID(ctx context.Context, actor domain.Actor, id string) (*domain.User, error)
	List(ctx context.Context, actor domain.Actor, in ListUsersInput) ([]domain.User, domain.PageInfo, error)
	Update(ctx context.Context, actor domain.Actor, id string, patch UpdateUserPatch) (*domain.User, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
	ChangePassword(ctx context.Context, actor domain.Actor, userID, newPassword string) error
}

type CreateReportInput struct {
	ReportName string   `json:"report_name"`
	ReportURL  string   `json:"report_url"`
	CompanyID  string   `json:"company_id"`
	Status     string   `json:"status"`
	UserIDs    []string `json:"user_ids,omitempty"`
}

type UpdateReportPatch struct {
	ReportName *string `json:"report_name,omitempty"`
	ReportURL  *string `json:"report_url,omitempty"`
	Status     *string `json:"status,omitempty"`
	// UserIDs fully replaces the grant set when present.
	UserIDs *[]string `json:"user_ids,omitempty"`
}

type ListReportsInput struct {
	CompanyID string
	Status    string
	Search    string
	Page      domain.PageRequest
}

type ReportService interface {
	Create(ctx context.Context, actor domain.Actor, in CreateReportInput) (*domain.Report, error)
	GetByID(ctx context.Context, actor domain.Actor, id string) (*domain.Report, error)
	List(ctx context.Context, actor domain.Actor, in ListReportsInput) ([]domain.Report, domain.PageInfo, error)
	Update(ctx context.Context, actor domain.Actor, id string, patch UpdateReportPatch) (*domain.Report, error)
	SetStatus(ctx context.Context, actor domain.Actor, id, status string) (*domain.Report, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
	// IncrementAccessCount is the only mutation role=user may perform on a
	// report; general patches cannot touch the counter.
	IncrementAccessCount(ctx context.Context, actor domain.Actor, id string) (int64, error)
	Grantees(ctx context.Context, actor domain.Actor, id string) ([]string, error)
}

type ListBillingInput struct {
	CompanyID string
	Page      domain.PageRequest
}

type BillingService interface {
	GetByID(ctx context.Context, actor domain.Actor, id string) (*domain.BillingRecord, error)
	List(ctx context.Context, actor domain.Actor, in ListBillingInput) ([]domain.BillingRecord, domain.PageInfo, error)
	// UpsertFromProvider is called by the payment-provider sync with the
	// system actor; it matches on the external invoice id.
	UpsertFromProvider(ctx context.Context, actor domain.Actor, rec *domain.BillingRecord) error
}

type SubscriptionService interface {
	GetCurrent(ctx context.Context, actor domain.Actor, companyID string) (*domain.Subscription, error)
	ListByCompany(ctx context.Context, actor domain.Actor, companyID string) ([]domain.Subscription, error)
	UpsertFromProvider(ctx context.Context, actor domain.Actor, sub *domain.Subscription) error
	// ReconcileExpired closes out active subscriptions whose period end
	// has passed; run by the scheduler.
	ReconcileExpired(ctx context.Context) (int64, error)
}

type SessionService interface {
	Start(ctx context.Context, actor domain.Actor, userID string) (*domain.Session, error)
	Stop(ctx context.Context, actor domain.Actor, userID, sessionID string, activeTimeMs int64) (*domain.Session, error)
	IsActive(ctx context.Context, actor domain.Actor, userID string) (bool, error)
	Stats(ctx context.Context, actor domain.Actor) (*domain.SessionStats, error)
	// CloseStale force-stops sessions whose open interval started more
	// than olderThan ago; run by the scheduler.
	CloseStale(ctx context.Context, olderThan time.Duration) (int64, error)
}
