package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"tenantadmin-backend/internal/authz"
	"tenantadmin-backend/internal/domain"
	"tenantadmin-backend/internal/repository"
)

// MockCompanyRepo
type MockCompanyRepo struct {
	mock.Mock
}

func (m *MockCompanyRepo) Create(ctx context.Context, company *domain.Company, adminUserID string) error {
	args := m.Called(ctx, company, adminUserID)
	return args.Error(0)
}
func (m *MockCompanyRepo) GetByID(ctx context.Context, id string, scope authz.Scope) (*domain.Company, error) {
	args := m.Called(ctx, id, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}
func (m *MockCompanyRepo) GetByEmail(ctx context.Context, email string) (*domain.Company, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}
func (m *MockCompanyRepo) List(ctx context.Context, f repository.CompanyFilter) ([]domain.Company, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.Company), args.Get(1).(int64), args.Error(2)
}
func (m *MockCompanyRepo) Update(ctx context.Context, company *domain.Company) error {
	args := m.Called(ctx, company)
	return args.Error(0)
}
func (m *MockCompanyRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockCompanyRepo) AdminIDs(ctx context.Context, companyID string) ([]string, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
func (m *MockCompanyRepo) AdminCompanies(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
func (m *MockCompanyRepo) AddAdmin(ctx context.Context, companyID, userID string) error {
	args := m.Called(ctx, companyID, userID)
	return args.Error(0)
}
func (m *MockCompanyRepo) RemoveAdmin(ctx context.Context, companyID, userID string) error {
	args := m.Called(ctx, companyID, userID)
	return args.Error(0)
}
func (m *MockCompanyRepo) CountAdmins(ctx context.Context, companyID string) (int64, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User, rec *domain.PasswordRecord, adminCompanyIDs []string, historyKeep int) error {
	args := m.Called(ctx, user, rec, adminCompanyIDs, historyKeep)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByUserName(ctx context.Context, userName string) (*domain.User, error) {
	args := m.Called(ctx, userName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) List(ctx context.Context, f repository.UserFilter) ([]domain.User, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.User), args.Get(1).(int64), args.Error(2)
}
func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockUserRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}
func (m *MockUserRepo) PasswordHistory(ctx context.Context, userID string, limit int) ([]domain.PasswordRecord, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PasswordRecord), args.Error(1)
}
func (m *MockUserRepo) SetPassword(ctx context.Context, rec *domain.PasswordRecord, historyKeep int) error {
	args := m.Called(ctx, rec, historyKeep)
	return args.Error(0)
}

// MockReportRepo
type MockReportRepo struct {
	mock.Mock
}

func (m *MockReportRepo) Create(ctx context.Context, report *domain.Report, userIDs []string) error {
	args := m.Called(ctx, report, userIDs)
	return args.Error(0)
}
func (m *MockReportRepo) GetByID(ctx context.Context, id string, scope authz.Scope) (*domain.Report, error) {
	args := m.Called(ctx, id, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}
func (m *MockReportRepo) FindDuplicate(ctx context.Context, name, reportURL, excludeID string) (*domain.Report, error) {
	args := m.Called(ctx, name, reportURL, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}
func (m *MockReportRepo) List(ctx context.Context, f repository.ReportFilter) ([]domain.Report, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.Report), args.Get(1).(int64), args.Error(2)
}
func (m *MockReportRepo) Update(ctx context.Context, report *domain.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}
func (m *MockReportRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockReportRepo) ReplaceGrants(ctx context.Context, reportID string, userIDs []string) error {
	args := m.Called(ctx, reportID, userIDs)
	return args.Error(0)
}
func (m *MockReportRepo) GranteeIDs(ctx context.Context, reportID string) ([]string, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
func (m *MockReportRepo) HasGrant(ctx context.Context, reportID, userID string) (bool, error) {
	args := m.Called(ctx, reportID, userID)
	return args.Bool(0), args.Error(1)
}
func (m *MockReportRepo) IncrementAccessCount(ctx context.Context, reportID string) (int64, error) {
	args := m.Called(ctx, reportID)
	return args.Get(0).(int64), args.Error(1)
}

// MockBillingRepo
type MockBillingRepo struct {
	mock.Mock
}

func (m *MockBillingRepo) Create(ctx context.Context, rec *domain.BillingRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}
func (m *MockBillingRepo) GetByID(ctx context.Context, id string, scope authz.Scope) (*domain.BillingRecord, error) {
	args := m.Called(ctx, id, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BillingRecord), args.Error(1)
}
func (m *MockBillingRepo) GetByExternalID(ctx context.Context, externalInvoiceID string) (*domain.BillingRecord, error) {
	args := m.Called(ctx, externalInvoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BillingRecord), args.Error(1)
}
func (m *MockBillingRepo) List(ctx context.Context, f repository.BillingFilter) ([]domain.BillingRecord, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.BillingRecord), args.Get(1).(int64), args.Error(2)
}
func (m *MockBillingRepo) Update(ctx context.Context, rec *domain.BillingRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

// MockSubscriptionRepo
type MockSubscriptionRepo struct {
	mock.Mock
}

func (m *MockSubscriptionRepo) Upsert(ctx context.Context, sub *domain.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}
func (m *MockSubscriptionRepo) GetCurrent(ctx context.Context, companyID string) (*domain.Subscription, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}
func (m *MockSubscriptionRepo) ListByCompany(ctx context.Context, companyID string, scope authz.Scope) ([]domain.Subscription, error) {
	args := m.Called(ctx, companyID, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Subscription), args.Error(1)
}
func (m *MockSubscriptionRepo) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockSessionRepo
type MockSessionRepo struct {
	mock.Mock
}

func (m *MockSessionRepo) Start(ctx context.Context, userID string, at time.Time) (*domain.Session, error) {
	args := m.Called(ctx, userID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}
func (m *MockSessionRepo) GetByUserID(ctx context.Context, userID string) (*domain.Session, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}
func (m *MockSessionRepo) Close(ctx context.Context, sessionID string, endTime time.Time, activeDelta, inactiveDelta int64) error {
	args := m.Called(ctx, sessionID, endTime, activeDelta, inactiveDelta)
	return args.Error(0)
}
func (m *MockSessionRepo) CountActive(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockSessionRepo) SumActiveSeconds(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockSessionRepo) ListStale(ctx context.Context, cutoff time.Time) ([]domain.Session, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Session), args.Error(1)
}
