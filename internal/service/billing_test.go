package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"tenantadmin-backend/internal/domain"
)

func TestBillingService_GetByID_UserDenied(t *testing.T) {
	svc := NewBillingService(new(MockBillingRepo), new(MockCompanyRepo))
	actor := domain.Actor{ID: uuid.NewString(), Role: domain.RoleUser, CompanyID: strptr(uuid.NewString())}

	_, err := svc.GetByID(context.Background(), actor, uuid.NewString())
	var de *domain.Error
	assert.ErrorAs(t, err, &de)
	assert.Equal(t, domain.KindUnauthorized, de.Kind)
	assert.Equal(t, domain.CodeInsufficientRole, de.Code)
}

func TestBillingService_GetByID_ScopedForAdmin(t *testing.T) {
	billingRepo := new(MockBillingRepo)
	companyRepo := new(MockCompanyRepo)
	svc := NewBillingService(billingRepo, companyRepo)
	ctx := context.Background()

	actor := domain.Actor{ID: uuid.NewString(), Role: domain.RoleAdmin}
	id := uuid.NewString()
	companyRepo.On("AdminCompanies", ctx, actor.ID).Return([]string{"c1"}, nil).Once()
	billingRepo.On("GetByID", ctx, id, mock.Anything).Return(nil, sql.ErrNoRows).Once()

	_, err := svc.GetByID(ctx, actor, id)
	assert.True(t, domain.IsNotFound(err))
}

func TestBillingService_List_CompanyFilterOutsideScope(t *testing.T) {
	billingRepo := new(MockBillingRepo)
	companyRepo := new(MockCompanyRepo)
	svc := NewBillingService(billingRepo, companyRepo)
	ctx := context.Background()

	actor := domain.Actor{ID: uuid.NewString(), Role: domain.RoleAdmin}
	companyRepo.On("AdminCompanies", ctx, actor.ID).Return([]string{uuid.NewString()}, nil).Once()

	_, _, err := svc.List(ctx, actor, ListBillingInput{CompanyID: uuid.NewString()})
	var de *domain.Error
	assert.ErrorAs(t, err, &de)
	assert.Equal(t, domain.CodeNotOwner, de.Code)
	billingRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestBillingService_UpsertFromProvider(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.NewString()

	rec := func() *domain.BillingRecord {
		return &domain.BillingRecord{
			CompanyID:         companyID,
			ExternalInvoiceID: "in_123",
			Amount:            decimal.New(4999, -2),
			PaymentStatus:     domain.PaymentStatusPaid,
		}
	}

	t.Run("AdminDenied", func(t *testing.T) {
		svc := NewBillingService(new(MockBillingRepo), new(MockCompanyRepo))
		actor := domain.Actor{ID: uuid.NewString(), Role: domain.RoleAdmin}

		err := svc.UpsertFromProvider(ctx, actor, rec())
		var de *domain.Error
		assert.ErrorAs(t, err, &de)
		assert.Equal(t, domain.KindUnauthorized, de.Kind)
	})

	t.Run("NewInvoiceCreates", func(t *testing.T) {
		billingRepo := new(MockBillingRepo)
		companyRepo := new(MockCompanyRepo)
		svc := NewBillingService(billingRepo, companyRepo)

		companyRepo.On("GetByID", ctx, companyID, mock.Anything).
			Return(&domain.Company{ID: companyID}, nil).Once()
		billingRepo.On("GetByExternalID", ctx, "in_123").Return(nil, sql.ErrNoRows).Once()
		billingRepo.On("Create", ctx, mock.AnythingOfType("*domain.BillingRecord")).Return(nil).Once()

		in := rec()
		assert.NoError(t, svc.UpsertFromProvider(ctx, domain.SystemActor, in))
		assert.NotEmpty(t, in.ID)
		billingRepo.AssertExpectations(t)
	})

	t.Run("KnownInvoiceUpdatesInPlace", func(t *testing.T) {
		billingRepo := new(MockBillingRepo)
		companyRepo := new(MockCompanyRepo)
		svc := NewBillingService(billingRepo, companyRepo)

		existingID := uuid.NewString()
		companyRepo.On("GetByID", ctx, companyID, mock.Anything).
			Return(&domain.Company{ID: companyID}, nil).Once()
		billingRepo.On("GetByExternalID", ctx, "in_123").
			Return(&domain.BillingRecord{ID: existingID, ExternalInvoiceID: "in_123"}, nil).Once()
		billingRepo.On("Update", ctx, mock.AnythingOfType("*domain.BillingRecord")).Return(nil).Once()

		in := rec()
		assert.NoError(t, svc.UpsertFromProvider(ctx, domain.SystemActor, in))
		assert.Equal(t, existingID, in.ID)
		billingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
