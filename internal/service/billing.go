package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"tenantadmin-backend/internal/authz"
	"tenantadmin-backend/internal/domain"
	"tenantadmin-backend/internal/logger"
	"tenantadmin-backend/internal/repository"
)

type billingService struct {
	billingRepo repository.BillingRepository
	companyRepo repository.CompanyRepository
}

func NewBillingService(billingRepo repository.BillingRepository, companyRepo repository.CompanyRepository) BillingService {
	return &billingService{billingRepo: billingRepo, companyRepo: companyRepo}
}

func (s *billingService) GetByID(ctx context.Context, actor domain.Actor, id string) (*domain.BillingRecord, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	fe := fieldErrors{}
	fe.required("id", id)
	fe.uuid("id", id)
	if err := fe.err(); err != nil {
		return nil, err
	}

	adminOf, err := adminCompanies(ctx, s.companyRepo, actor)
	if err != nil {
		return nil, err
	}
	if err := denyErr(authz.Decide(actor, adminOf, authz.ActionRead, domain.KindBilling, authz.Target{})); err != nil {
		return nil, err
	}
	rec, err := s.billingRepo.GetByID(ctx, id, authz.ScopeFor(actor, adminOf))
	if err != nil {
		return nil, storeErr(err, "billing record")
	}
	return rec, nil
}

func (s *billingService) List(ctx context.Context, actor domain.Actor, in ListBillingInput) ([]domain.BillingRecord, domain.PageInfo, error) {
	if err := requireActor(actor); err != nil {
		return nil, domain.PageInfo{}, err
	}

	adminOf, err := adminCompanies(ctx, s.companyRepo, actor)
	if err != nil {
		return nil, domain.PageInfo{}, err
	}
	// Target carries the company filter when one is set; an unfiltered
	// list is gated with an empty target and scoped by the repository.
	if err := denyErr(authz.Decide(actor, adminOf, authz.ActionRead, domain.KindBilling, authz.Target{CompanyID: in.CompanyID})); err != nil {
		return nil, domain.PageInfo{}, err
	}

	page := in.Page.Normalize()
	recs, total, err := s.billingRepo.List(ctx, repository.BillingFilter{
		Scope:     authz.ScopeFor(actor, adminOf),
		CompanyID: in.CompanyID,
		SortDesc:  true,
		Page:      page,
	})
	if err != nil {
		return nil, domain.PageInfo{}, storeErr(err, "billing records")
	}
	return recs, domain.NewPageInfo(total, page), nil
}

// UpsertFromProvider reconciles one invoice from the payment provider.
// Only the system actor may call it; rows match on external_invoice_id.
func (s *billingService) UpsertFromProvider(ctx context.Context, actor domain.Actor, rec *domain.BillingRecord) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if err := denyErr(authz.Decide(actor, nil, authz.ActionCreate, domain.KindBilling, authz.Target{})); err != nil {
		return err
	}

	fe := fieldErrors{}
	fe.required("company_id", rec.CompanyID)
	fe.uuid("company_id", rec.CompanyID)
	fe.required("external_invoice_id", rec.ExternalInvoiceID)
	if err := fe.err(); err != nil {
		return err
	}
	if _, err := s.companyRepo.GetByID(ctx, rec.CompanyID, authz.Scope{All: true}); err != nil {
		return storeErr(err, "company")
	}

	existing, err := s.billingRepo.GetByExternalID(ctx, rec.ExternalInvoiceID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		rec.ID = uuid.NewString()
		if err := s.billingRepo.Create(ctx, rec); err != nil {
			return storeErr(err, "billing record")
		}
		logger.Info("billing record created from provider",
			"billing_id", rec.ID, "external_invoice_id", rec.ExternalInvoiceID, "company_id", rec.CompanyID)
		return nil
	case err != nil:
		return storeErr(err, "billing record")
	}

	rec.ID = existing.ID
	if err := s.billingRepo.Update(ctx, rec); err != nil {
		return storeErr(err, "billing record")
	}
	logger.Info("billing record updated from provider",
		"billing_id", rec.ID, "external_invoice_id", rec.ExternalInvoiceID, "payment_status", rec.PaymentStatus)
	return nil
}
