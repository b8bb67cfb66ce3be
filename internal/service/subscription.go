package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tenantadmin-backend/internal/authz"
	"tenantadmin-backend/internal/domain"
	"tenantadmin-backend/internal/logger"
	"tenantadmin-backend/internal/repository"
)

type subscriptionService struct {
	subscriptionRepo repository.SubscriptionRepository
	companyRepo      repository.CompanyRepository
	now              func() time.Time
}

func NewSubscriptionService(subscriptionRepo repository.SubscriptionRepository, companyRepo repository.CompanyRepository) SubscriptionService {
	return &subscriptionService{
		subscriptionRepo: subscriptionRepo,
		companyRepo:      companyRepo,
		now:              time.Now,
	}
}

func (s *subscriptionService) authorizeRead(ctx context.Context, actor domain.Actor, companyID string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	fe := fieldErrors{}
	fe.required("company_id", companyID)
	fe.uuid("company_id", companyID)
	if err := fe.err(); err != nil {
		return err
	}
	adminOf, err := adminCompanies(ctx, s.companyRepo, actor)
	if err != nil {
		return err
	}
	return denyErr(authz.Decide(actor, adminOf, authz.ActionRead, domain.KindSubscription, authz.Target{CompanyID: companyID}))
}

func (s *subscriptionService) GetCurrent(ctx context.Context, actor domain.Actor, companyID string) (*domain.Subscription, error) {
	if err := s.authorizeRead(ctx, actor, companyID); err != nil {
		return nil, err
	}
	sub, err := s.subscriptionRepo.GetCurrent(ctx, companyID)
	if err != nil {
		return nil, storeErr(err, "subscription")
	}
	return sub, nil
}

func (s *subscriptionService) ListByCompany(ctx context.Context, actor domain.Actor, companyID string) ([]domain.Subscription, error) {
	if err := s.authorizeRead(ctx, actor, companyID); err != nil {
		return nil, err
	}
	adminOf, err := adminCompanies(ctx, s.companyRepo, actor)
	if err != nil {
		return nil, err
	}
	subs, err := s.subscriptionRepo.ListByCompany(ctx, companyID, authz.ScopeFor(actor, adminOf))
	if err != nil {
		return nil, storeErr(err, "subscriptions")
	}
	return subs, nil
}

// UpsertFromProvider reconciles one subscription from the payment
// provider. System actor only; matches on external_subscription_id, and
// an incoming active row deactivates the company's previous active one.
func (s *subscriptionService) UpsertFromProvider(ctx context.Context, actor domain.Actor, sub *domain.Subscription) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if err := denyErr(authz.Decide(actor, nil, authz.ActionUpdate, domain.KindSubscription, authz.Target{})); err != nil {
		return err
	}

	fe := fieldErrors{}
	fe.required("company_id", sub.CompanyID)
	fe.uuid("company_id", sub.CompanyID)
	fe.required("external_subscription_id", sub.ExternalSubscriptionID)
	switch sub.Status {
	case domain.SubscriptionStatusActive, domain.SubscriptionStatusPastDue,
		domain.SubscriptionStatusCanceled, domain.SubscriptionStatusExpired:
	default:
		fe.add("status", "must be one of active, past_due, canceled, expired")
	}
	if err := fe.err(); err != nil {
		return err
	}
	if _, err := s.companyRepo.GetByID(ctx, sub.CompanyID, authz.Scope{All: true}); err != nil {
		return storeErr(err, "company")
	}

	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if err := s.subscriptionRepo.Upsert(ctx, sub); err != nil {
		return storeErr(err, "subscription")
	}
	logger.Info("subscription upserted from provider",
		"external_subscription_id", sub.ExternalSubscriptionID,
		"company_id", sub.CompanyID, "status", sub.Status)
	return nil
}

func (s *subscriptionService) ReconcileExpired(ctx context.Context) (int64, error) {
	n, err := s.subscriptionRepo.MarkExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, storeErr(err, "subscriptions")
	}
	if n > 0 {
		logger.Info("subscriptions expired", "count", n)
	}
	return n, nil
}
