package postgres

import (
	"context"
	"database/sql"
	"time"

	"tenantadmin-backend/internal/authz"
	"tenantadmin-backend/internal/domain"
	"tenantadmin-backend/internal/repository"
)

const subscriptionColumns = `id, company_id, external_subscription_id, plan, amount, billing_interval, status, user_limit, overage_user, current_period_end`

type subscriptionRepository struct {
	db *sql.DB
}

func NewSubscriptionRepository(db *sql.DB) repository.SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func scanSubscription(row interface{ Scan(...interface{}) error }) (*domain.Subscription, error) {
	s := &domain.Subscription{}
	err := row.Scan(&s.ID, &s.CompanyID, &s.ExternalSubscriptionID, &s.Plan, &s.Amount,
		&s.BillingInterval, &s.Status, &s.UserLimit, &s.OverageUser, &s.CurrentPeriodEnd)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Upsert keys on external_subscription_id. Activating a row deactivates
// any other active row of the same company in the same transaction, so
// at most one current subscription exists per company while history is
// retained.
func (r *subscriptionRepository) Upsert(ctx context.Context, s *domain.Subscription) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if s.Status == domain.SubscriptionStatusActive {
			if _, err := tx.ExecContext(ctx,
				`UPDATE subscriptions SET status = $1 WHERE company_id = $2 AND status = $3 AND external_subscription_id <> $4`,
				domain.SubscriptionStatusCanceled, s.CompanyID, domain.SubscriptionStatusActive, s.ExternalSubscriptionID); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO subscriptions (id, company_id, external_subscription_id, plan, amount, billing_interval, status, user_limit, overage_user, current_period_end)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			 ON CONFLICT (external_subscription_id) DO UPDATE SET
			   plan = EXCLUDED.plan,
			   amount = EXCLUDED.amount,
			   billing_interval = EXCLUDED.billing_interval,
			   status = EXCLUDED.status,
			   user_limit = EXCLUDED.user_limit,
			   overage_user = EXCLUDED.overage_user,
			   current_period_end = EXCLUDED.current_period_end`,
			s.ID, s.CompanyID, s.ExternalSubscriptionID, s.Plan, s.Amount,
			s.BillingInterval, s.Status, s.UserLimit, s.OverageUser, s.CurrentPeriodEnd)
		return mapWriteErr(err)
	})
}

func (r *subscriptionRepository) GetCurrent(ctx context.Context, companyID string) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE company_id = $1 AND status = $2`
	return scanSubscription(r.db.QueryRowContext(ctx, query, companyID, domain.SubscriptionStatusActive))
}

func (r *subscriptionRepository) ListByCompany(ctx context.Context, companyID string, scope authz.Scope) ([]domain.Subscription, error) {
	b := &condBuilder{}
	b.add("company_id = $%d", companyID)
	b.scopeCompany(scope, "company_id")
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions` + b.where() + ` ORDER BY current_period_end DESC`
	rows, err := r.db.QueryContext(ctx, query, b.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []domain.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *s)
	}
	return subs, rows.Err()
}

func (r *subscriptionRepository) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE subscriptions SET status = $1 WHERE status = $2 AND current_period_end < $3`,
		domain.SubscriptionStatusExpired, domain.SubscriptionStatusActive, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
