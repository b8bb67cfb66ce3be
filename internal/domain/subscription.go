package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
	SubscriptionStatusExpired  SubscriptionStatus = "expired"
)

// Subscription mirrors a plan subscription at the payment provider.
// A company may have many historical rows; at most one is active.
type Subscription struct {
	ID                     string             `json:"id"`
	CompanyID              string             `json:"company_id"`
	ExternalSubscriptionID string             `json:"external_subscription_id"`
	Plan                   string             `json:"plan"`
	Amount                 decimal.Decimal    `json:"amount"`
	BillingInterval        string             `json:"billing_interval"` // month or year
	Status                 SubscriptionStatus `json:"status"`
	UserLimit              int32              `json:"user_limit"`
	OverageUser            int32              `json:"overage_user"`
	CurrentPeriodEnd       time.Time          `json:"current_period_end"`
}
