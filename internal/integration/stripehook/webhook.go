// Package stripehook ingests payment-provider webhook events and
// replays them into the billing and subscription services as the system
// actor. Signature verification is the only authentication on this path.
package stripehook

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"tenantadmin-backend/internal/domain"
	"tenantadmin-backend/internal/logger"
	"tenantadmin-backend/internal/service"
)

// maxBodyBytes caps the webhook payload, per Stripe's own guidance.
const maxBodyBytes = int64(65536)

type Handler struct {
	secret        string
	billing       service.BillingService
	subscriptions service.SubscriptionService
}

func NewHandler(webhookSecret string, billing service.BillingService, subscriptions service.SubscriptionService) *Handler {
	return &Handler{secret: webhookSecret, billing: billing, subscriptions: subscriptions}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Error("reading webhook body", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		body,
		r.Header.Get("Stripe-Signature"),
		h.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		logger.Error("webhook signature verification failed", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	logger.Info("webhook event received", "type", event.Type, "event_id", event.ID)

	switch event.Type {
	case stripe.EventTypeInvoicePaymentSucceeded,
		stripe.EventTypeInvoicePaymentFailed,
		stripe.EventTypeInvoiceFinalized:
		err = h.handleInvoice(r, event)
	case stripe.EventTypeCustomerSubscriptionCreated,
		stripe.EventTypeCustomerSubscriptionUpdated,
		stripe.EventTypeCustomerSubscriptionDeleted:
		err = h.handleSubscription(r, event)
	default:
		// Unhandled event types are acknowledged so Stripe stops retrying.
		w.WriteHeader(http.StatusOK)
		return
	}

	if err != nil {
		logger.Error("processing webhook event", "type", event.Type, "event_id", event.ID, "error", err)
		// Validation problems will not fix themselves on retry.
		if kind := domain.KindOf(err); kind == domain.KindValidation || kind == domain.KindNotFound {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleInvoice(r *http.Request, event stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return domain.Validation("malformed invoice payload", nil)
	}
	companyID := invoice.Metadata["company_id"]
	if companyID == "" && invoice.Subscription != nil {
		companyID = invoice.Subscription.Metadata["company_id"]
	}

	paymentStatus := domain.PaymentStatusPending
	switch event.Type {
	case stripe.EventTypeInvoicePaymentSucceeded:
		paymentStatus = domain.PaymentStatusPaid
	case stripe.EventTypeInvoicePaymentFailed:
		paymentStatus = domain.PaymentStatusFailed
	}

	rec := &domain.BillingRecord{
		CompanyID:         companyID,
		ExternalInvoiceID: invoice.ID,
		BillingDate:       time.Unix(invoice.Created, 0).UTC(),
		Amount:            decimal.New(invoice.AmountDue, -2),
		Status:            string(invoice.Status),
		PaymentStatus:     paymentStatus,
		Plan:              invoice.Metadata["plan"],
		PDFLink:           invoice.InvoicePDF,
	}
	return h.billing.UpsertFromProvider(r.Context(), domain.SystemActor, rec)
}

func (h *Handler) handleSubscription(r *http.Request, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return domain.Validation("malformed subscription payload", nil)
	}

	status := mapSubscriptionStatus(sub.Status)
	if event.Type == stripe.EventTypeCustomerSubscriptionDeleted {
		status = domain.SubscriptionStatusCanceled
	}

	out := &domain.Subscription{
		CompanyID:              sub.Metadata["company_id"],
		ExternalSubscriptionID: sub.ID,
		Plan:                   sub.Metadata["plan"],
		Status:                 status,
		CurrentPeriodEnd:       time.Unix(sub.CurrentPeriodEnd, 0).UTC(),
	}
	if limit, err := strconv.ParseInt(sub.Metadata["user_limit"], 10, 32); err == nil {
		out.UserLimit = int32(limit)
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		price := sub.Items.Data[0].Price
		out.Amount = decimal.New(price.UnitAmount, -2)
		if price.Recurring != nil {
			out.BillingInterval = string(price.Recurring.Interval)
		}
		if out.Plan == "" {
			out.Plan = price.Nickname
		}
	}
	return h.subscriptions.UpsertFromProvider(r.Context(), domain.SystemActor, out)
}

func mapSubscriptionStatus(s stripe.SubscriptionStatus) domain.SubscriptionStatus {
	switch s {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return domain.SubscriptionStatusActive
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid:
		return domain.SubscriptionStatusPastDue
	default:
		return domain.SubscriptionStatusCanceled
	}
}
