package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// BillingRecord mirrors an invoice at the payment provider. Rows are
// written by the provider sync with the system actor, never user-authored.
type BillingRecord struct {
	ID                string          `json:"id"`
	CompanyID         string          `json:"company_id"`
	ExternalInvoiceID string          `json:"external_invoice_id"`
	BillingDate       time.Time       `json:"billing_date"`
	Amount            decimal.Decimal `json:"amount"`
	Status            string          `json:"status"` // provider invoice status (draft, open, paid, void, ...)
	PaymentStatus     PaymentStatus   `json:"payment_status"`
	Plan              string          `json:"plan"`
	PDFLink           string          `json:"pdf_link,omitempty"`
}
