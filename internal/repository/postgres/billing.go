package postgres

import (
	"context"
	"database/sql"

	"tenantadmin-backend/internal/authz"
	"tenantadmin-backend/internal/domain"
	"tenantadmin-backend/internal/repository"
)

const billingColumns = `id, company_id, external_invoice_id, billing_date, amount, status, payment_status, plan, COALESCE(pdf_link, '')`

type billingRepository struct {
	db *sql.DB
}

func NewBillingRepository(db *sql.DB) repository.BillingRepository {
	return &billingRepository{db: db}
}

func scanBilling(row interface{ Scan(...interface{}) error }) (*domain.BillingRecord, error) {
	rec := &domain.BillingRecord{}
	err := row.Scan(&rec.ID, &rec.CompanyID, &rec.ExternalInvoiceID, &rec.BillingDate,
		&rec.Amount, &rec.Status, &rec.PaymentStatus, &rec.Plan, &rec.PDFLink)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *billingRepository) Create(ctx context.Context, rec *domain.BillingRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO billing_records (id, company_id, external_invoice_id, billing_date, amount, status, payment_status, plan, pdf_link)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.ID, rec.CompanyID, rec.ExternalInvoiceID, rec.BillingDate, rec.Amount,
		rec.Status, rec.PaymentStatus, rec.Plan, rec.PDFLink)
	return mapWriteErr(err)
}

func (r *billingRepository) GetByID(ctx context.Context, id string, scope authz.Scope) (*domain.BillingRecord, error) {
	b := &condBuilder{}
	b.add("id = $%d", id)
	b.scopeCompany(scope, "company_id")
	query := `SELECT ` + billingColumns + ` FROM billing_records` + b.where()
	return scanBilling(r.db.QueryRowContext(ctx, query, b.args...))
}

func (r *billingRepository) GetByExternalID(ctx context.Context, externalInvoiceID string) (*domain.BillingRecord, error) {
	query := `SELECT ` + billingColumns + ` FROM billing_records WHERE external_invoice_id = $1`
	return scanBilling(r.db.QueryRowContext(ctx, query, externalInvoiceID))
}

func (r *billingRepository) List(ctx context.Context, f repository.BillingFilter) ([]domain.BillingRecord, int64, error) {
	b := &condBuilder{}
	b.scopeCompany(f.Scope, "company_id")
	if f.CompanyID != "" {
		b.add("company_id = $%d", f.CompanyID)
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM billing_records` + b.where()
	if err := r.db.QueryRowContext(ctx, countQuery, b.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + billingColumns + ` FROM billing_records` + b.where() +
		b.orderLimit("billing_date", true, f.Page.PageSize, f.Page.Offset())
	rows, err := r.db.QueryContext(ctx, query, b.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []domain.BillingRecord
	for rows.Next() {
		rec, err := scanBilling(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, *rec)
	}
	return records, total, rows.Err()
}

func (r *billingRepository) Update(ctx context.Context, rec *domain.BillingRecord) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE billing_records SET billing_date=$1, amount=$2, status=$3, payment_status=$4, plan=$5, pdf_link=$6 WHERE id=$7`,
		rec.BillingDate, rec.Amount, rec.Status, rec.PaymentStatus, rec.Plan, rec.PDFLink, rec.ID)
	return mapWriteErr(err)
}
