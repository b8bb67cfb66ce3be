package postgres

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"tenantadmin-backend/internal/authz"
	"tenantadmin-backend/internal/domain"
	"tenantadmin-backend/internal/repository"
)

const reportColumns = `id, report_name, report_url, company_id, status, access_count, date_created, last_modified_at`

type reportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) repository.ReportRepository {
	return &reportRepository{db: db}
}

func scanReport(row interface{ Scan(...interface{}) error }) (*domain.Report, error) {
	rep := &domain.Report{}
	err := row.Scan(&rep.ID, &rep.ReportName, &rep.ReportURL, &rep.CompanyID, &rep.Status,
		&rep.AccessCount, &rep.DateCreated, &rep.LastModifiedAt)
	if err != nil {
		return nil, err
	}
	return rep, nil
}

// scopeReport compiles report visibility: company scope plus, for
// role=user actors, the grant join.
func scopeReport(b *condBuilder, sc authz.Scope) {
	b.scopeCompany(sc, "company_id")
	if sc.GranteeUserID != "" {
		n := strconv.Itoa(b.next(sc.GranteeUserID))
		b.addRaw("id IN (SELECT report_id FROM user_reports WHERE user_id = $" + n + ")")
	}
}

func (r *reportRepository) Create(ctx context.Context, rep *domain.Report, userIDs []string) error {
	now := time.Now().UTC()
	rep.DateCreated = now
	rep.LastModifiedAt = now
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO reports (id, report_name, report_url, company_id, status, access_count, date_created, last_modified_at)
			 VALUES ($1, $2, $3, $4, $5, 0, $6, $7)`,
			rep.ID, rep.ReportName, rep.ReportURL, rep.CompanyID, rep.Status, rep.DateCreated, rep.LastModifiedAt)
		if err != nil {
			return mapWriteErr(err)
		}
		return insertGrants(ctx, tx, rep.ID, userIDs)
	})
}

func insertGrants(ctx context.Context, tx *sql.Tx, reportID string, userIDs []string) error {
	for _, uid := range userIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_reports (report_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			reportID, uid); err != nil {
			return err
		}
	}
	return nil
}

func (r *reportRepository) GetByID(ctx context.Context, id string, scope authz.Scope) (*domain.Report, error) {
	b := &condBuilder{}
	b.add("id = $%d", id)
	scopeReport(b, scope)
	query := `SELECT ` + reportColumns + ` FROM reports` + b.where()
	return scanReport(r.db.QueryRowContext(ctx, query, b.args...))
}

func (r *reportRepository) FindDuplicate(ctx context.Context, name, reportURL, excludeID string) (*domain.Report, error) {
	return scanReport(r.db.QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE (report_name = $1 OR report_url = $2) AND id <> $3 LIMIT 1`,
		name, reportURL, excludeID))
}

func (r *reportRepository) List(ctx context.Context, f repository.ReportFilter) ([]domain.Report, int64, error) {
	b := &condBuilder{}
	scopeReport(b, f.Scope)
	if f.CompanyID != "" {
		b.add("company_id = $%d", f.CompanyID)
	}
	if f.Status != nil {
		b.add("status = $%d", *f.Status)
	}
	if f.Search != "" {
		b.add("report_name ILIKE $%d", "%"+f.Search+"%")
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM reports` + b.where()
	if err := r.db.QueryRowContext(ctx, countQuery, b.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = "report_name"
	}
	query := `SELECT ` + reportColumns + ` FROM reports` + b.where() +
		b.orderLimit(sortBy, f.SortDesc, f.Page.PageSize, f.Page.Offset())
	rows, err := r.db.QueryContext(ctx, query, b.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var reports []domain.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, 0, err
		}
		reports = append(reports, *rep)
	}
	return reports, total, rows.Err()
}

func (r *reportRepository) Update(ctx context.Context, rep *domain.Report) error {
	rep.LastModifiedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`UPDATE reports SET report_name=$1, report_url=$2, status=$3, last_modified_at=$4 WHERE id=$5`,
		rep.ReportName, rep.ReportURL, rep.Status, rep.LastModifiedAt, rep.ID)
	return mapWriteErr(err)
}

func (r *reportRepository) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_reports WHERE report_id = $1`, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM reports WHERE id = $1`, id)
		return err
	})
}

// ReplaceGrants is full-replace: the previous grant set is removed before
// the new one is inserted, never merged.
func (r *reportRepository) ReplaceGrants(ctx context.Context, reportID string, userIDs []string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_reports WHERE report_id = $1`, reportID); err != nil {
			return err
		}
		return insertGrants(ctx, tx, reportID, userIDs)
	})
}

func (r *reportRepository) GranteeIDs(ctx context.Context, reportID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM user_reports WHERE report_id = $1`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *reportRepository) HasGrant(ctx context.Context, reportID, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_reports WHERE report_id = $1 AND user_id = $2)`,
		reportID, userID).Scan(&exists)
	return exists, err
}

// IncrementAccessCount is a single atomic SQL increment; N concurrent
// calls converge on +N with no lost updates.
func (r *reportRepository) IncrementAccessCount(ctx context.Context, reportID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`UPDATE reports SET access_count = access_count + 1 WHERE id = $1 RETURNING access_count`,
		reportID).Scan(&count)
	return count, err
}
