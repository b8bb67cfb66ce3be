package postgres

import (
	"context"
	"database/sql"
	"time"

	"tenantadmin-backend/internal/authz"
	"tenantadmin-backend/internal/domain"
	"tenantadmin-backend/internal/repository"
)

const companyColumns = `id, company_name, COALESCE(address, ''), COALESCE(phone, ''), email, status, date_joined, last_activity, COALESCE(preferred_subscription_plan, ''), num_of_employees`

type companyRepository struct {
	db *sql.DB
}

func NewCompanyRepository(db *sql.DB) repository.CompanyRepository {
	return &companyRepository{db: db}
}

func scanCompany(row interface{ Scan(...interface{}) error }) (*domain.Company, error) {
	c := &domain.Company{}
	var lastActivity sql.NullTime
	err := row.Scan(&c.ID, &c.CompanyName, &c.Address, &c.Phone, &c.Email, &c.Status,
		&c.DateJoined, &lastActivity, &c.PreferredSubscriptionPlan, &c.NumOfEmployees)
	if err != nil {
		return nil, err
	}
	if lastActivity.Valid {
		c.LastActivity = &lastActivity.Time
	}
	return c, nil
}

func (r *companyRepository) Create(ctx context.Context, c *domain.Company, adminUserID string) error {
	c.DateJoined = time.Now().UTC()
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO companies (id, company_name, address, phone, email, status, date_joined, preferred_subscription_plan, num_of_employees)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			c.ID, c.CompanyName, c.Address, c.Phone, c.Email, c.Status, c.DateJoined,
			c.PreferredSubscriptionPlan, c.NumOfEmployees)
		if err != nil {
			return mapWriteErr(err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO company_admins (company_id, user_id) VALUES ($1, $2)`,
			c.ID, adminUserID)
		return mapWriteErr(err)
	})
}

func (r *companyRepository) GetByID(ctx context.Context, id string, scope authz.Scope) (*domain.Company, error) {
	b := &condBuilder{}
	b.add("id = $%d", id)
	b.scopeCompany(scope, "id")
	query := `SELECT ` + companyColumns + ` FROM companies` + b.where()
	return scanCompany(r.db.QueryRowContext(ctx, query, b.args...))
}

func (r *companyRepository) GetByEmail(ctx context.Context, email string) (*domain.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE LOWER(email) = LOWER($1)`
	return scanCompany(r.db.QueryRowContext(ctx, query, email))
}

func (r *companyRepository) List(ctx context.Context, f repository.CompanyFilter) ([]domain.Company, int64, error) {
	b := &condBuilder{}
	b.scopeCompany(f.Scope, "id")
	if f.Search != "" {
		b.add("company_name ILIKE $%d", "%"+f.Search+"%")
	}
	if f.Status != nil {
		b.add("status = $%d", *f.Status)
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM companies` + b.where()
	if err := r.db.QueryRowContext(ctx, countQuery, b.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = "company_name"
	}
	query := `SELECT ` + companyColumns + ` FROM companies` + b.where() +
		b.orderLimit(sortBy, f.SortDesc, f.Page.PageSize, f.Page.Offset())
	rows, err := r.db.QueryContext(ctx, query, b.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var companies []domain.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, 0, err
		}
		companies = append(companies, *c)
	}
	return companies, total, rows.Err()
}

func (r *companyRepository) Update(ctx context.Context, c *domain.Company) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE companies SET company_name=$1, address=$2, phone=$3, email=$4, status=$5, last_activity=$6, preferred_subscription_plan=$7, num_of_employees=$8 WHERE id=$9`,
		c.CompanyName, c.Address, c.Phone, c.Email, c.Status, c.LastActivity,
		c.PreferredSubscriptionPlan, c.NumOfEmployees, c.ID)
	return mapWriteErr(err)
}

// Delete removes the company and everything scoped to it in one
// transaction: report grants, reports, role=user members, admin links.
func (r *companyRepository) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM user_reports WHERE report_id IN (SELECT id FROM reports WHERE company_id = $1)`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM reports WHERE company_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE company_id = $1 AND role = 'user'`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM company_admins WHERE company_id = $1`, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM companies WHERE id = $1`, id)
		return err
	})
}

func (r *companyRepository) AdminIDs(ctx context.Context, companyID string) ([]string, error) {
	return r.queryIDs(ctx, `SELECT user_id FROM company_admins WHERE company_id = $1`, companyID)
}

func (r *companyRepository) AdminCompanies(ctx context.Context, userID string) ([]string, error) {
	return r.queryIDs(ctx, `SELECT company_id FROM company_admins WHERE user_id = $1`, userID)
}

func (r *companyRepository) queryIDs(ctx context.Context, query, arg string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
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

func (r *companyRepository) AddAdmin(ctx context.Context, companyID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO company_admins (company_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		companyID, userID)
	return err
}

func (r *companyRepository) RemoveAdmin(ctx context.Context, companyID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM company_admins WHERE company_id = $1 AND user_id = $2`, companyID, userID)
	return err
}

func (r *companyRepository) CountAdmins(ctx context.Context, companyID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM company_admins WHERE company_id = $1`, companyID).Scan(&count)
	return count, err
}
