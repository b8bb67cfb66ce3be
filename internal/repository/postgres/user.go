package postgres

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"tenantadmin-backend/internal/domain"
	"tenantadmin-backend/internal/repository"
)

const userColumns = `id, user_name, email, role, company_id, status, password_hash, date_created, last_login, last_activity`

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func scanUser(row interface{ Scan(...interface{}) error }) (*domain.User, error) {
	u := &domain.User{}
	var companyID sql.NullString
	var lastLogin, lastActivity sql.NullTime
	err := row.Scan(&u.ID, &u.UserName, &u.Email, &u.Role, &companyID, &u.Status,
		&u.PasswordHash, &u.DateCreated, &lastLogin, &lastActivity)
	if err != nil {
		return nil, err
	}
	if companyID.Valid {
		u.CompanyID = &companyID.String
	}
	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	if lastActivity.Valid {
		u.LastActivity = &lastActivity.Time
	}
	return u, nil
}

// Create writes the user row, its initial password-history record and any
// admin-company links in one transaction, so a partial failure leaves no
// user behind without its history or links.
func (r *userRepository) Create(ctx context.Context, u *domain.User, rec *domain.PasswordRecord, adminCompanyIDs []string, historyKeep int) error {
	u.DateCreated = time.Now().UTC()
	rec.CreatedAt = u.DateCreated
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, user_name, email, role, company_id, status, password_hash, date_created)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			u.ID, u.UserName, u.Email, u.Role, u.CompanyID, u.Status, u.PasswordHash, u.DateCreated)
		if err != nil {
			return mapWriteErr(err)
		}
		if err := addPasswordRecord(ctx, tx, rec, historyKeep); err != nil {
			return err
		}
		for _, companyID := range adminCompanyIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO company_admins (company_id, user_id) VALUES ($1, $2)`,
				companyID, u.ID); err != nil {
				return mapWriteErr(err)
			}
		}
		return nil
	})
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *userRepository) GetByUserName(ctx context.Context, userName string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(user_name) = LOWER($1)`
	return scanUser(r.db.QueryRowContext(ctx, query, userName))
}

func (r *userRepository) List(ctx context.Context, f repository.UserFilter) ([]domain.User, int64, error) {
	b := &condBuilder{}
	b.scopeCompany(f.Scope, "company_id")
	if f.CompanyID != "" {
		b.add("company_id = $%d", f.CompanyID)
	}
	if f.Role != nil {
		b.add("role = $%d", *f.Role)
	}
	if f.Status != nil {
		b.add("status = $%d", *f.Status)
	}
	if f.Search != "" {
		n := strconv.Itoa(b.next("%" + f.Search + "%"))
		b.addRaw("(user_name ILIKE $" + n + " OR email ILIKE $" + n + ")")
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM users` + b.where()
	if err := r.db.QueryRowContext(ctx, countQuery, b.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = "user_name"
	}
	query := `SELECT ` + userColumns + ` FROM users` + b.where() +
		b.orderLimit(sortBy, f.SortDesc, f.Page.PageSize, f.Page.Offset())
	rows, err := r.db.QueryContext(ctx, query, b.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET user_name=$1, email=$2, role=$3, company_id=$4, status=$5, last_activity=$6 WHERE id=$7`,
		u.UserName, u.Email, u.Role, u.CompanyID, u.Status, u.LastActivity, u.ID)
	return mapWriteErr(err)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_reports WHERE user_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_password_history WHERE user_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
		return err
	})
}

// SetPassword updates the hash and appends it to the history in one
// transaction.
func (r *userRepository) SetPassword(ctx context.Context, rec *domain.PasswordRecord, historyKeep int) error {
	rec.CreatedAt = time.Now().UTC()
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE users SET password_hash=$1 WHERE id=$2`, rec.PasswordHash, rec.UserID)
		if err != nil {
			return err
		}
		return addPasswordRecord(ctx, tx, rec, historyKeep)
	})
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login=$1, last_activity=$1 WHERE id=$2`, at, id)
	return err
}

func (r *userRepository) PasswordHistory(ctx context.Context, userID string, limit int) ([]domain.PasswordRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, password_hash, created_at FROM user_password_history
		 WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.PasswordRecord
	for rows.Next() {
		var rec domain.PasswordRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.PasswordHash, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// addPasswordRecord inserts the new hash and prunes the history to the
// most recent keep rows, inside the caller's transaction.
func addPasswordRecord(ctx context.Context, tx *sql.Tx, rec *domain.PasswordRecord, keep int) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO user_password_history (id, user_id, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		rec.ID, rec.UserID, rec.PasswordHash, rec.CreatedAt)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`DELETE FROM user_password_history WHERE user_id = $1 AND id NOT IN (
		   SELECT id FROM user_password_history WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2)`,
		rec.UserID, keep)
	return err
}
