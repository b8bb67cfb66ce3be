package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tenantadmin-backend/internal/authz"

	"github.com/lib/pq"
)

// condBuilder accumulates WHERE conditions with positional args so the
// count query and the page query share the exact same predicate.
type condBuilder struct {
	conds []string
	args  []interface{}
}

func (b *condBuilder) add(format string, arg interface{}) {
	b.args = append(b.args, arg)
	b.conds = append(b.conds, fmt.Sprintf(format, len(b.args)))
}

func (b *condBuilder) addRaw(cond string) {
	b.conds = append(b.conds, cond)
}

func (b *condBuilder) where() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

// next returns the placeholder index for one more appended arg.
func (b *condBuilder) next(arg interface{}) int {
	b.args = append(b.args, arg)
	return len(b.args)
}

// scopeCompany compiles the visibility scope for the given company-id
// column. An empty scope matches nothing: visibility narrowing happens in
// SQL, never as a post-fetch filter.
func (b *condBuilder) scopeCompany(sc authz.Scope, col string) {
	if sc.All {
		return
	}
	if len(sc.CompanyIDs) == 0 {
		b.addRaw("1 = 0")
		return
	}
	b.add(col+" = ANY($%d)", pq.Array(sc.CompanyIDs))
}

// orderLimit appends ORDER BY / LIMIT / OFFSET. sortBy is a column name
// already validated by the service allow-list.
func (b *condBuilder) orderLimit(sortBy string, desc bool, limit, offset int) string {
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	ln := b.next(limit)
	on := b.next(offset)
	return fmt.Sprintf(" ORDER BY %s %s LIMIT $%d OFFSET $%d", sortBy, dir, ln, on)
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (class 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// ErrDuplicateKey is what repositories surface for unique violations so
// services can remap them to the structured taxonomy.
var ErrDuplicateKey = errors.New("duplicate key")

func mapWriteErr(err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	return err
}

// withTx runs fn inside a transaction, rolling back on error.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
