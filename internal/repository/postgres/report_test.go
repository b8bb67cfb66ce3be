package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"tenantadmin-backend/internal/authz"
	"tenantadmin-backend/internal/domain"
)

func newReportRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "report_name", "report_url", "company_id", "status",
		"access_count", "date_created", "last_modified_at",
	})
}

func TestReportRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewReportRepository(db)
	ctx := context.Background()

	report := &domain.Report{
		ID:         uuid.NewString(),
		ReportName: "Q1 Revenue",
		ReportURL:  "https://bi.acme.test/q1",
		CompanyID:  uuid.NewString(),
		Status:     domain.ReportStatusActive,
	}
	grantee := uuid.NewString()

	t.Run("WithGrants", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO reports").
			WithArgs(report.ID, report.ReportName, report.ReportURL, report.CompanyID,
				report.Status, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO user_reports").
			WithArgs(report.ID, grantee).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.Create(ctx, report, []string{grantee}))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DuplicateName", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO reports").
			WillReturnError(&pq.Error{Code: "23505"})
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.Create(ctx, report, nil), ErrDuplicateKey)
	})
}

func TestReportRepository_GetByID_GranteeScope(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewReportRepository(db)
	ctx := context.Background()

	id := uuid.NewString()
	companyID := uuid.NewString()
	userID := uuid.NewString()

	// role=user visibility: own company AND an explicit grant row.
	mock.ExpectQuery(`SELECT (.+) FROM reports WHERE id = \$1 AND company_id = ANY\(\$2\) AND id IN \(SELECT report_id FROM user_reports WHERE user_id = \$3\)`).
		WithArgs(id, pq.Array([]string{companyID}), userID).
		WillReturnRows(newReportRows().
			AddRow(id, "Q1 Revenue", "https://bi.acme.test/q1", companyID, "active", 4, time.Now(), time.Now()))

	report, err := repo.GetByID(ctx, id, authz.Scope{CompanyIDs: []string{companyID}, GranteeUserID: userID})
	assert.NoError(t, err)
	assert.Equal(t, int64(4), report.AccessCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepository_FindDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewReportRepository(db)
	ctx := context.Background()

	t.Run("NoClash", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM reports WHERE \(report_name = \$1 OR report_url = \$2\) AND id <> \$3`).
			WithArgs("Q1", "https://bi.acme.test/q1", "").
			WillReturnRows(newReportRows())

		_, err := repo.FindDuplicate(ctx, "Q1", "https://bi.acme.test/q1", "")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("Clash", func(t *testing.T) {
		other := uuid.NewString()
		mock.ExpectQuery(`SELECT (.+) FROM reports WHERE \(report_name = \$1 OR report_url = \$2\) AND id <> \$3`).
			WithArgs("Q1", "https://bi.acme.test/q1", "").
			WillReturnRows(newReportRows().
				AddRow(other, "Q1", "https://elsewhere.test", uuid.NewString(), "active", 0, time.Now(), time.Now()))

		dup, err := repo.FindDuplicate(ctx, "Q1", "https://bi.acme.test/q1", "")
		assert.NoError(t, err)
		assert.Equal(t, other, dup.ID)
	})
}

func TestReportRepository_IncrementAccessCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewReportRepository(db)
	id := uuid.NewString()

	mock.ExpectQuery(`UPDATE reports SET access_count = access_count \+ 1 WHERE id = \$1 RETURNING access_count`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"access_count"}).AddRow(9))

	count, err := repo.IncrementAccessCount(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, int64(9), count)
}

func TestReportRepository_ReplaceGrants(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewReportRepository(db)
	reportID := uuid.NewString()
	keep := uuid.NewString()

	t.Run("FullReplace", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM user_reports").
			WithArgs(reportID).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec("INSERT INTO user_reports").
			WithArgs(reportID, keep).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.ReplaceGrants(context.Background(), reportID, []string{keep}))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("EmptySetRevokesAll", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM user_reports").
			WithArgs(reportID).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		assert.NoError(t, repo.ReplaceGrants(context.Background(), reportID, nil))
	})

	t.Run("InsertFailureRollsBack", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM user_reports").
			WithArgs(reportID).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec("INSERT INTO user_reports").
			WillReturnError(errors.New("boom"))
		mock.ExpectRollback()

		assert.Error(t, repo.ReplaceGrants(context.Background(), reportID, []string{keep}))
	})
}

func TestReportRepository_HasGrant(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewReportRepository(db)
	reportID := uuid.NewString()
	userID := uuid.NewString()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(reportID, userID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	granted, err := repo.HasGrant(context.Background(), reportID, userID)
	assert.NoError(t, err)
	assert.True(t, granted)
}
