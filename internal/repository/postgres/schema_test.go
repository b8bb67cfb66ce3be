package postgres

import (
	"os"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

// The sqlmock tests match queries against expectations, not against the
// real schema, so a column rename in the DDL would slip through them.
// This cross-checks every column the repositories select against the
// migration that creates the tables.
func TestMigrationCoversRepositoryColumns(t *testing.T) {
	ddl, err := os.ReadFile("../../../migrations/0001_init.up.sql")
	if err != nil {
		t.Fatalf("reading migration: %s", err)
	}

	tables := map[string]string{
		"companies":       companyColumns,
		"users":           userColumns,
		"reports":         reportColumns,
		"billing_records": billingColumns,
		"subscriptions":   subscriptionColumns,
		"sessions":        sessionColumns,
	}
	for table, columns := range tables {
		block := createTableBlock(t, string(ddl), table)
		for _, col := range selectedColumns(columns) {
			assert.Regexp(t, `(?m)^\s+`+col+`\s`, block,
				"table %s is missing column %s", table, col)
		}
	}
}

func createTableBlock(t *testing.T, ddl, table string) string {
	t.Helper()
	re := regexp.MustCompile(`(?s)CREATE TABLE ` + table + ` \((.*?)\);`)
	m := re.FindStringSubmatch(ddl)
	if m == nil {
		t.Fatalf("migration does not create table %s", table)
	}
	return m[1]
}

// selectedColumns strips COALESCE wrappers and defaults down to the bare
// lower-case column names.
func selectedColumns(list string) []string {
	return regexp.MustCompile(`[a-z_]+`).FindAllString(list, -1)
}
