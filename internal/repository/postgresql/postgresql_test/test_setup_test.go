package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/database"
	"github.com/stretchr/testify/require"
)

// TestDatabaseSetup holds the connection to the integration database. The
// database must carry the HRIS schema and the payroll closing migrations.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and skips the test when it is unset
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	db, err := database.NewPostgreSQLDB(context.Background(), dsn, database.PoolConfig{MaxConns: 4})
	require.NoError(t, err, "failed to connect to test database")

	setup := &TestDatabaseSetup{DB: db}
	require.NoError(t, setup.TruncateClosingTables(context.Background()))
	t.Cleanup(func() {
		_ = setup.TruncateClosingTables(context.Background())
		setup.Close()
	})
	return setup
}

// TruncateClosingTables removes every row written by the closing workflow
func (t *TestDatabaseSetup) TruncateClosingTables(ctx context.Context) error {
	tx, err := t.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"payroll_processing_runs",
		"attendance_summaries",
		"payroll_periods",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// CreateCompany inserts a company to scope test rows to
func (t *TestDatabaseSetup) CreateCompany(tb testing.TB, ctx context.Context) string {
	tb.Helper()

	var companyID string
	err := t.DB.QueryRow(ctx, `
		INSERT INTO companies (id, name, username, created_at, updated_at)
		VALUES (gen_random_uuid(), 'Test Company', 'test-company-' || substr(md5(random()::text), 1, 8), NOW(), NOW())
		RETURNING id
	`).Scan(&companyID)
	require.NoError(tb, err)

	tb.Cleanup(func() {
		_, _ = t.DB.Exec(context.Background(), `DELETE FROM companies WHERE id = $1`, companyID)
	})
	return companyID
}

// Close closes the database connection
func (t *TestDatabaseSetup) Close() {
	t.DB.Close()
}
