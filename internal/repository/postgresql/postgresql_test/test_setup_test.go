package postgresql_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/cmlabs-hris/hrm-attendance-go/internal/pkg/database"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	setupOnce sync.Once
	testDB    *database.DB
	setupErr  error
)

// openTestDB connects to TEST_DATABASE_URL and applies migrations once.
// Tests are skipped when the variable is not set.
func openTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	setupOnce.Do(func() {
		if setupErr = database.RunMigrations(dsn, zap.NewNop()); setupErr != nil {
			return
		}
		testDB, setupErr = database.NewPostgreSQLDB(context.Background(), dsn, database.PoolConfig{MaxConns: 10, MinConns: 1})
	})
	require.NoError(t, setupErr)

	truncateAll(t, testDB)
	return testDB
}

func truncateAll(t *testing.T, db *database.DB) {
	t.Helper()
	_, err := db.Exec(context.Background(),
		"TRUNCATE TABLE attendance_correction_requests, attendances, shifts, employees CASCADE")
	require.NoError(t, err)
}
