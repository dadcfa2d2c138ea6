package testing

import (
	"context"
	"fmt"
	"net"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgnc/pgnc-upload/internal/testinfra"
	"github.com/pgnc/pgnc-upload/pkg/pgnc"
)

// TestConnEnv overrides the auto-started container with an existing server.
const TestConnEnv = "PGNC_TEST_CONN"

var (
	testContainerOnce sync.Once
	testContainerConn string
	testContainerErr  error
)

func getOrStartTestContainer() (string, error) {
	testContainerOnce.Do(func() {
		ctx := context.Background()
		container, err := testinfra.StartSimplePostgres(ctx)
		if err != nil {
			testContainerErr = err
			return
		}
		testContainerConn = container.ConnString
	})
	return testContainerConn, testContainerErr
}

// GetTestConnectionString returns the test database connection string.
// Priority: PGNC_TEST_CONN env var > auto-started testcontainer > skip test.
func GetTestConnectionString(t *testing.T) string {
	t.Helper()

	if connString := os.Getenv(TestConnEnv); connString != "" {
		return connString
	}

	connString, err := getOrStartTestContainer()
	if err != nil {
		t.Skipf("%s not set and Docker unavailable: %v", TestConnEnv, err)
	}
	return connString
}

// SkipIfShort skips the test if running in short mode (-short flag).
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequireDatabase combines SkipIfShort and GetTestConnectionString for convenience.
// Returns the test connection string if available, otherwise skips the test.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return GetTestConnectionString(t)
}

// CreateTestDB creates a scratch database, runs each setup script in it and
// registers its removal with t.Cleanup. It returns the database name.
func CreateTestDB(t *testing.T, connString string, setup ...string) string {
	t.Helper()
	ctx := context.Background()

	cfg, err := pgx.ParseConfig(connString)
	if err != nil {
		t.Fatalf("Failed to parse connection string: %v", err)
	}
	dbName := "pgnc_test_" + uuid.NewString()[:8]

	admin, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to connect for test DB creation: %v", err)
	}
	_, err = admin.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", pgx.Identifier{dbName}.Sanitize()))
	admin.Close(ctx)
	if err != nil {
		t.Fatalf("Failed to create test database %s: %v", dbName, err)
	}
	t.Cleanup(func() { CleanupTestDB(t, connString, dbName) })

	dbCfg := cfg.Copy()
	dbCfg.Database = dbName
	conn, err := pgx.ConnectConfig(ctx, dbCfg)
	if err != nil {
		t.Fatalf("Failed to connect to %s: %v", dbName, err)
	}
	defer conn.Close(ctx)

	for _, sql := range setup {
		if _, err := conn.Exec(ctx, sql); err != nil {
			t.Fatalf("Failed to run setup in %s: %v", dbName, err)
		}
	}

	return dbName
}

// CleanupTestDB drops the test database.
// Safe to call multiple times (uses DROP DATABASE IF EXISTS).
func CleanupTestDB(t *testing.T, connString, dbName string) {
	t.Helper()
	ctx := context.Background()

	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		t.Logf("Warning: Failed to connect for cleanup: %v", err)
		return
	}
	defer conn.Close(ctx)

	_, err = conn.Exec(ctx, `
		SELECT pg_terminate_backend(pid)
		FROM pg_stat_activity
		WHERE datname = $1 AND pid <> pg_backend_pid()`, dbName)
	if err != nil {
		t.Logf("Warning: Failed to terminate connections to %s: %v", dbName, err)
	}

	_, err = conn.Exec(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS %s", pgx.Identifier{dbName}.Sanitize()))
	if err != nil {
		t.Logf("Warning: Failed to drop test database %s: %v", dbName, err)
	}
}

// LoopbackParams splits a connection string into the DBParams and local port
// a gateway expects once a tunnel is open. Servers that are not reachable on
// the loopback interface skip the test.
func LoopbackParams(t *testing.T, connString string) (pgnc.DBParams, int) {
	t.Helper()

	cfg, err := pgx.ParseConfig(connString)
	if err != nil {
		t.Fatalf("Failed to parse connection string: %v", err)
	}

	if cfg.Host != "localhost" {
		if ip := net.ParseIP(cfg.Host); ip == nil || !ip.IsLoopback() {
			t.Skipf("test server %s is not on the loopback interface", cfg.Host)
		}
	}

	return pgnc.DBParams{
		Name:     cfg.Database,
		User:     cfg.User,
		Password: cfg.Password,
		SSLMode:  "disable",
	}, int(cfg.Port)
}
