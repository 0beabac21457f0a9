package testing

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/study/querydsl-go/internal/driver"
	"github.com/study/querydsl-go/internal/migrations"
)

// SetupTestDB opens a migrated database for provider and returns the
// connection with its cleanup function. SQLite uses a file in t.TempDir();
// PostgreSQL and MySQL use TEST_DATABASE_URL_<PROVIDER> and are emptied first.
func SetupTestDB(t *testing.T, provider string) (driver.DB, func()) {
	t.Helper()

	url := GetTestDatabaseURL(provider)
	switch provider {
	case "sqlite":
		if url == "" {
			url = "sqlite://" + filepath.Join(t.TempDir(), "querydsl_test.db")
		}
	case "postgresql", "mysql":
		SkipIfNoDatabase(t, provider)
	default:
		t.Fatalf("unsupported provider: %s", provider)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, detected, err := driver.Open(ctx, url, nil)
	if err != nil {
		t.Fatalf("failed to connect to %s: %v", provider, err)
	}
	if detected != provider {
		db.Close()
		t.Fatalf("TEST_DATABASE_URL for %s points at %s", provider, detected)
	}

	m, err := migrations.New(db.SQLDB(), provider, "")
	if err != nil {
		db.Close()
		t.Fatalf("failed to create migrator: %v", err)
	}
	if err := m.Up(ctx); err != nil {
		db.Close()
		t.Fatalf("failed to apply migrations: %v", err)
	}
	if provider != "sqlite" {
		CleanTestData(t, db)
	}

	return db, func() {
		db.Close()
	}
}

// CleanTestData deletes every member and team row, children first
func CleanTestData(t *testing.T, db driver.DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, table := range []string{"member", "team"} {
		if _, err := db.Exec(ctx, "DELETE FROM "+table); err != nil {
			t.Fatalf("failed to clean table %s: %v", table, err)
		}
	}
}

// GetTestDatabaseURL gets test database URL from environment variables
func GetTestDatabaseURL(provider string) string {
	var envVar string
	switch provider {
	case "postgresql":
		envVar = os.Getenv("TEST_DATABASE_URL_POSTGRESQL")
	case "mysql":
		envVar = os.Getenv("TEST_DATABASE_URL_MYSQL")
	case "sqlite":
		envVar = os.Getenv("TEST_DATABASE_URL_SQLITE")
	}
	return envVar
}
