package testing

import (
	"os"
	"strings"
	"testing"
)

// SkipIfNoDatabase skips the test if database is not available
func SkipIfNoDatabase(t *testing.T, provider string) {
	t.Helper()
	if provider == "sqlite" {
		return
	}
	if GetTestDatabaseURL(provider) == "" {
		t.Skipf("TEST_DATABASE_URL_%s not set, skipping %s test", strings.ToUpper(provider), provider)
	}
}

// Providers lists the providers to run against: SQLite always, the others
// when their URL is set. TEST_PROVIDER narrows the list to one.
func Providers() []string {
	if p := os.Getenv("TEST_PROVIDER"); p != "" {
		return []string{p}
	}
	providers := []string{"sqlite"}
	for _, p := range []string{"postgresql", "mysql"} {
		if GetTestDatabaseURL(p) != "" {
			providers = append(providers, p)
		}
	}
	return providers
}
