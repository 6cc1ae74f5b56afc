package postgres

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

const integrationCollection = "customers_it"

// openPostgresStoreForIntegrationTest подключается к CUSTOMERS_POSTGRES_TEST_DSN
// и пропускает тест, если переменная не задана или база недоступна.
func openPostgresStoreForIntegrationTest(t *testing.T) *Store {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("CUSTOMERS_POSTGRES_TEST_DSN"))
	if dsn == "" {
		t.Skip("CUSTOMERS_POSTGRES_TEST_DSN is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := Open(ctx, Config{DSN: dsn})
	if err != nil {
		t.Skipf("postgres is not available for integration tests: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if _, err := store.DB().ExecContext(ctx, `DELETE FROM documents WHERE collection = $1`, integrationCollection); err != nil {
		t.Fatalf("cleanup documents: %v", err)
	}
	return store
}
