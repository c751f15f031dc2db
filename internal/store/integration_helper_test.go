//go:build integration

package store

import (
	"context"
	"os"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/config"
)

// newTestStore connects to the database named by the TEST_DB_NAME env
// var (every other setting, and the name when TEST_DB_NAME is unset,
// comes from config.Load), applies migrations,
// and truncates every table so each test starts from a clean slate.
// Gated behind the integration build tag so real-database tests stay
// out of the default `go test ./...` run.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	cfg := config.Load()
	if v := os.Getenv("TEST_DB_NAME"); v != "" {
		cfg.Database.DBName = v
	}

	log := zerolog.Nop()
	st, err := New(context.Background(), cfg.Database, log)
	if err != nil {
		t.Fatalf("connect to test database: %v", err)
	}
	t.Cleanup(st.Close)

	if err := st.Migrate(databaseURLFor(cfg.Database)); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	if _, err := st.pool.Exec(context.Background(), `TRUNCATE registrations, events, users RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate test database: %v", err)
	}

	return st
}

func databaseURLFor(db config.DatabaseConfig) string {
	return "postgres://" + db.User + ":" + db.Password + "@" + db.Host + ":" + db.Port + "/" + db.DBName + "?sslmode=" + db.SSLMode
}
