//go:build integration

package registration

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/config"
	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/store"
)

func testLogger() zerolog.Logger { return zerolog.Nop() }

func testDatabaseURL(cfg config.Config) string {
	db := cfg.Database
	return "postgres://" + db.User + ":" + db.Password + "@" + db.Host + ":" + db.Port + "/" + db.DBName + "?sslmode=" + db.SSLMode
}

func truncateAll(st *store.Store) error {
	return st.WithWriteTx(context.Background(), func(ctx context.Context, tx *store.Tx) error {
		_, err := tx.Exec(ctx, `TRUNCATE registrations, events, users RESTART IDENTITY CASCADE`)
		return err
	})
}
