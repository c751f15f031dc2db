// Command server is the application entry point: it wires config,
// store, the registration engine, the event service, the identity
// adapter, and the HTTP surface, then serves with graceful shutdown.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/clock"
	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/config"
	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/event"
	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/httpapi"
	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/identity"
	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/registration"
	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/store"
)

func main() {
	ctx := context.Background()

	cfg := config.Load()
	log := config.NewLogger(cfg)

	// ── 1. Connect to PostgreSQL and run migrations ───────────────────
	st, err := store.New(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("database: connect failed")
	}
	defer st.Close()
	log.Info().Msg("connected to PostgreSQL")

	if err := st.Migrate(databaseURL(cfg.Database)); err != nil {
		log.Fatal().Err(err).Msg("database: migration failed")
	}
	log.Info().Msg("migrations applied")

	// ── 2. Wire up layers ──────────────────────────────────────────────
	clk := clock.System{}
	regs := registration.New(st, clk)
	events := event.NewService(st, clk, cfg.Scheduling, cfg.Capacity)
	idp := identity.NewAdapter(cfg.Auth.JWTSecret, "event-reg-and-ticketing", cfg.Auth.JWTExpiry)

	srv := httpapi.New(cfg, st, events, regs, idp, log)

	// ── 3. Start server with graceful shutdown ────────────────────────
	httpSrv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", httpSrv.Addr).Msg("server listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}

func databaseURL(db config.DatabaseConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		db.User, db.Password, db.Host, db.Port, db.DBName, db.SSLMode)
}
