// Package store is the transactional storage layer for users, events,
// and registrations. It wraps pgx directly and is the single place
// that talks to PostgreSQL.
package store

import (
	"context"
	"embed"
	"fmt"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/config"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Store owns the connection pool and exposes transactional operations.
type Store struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// New creates and validates a pgxpool connection pool, retrying to
// accommodate containers starting up.
func New(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	const attempts = 5
	var pool *pgxpool.Pool
	for attempt := 1; attempt <= attempts; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			if pingErr := pool.Ping(ctx); pingErr == nil {
				break
			}
			pool.Close()
			err = fmt.Errorf("ping: %w", pingErr)
		}
		log.Warn().Int("attempt", attempt).Int("max_attempts", attempts).Err(err).Msg("db connect attempt failed, retrying")
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	return &Store{pool: pool, log: log}, nil
}

// Close releases the connection pool.
func (s *Store) Close() { s.pool.Close() }

// Ping reports whether the database is reachable, used by the /health
// route.
func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Tx is a borrowed transactional handle; it must not outlive the
// function that received it.
type Tx struct {
	pgx.Tx
}

// BeginRead opens a read-only snapshot transaction.
func (s *Store) BeginRead(ctx context.Context) (*Tx, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("begin read tx: %w", err)
	}
	return &Tx{Tx: tx}, nil
}

// BeginWrite opens a read-write transaction, used for
// SELECT ... FOR UPDATE row locks.
func (s *Store) BeginWrite(ctx context.Context) (*Tx, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return nil, fmt.Errorf("begin write tx: %w", err)
	}
	return &Tx{Tx: tx}, nil
}

// WithReadTx runs fn inside a read transaction, guaranteeing
// commit-or-rollback on every exit path.
func (s *Store) WithReadTx(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) error {
	tx, err := s.BeginRead(ctx)
	if err != nil {
		return err
	}
	return runTx(ctx, tx, fn)
}

// WithWriteTx runs fn inside a write transaction, guaranteeing
// commit-or-rollback on every exit path.
func (s *Store) WithWriteTx(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) error {
	tx, err := s.BeginWrite(ctx)
	if err != nil {
		return err
	}
	return runTx(ctx, tx, fn)
}

func runTx(ctx context.Context, tx *Tx, fn func(context.Context, *Tx) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err = fn(ctx, tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", classify(err))
	}
	return nil
}

// WithRetry retries fn up to maxAttempts times with exponential
// backoff capped at 100ms whenever fn returns a transient Store fault.
// Non-transient errors propagate on the first attempt.
func WithRetry(ctx context.Context, maxAttempts int, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !IsTransient(err) || attempt == maxAttempts {
			return err
		}
		backoff := time.Duration(1<<uint(attempt-1)) * 10 * time.Millisecond
		if backoff > 100*time.Millisecond {
			backoff = 100 * time.Millisecond
		}
		jitter := time.Duration(rand.Int63n(int64(backoff) + 1))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(jitter):
		}
	}
	return err
}
