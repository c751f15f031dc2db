package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// InsertUser creates a new user and returns its generated id.
func (tx *Tx) InsertUser(ctx context.Context, name, email, passwordHash string) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash) VALUES ($1, $2, $3) RETURNING id`,
		name, email, passwordHash,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", classify(err))
	}
	return id, nil
}

// GetUser returns a user by id or ErrNotFound.
func (tx *Tx) GetUser(ctx context.Context, id int64) (*User, error) {
	return scanUser(tx.QueryRow(ctx,
		`SELECT id, name, email, password_hash, is_active, created_at, updated_at
		   FROM users WHERE id = $1`, id))
}

// GetUserByEmail returns a user by case-folded email or ErrNotFound.
func (tx *Tx) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(tx.QueryRow(ctx,
		`SELECT id, name, email, password_hash, is_active, created_at, updated_at
		   FROM users WHERE lower(email) = lower($1)`, email))
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", classify(err))
	}
	return &u, nil
}
