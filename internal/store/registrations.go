package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// FindRegistration returns the (user, event) registration row
// regardless of status, or ErrNotFound.
func (tx *Tx) FindRegistration(ctx context.Context, userID, eventID int64) (*Registration, error) {
	return scanRegistration(tx.QueryRow(ctx,
		`SELECT id, user_id, event_id, registered_at, status
		   FROM registrations WHERE user_id = $1 AND event_id = $2`,
		userID, eventID,
	))
}

// GetRegistration returns a registration by id, or ErrNotFound.
func (tx *Tx) GetRegistration(ctx context.Context, id int64) (*Registration, error) {
	return scanRegistration(tx.QueryRow(ctx,
		`SELECT id, user_id, event_id, registered_at, status FROM registrations WHERE id = $1`, id,
	))
}

func scanRegistration(row pgx.Row) (*Registration, error) {
	var r Registration
	err := row.Scan(&r.ID, &r.UserID, &r.EventID, &r.RegisteredAt, &r.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan registration: %w", classify(err))
	}
	return &r, nil
}

// InsertRegistration creates a new registration row and returns its
// id. Surfaces ErrUniqueViolation if an active row for (user, event)
// already exists and ErrForeignKeyViolation if user or event is
// missing.
func (tx *Tx) InsertRegistration(ctx context.Context, userID, eventID int64, status RegistrationStatus, registeredAt time.Time) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx,
		`INSERT INTO registrations (user_id, event_id, registered_at, status) VALUES ($1, $2, $3, $4) RETURNING id`,
		userID, eventID, registeredAt, status,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert registration: %w", classify(err))
	}
	return id, nil
}

// UpdateRegistrationStatus transitions a registration to status,
// stamping registeredAt (used by reactivation).
func (tx *Tx) UpdateRegistrationStatus(ctx context.Context, id int64, status RegistrationStatus, registeredAt time.Time) error {
	_, err := tx.Exec(ctx,
		`UPDATE registrations SET status = $1, registered_at = $2 WHERE id = $3`,
		status, registeredAt, id,
	)
	if err != nil {
		return fmt.Errorf("update registration status: %w", classify(err))
	}
	return nil
}

// DeleteRegistration physically removes a registration row. No code
// path calls it: hard-deletes of the parent user/event remove
// registrations through the foreign keys' ON DELETE CASCADE, and
// user-initiated cancellation flips status instead.
func (tx *Tx) DeleteRegistration(ctx context.Context, id int64) error {
	_, err := tx.Exec(ctx, `DELETE FROM registrations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete registration: %w", classify(err))
	}
	return nil
}

// RegistrantView is the {id, name, email, registered_at} shape shown
// to the owner or a confirmed attendee.
type RegistrantView struct {
	UserID       int64
	Name         string
	Email        string
	RegisteredAt time.Time
}

// ListConfirmedRegistrants returns full registrant details for an
// event, ordered by registration time.
func (tx *Tx) ListConfirmedRegistrants(ctx context.Context, eventID int64) ([]RegistrantView, error) {
	rows, err := tx.Query(ctx,
		`SELECT u.id, u.name, u.email, r.registered_at
		   FROM registrations r JOIN users u ON u.id = r.user_id
		  WHERE r.event_id = $1 AND r.status = 'confirmed'
		  ORDER BY r.registered_at ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list confirmed registrants: %w", classify(err))
	}
	defer rows.Close()

	var out []RegistrantView
	for rows.Next() {
		var v RegistrantView
		if err := rows.Scan(&v.UserID, &v.Name, &v.Email, &v.RegisteredAt); err != nil {
			return nil, fmt.Errorf("scan registrant: %w", classify(err))
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// CountConfirmedRegistrants returns only the count, for viewers who
// are not the owner and not a confirmed attendee.
func (tx *Tx) CountConfirmedRegistrants(ctx context.Context, eventID int64) (int, error) {
	var n int
	err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1 AND status = 'confirmed'`, eventID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count confirmed registrants: %w", classify(err))
	}
	return n, nil
}
