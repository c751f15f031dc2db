package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// InsertEvent creates a new event with current_registrations = 0.
func (tx *Tx) InsertEvent(ctx context.Context, e Event) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx,
		`INSERT INTO events (title, description, date_time, location, capacity, current_registrations, created_by, is_active)
		 VALUES ($1, $2, $3, $4, $5, 0, $6, true)
		 RETURNING id`,
		e.Title, e.Description, e.DateTime, e.Location, e.Capacity, e.CreatedBy,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", classify(err))
	}
	return id, nil
}

// GetEvent returns an active event by id, without locking, or
// ErrNotFound.
func (tx *Tx) GetEvent(ctx context.Context, id int64) (*Event, error) {
	return scanEvent(tx.QueryRow(ctx, eventSelectSQL+` WHERE id = $1 AND is_active`, id))
}

// GetEventAny returns an event regardless of is_active, so an owner
// can still see a soft-deleted event of their own.
func (tx *Tx) GetEventAny(ctx context.Context, id int64) (*Event, error) {
	return scanEvent(tx.QueryRow(ctx, eventSelectSQL+` WHERE id = $1`, id))
}

// LockEventForUpdate acquires the per-event serializer: SELECT ... FOR
// UPDATE blocks any other write-transaction trying to lock the same
// row until this transaction commits or rolls back.
func (tx *Tx) LockEventForUpdate(ctx context.Context, id int64) (*Event, error) {
	return scanEvent(tx.QueryRow(ctx, eventSelectSQL+` WHERE id = $1 AND is_active FOR UPDATE`, id))
}

// LockEventForUpdateAny is LockEventForUpdate without the is_active
// filter, used by Cancel so that cancelling a registration on a
// soft-deleted event can still be evaluated (Cancel's own NotFound
// branch decides, not the row lookup).
func (tx *Tx) LockEventForUpdateAny(ctx context.Context, id int64) (*Event, error) {
	return scanEvent(tx.QueryRow(ctx, eventSelectSQL+` WHERE id = $1 FOR UPDATE`, id))
}

const eventSelectSQL = `
	SELECT id, title, description, date_time, location, capacity, current_registrations, created_by, is_active, created_at, updated_at
	  FROM events`

func scanEvent(row pgx.Row) (*Event, error) {
	var e Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.DateTime, &e.Location, &e.Capacity,
		&e.CurrentRegistrations, &e.CreatedBy, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan event: %w", classify(err))
	}
	return &e, nil
}

// UpdateEvent writes back mutable event fields. Invariant enforcement
// (capacity floor, date_time immutability once past) lives in the
// event service, which holds the lock for the duration of the check.
func (tx *Tx) UpdateEvent(ctx context.Context, e Event) error {
	_, err := tx.Exec(ctx,
		`UPDATE events
		    SET title = $1, description = $2, date_time = $3, location = $4, capacity = $5, updated_at = now()
		  WHERE id = $6`,
		e.Title, e.Description, e.DateTime, e.Location, e.Capacity, e.ID,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", classify(err))
	}
	return nil
}

// SetEventActive flips the soft-delete flag.
func (tx *Tx) SetEventActive(ctx context.Context, id int64, active bool) error {
	_, err := tx.Exec(ctx, `UPDATE events SET is_active = $1, updated_at = now() WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("set event active: %w", classify(err))
	}
	return nil
}

// DeleteEvent hard-deletes an event; registrations cascade via the
// foreign key.
func (tx *Tx) DeleteEvent(ctx context.Context, id int64) error {
	_, err := tx.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", classify(err))
	}
	return nil
}

// BumpEventCounter adjusts current_registrations by delta (+1 or -1),
// guarded by the row's CHECK(current_registrations BETWEEN 0 AND
// capacity) constraint. Must be called while still holding the FOR
// UPDATE lock acquired by LockEventForUpdate in the same transaction,
// so the mutation is ordered with the capacity check.
func (tx *Tx) BumpEventCounter(ctx context.Context, id int64, delta int) error {
	_, err := tx.Exec(ctx,
		`UPDATE events SET current_registrations = current_registrations + $1, updated_at = now() WHERE id = $2`,
		delta, id,
	)
	if err != nil {
		return fmt.Errorf("bump event counter: %w", classify(err))
	}
	return nil
}

// CountOwnerEventsNear counts the owner's other active events whose
// date_time falls within window of at, excluding excludeID (0 to
// exclude nothing). Backs the scheduling-conflict policy.
func (tx *Tx) CountOwnerEventsNear(ctx context.Context, ownerID int64, at time.Time, window time.Duration, excludeID int64) (int, error) {
	var count int
	err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM events
		  WHERE created_by = $1 AND is_active AND id <> $2
		    AND date_time BETWEEN $3 AND $4`,
		ownerID, excludeID, at.Add(-window), at.Add(window),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count owner events near: %w", classify(err))
	}
	return count, nil
}

// EventFilter describes the ListUpcoming filters, sort, and
// pagination options.
type EventFilter struct {
	Search      string
	Location    string
	MinCapacity *int
	MaxCapacity *int
	DateFrom    *time.Time
	DateTo      *time.Time
	SortBy      string // date_time|title|capacity|current_registrations|created_at
	SortOrder   string // ASC|DESC
	Page        int    // 1-based
	Limit       int    // 1..100
	Now         time.Time
}

var allowedSortColumns = map[string]string{
	"date_time":             "date_time",
	"title":                 "title",
	"capacity":              "capacity",
	"current_registrations": "current_registrations",
	"created_at":            "created_at",
}

// SearchEvents returns a page of active, future events matching f,
// plus the total count across all pages.
func (tx *Tx) SearchEvents(ctx context.Context, f EventFilter) ([]Event, int, error) {
	where := []string{"is_active", "date_time > $1"}
	args := []any{f.Now}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		where = append(where, fmt.Sprintf("(title ILIKE %s OR description ILIKE %s OR location ILIKE %s)", p, p, p))
	}
	if f.Location != "" {
		where = append(where, fmt.Sprintf("location ILIKE %s", arg("%"+f.Location+"%")))
	}
	if f.MinCapacity != nil {
		where = append(where, fmt.Sprintf("capacity >= %s", arg(*f.MinCapacity)))
	}
	if f.MaxCapacity != nil {
		where = append(where, fmt.Sprintf("capacity <= %s", arg(*f.MaxCapacity)))
	}
	if f.DateFrom != nil {
		where = append(where, fmt.Sprintf("date_time >= %s", arg(*f.DateFrom)))
	}
	if f.DateTo != nil {
		where = append(where, fmt.Sprintf("date_time <= %s", arg(*f.DateTo)))
	}

	whereSQL := strings.Join(where, " AND ")

	sortCol, ok := allowedSortColumns[f.SortBy]
	if !ok {
		sortCol = "date_time"
	}
	order := "ASC"
	if strings.EqualFold(f.SortOrder, "DESC") {
		order = "DESC"
	}
	orderSQL := fmt.Sprintf("%s %s", sortCol, order)
	if sortCol == "date_time" {
		// Primary date_time ascending, then location ascending with
		// nulls last.
		orderSQL = fmt.Sprintf("date_time %s, location %s NULLS LAST", order, order)
	}

	var total int
	countSQL := fmt.Sprintf(`SELECT COUNT(*) FROM events WHERE %s`, whereSQL)
	if err := tx.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", classify(err))
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	limitArg := arg(limit)
	offsetArg := arg(offset)
	listSQL := fmt.Sprintf(
		`SELECT id, title, description, date_time, location, capacity, current_registrations, created_by, is_active, created_at, updated_at
		   FROM events WHERE %s ORDER BY %s LIMIT %s OFFSET %s`,
		whereSQL, orderSQL, limitArg, offsetArg,
	)

	rows, err := tx.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search events: %w", classify(err))
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.DateTime, &e.Location, &e.Capacity,
			&e.CurrentRegistrations, &e.CreatedBy, &e.IsActive, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan event: %w", classify(err))
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("search events: %w", classify(err))
	}
	return events, total, nil
}

// ListOwnedEvents returns every event (active or soft-deleted) created
// by ownerID, newest first.
func (tx *Tx) ListOwnedEvents(ctx context.Context, ownerID int64) ([]Event, error) {
	rows, err := tx.Query(ctx,
		`SELECT id, title, description, date_time, location, capacity, current_registrations, created_by, is_active, created_at, updated_at
		   FROM events WHERE created_by = $1 ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list owned events: %w", classify(err))
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.DateTime, &e.Location, &e.Capacity,
			&e.CurrentRegistrations, &e.CreatedBy, &e.IsActive, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", classify(err))
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
