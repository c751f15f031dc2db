package store

import (
	"context"
	"fmt"
	"time"
)

// StatusCounts holds the per-status registration counts for an event.
type StatusCounts struct {
	Confirmed int
	Cancelled int
	Waitlist  int
	Pending   int
}

// Total returns the sum across all statuses.
func (c StatusCounts) Total() int { return c.Confirmed + c.Cancelled + c.Waitlist + c.Pending }

// TimelineBucket is one hourly bucket of confirmed registrations.
type TimelineBucket struct {
	Hour  time.Time
	Count int
}

// RecentRegistration is the {name, registered_at} shape of the ten
// most recent confirmed registrations.
type RecentRegistration struct {
	Name         string
	RegisteredAt time.Time
}

// EventStatsRow is the raw data the event service assembles into a
// statistics snapshot; all of it is read from one read transaction so
// the snapshot is internally consistent.
type EventStatsRow struct {
	Event               Event
	Counts              StatusCounts
	FirstRegistration   *time.Time
	LatestRegistration  *time.Time
	AvgDelayHours       *float64
	Timeline            []TimelineBucket
	RecentRegistrations []RecentRegistration
}

// EventStats assembles the statistics snapshot for eventID.
func (tx *Tx) EventStats(ctx context.Context, eventID int64) (*EventStatsRow, error) {
	event, err := tx.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	counts, err := tx.statusCounts(ctx, eventID)
	if err != nil {
		return nil, err
	}

	var first, latest *time.Time
	err = tx.QueryRow(ctx,
		`SELECT MIN(registered_at), MAX(registered_at) FROM registrations WHERE event_id = $1 AND status = 'confirmed'`,
		eventID,
	).Scan(&first, &latest)
	if err != nil {
		return nil, fmt.Errorf("registration time bounds: %w", classify(err))
	}

	var avgDelayHours *float64
	err = tx.QueryRow(ctx,
		`SELECT AVG(EXTRACT(EPOCH FROM (r.registered_at - e.created_at)) / 3600.0)
		   FROM registrations r JOIN events e ON e.id = r.event_id
		  WHERE r.event_id = $1 AND r.status = 'confirmed'`,
		eventID,
	).Scan(&avgDelayHours)
	if err != nil {
		return nil, fmt.Errorf("average registration delay: %w", classify(err))
	}

	timeline, err := tx.registrationTimeline(ctx, eventID)
	if err != nil {
		return nil, err
	}

	recent, err := tx.recentConfirmedRegistrations(ctx, eventID, 10)
	if err != nil {
		return nil, err
	}

	return &EventStatsRow{
		Event:               *event,
		Counts:              counts,
		FirstRegistration:   first,
		LatestRegistration:  latest,
		AvgDelayHours:       avgDelayHours,
		Timeline:            timeline,
		RecentRegistrations: recent,
	}, nil
}

func (tx *Tx) statusCounts(ctx context.Context, eventID int64) (StatusCounts, error) {
	rows, err := tx.Query(ctx,
		`SELECT status, COUNT(*) FROM registrations WHERE event_id = $1 GROUP BY status`, eventID,
	)
	if err != nil {
		return StatusCounts{}, fmt.Errorf("status counts: %w", classify(err))
	}
	defer rows.Close()

	var c StatusCounts
	for rows.Next() {
		var status RegistrationStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return StatusCounts{}, fmt.Errorf("scan status count: %w", classify(err))
		}
		switch status {
		case StatusConfirmed:
			c.Confirmed = n
		case StatusCancelled:
			c.Cancelled = n
		case StatusWaitlist:
			c.Waitlist = n
		case StatusPending:
			c.Pending = n
		}
	}
	return c, rows.Err()
}

func (tx *Tx) registrationTimeline(ctx context.Context, eventID int64) ([]TimelineBucket, error) {
	rows, err := tx.Query(ctx,
		`SELECT date_trunc('hour', registered_at) AS bucket, COUNT(*)
		   FROM registrations WHERE event_id = $1 AND status = 'confirmed'
		  GROUP BY bucket ORDER BY bucket ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("registration timeline: %w", classify(err))
	}
	defer rows.Close()

	var out []TimelineBucket
	for rows.Next() {
		var b TimelineBucket
		if err := rows.Scan(&b.Hour, &b.Count); err != nil {
			return nil, fmt.Errorf("scan timeline bucket: %w", classify(err))
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (tx *Tx) recentConfirmedRegistrations(ctx context.Context, eventID int64, limit int) ([]RecentRegistration, error) {
	rows, err := tx.Query(ctx,
		`SELECT u.name, r.registered_at
		   FROM registrations r JOIN users u ON u.id = r.user_id
		  WHERE r.event_id = $1 AND r.status = 'confirmed'
		  ORDER BY r.registered_at DESC LIMIT $2`,
		eventID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent registrations: %w", classify(err))
	}
	defer rows.Close()

	var out []RecentRegistration
	for rows.Next() {
		var r RecentRegistration
		if err := rows.Scan(&r.Name, &r.RegisteredAt); err != nil {
			return nil, fmt.Errorf("scan recent registration: %w", classify(err))
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
