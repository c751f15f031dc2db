// Package event implements event creation, retrieval, listing,
// statistics, and the scheduling-conflict/pagination policies.
package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/apperr"
	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/clock"
	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/config"
	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/store"
)

// Service orchestrates event-related business operations.
type Service struct {
	store      *store.Store
	clock      clock.Clock
	scheduling config.SchedulingConfig
	capacity   config.CapacityConfig
	validate   *validator.Validate
}

// NewService constructs a Service.
func NewService(s *store.Store, c clock.Clock, scheduling config.SchedulingConfig, capacity config.CapacityConfig) *Service {
	return &Service{store: s, clock: c, scheduling: scheduling, capacity: capacity, validate: newValidator()}
}

// CreateEvent validates draft, enforces the scheduling-conflict policy
// for ownerID, and persists atomically.
func (s *Service) CreateEvent(ctx context.Context, ownerID int64, draft EventDraft) (*store.Event, error) {
	if err := s.validate.Struct(draft); err != nil {
		return nil, apperr.Wrap(apperr.InvalidInput, fieldError(err), err)
	}

	dateTime, err := time.Parse(time.RFC3339, draft.DateTime)
	if err != nil {
		return nil, apperr.Wrap(apperr.InvalidInput, "date_time must be RFC3339", err)
	}

	now := s.clock.Now()
	if !dateTime.After(now.Add(s.scheduling.MinFutureOffset)) {
		return nil, apperr.New(apperr.InvalidInput, fmt.Sprintf("date_time must be at least %s in the future", humanizeDuration(s.scheduling.MinFutureOffset)))
	}
	if dateTime.After(now.Add(s.scheduling.MaxFutureOffset)) {
		return nil, apperr.New(apperr.InvalidInput, fmt.Sprintf("date_time must be within %s", humanizeDuration(s.scheduling.MaxFutureOffset)))
	}

	if draft.Capacity < s.capacity.Min || draft.Capacity > s.capacity.Max {
		return nil, apperr.New(apperr.BusinessRule, fmt.Sprintf("capacity must be between %d and %d", s.capacity.Min, s.capacity.Max))
	}

	var created *store.Event
	err = s.store.WithWriteTx(ctx, func(ctx context.Context, tx *store.Tx) error {
		conflicts, err := tx.CountOwnerEventsNear(ctx, ownerID, dateTime, s.scheduling.ConflictWindow, 0)
		if err != nil {
			return err
		}
		if conflicts > 0 {
			return apperr.New(apperr.Conflict, fmt.Sprintf("you already have an event within %s of this time", humanizeDuration(s.scheduling.ConflictWindow)))
		}

		id, err := tx.InsertEvent(ctx, store.Event{
			Title:       draft.Title,
			Description: draft.Description,
			DateTime:    dateTime,
			Location:    draft.Location,
			Capacity:    draft.Capacity,
			CreatedBy:   ownerID,
		})
		if err != nil {
			return fmt.Errorf("create event: %w", err)
		}

		ev, err := tx.GetEvent(ctx, id)
		if err != nil {
			return err
		}
		created = ev
		return nil
	})
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.Internal, "create event failed", err)
	}
	return created, nil
}

// UpdateEvent applies patch to an event the caller owns, rejecting
// title/capacity/date_time changes that would violate the event's
// invariants.
func (s *Service) UpdateEvent(ctx context.Context, ownerID, eventID int64, patch EventPatch) (*store.Event, error) {
	var updated *store.Event
	err := s.store.WithWriteTx(ctx, func(ctx context.Context, tx *store.Tx) error {
		event, err := tx.LockEventForUpdate(ctx, eventID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.New(apperr.NotFound, "event not found")
			}
			return err
		}
		if event.CreatedBy != ownerID {
			return apperr.New(apperr.Forbidden, "you can only edit your own events")
		}

		now := s.clock.Now()
		wasPast := !event.DateTime.After(now)

		if patch.Title != nil {
			if !titlePattern.MatchString(*patch.Title) || len(*patch.Title) == 0 || len(*patch.Title) > 500 {
				return apperr.New(apperr.InvalidInput, "invalid title")
			}
			event.Title = *patch.Title
		}
		if patch.Description != nil {
			if len(*patch.Description) > 10000 {
				return apperr.New(apperr.InvalidInput, "description too long")
			}
			event.Description = patch.Description
		}
		if patch.Location != nil {
			if len(*patch.Location) > 500 {
				return apperr.New(apperr.InvalidInput, "location too long")
			}
			event.Location = patch.Location
		}
		if patch.DateTime != nil {
			if wasPast {
				return apperr.New(apperr.BusinessRule, "date_time is immutable once the event is past")
			}
			dt, err := time.Parse(time.RFC3339, *patch.DateTime)
			if err != nil {
				return apperr.Wrap(apperr.InvalidInput, "date_time must be RFC3339", err)
			}
			if !dt.After(now) {
				return apperr.New(apperr.BusinessRule, "date_time must be in the future")
			}
			event.DateTime = dt
		}
		if patch.Capacity != nil {
			if *patch.Capacity < event.CurrentRegistrations {
				return apperr.New(apperr.BusinessRule, "capacity cannot be reduced below current registrations")
			}
			if *patch.Capacity < s.capacity.Min || *patch.Capacity > s.capacity.Max {
				return apperr.New(apperr.BusinessRule, fmt.Sprintf("capacity must be between %d and %d", s.capacity.Min, s.capacity.Max))
			}
			event.Capacity = *patch.Capacity
		}

		if err := tx.UpdateEvent(ctx, *event); err != nil {
			return err
		}
		updated = event
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteEvent hard-deletes an event the caller owns; registrations
// cascade at the storage layer.
func (s *Service) DeleteEvent(ctx context.Context, ownerID, eventID int64) error {
	return s.store.WithWriteTx(ctx, func(ctx context.Context, tx *store.Tx) error {
		event, err := tx.LockEventForUpdateAny(ctx, eventID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.New(apperr.NotFound, "event not found")
			}
			return err
		}
		if event.CreatedBy != ownerID {
			return apperr.New(apperr.Forbidden, "you can only delete your own events")
		}
		return tx.DeleteEvent(ctx, eventID)
	})
}

// ListOwned returns every event (active or soft-deleted) created by
// ownerID, for the owner's "my events" view.
func (s *Service) ListOwned(ctx context.Context, ownerID int64) ([]store.Event, error) {
	var events []store.Event
	err := s.store.WithReadTx(ctx, func(ctx context.Context, tx *store.Tx) error {
		evs, err := tx.ListOwnedEvents(ctx, ownerID)
		if err != nil {
			return err
		}
		events = evs
		return nil
	})
	return events, err
}

// humanizeDuration renders whole-hour/day durations in prose so error
// messages read like "within 1 hour" rather than "within 1h0m0s".
func humanizeDuration(d time.Duration) string {
	switch {
	case d == 24*time.Hour:
		return "1 day"
	case d%(24*time.Hour) == 0 && d > 0:
		return fmt.Sprintf("%d days", int(d/(24*time.Hour)))
	case d == time.Hour:
		return "1 hour"
	case d%time.Hour == 0 && d > 0:
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	default:
		return d.String()
	}
}

func fieldError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("%s: failed %s validation", fe.Field(), fe.Tag())
	}
	return err.Error()
}
