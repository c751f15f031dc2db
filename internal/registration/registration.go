// Package registration implements the registration engine: the
// critical section that validates and mutates (event, registration)
// pairs under per-event serialization.
package registration

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/clock"
	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/store"
)

// RegisterOutcome is the discrete result of a Register call. The HTTP
// edge is the only place that renders it into JSON.
type RegisterOutcome int

const (
	Created RegisterOutcome = iota
	Reactivated
	AlreadyRegistered
	EventFull
	EventPast
	EventNotFound
	UserNotFound
)

func (o RegisterOutcome) String() string {
	switch o {
	case Created:
		return "created"
	case Reactivated:
		return "reactivated"
	case AlreadyRegistered:
		return "already_registered"
	case EventFull:
		return "event_full"
	case EventPast:
		return "event_past"
	case EventNotFound:
		return "event_not_found"
	case UserNotFound:
		return "user_not_found"
	default:
		return "unknown"
	}
}

// CancelOutcome is the discrete result of a Cancel call.
type CancelOutcome int

const (
	Cancelled CancelOutcome = iota
	NotRegistered
	CancelEventPast
	Forbidden
	CancelEventNotFound
)

func (o CancelOutcome) String() string {
	switch o {
	case Cancelled:
		return "cancelled"
	case NotRegistered:
		return "not_registered"
	case CancelEventPast:
		return "event_past"
	case Forbidden:
		return "forbidden"
	case CancelEventNotFound:
		return "event_not_found"
	default:
		return "unknown"
	}
}

// maxRetryAttempts bounds the retry budget for transient Store faults.
const maxRetryAttempts = 3

// Engine is the registration engine. It borrows a Store transaction
// for the duration of one operation and never holds state across
// calls.
type Engine struct {
	store *store.Store
	clock clock.Clock
}

// New constructs an Engine.
func New(s *store.Store, c clock.Clock) *Engine {
	return &Engine{store: s, clock: c}
}

// Register validates and persists a (user, event) registration inside
// one write transaction, serialized per event via the row lock
// acquired by LockEventForUpdate.
func (e *Engine) Register(ctx context.Context, userID, eventID int64) (RegisterOutcome, int64, error) {
	var outcome RegisterOutcome
	var regID int64

	err := store.WithRetry(ctx, maxRetryAttempts, func() error {
		return e.store.WithWriteTx(ctx, func(ctx context.Context, tx *store.Tx) error {
			o, id, err := e.register(ctx, tx, userID, eventID)
			if err != nil {
				return err
			}
			outcome, regID = o, id
			return nil
		})
	})
	if err != nil {
		return 0, 0, fmt.Errorf("register: %w", err)
	}
	return outcome, regID, nil
}

func (e *Engine) register(ctx context.Context, tx *store.Tx, userID, eventID int64) (RegisterOutcome, int64, error) {
	if _, err := tx.GetUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return UserNotFound, 0, nil
		}
		return 0, 0, err
	}

	// Step 1: acquire the per-event serializer.
	event, err := tx.LockEventForUpdate(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return EventNotFound, 0, nil
		}
		return 0, 0, err
	}

	// Step 2: reject a past event.
	now := e.clock.Now()
	if !event.DateTime.After(now) {
		return EventPast, 0, nil
	}

	// Step 3: look up any existing registration for (user, event).
	existing, err := tx.FindRegistration(ctx, userID, eventID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return 0, 0, err
	}

	switch {
	case existing == nil:
		if event.IsFull() {
			return EventFull, 0, nil
		}
		id, err := tx.InsertRegistration(ctx, userID, eventID, store.StatusConfirmed, now)
		if err != nil {
			if errors.Is(err, store.ErrUniqueViolation) {
				// A concurrent insert racing on the unique index
				// before our lock was acquired is reported here as
				// AlreadyRegistered rather than a raw constraint error.
				return AlreadyRegistered, 0, nil
			}
			return 0, 0, err
		}
		if err := tx.BumpEventCounter(ctx, eventID, 1); err != nil {
			return 0, 0, err
		}
		return Created, id, nil

	case existing.Status == store.StatusConfirmed:
		return AlreadyRegistered, 0, nil

	case existing.Status == store.StatusCancelled:
		if event.IsFull() {
			return EventFull, 0, nil
		}
		if err := tx.UpdateRegistrationStatus(ctx, existing.ID, store.StatusConfirmed, now); err != nil {
			return 0, 0, err
		}
		if err := tx.BumpEventCounter(ctx, eventID, 1); err != nil {
			return 0, 0, err
		}
		return Reactivated, existing.ID, nil

	default: // waitlist, pending: reserved states, no transition defined yet.
		return AlreadyRegistered, 0, nil
	}
}

// Cancel validates and applies one cancellation. actorID must equal
// targetUserID unless elevated is true.
func (e *Engine) Cancel(ctx context.Context, actorID, targetUserID, eventID int64, elevated bool) (CancelOutcome, error) {
	if actorID != targetUserID && !elevated {
		return Forbidden, nil
	}

	var outcome CancelOutcome
	err := store.WithRetry(ctx, maxRetryAttempts, func() error {
		return e.store.WithWriteTx(ctx, func(ctx context.Context, tx *store.Tx) error {
			o, err := e.cancel(ctx, tx, targetUserID, eventID)
			if err != nil {
				return err
			}
			outcome = o
			return nil
		})
	})
	if err != nil {
		return 0, fmt.Errorf("cancel: %w", err)
	}
	return outcome, nil
}

func (e *Engine) cancel(ctx context.Context, tx *store.Tx, targetUserID, eventID int64) (CancelOutcome, error) {
	event, err := tx.LockEventForUpdateAny(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return CancelEventNotFound, nil
		}
		return 0, err
	}
	if !event.IsActive {
		return CancelEventNotFound, nil
	}

	now := e.clock.Now()
	if !event.DateTime.After(now) {
		return CancelEventPast, nil
	}

	reg, err := tx.FindRegistration(ctx, targetUserID, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NotRegistered, nil
		}
		return 0, err
	}
	if reg.Status != store.StatusConfirmed {
		return NotRegistered, nil
	}

	if err := tx.UpdateRegistrationStatus(ctx, reg.ID, store.StatusCancelled, reg.RegisteredAt); err != nil {
		return 0, err
	}
	if err := tx.BumpEventCounter(ctx, eventID, -1); err != nil {
		return 0, err
	}
	return Cancelled, nil
}

// BatchResult is the per-user outcome of one BatchRegister call.
type BatchResult struct {
	UserID  int64
	Outcome RegisterOutcome
	Err     error
}

// BatchRegister is the admin facility: every user's registration
// attempt runs inside one outer write transaction, so the whole batch
// shares a single commit/rollback.
func (e *Engine) BatchRegister(ctx context.Context, eventID int64, userIDs []int64) ([]BatchResult, error) {
	results := make([]BatchResult, len(userIDs))

	err := e.store.WithWriteTx(ctx, func(ctx context.Context, tx *store.Tx) error {
		for i, userID := range userIDs {
			outcome, _, err := e.register(ctx, tx, userID, eventID)
			results[i] = BatchResult{UserID: userID, Outcome: outcome, Err: err}
			if err != nil {
				return fmt.Errorf("batch register user %d: %w", userID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
