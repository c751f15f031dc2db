package event

import (
	"context"
	"errors"
	"time"

	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/apperr"
	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/identity"
	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/store"
)

// Permissions is the viewer-aware set of actions available on an event.
type Permissions struct {
	CanEdit      bool
	IsRegistered bool
	CanRegister  bool
}

// View is the event detail payload returned by GetEvent, including
// derived fields computed from one read-transaction snapshot.
type View struct {
	Event           store.Event
	AvailableSpots  int
	IsFull          bool
	TimeUntilEvent  time.Duration
	HasStarted      bool
	Permissions     Permissions
	Registrants     []store.RegistrantView // populated only for owner/confirmed attendee
	RegistrantCount int                    // populated for everyone else
}

// GetEvent returns the event detail for viewer, computed in a single
// read transaction so the snapshot is internally consistent.
func (s *Service) GetEvent(ctx context.Context, eventID int64, viewer identity.Principal) (*View, error) {
	var view *View
	err := s.store.WithReadTx(ctx, func(ctx context.Context, tx *store.Tx) error {
		ev, err := tx.GetEvent(ctx, eventID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.New(apperr.NotFound, "event not found")
			}
			return err
		}

		now := s.clock.Now()
		v := &View{
			Event:          *ev,
			AvailableSpots: ev.AvailableSpots(),
			IsFull:         ev.IsFull(),
			TimeUntilEvent: ev.DateTime.Sub(now),
			HasStarted:     !ev.DateTime.After(now),
		}

		isRegistered := false
		if !viewer.Anonymous {
			reg, err := tx.FindRegistration(ctx, viewer.UserID, eventID)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return err
			}
			isRegistered = err == nil && reg.Status == store.StatusConfirmed
		}

		isOwner := !viewer.Anonymous && viewer.UserID == ev.CreatedBy
		v.Permissions = Permissions{
			CanEdit:      isOwner,
			IsRegistered: isRegistered,
			CanRegister:  !viewer.Anonymous && !isOwner && !isRegistered && !v.HasStarted && !v.IsFull,
		}

		if isOwner || isRegistered {
			regs, err := tx.ListConfirmedRegistrants(ctx, eventID)
			if err != nil {
				return err
			}
			v.Registrants = regs
		} else {
			count, err := tx.CountConfirmedRegistrants(ctx, eventID)
			if err != nil {
				return err
			}
			v.RegistrantCount = count
		}

		view = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Page is a paginated listing response.
type Page struct {
	Events  []store.Event
	Page    int
	Limit   int
	Total   int
	HasNext bool
	HasPrev bool
}

// ListFilter is the HTTP-facing version of store.EventFilter; it is a
// thin passthrough kept in this package so callers do not import
// internal/store directly.
type ListFilter = store.EventFilter

// ListUpcoming returns a page of active, future events matching f.
func (s *Service) ListUpcoming(ctx context.Context, f ListFilter) (*Page, error) {
	if f.DateFrom != nil && f.DateTo != nil && !f.DateTo.After(*f.DateFrom) {
		return nil, apperr.New(apperr.InvalidInput, "date_to must be after date_from")
	}
	f.Now = s.clock.Now()
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}

	var events []store.Event
	var total int
	err := s.store.WithReadTx(ctx, func(ctx context.Context, tx *store.Tx) error {
		evs, n, err := tx.SearchEvents(ctx, f)
		if err != nil {
			return err
		}
		events, total = evs, n
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Page{
		Events:  events,
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasNext: page*limit < total,
		HasPrev: page > 1,
	}, nil
}
