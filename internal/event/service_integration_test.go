//go:build integration

package event

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/clock"
	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/config"
	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/identity"
	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/store"
)

var t0 = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *store.Store, int64) {
	t.Helper()
	cfg := config.Load()
	st, err := store.New(context.Background(), cfg.Database, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(st.Close)

	dbURL := "postgres://" + cfg.Database.User + ":" + cfg.Database.Password + "@" + cfg.Database.Host + ":" + cfg.Database.Port + "/" + cfg.Database.DBName + "?sslmode=" + cfg.Database.SSLMode
	require.NoError(t, st.Migrate(dbURL))
	require.NoError(t, st.WithWriteTx(context.Background(), func(ctx context.Context, tx *store.Tx) error {
		_, err := tx.Exec(ctx, `TRUNCATE registrations, events, users RESTART IDENTITY CASCADE`)
		return err
	}))

	fixed := clock.NewFixed(t0)
	svc := NewService(st, fixed, cfg.Scheduling, cfg.Capacity)

	var ownerID int64
	require.NoError(t, st.WithWriteTx(context.Background(), func(ctx context.Context, tx *store.Tx) error {
		id, err := tx.InsertUser(ctx, "Owner", "owner@example.com", "hash")
		ownerID = id
		return err
	}))

	return svc, st, ownerID
}

func TestCreateEventWithinSchedulingWindow(t *testing.T) {
	svc, _, owner := newTestService(t)

	ev, err := svc.CreateEvent(context.Background(), owner, EventDraft{
		Title: "Go Meetup", Capacity: 10, DateTime: t0.Add(14 * 24 * time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)
	assert.Equal(t, "Go Meetup", ev.Title)
	assert.Equal(t, 0, ev.CurrentRegistrations)
}

func TestCreateEventTooSoonRejected(t *testing.T) {
	svc, _, owner := newTestService(t)

	_, err := svc.CreateEvent(context.Background(), owner, EventDraft{
		Title: "Too Soon", Capacity: 10, DateTime: t0.Add(59 * time.Minute).Format(time.RFC3339),
	})
	assert.Error(t, err)
}

func TestCreateEventTooFarInFutureRejected(t *testing.T) {
	svc, _, owner := newTestService(t)

	_, err := svc.CreateEvent(context.Background(), owner, EventDraft{
		Title: "Too Far", Capacity: 10, DateTime: t0.Add(366 * 24 * time.Hour).Format(time.RFC3339),
	})
	assert.Error(t, err)
}

// Scenario 6: scheduling conflict within the same owner's window.
func TestSchedulingConflictForSameOwner(t *testing.T) {
	svc, _, owner := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateEvent(ctx, owner, EventDraft{
		Title: "First", Capacity: 10, DateTime: t0.Add(14 * 24 * time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)

	_, err = svc.CreateEvent(ctx, owner, EventDraft{
		Title: "Second", Capacity: 10, DateTime: t0.Add(14*24*time.Hour + 30*time.Minute).Format(time.RFC3339),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "within 1 hour")
}

func TestSchedulingConflictDoesNotApplyAcrossOwners(t *testing.T) {
	svc, st, owner := newTestService(t)
	ctx := context.Background()

	var otherOwner int64
	require.NoError(t, st.WithWriteTx(ctx, func(ctx context.Context, tx *store.Tx) error {
		id, err := tx.InsertUser(ctx, "Other Owner", "other@example.com", "hash")
		otherOwner = id
		return err
	}))

	sameInstant := t0.Add(14 * 24 * time.Hour).Format(time.RFC3339)
	_, err := svc.CreateEvent(ctx, owner, EventDraft{Title: "First", Capacity: 10, DateTime: sameInstant})
	require.NoError(t, err)

	_, err = svc.CreateEvent(ctx, otherOwner, EventDraft{Title: "Second", Capacity: 10, DateTime: sameInstant})
	assert.NoError(t, err)
}

func TestUpdateEventRejectsCapacityBelowCurrentRegistrations(t *testing.T) {
	svc, st, owner := newTestService(t)
	ctx := context.Background()

	ev, err := svc.CreateEvent(ctx, owner, EventDraft{
		Title: "Cap Test", Capacity: 5, DateTime: t0.Add(14 * 24 * time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)

	var userID int64
	require.NoError(t, st.WithWriteTx(ctx, func(ctx context.Context, tx *store.Tx) error {
		id, err := tx.InsertUser(ctx, "Attendee", "attendee@example.com", "hash")
		userID = id
		return err
	}))
	require.NoError(t, st.WithWriteTx(ctx, func(ctx context.Context, tx *store.Tx) error {
		_, err := tx.InsertRegistration(ctx, userID, ev.ID, store.StatusConfirmed, t0)
		if err != nil {
			return err
		}
		return tx.BumpEventCounter(ctx, ev.ID, 1)
	}))

	newCapacity := 0
	_, err = svc.UpdateEvent(ctx, owner, ev.ID, EventPatch{Capacity: &newCapacity})
	assert.Error(t, err)
}

func TestDeleteEventRejectsNonOwner(t *testing.T) {
	svc, st, owner := newTestService(t)
	ctx := context.Background()

	ev, err := svc.CreateEvent(ctx, owner, EventDraft{
		Title: "Owned", Capacity: 5, DateTime: t0.Add(14 * 24 * time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)

	var other int64
	require.NoError(t, st.WithWriteTx(ctx, func(ctx context.Context, tx *store.Tx) error {
		id, err := tx.InsertUser(ctx, "Intruder", "intruder@example.com", "hash")
		other = id
		return err
	}))

	err = svc.DeleteEvent(ctx, other, ev.ID)
	assert.Error(t, err)
}

func TestGetEventReflectsFullCapacity(t *testing.T) {
	svc, st, owner := newTestService(t)
	ctx := context.Background()

	ev, err := svc.CreateEvent(ctx, owner, EventDraft{
		Title: "Full Soon", Capacity: 1, DateTime: t0.Add(14 * 24 * time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)

	var userID int64
	require.NoError(t, st.WithWriteTx(ctx, func(ctx context.Context, tx *store.Tx) error {
		id, err := tx.InsertUser(ctx, "Attendee", "attendee2@example.com", "hash")
		userID = id
		return err
	}))
	require.NoError(t, st.WithWriteTx(ctx, func(ctx context.Context, tx *store.Tx) error {
		_, err := tx.InsertRegistration(ctx, userID, ev.ID, store.StatusConfirmed, t0)
		if err != nil {
			return err
		}
		return tx.BumpEventCounter(ctx, ev.ID, 1)
	}))

	view, err := svc.GetEvent(ctx, ev.ID, identity.Anon)
	require.NoError(t, err)
	assert.True(t, view.IsFull)
	assert.False(t, view.Permissions.CanRegister)
}

func TestListUpcomingPaginatesAndSorts(t *testing.T) {
	svc, _, owner := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.CreateEvent(ctx, owner, EventDraft{
			Title:    "Event",
			Capacity: 10,
			DateTime: t0.Add(time.Duration(10+i) * 24 * time.Hour).Format(time.RFC3339),
		})
		require.NoError(t, err)
	}

	page, err := svc.ListUpcoming(ctx, ListFilter{Page: 1, Limit: 2, SortBy: "date_time", SortOrder: "ASC"})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Len(t, page.Events, 2)
	assert.True(t, page.HasNext)
	assert.False(t, page.HasPrev)
}
