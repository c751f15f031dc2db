//go:build integration

package registration

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/clock"
	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/config"
	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/store"
)

var t0 = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) (*Engine, *store.Store, clock.Fixed) {
	t.Helper()
	cfg := config.Load()
	st, err := store.New(context.Background(), cfg.Database, testLogger())
	require.NoError(t, err)
	t.Cleanup(st.Close)

	require.NoError(t, st.Migrate(testDatabaseURL(cfg)))
	require.NoError(t, truncateAll(st))

	fixed := clock.NewFixed(t0)
	return New(st, fixed), st, fixed
}

func createUser(t *testing.T, st *store.Store, name, email string) int64 {
	t.Helper()
	var id int64
	require.NoError(t, st.WithWriteTx(context.Background(), func(ctx context.Context, tx *store.Tx) error {
		uid, err := tx.InsertUser(ctx, name, email, "hash")
		id = uid
		return err
	}))
	return id
}

func createEvent(t *testing.T, st *store.Store, ownerID int64, capacity int, dateTime time.Time) int64 {
	t.Helper()
	var id int64
	require.NoError(t, st.WithWriteTx(context.Background(), func(ctx context.Context, tx *store.Tx) error {
		eid, err := tx.InsertEvent(ctx, store.Event{Title: "Test Event", DateTime: dateTime, Capacity: capacity, CreatedBy: ownerID})
		id = eid
		return err
	}))
	return id
}

// Scenario 1: happy path create + register + full.
func TestHappyPathRegisterUntilFull(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	ctx := context.Background()

	owner := createUser(t, st, "Owner A", "a@example.com")
	event := createEvent(t, st, owner, 3, t0.Add(14*24*time.Hour))

	b := createUser(t, st, "B", "b@example.com")
	c := createUser(t, st, "C", "c@example.com")
	d := createUser(t, st, "D", "d@example.com")
	f := createUser(t, st, "F", "f@example.com")

	for _, uid := range []int64{b, c, d} {
		outcome, _, err := engine.Register(ctx, uid, event)
		require.NoError(t, err)
		assert.Equal(t, Created, outcome)
	}

	outcome, _, err := engine.Register(ctx, f, event)
	require.NoError(t, err)
	assert.Equal(t, EventFull, outcome)
}

// Scenario 2: cancelling frees a spot for the next registrant.
func TestCancelFreesSpot(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	ctx := context.Background()

	owner := createUser(t, st, "Owner A", "a2@example.com")
	event := createEvent(t, st, owner, 3, t0.Add(14*24*time.Hour))
	b := createUser(t, st, "B", "b2@example.com")
	c := createUser(t, st, "C", "c2@example.com")
	d := createUser(t, st, "D", "d2@example.com")
	f := createUser(t, st, "F", "f2@example.com")

	for _, uid := range []int64{b, c, d} {
		_, _, err := engine.Register(ctx, uid, event)
		require.NoError(t, err)
	}

	cancelOutcome, err := engine.Cancel(ctx, b, b, event, false)
	require.NoError(t, err)
	assert.Equal(t, Cancelled, cancelOutcome)

	outcome, _, err := engine.Register(ctx, f, event)
	require.NoError(t, err)
	assert.Equal(t, Created, outcome)
}

// Scenario 3: register, cancel, register again reactivates.
func TestReactivationAfterCancel(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	ctx := context.Background()

	owner := createUser(t, st, "Owner A", "a3@example.com")
	event := createEvent(t, st, owner, 5, t0.Add(7*24*time.Hour))
	b := createUser(t, st, "B", "b3@example.com")

	outcome, _, err := engine.Register(ctx, b, event)
	require.NoError(t, err)
	require.Equal(t, Created, outcome)

	cancelOutcome, err := engine.Cancel(ctx, b, b, event, false)
	require.NoError(t, err)
	require.Equal(t, Cancelled, cancelOutcome)

	outcome, _, err = engine.Register(ctx, b, event)
	require.NoError(t, err)
	assert.Equal(t, Reactivated, outcome)

	require.NoError(t, st.WithReadTx(ctx, func(ctx context.Context, tx *store.Tx) error {
		reg, err := tx.FindRegistration(ctx, b, event)
		require.NoError(t, err)
		assert.Equal(t, store.StatusConfirmed, reg.Status)
		return nil
	}))
}

// Scenario 4: exactly capacity registrations succeed under concurrency.
func TestConcurrentRegistrationsRespectCapacity(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	ctx := context.Background()

	owner := createUser(t, st, "Owner A", "a4@example.com")
	event := createEvent(t, st, owner, 3, t0.Add(14*24*time.Hour))

	const n = 10
	userIDs := make([]int64, n)
	for i := 0; i < n; i++ {
		userIDs[i] = createUser(t, st, fmt.Sprintf("U%d", i), fmt.Sprintf("u%d@example.com", i))
	}

	var wg sync.WaitGroup
	results := make([]RegisterOutcome, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o, _, err := engine.Register(ctx, userIDs[i], event)
			results[i], errs[i] = o, err
		}(i)
	}
	wg.Wait()

	successCount := 0
	for i, o := range results {
		require.NoError(t, errs[i])
		if o == Created {
			successCount++
		} else {
			assert.Equal(t, EventFull, o)
		}
	}
	assert.Equal(t, 3, successCount)

	require.NoError(t, st.WithReadTx(ctx, func(ctx context.Context, tx *store.Tx) error {
		ev, err := tx.GetEvent(ctx, event)
		require.NoError(t, err)
		assert.Equal(t, 3, ev.CurrentRegistrations)
		n, err := tx.CountConfirmedRegistrants(ctx, event)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		return nil
	}))
}

// Scenario 5: a non-owner cannot cancel someone else's registration.
func TestForbiddenCancel(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	ctx := context.Background()

	owner := createUser(t, st, "Owner A", "a5@example.com")
	event := createEvent(t, st, owner, 3, t0.Add(14*24*time.Hour))
	b := createUser(t, st, "B", "b5@example.com")
	c := createUser(t, st, "C", "c5@example.com")

	_, _, err := engine.Register(ctx, b, event)
	require.NoError(t, err)
	_, _, err = engine.Register(ctx, c, event)
	require.NoError(t, err)

	outcome, err := engine.Cancel(ctx, c, b, event, false)
	require.NoError(t, err)
	assert.Equal(t, Forbidden, outcome)

	require.NoError(t, st.WithReadTx(ctx, func(ctx context.Context, tx *store.Tx) error {
		reg, err := tx.FindRegistration(ctx, b, event)
		require.NoError(t, err)
		assert.Equal(t, store.StatusConfirmed, reg.Status)
		return nil
	}))
}

// Registering the same user twice must not double-count.
func TestRegisterTwiceReturnsAlreadyRegistered(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	ctx := context.Background()

	owner := createUser(t, st, "Owner A", "a6@example.com")
	event := createEvent(t, st, owner, 3, t0.Add(14*24*time.Hour))
	b := createUser(t, st, "B", "b6@example.com")

	_, _, err := engine.Register(ctx, b, event)
	require.NoError(t, err)

	outcome, _, err := engine.Register(ctx, b, event)
	require.NoError(t, err)
	assert.Equal(t, AlreadyRegistered, outcome)

	require.NoError(t, st.WithReadTx(ctx, func(ctx context.Context, tx *store.Tx) error {
		ev, err := tx.GetEvent(ctx, event)
		require.NoError(t, err)
		assert.Equal(t, 1, ev.CurrentRegistrations)
		return nil
	}))
}

func TestRegisterOnPastEventReturnsEventPast(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	ctx := context.Background()

	owner := createUser(t, st, "Owner A", "a7@example.com")
	event := createEvent(t, st, owner, 3, t0.Add(-time.Hour))
	b := createUser(t, st, "B", "b7@example.com")

	outcome, _, err := engine.Register(ctx, b, event)
	require.NoError(t, err)
	assert.Equal(t, EventPast, outcome)
}
