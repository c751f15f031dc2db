package httpapi

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// idempotencyTTL bounds how long a cached register outcome is
// replayed for a repeated Idempotency-Key.
const idempotencyTTL = 5 * time.Minute

type idempotencyEntry struct {
	response registerResponse
	status   int
	expires  time.Time
}

// idempotencyCache is a thin best-effort cache keyed by client-
// supplied Idempotency-Key. Register is already idempotent by
// (user_id, event_id) business identity, so losing an entry (e.g. on
// restart) only costs a redundant-but-safe re-run, never a wrong
// result.
type idempotencyCache struct {
	mu      sync.Mutex
	entries map[string]idempotencyEntry
}

func newIdempotencyCache() *idempotencyCache {
	return &idempotencyCache{entries: make(map[string]idempotencyEntry)}
}

func (c *idempotencyCache) get(key string) (registerResponse, int, bool) {
	if key == "" {
		return registerResponse{}, 0, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expires) {
		return registerResponse{}, 0, false
	}
	return e.response, e.status, true
}

func (c *idempotencyCache) put(key string, response registerResponse, status int) {
	if key == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = idempotencyEntry{response: response, status: status, expires: time.Now().Add(idempotencyTTL)}
}

// newIdempotencyKey mints a fallback key for handleRegister to use
// when the caller omits the Idempotency-Key header.
func newIdempotencyKey() string {
	return uuid.NewString()
}
