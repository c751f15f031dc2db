package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystemNowIsUTC(t *testing.T) {
	now := System{}.Now()
	assert.Equal(t, time.UTC, now.Location())
}

func TestFixedAlwaysReturnsSameInstant(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	f := NewFixed(at)

	assert.Equal(t, at, f.Now())
	assert.Equal(t, at, f.Now())
}

func TestFixedSatisfiesClockInterface(t *testing.T) {
	var c Clock = NewFixed(time.Now())
	assert.NotZero(t, c.Now())
}
