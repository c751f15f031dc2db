package event

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/apperr"
	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/store"
)

// CapacityUtilization is the {used, available, percentage_full} block
// rendered in the stats response.
type CapacityUtilization struct {
	Used           int
	Available      int
	PercentageFull float64
}

// Stats is the statistics snapshot for one event.
type Stats struct {
	EventID                       int64
	Capacity                      int
	Counts                        store.StatusCounts
	RegistrationRatePercentage    float64
	FirstRegistration             *time.Time
	LatestRegistration            *time.Time
	AverageRegistrationDelayHours *float64
	CapacityUtilization           CapacityUtilization
	TimeUntilEvent                time.Duration
	IsEventSoon                   bool
	Timeline                      []store.TimelineBucket
	RecentRegistrations           []store.RecentRegistration
}

// Stats computes the statistics snapshot for eventID in a single read
// transaction so the result is internally consistent.
func (s *Service) Stats(ctx context.Context, eventID int64) (*Stats, error) {
	var row *store.EventStatsRow
	err := s.store.WithReadTx(ctx, func(ctx context.Context, tx *store.Tx) error {
		r, err := tx.EventStats(ctx, eventID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.New(apperr.NotFound, "event not found")
			}
			return err
		}
		row = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	timeUntil := row.Event.DateTime.Sub(now)

	rate := 0.0
	if row.Event.Capacity > 0 {
		rate = round2(float64(row.Counts.Confirmed) / float64(row.Event.Capacity) * 100)
	}

	pctFull := 0.0
	if row.Event.Capacity > 0 {
		pctFull = round2(float64(row.Event.CurrentRegistrations) / float64(row.Event.Capacity) * 100)
	}

	var avgDelay *float64
	if row.AvgDelayHours != nil {
		v := round2(*row.AvgDelayHours)
		avgDelay = &v
	}

	return &Stats{
		EventID:                       row.Event.ID,
		Capacity:                      row.Event.Capacity,
		Counts:                        row.Counts,
		RegistrationRatePercentage:    rate,
		FirstRegistration:             row.FirstRegistration,
		LatestRegistration:            row.LatestRegistration,
		AverageRegistrationDelayHours: avgDelay,
		CapacityUtilization: CapacityUtilization{
			Used:           row.Event.CurrentRegistrations,
			Available:      row.Event.AvailableSpots(),
			PercentageFull: pctFull,
		},
		TimeUntilEvent:      timeUntil,
		IsEventSoon:         timeUntil > 0 && timeUntil < 24*time.Hour,
		Timeline:            row.Timeline,
		RecentRegistrations: row.RecentRegistrations,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
