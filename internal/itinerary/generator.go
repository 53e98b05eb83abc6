// Package itinerary holds the day-by-day planning core: generating the days
// of a trip, building activities from heterogeneous sources, and the Store
// that mediates every mutation of a trip's days.
package itinerary

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/itinerary-planner/backend/internal/domain"
)

// CivilDate truncates t to midnight UTC of its calendar date.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaySpan returns the inclusive number of calendar days in [start, end].
// Returns domain.ErrInvalidRange if end is before start.
func DaySpan(start, end time.Time) (int, error) {
	start, end = CivilDate(start), CivilDate(end)
	if end.Before(start) {
		return 0, domain.ErrInvalidRange
	}
	// Civil dates in UTC are exactly 24h apart, so this division is exact.
	return int(end.Sub(start)/(24*time.Hour)) + 1, nil
}

// GenerateDays returns one empty Day per calendar date in [start, end],
// ascending, each assigned a city from cities.
//
// Cities are assigned in contiguous blocks: the day at offset k gets
// cities[min(n-1, k*n/total)], so assignment never goes backwards through
// the list and every block is roughly the same size.
func GenerateDays(tripID uuid.UUID, start, end time.Time, cities []string) ([]domain.Day, error) {
	total, err := DaySpan(start, end)
	if err != nil {
		return nil, fmt.Errorf("itinerary.GenerateDays: %w", err)
	}
	if len(cities) == 0 {
		return nil, fmt.Errorf("itinerary.GenerateDays: %w", domain.ErrNoCities)
	}

	first := CivilDate(start)
	n := len(cities)
	days := make([]domain.Day, 0, total)
	for k := 0; k < total; k++ {
		days = append(days, domain.Day{
			ID:        uuid.New(),
			TripID:    tripID,
			Date:      first.AddDate(0, 0, k),
			City:      cities[min(n-1, k*n/total)],
			Morning:   []domain.Activity{},
			Afternoon: []domain.Activity{},
			Evening:   []domain.Activity{},
		})
	}
	return days, nil
}

// ReconcileDays fits existing to a new date range and city list. The result
// covers [start, end] exactly once, in date order, with cities assigned as
// GenerateDays would. A day whose date is still in range keeps its ID and
// activities; missing dates get new empty days; days outside the range are
// dropped. Dropping a day that still has activities fails with an error
// wrapping domain.ErrValidation.
func ReconcileDays(tripID uuid.UUID, start, end time.Time, cities []string, existing []domain.Day) ([]domain.Day, error) {
	days, err := GenerateDays(tripID, start, end, cities)
	if err != nil {
		return nil, fmt.Errorf("itinerary.ReconcileDays: %w", err)
	}

	byDate := make(map[string]int, len(days))
	for i, d := range days {
		byDate[d.Date.Format(time.DateOnly)] = i
	}
	for _, old := range existing {
		key := CivilDate(old.Date).Format(time.DateOnly)
		i, ok := byDate[key]
		if !ok {
			if hasActivities(old) {
				return nil, fmt.Errorf("itinerary.ReconcileDays: %w: day %s has activities and falls outside the trip dates",
					domain.ErrValidation, key)
			}
			continue
		}
		kept := old.Clone()
		kept.TripID = tripID
		kept.Date = days[i].Date
		kept.City = days[i].City
		days[i] = kept
	}
	return days, nil
}

func hasActivities(d domain.Day) bool {
	for _, seg := range domain.Segments {
		if len(d.Activities(seg)) > 0 {
			return true
		}
	}
	return false
}
