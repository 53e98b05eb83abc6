// Package service contains the business logic for the itinerary planner.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/itinerary-planner/backend/internal/domain"
	"github.com/pkordes/itinerary-planner/backend/internal/itinerary"
	"github.com/pkordes/itinerary-planner/backend/internal/repo"
)

// DayScheduler keeps a trip's stored days in step with its dates and
// cities. *ItineraryService satisfies it.
type DayScheduler interface {
	Reschedule(ctx context.Context, trip domain.Trip) error
}

// TripService implements business logic for Trip operations.
type TripService struct {
	repo repo.TripRepo
	days DayScheduler
}

// NewTripService constructs a TripService backed by the provided TripRepo.
// days may be nil, in which case date and city edits leave stored days alone.
func NewTripService(r repo.TripRepo, days DayScheduler) *TripService {
	return &TripService{repo: r, days: days}
}

// Create validates and persists a new trip.
// Returns domain.ErrValidation if input violates business rules.
func (s *TripService) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	trip = normalizeTrip(trip)
	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, err
	}
	result, err := s.repo.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single trip by ID.
// Returns domain.ErrNotFound if it does not exist.
func (s *TripService) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return result, nil
}

// ListPaged returns one page of trips and the total count.
func (s *TripService) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	trips, total, err := s.repo.ListPaged(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.ListPaged: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, total, nil
}

// Update validates and updates an existing trip. When the dates or cities
// change, the trip's days are rescheduled first; an edit that would drop a
// day with activities is rejected.
// Returns domain.ErrValidation for invalid input, domain.ErrNotFound if the
// trip does not exist.
func (s *TripService) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	trip = normalizeTrip(trip)
	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, err
	}
	if s.days != nil {
		current, err := s.repo.GetByID(ctx, trip.ID)
		if err != nil {
			return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
		}
		if scheduleChanged(current, trip) {
			if err := s.days.Reschedule(ctx, trip); err != nil {
				return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
			}
		}
	}
	result, err := s.repo.Update(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	return result, nil
}

// UpdateNotes commits notes that were edited in a buffer. Clients call it
// once when editing ends rather than on every keystroke.
func (s *TripService) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) (domain.Trip, error) {
	result, err := s.repo.UpdateNotes(ctx, id, notes)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.UpdateNotes: %w", err)
	}
	return result, nil
}

// Delete removes a trip by ID.
// Returns domain.ErrNotFound if the trip does not exist.
func (s *TripService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}

func scheduleChanged(before, after domain.Trip) bool {
	return !before.StartDate.Equal(after.StartDate) ||
		!before.EndDate.Equal(after.EndDate) ||
		!slices.Equal(before.Cities, after.Cities)
}

// normalizeTrip trims text fields and drops the time of day from dates.
func normalizeTrip(trip domain.Trip) domain.Trip {
	trip.Name = strings.TrimSpace(trip.Name)
	trip.Destination = strings.TrimSpace(trip.Destination)
	trip.StartDate = itinerary.CivilDate(trip.StartDate)
	trip.EndDate = itinerary.CivilDate(trip.EndDate)
	trip.Cities = trimAll(trip.Cities)
	trip.Countries = trimAll(trip.Countries)
	return trip
}

// validateTrip enforces business rules common to both Create and Update.
//   - Name must be non-empty (whitespace-only names are rejected).
//   - Both dates are required and EndDate must not be before StartDate
//     (domain.ErrInvalidRange).
//   - Cities and Countries must have the same length, with no blank city.
func validateTrip(trip domain.Trip) error {
	if trip.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if trip.StartDate.IsZero() || trip.EndDate.IsZero() {
		return fmt.Errorf("%w: start_date and end_date are required", domain.ErrValidation)
	}
	if trip.EndDate.Before(trip.StartDate) {
		return domain.ErrInvalidRange
	}
	if len(trip.Cities) != len(trip.Countries) {
		return fmt.Errorf("%w: cities and countries must have the same length", domain.ErrValidation)
	}
	for _, c := range trip.Cities {
		if c == "" {
			return fmt.Errorf("%w: city names must not be blank", domain.ErrValidation)
		}
	}
	return nil
}

func trimAll(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
