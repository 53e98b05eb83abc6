package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pkordes/itinerary-planner/backend/internal/domain"
	"github.com/pkordes/itinerary-planner/backend/internal/itinerary"
)

// PlaceService exposes place search to the HTTP layer.
type PlaceService struct {
	lookup PlaceLookup
	log    *slog.Logger
}

// NewPlaceService constructs a PlaceService over lookup.
func NewPlaceService(lookup PlaceLookup, log *slog.Logger) *PlaceService {
	if log == nil {
		log = slog.Default()
	}
	return &PlaceService{lookup: lookup, log: log}
}

// Suggestions returns place suggestions for query. A failed lookup is logged
// and reported as no suggestions, never as an error.
func (s *PlaceService) Suggestions(ctx context.Context, query string) []domain.PlaceSuggestion {
	out, err := s.lookup.Suggestions(ctx, query)
	if err != nil {
		s.log.WarnContext(ctx, "place suggestions failed", "query", query, "error", err)
		return []domain.PlaceSuggestion{}
	}
	if out == nil {
		return []domain.PlaceSuggestion{}
	}
	return out
}

// Template looks up a place and returns the activity template that adding it
// would produce.
func (s *PlaceService) Template(ctx context.Context, placeID string) (domain.ActivityTemplate, error) {
	d, err := s.lookup.Details(ctx, placeID)
	if err != nil {
		return domain.ActivityTemplate{}, fmt.Errorf("service.PlaceService.Template: %w: %v", ErrPlaceLookup, err)
	}
	return itinerary.FromPlaceDetails(d), nil
}
