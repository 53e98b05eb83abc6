package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/itinerary-planner/backend/internal/domain"
)

// ItineraryReader returns the current itinerary of a trip.
// *ItineraryService satisfies it.
type ItineraryReader interface {
	Itinerary(ctx context.Context, tripID uuid.UUID) (ItineraryView, error)
}

// ExportService flattens a trip's itinerary into export rows.
type ExportService struct {
	itineraries ItineraryReader
}

// NewExportService constructs an ExportService. Given the ItineraryService,
// exports read the open in-memory store.
func NewExportService(itineraries ItineraryReader) *ExportService {
	return &ExportService{itineraries: itineraries}
}

// Export returns one row per activity, ordered by date, then segment, then
// position. Days with no activities contribute one row with empty activity
// fields.
func (s *ExportService) Export(ctx context.Context, tripID uuid.UUID) ([]domain.ExportRow, error) {
	view, err := s.itineraries.Itinerary(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	return ExportRows(view.Trip, view.Days), nil
}

// ExportRows builds the flat rows for trip and its days.
func ExportRows(trip domain.Trip, days []domain.Day) []domain.ExportRow {
	rows := make([]domain.ExportRow, 0, len(days))
	for _, d := range days {
		base := domain.ExportRow{
			TripID:   trip.ID.String(),
			TripName: trip.Name,
			Date:     d.Date,
			City:     d.City,
		}
		n := 0
		for _, seg := range domain.Segments {
			for i, a := range d.Activities(seg) {
				row := base
				row.Segment = string(seg)
				row.Position = i + 1
				row.Title = a.Title
				row.Location = a.Location
				row.SourceType = a.SourceType
				if a.Category != nil {
					row.Category = *a.Category
				}
				if a.Coordinates != nil {
					lat, lng := a.Coordinates.Latitude, a.Coordinates.Longitude
					row.Latitude = &lat
					row.Longitude = &lng
				}
				row.Rating = a.Rating
				rows = append(rows, row)
				n++
			}
		}
		if n == 0 {
			rows = append(rows, base)
		}
	}
	return rows
}
