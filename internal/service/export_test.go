package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/itinerary-planner/backend/internal/domain"
	"github.com/pkordes/itinerary-planner/backend/internal/service"
)

// mockItineraryReader is a hand-written test double for service.ItineraryReader.
type mockItineraryReader struct {
	itinerary func(ctx context.Context, tripID uuid.UUID) (service.ItineraryView, error)
}

func (m *mockItineraryReader) Itinerary(ctx context.Context, tripID uuid.UUID) (service.ItineraryView, error) {
	return m.itinerary(ctx, tripID)
}

var _ service.ItineraryReader = (*mockItineraryReader)(nil)

func TestExportRows_OneRowPerActivity(t *testing.T) {
	trip := domain.Trip{ID: uuid.New(), Name: "Riviera"}
	cat := "Museum"
	day := domain.Day{
		ID:   uuid.New(),
		Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		City: "Paris",
		Morning: []domain.Activity{
			{ID: uuid.New(), ActivityTemplate: domain.ActivityTemplate{Title: "Louvre", Category: &cat,
				Coordinates: &domain.Coordinates{Latitude: 48.86, Longitude: 2.34}}},
			{ID: uuid.New(), ActivityTemplate: domain.ActivityTemplate{Title: "Tuileries"}},
		},
		Evening: []domain.Activity{
			{ID: uuid.New(), ActivityTemplate: domain.ActivityTemplate{Title: "Dinner", SourceType: "manual"}},
		},
	}

	rows := service.ExportRows(trip, []domain.Day{day})

	require.Len(t, rows, 3)
	assert.Equal(t, "morning", rows[0].Segment)
	assert.Equal(t, 1, rows[0].Position)
	assert.Equal(t, "Museum", rows[0].Category)
	require.NotNil(t, rows[0].Latitude)
	assert.InDelta(t, 48.86, *rows[0].Latitude, 1e-9)
	assert.Equal(t, 2, rows[1].Position)
	assert.Nil(t, rows[1].Latitude)
	assert.Equal(t, "evening", rows[2].Segment)
	assert.Equal(t, 1, rows[2].Position)
	for _, r := range rows {
		assert.Equal(t, "Riviera", r.TripName)
		assert.Equal(t, "Paris", r.City)
	}
}

func TestExportRows_EmptyDayStillListed(t *testing.T) {
	trip := domain.Trip{ID: uuid.New(), Name: "Riviera"}
	days := []domain.Day{
		{ID: uuid.New(), Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), City: "Paris"},
		{ID: uuid.New(), Date: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), City: "Nice"},
	}

	rows := service.ExportRows(trip, days)

	require.Len(t, rows, 2)
	assert.Equal(t, "Nice", rows[1].City)
	assert.Empty(t, rows[1].Title)
	assert.Empty(t, rows[1].Segment)
}

func TestExportService_Export_ReadsOpenStore(t *testing.T) {
	f := newItineraryFixture(t, nil)
	ctx := context.Background()
	day := f.firstDay(t)
	_, err := f.svc.AddActivity(ctx, f.trip.ID, day.ID, domain.Afternoon, service.AddActivityInput{
		Source: service.SourceManual, Title: "Seine cruise",
	})
	require.NoError(t, err)
	svc := service.NewExportService(f.svc)

	rows, err := svc.Export(ctx, f.trip.ID)

	require.NoError(t, err)
	require.Len(t, rows, 4, "four days, one activity")
	assert.Equal(t, "Seine cruise", rows[0].Title)
	assert.Equal(t, "afternoon", rows[0].Segment)
}

func TestExportService_Export_UsesReaderView(t *testing.T) {
	tripID := uuid.New()
	var gotID uuid.UUID
	reader := &mockItineraryReader{
		itinerary: func(_ context.Context, id uuid.UUID) (service.ItineraryView, error) {
			gotID = id
			return service.ItineraryView{
				Trip: domain.Trip{ID: id, Name: "Alps"},
				Days: []domain.Day{{ID: uuid.New(), Date: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), City: "Chamonix"}},
			}, nil
		},
	}

	rows, err := service.NewExportService(reader).Export(context.Background(), tripID)

	require.NoError(t, err)
	assert.Equal(t, tripID, gotID)
	require.Len(t, rows, 1)
	assert.Equal(t, "Alps", rows[0].TripName)
	assert.Equal(t, "Chamonix", rows[0].City)
}

func TestExportService_Export_UnknownTrip(t *testing.T) {
	reader := &mockItineraryReader{
		itinerary: func(context.Context, uuid.UUID) (service.ItineraryView, error) {
			return service.ItineraryView{}, fmt.Errorf("service.ItineraryService.Open: %w", domain.ErrNotFound)
		},
	}

	_, err := service.NewExportService(reader).Export(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
