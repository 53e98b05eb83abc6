package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/itinerary-planner/backend/internal/domain"
	"github.com/pkordes/itinerary-planner/backend/internal/places"
	"github.com/pkordes/itinerary-planner/backend/internal/service"
)

func TestPlaceService_Suggestions(t *testing.T) {
	lookup := &mockLookup{
		suggestions: func(_ context.Context, q string) ([]domain.PlaceSuggestion, error) {
			return []domain.PlaceSuggestion{{ID: "p1", Name: q}}, nil
		},
	}
	svc := service.NewPlaceService(lookup, nil)

	got := svc.Suggestions(context.Background(), "Louvre")

	require.Len(t, got, 1)
	assert.Equal(t, "Louvre", got[0].Name)
}

func TestPlaceService_Suggestions_FailureIsEmpty(t *testing.T) {
	lookup := &mockLookup{
		suggestions: func(_ context.Context, _ string) ([]domain.PlaceSuggestion, error) {
			return nil, errors.New("upstream 503")
		},
	}
	svc := service.NewPlaceService(lookup, nil)

	got := svc.Suggestions(context.Background(), "Louvre")

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPlaceService_Template(t *testing.T) {
	lookup := &mockLookup{
		details: func(_ context.Context, id string) (domain.PlaceDetails, error) {
			return domain.PlaceDetails{ID: id, Name: "Le Procope", Types: []string{"restaurant"}}, nil
		},
	}
	svc := service.NewPlaceService(lookup, nil)

	got, err := svc.Template(context.Background(), "p-procope")

	require.NoError(t, err)
	assert.Equal(t, "Le Procope", got.Title)
	require.NotNil(t, got.Category)
	assert.Equal(t, "Restaurant", *got.Category)
}

func TestPlaceService_Template_Disabled(t *testing.T) {
	svc := service.NewPlaceService(places.Disabled{}, nil)

	_, err := svc.Template(context.Background(), "p1")

	assert.ErrorIs(t, err, service.ErrPlaceLookup)
	assert.Empty(t, svc.Suggestions(context.Background(), "anything"))
}
