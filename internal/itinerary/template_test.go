package itinerary_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/itinerary-planner/backend/internal/domain"
	"github.com/pkordes/itinerary-planner/backend/internal/itinerary"
)

func TestCategoryForTags(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		want *string
	}{
		{"food before restaurant", []string{"food", "restaurant"}, ptr("Restaurant")},
		{"park", []string{"park"}, ptr("Outdoor")},
		{"natural feature", []string{"natural_feature"}, ptr("Outdoor")},
		{"cafe", []string{"cafe"}, ptr("Cafe")},
		{"museum beats attraction", []string{"point_of_interest", "museum"}, ptr("Museum")},
		{"restaurant beats bar", []string{"bar", "restaurant"}, ptr("Restaurant")},
		{"attraction", []string{"tourist_attraction"}, ptr("Attraction")},
		{"hotel", []string{"hotel"}, ptr("Accommodation")},
		{"store", []string{"store"}, ptr("Shopping")},
		{"night club", []string{"night_club"}, ptr("Nightlife")},
		{"unknown tag", []string{"unknown_tag"}, ptr("Unknown_tag")},
		{"unknown uses first tag", []string{"zoo", "aquarium"}, ptr("Zoo")},
		{"empty", []string{}, nil},
		{"nil", nil, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, itinerary.CategoryForTags(tc.tags))
		})
	}
}

func TestFromSearchResult(t *testing.T) {
	got := itinerary.FromSearchResult(domain.PlaceSuggestion{ID: "p1", Name: "Louvre", Address: "Rue de Rivoli, Paris"})

	assert.Equal(t, "Louvre", got.Title)
	assert.Equal(t, "Rue de Rivoli, Paris", got.Location)
	assert.Equal(t, domain.SourceSearch, got.SourceType)
	require.NotNil(t, got.PlaceID)
	assert.Equal(t, "p1", *got.PlaceID)
	assert.Nil(t, got.Coordinates)
	assert.Nil(t, got.Category)
	assert.Nil(t, got.Rating)
	assert.True(t, got.NeedsEnrichment())
}

func TestFromPlaceDetails(t *testing.T) {
	rating := 4.7
	photo := "photos/abc"
	got := itinerary.FromPlaceDetails(domain.PlaceDetails{
		ID:               "p2",
		Name:             "Jardin du Luxembourg",
		FormattedAddress: "75006 Paris",
		Coordinates:      &domain.Coordinates{Latitude: 48.846, Longitude: 2.337},
		Types:            []string{"park", "tourist_attraction"},
		PhotoRef:         &photo,
		Rating:           &rating,
	})

	assert.Equal(t, "Jardin du Luxembourg", got.Title)
	assert.Equal(t, "75006 Paris", got.Location)
	require.NotNil(t, got.Coordinates)
	assert.InDelta(t, 48.846, got.Coordinates.Latitude, 1e-9)
	require.NotNil(t, got.Category)
	assert.Equal(t, "Outdoor", *got.Category)
	assert.Equal(t, &rating, got.Rating)
	assert.Equal(t, &photo, got.PhotoRef)
	assert.False(t, got.NeedsEnrichment())
}

func TestFromPlaceDetails_NoTags(t *testing.T) {
	got := itinerary.FromPlaceDetails(domain.PlaceDetails{ID: "p3", Name: "Somewhere"})

	assert.Nil(t, got.Category)
	assert.Nil(t, got.Coordinates)
}

func TestFromIdea(t *testing.T) {
	placeID := "p4"
	idea := domain.Idea{
		ID:       uuid.New(),
		Title:    "Sunset at Sacré-Cœur",
		City:     "Paris",
		Country:  "France",
		Category: "Attraction",
		Source:   "blog",
		PlaceID:  &placeID,
	}

	got := itinerary.FromIdea(idea)

	assert.Equal(t, "Sunset at Sacré-Cœur", got.Title)
	assert.Equal(t, "Paris, France", got.Location)
	assert.Equal(t, "blog", got.SourceType)
	require.NotNil(t, got.IdeaID)
	assert.Equal(t, idea.ID, *got.IdeaID)
	require.NotNil(t, got.PlaceID)
	assert.Equal(t, "p4", *got.PlaceID)
	require.NotNil(t, got.Category)
	assert.Equal(t, "Attraction", *got.Category)
	assert.Nil(t, got.Coordinates)
	assert.Nil(t, got.Rating)
}

func TestFromIdea_CityOnly(t *testing.T) {
	got := itinerary.FromIdea(domain.Idea{ID: uuid.New(), Title: "Gelato", City: "Rome"})

	assert.Equal(t, "Rome", got.Location)
	assert.Nil(t, got.Category)
	assert.Nil(t, got.PlaceID)
	assert.False(t, got.NeedsEnrichment())
}

func TestManualTemplate(t *testing.T) {
	got := itinerary.ManualTemplate("  Picnic ", " Champ de Mars ")

	assert.Equal(t, "Picnic", got.Title)
	assert.Equal(t, "Champ de Mars", got.Location)
	assert.Equal(t, domain.SourceManual, got.SourceType)
}

func ptr[T any](v T) *T { return &v }
