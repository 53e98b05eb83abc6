// Package places looks up place suggestions and place details from the
// Google Places API (New). It is the only component that talks to the
// outside world during itinerary editing.
package places

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	placesapi "google.golang.org/api/places/v1"

	"github.com/pkordes/itinerary-planner/backend/internal/domain"
)

// ErrDisabled is returned by Disabled for every lookup.
var ErrDisabled = errors.New("place lookup disabled")

// detailFields is the field mask requested for place details. The Places API
// rejects detail requests without one.
const detailFields = "id,displayName,formattedAddress,location,types,photos,rating"

// DefaultRequestTimeout bounds one shared details request.
const DefaultRequestTimeout = 10 * time.Second

// Options tunes a Client.
type Options struct {
	// RatePerSecond caps outbound requests. Zero or less means 5.
	RatePerSecond float64
	// RequestTimeout bounds a details request shared by several callers.
	// Zero or less means DefaultRequestTimeout.
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// Client is a place lookup backed by the Places API.
// It is safe for concurrent use.
type Client struct {
	svc     *placesapi.Service
	limiter *rate.Limiter
	details singleflight.Group
	timeout time.Duration
	log     *slog.Logger
}

// NewClient builds a Client authenticated with apiKey. Extra client options
// are passed to the underlying service (tests use option.WithEndpoint).
func NewClient(ctx context.Context, apiKey string, opts Options, extra ...option.ClientOption) (*Client, error) {
	clientOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, extra...)
	svc, err := placesapi.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("places.NewClient: %w", err)
	}
	perSecond := opts.RatePerSecond
	if perSecond <= 0 {
		perSecond = 5
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		svc:     svc,
		limiter: rate.NewLimiter(rate.Limit(perSecond), max(1, int(perSecond))),
		timeout: timeout,
		log:     log,
	}, nil
}

// Suggestions returns autocomplete predictions for query.
// A blank query returns an empty list without calling the API.
func (c *Client) Suggestions(ctx context.Context, query string) ([]domain.PlaceSuggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.PlaceSuggestion{}, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("places.Client.Suggestions: %w", err)
	}

	resp, err := c.svc.Places.Autocomplete(&placesapi.GoogleMapsPlacesV1AutocompletePlacesRequest{
		Input: query,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("places.Client.Suggestions: %w", err)
	}

	out := []domain.PlaceSuggestion{}
	for _, s := range resp.Suggestions {
		if s == nil || s.PlacePrediction == nil || s.PlacePrediction.PlaceId == "" {
			continue
		}
		out = append(out, suggestionFromPrediction(s.PlacePrediction))
	}
	c.log.DebugContext(ctx, "place suggestions", "query", query, "results", len(out))
	return out, nil
}

// Details returns the full record for placeID. Concurrent calls for the
// same ID share a single request. The shared request is detached from any
// one caller's cancellation and bounded by the client's request timeout;
// each caller still stops waiting when its own ctx is done.
func (c *Client) Details(ctx context.Context, placeID string) (domain.PlaceDetails, error) {
	if placeID == "" {
		return domain.PlaceDetails{}, fmt.Errorf("places.Client.Details: %w: place id is required", domain.ErrValidation)
	}

	ch := c.details.DoChan(placeID, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return c.fetchDetails(fetchCtx, placeID)
	})
	select {
	case <-ctx.Done():
		return domain.PlaceDetails{}, fmt.Errorf("places.Client.Details: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return domain.PlaceDetails{}, fmt.Errorf("places.Client.Details: %w", res.Err)
		}
		return res.Val.(domain.PlaceDetails), nil
	}
}

func (c *Client) fetchDetails(ctx context.Context, placeID string) (domain.PlaceDetails, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.PlaceDetails{}, err
	}
	p, err := c.svc.Places.Get("places/" + placeID).Fields(detailFields).Context(ctx).Do()
	if err != nil {
		return domain.PlaceDetails{}, err
	}
	c.log.DebugContext(ctx, "place details", "place_id", placeID)
	return detailsFromPlace(placeID, p), nil
}

func suggestionFromPrediction(p *placesapi.GoogleMapsPlacesV1AutocompletePlacesResponseSuggestionPlacePrediction) domain.PlaceSuggestion {
	s := domain.PlaceSuggestion{ID: p.PlaceId}
	if f := p.StructuredFormat; f != nil {
		if f.MainText != nil {
			s.Name = f.MainText.Text
		}
		if f.SecondaryText != nil {
			s.Address = f.SecondaryText.Text
		}
	}
	if s.Name == "" && p.Text != nil {
		s.Name = p.Text.Text
	}
	return s
}

func detailsFromPlace(placeID string, p *placesapi.GoogleMapsPlacesV1Place) domain.PlaceDetails {
	d := domain.PlaceDetails{
		ID:               p.Id,
		FormattedAddress: p.FormattedAddress,
		Types:            p.Types,
	}
	if d.ID == "" {
		d.ID = placeID
	}
	if p.DisplayName != nil {
		d.Name = p.DisplayName.Text
	}
	if p.Location != nil {
		d.Coordinates = &domain.Coordinates{Latitude: p.Location.Latitude, Longitude: p.Location.Longitude}
	}
	if len(p.Photos) > 0 && p.Photos[0] != nil && p.Photos[0].Name != "" {
		ref := p.Photos[0].Name
		d.PhotoRef = &ref
	}
	if p.Rating > 0 {
		r := p.Rating
		d.Rating = &r
	}
	return d
}

// Disabled is a lookup used when no API key is configured. Suggestions are
// always empty and details always fail, which callers treat as a failed
// lookup.
type Disabled struct{}

// Suggestions always returns an empty list.
func (Disabled) Suggestions(context.Context, string) ([]domain.PlaceSuggestion, error) {
	return []domain.PlaceSuggestion{}, nil
}

// Details always returns ErrDisabled.
func (Disabled) Details(context.Context, string) (domain.PlaceDetails, error) {
	return domain.PlaceDetails{}, ErrDisabled
}
