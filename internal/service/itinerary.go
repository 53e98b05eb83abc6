package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/pkordes/itinerary-planner/backend/internal/domain"
	"github.com/pkordes/itinerary-planner/backend/internal/itinerary"
	"github.com/pkordes/itinerary-planner/backend/internal/repo"
)

// ErrPlaceLookup is returned when an activity is built from a place id and
// the place lookup fails.
var ErrPlaceLookup = errors.New("place lookup failed")

// PlaceLookup is the place search collaborator. *places.Client and
// places.Disabled both satisfy it.
type PlaceLookup interface {
	Suggestions(ctx context.Context, query string) ([]domain.PlaceSuggestion, error)
	Details(ctx context.Context, placeID string) (domain.PlaceDetails, error)
}

// openTimeout bounds a shared store load.
const openTimeout = 30 * time.Second

// Activity sources accepted by AddActivity.
const (
	SourceSearch = "search"
	SourcePlace  = "place"
	SourceIdea   = "idea"
	SourceManual = "manual"
)

// AddActivityInput describes the activity to add. Which fields are read
// depends on Source:
//   - search: Suggestion (a result previously returned by place search)
//   - place:  PlaceID (details are looked up before the activity is built)
//   - idea:   IdeaID
//   - manual: Title and Location
type AddActivityInput struct {
	Source     string
	Suggestion domain.PlaceSuggestion
	PlaceID    string
	IdeaID     uuid.UUID
	Title      string
	Location   string
}

// ItineraryView is everything a client needs to render a trip's itinerary.
type ItineraryView struct {
	Trip        domain.Trip
	Days        []domain.Day
	Expanded    []uuid.UUID
	LinkedIdeas []domain.Idea
}

// ItineraryService keeps one itinerary.Store per open trip and routes
// mutations to it. Stores are opened lazily on first use and stay open until
// Close or CloseAll.
type ItineraryService struct {
	trips   repo.TripRepo
	days    repo.ItineraryRepo
	ideas   repo.IdeaRepo
	lookup  PlaceLookup
	log     *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	stores  map[uuid.UUID]*itinerary.Store
	opening singleflight.Group
}

// NewItineraryService constructs an ItineraryService. lookup may be nil, in
// which case activities are never enriched and the "place" source fails.
func NewItineraryService(
	trips repo.TripRepo,
	days repo.ItineraryRepo,
	ideas repo.IdeaRepo,
	lookup PlaceLookup,
	log *slog.Logger,
	enrichTimeout time.Duration,
) *ItineraryService {
	if log == nil {
		log = slog.Default()
	}
	return &ItineraryService{
		trips:   trips,
		days:    days,
		ideas:   ideas,
		lookup:  lookup,
		log:     log,
		timeout: enrichTimeout,
		stores:  map[uuid.UUID]*itinerary.Store{},
	}
}

// Open returns the loaded store for tripID, creating and loading it if this
// is the first request for the trip. Concurrent first requests share one
// load, which runs detached from any single caller's cancellation; each
// caller stops waiting when its own ctx is done.
// Returns domain.ErrNotFound if the trip does not exist.
func (s *ItineraryService) Open(ctx context.Context, tripID uuid.UUID) (*itinerary.Store, error) {
	if st := s.cached(tripID); st != nil {
		return st, nil
	}
	ch := s.opening.DoChan(tripID.String(), func() (any, error) {
		if st := s.cached(tripID); st != nil {
			return st, nil
		}
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), openTimeout)
		defer cancel()
		st, err := s.load(loadCtx, tripID)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.stores[tripID] = st
		s.mu.Unlock()
		return st, nil
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("service.ItineraryService.Open: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("service.ItineraryService.Open: %w", res.Err)
		}
		return res.Val.(*itinerary.Store), nil
	}
}

func (s *ItineraryService) cached(tripID uuid.UUID) *itinerary.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stores[tripID]
}

func (s *ItineraryService) load(ctx context.Context, tripID uuid.UUID) (*itinerary.Store, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	days, err := s.days.ListDays(ctx, tripID)
	if err != nil {
		return nil, err
	}
	linked, err := s.days.ListLinkedIdeas(ctx, tripID)
	if err != nil {
		return nil, err
	}

	opts := itinerary.Options{
		Saver:         s.days,
		Logger:        s.log,
		EnrichTimeout: s.timeout,
	}
	if s.lookup != nil {
		opts.Lookup = s.lookup
	}
	st := itinerary.NewStore(trip, opts)
	st.Subscribe(func(ev itinerary.Event) {
		s.log.Debug("itinerary changed",
			"trip_id", ev.TripID,
			"kind", ev.Kind,
			"day_id", ev.DayID,
			"segment", ev.Segment,
		)
	})
	if err := st.Load(ctx, days, linked); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// Itinerary opens the trip's store and returns its current state. The trip
// is re-read so IdeaCount and UpdatedAt reflect the latest save.
func (s *ItineraryService) Itinerary(ctx context.Context, tripID uuid.UUID) (ItineraryView, error) {
	st, err := s.Open(ctx, tripID)
	if err != nil {
		return ItineraryView{}, err
	}
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return ItineraryView{}, fmt.Errorf("service.ItineraryService.Itinerary: %w", err)
	}
	return ItineraryView{
		Trip:        trip,
		Days:        st.Days(),
		Expanded:    st.Expanded(),
		LinkedIdeas: st.LinkedIdeas(),
	}, nil
}

// Day returns one day of the trip. Returns domain.ErrNotFound if the trip
// or the day does not exist.
func (s *ItineraryService) Day(ctx context.Context, tripID, dayID uuid.UUID) (domain.Day, error) {
	st, err := s.Open(ctx, tripID)
	if err != nil {
		return domain.Day{}, err
	}
	d, ok := st.Day(dayID)
	if !ok {
		return domain.Day{}, fmt.Errorf("service.ItineraryService.Day: %w", domain.ErrNotFound)
	}
	return d, nil
}

// ToggleExpanded flips the expansion state of a day and returns the new state.
func (s *ItineraryService) ToggleExpanded(ctx context.Context, tripID, dayID uuid.UUID) (bool, error) {
	st, err := s.Open(ctx, tripID)
	if err != nil {
		return false, err
	}
	if _, ok := st.Day(dayID); !ok {
		return false, fmt.Errorf("service.ItineraryService.ToggleExpanded: %w", domain.ErrNotFound)
	}
	return st.ToggleExpanded(dayID), nil
}

// AddActivity builds an activity template from in and appends it to the
// given segment of the day.
func (s *ItineraryService) AddActivity(ctx context.Context, tripID, dayID uuid.UUID, seg domain.Segment, in AddActivityInput) (domain.Activity, error) {
	st, err := s.Open(ctx, tripID)
	if err != nil {
		return domain.Activity{}, err
	}
	tmpl, err := s.template(ctx, in)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("service.ItineraryService.AddActivity: %w", err)
	}
	a, err := st.AddActivity(ctx, dayID, seg, tmpl)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("service.ItineraryService.AddActivity: %w", err)
	}
	return a, nil
}

func (s *ItineraryService) template(ctx context.Context, in AddActivityInput) (domain.ActivityTemplate, error) {
	switch in.Source {
	case SourceSearch:
		if strings.TrimSpace(in.Suggestion.Name) == "" {
			return domain.ActivityTemplate{}, fmt.Errorf("%w: suggestion name is required", domain.ErrValidation)
		}
		return itinerary.FromSearchResult(in.Suggestion), nil
	case SourcePlace:
		if in.PlaceID == "" {
			return domain.ActivityTemplate{}, fmt.Errorf("%w: place_id is required", domain.ErrValidation)
		}
		if s.lookup == nil {
			return domain.ActivityTemplate{}, ErrPlaceLookup
		}
		d, err := s.lookup.Details(ctx, in.PlaceID)
		if err != nil {
			return domain.ActivityTemplate{}, fmt.Errorf("%w: %v", ErrPlaceLookup, err)
		}
		return itinerary.FromPlaceDetails(d), nil
	case SourceIdea:
		idea, err := s.ideas.GetByID(ctx, in.IdeaID)
		if err != nil {
			return domain.ActivityTemplate{}, err
		}
		return itinerary.FromIdea(idea), nil
	case SourceManual:
		tmpl := itinerary.ManualTemplate(in.Title, in.Location)
		if tmpl.Title == "" {
			return domain.ActivityTemplate{}, fmt.Errorf("%w: title is required", domain.ErrValidation)
		}
		return tmpl, nil
	default:
		return domain.ActivityTemplate{}, fmt.Errorf("%w: unknown activity source %q", domain.ErrValidation, in.Source)
	}
}

// RemoveActivity removes an activity from a segment. A stale day or activity
// id is not an error; the returned bool reports whether anything changed.
func (s *ItineraryService) RemoveActivity(ctx context.Context, tripID, dayID, activityID uuid.UUID, seg domain.Segment) (bool, error) {
	st, err := s.Open(ctx, tripID)
	if err != nil {
		return false, err
	}
	return st.RemoveActivity(ctx, dayID, activityID, seg), nil
}

// ReorderActivity moves the activity at index from to index to within one
// segment and returns the segment as it stands afterwards. Out-of-range
// indices and a stale day id leave everything unchanged.
func (s *ItineraryService) ReorderActivity(ctx context.Context, tripID, dayID uuid.UUID, seg domain.Segment, from, to int) ([]domain.Activity, bool, error) {
	st, err := s.Open(ctx, tripID)
	if err != nil {
		return nil, false, err
	}
	changed := st.ReorderActivity(ctx, dayID, seg, from, to)
	d, ok := st.Day(dayID)
	if !ok {
		return []domain.Activity{}, false, nil
	}
	return d.Activities(seg), changed, nil
}

// LinkedIdeas returns the ideas linked to the trip, in link order.
func (s *ItineraryService) LinkedIdeas(ctx context.Context, tripID uuid.UUID) ([]domain.Idea, error) {
	st, err := s.Open(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return st.LinkedIdeas(), nil
}

// LinkIdeas links the given ideas to the trip. Unknown idea ids fail the
// whole request with domain.ErrNotFound before anything is linked.
func (s *ItineraryService) LinkIdeas(ctx context.Context, tripID uuid.UUID, ideaIDs []uuid.UUID) ([]domain.Idea, error) {
	if len(ideaIDs) == 0 {
		return nil, fmt.Errorf("%w: idea_ids must not be empty", domain.ErrValidation)
	}
	st, err := s.Open(ctx, tripID)
	if err != nil {
		return nil, err
	}
	ideas := make([]domain.Idea, 0, len(ideaIDs))
	for _, id := range ideaIDs {
		idea, err := s.ideas.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("service.ItineraryService.LinkIdeas: %w", err)
		}
		ideas = append(ideas, idea)
	}
	if _, err := st.LinkIdeas(ctx, ideas...); err != nil {
		return nil, fmt.Errorf("service.ItineraryService.LinkIdeas: %w", err)
	}
	return st.LinkedIdeas(), nil
}

// UnlinkIdea removes one idea from the trip's linked ideas.
// Returns whether the idea was linked.
func (s *ItineraryService) UnlinkIdea(ctx context.Context, tripID, ideaID uuid.UUID) (bool, error) {
	st, err := s.Open(ctx, tripID)
	if err != nil {
		return false, err
	}
	return st.UnlinkIdea(ctx, ideaID), nil
}

// Reschedule fits the trip's stored days to trip's dates and cities. It
// runs before the trip itself is updated. Days still in range keep their
// activities and take the city the new plan assigns, missing dates get empty
// days, and out-of-range days are dropped. If a dropped day still has
// activities the edit fails with domain.ErrValidation and nothing is
// written. The open store, if any, is closed so the next request reloads
// the new days. A trip with no stored days is left alone; its days are
// generated on first open.
func (s *ItineraryService) Reschedule(ctx context.Context, trip domain.Trip) error {
	s.Close(trip.ID)

	days, err := s.days.ListDays(ctx, trip.ID)
	if err != nil {
		return fmt.Errorf("service.ItineraryService.Reschedule: %w", err)
	}
	if len(days) == 0 {
		return nil
	}
	next, err := itinerary.ReconcileDays(trip.ID, trip.StartDate, trip.EndDate, trip.Cities, days)
	if err != nil {
		return fmt.Errorf("service.ItineraryService.Reschedule: %w", err)
	}
	linked, err := s.days.ListLinkedIdeas(ctx, trip.ID)
	if err != nil {
		return fmt.Errorf("service.ItineraryService.Reschedule: %w", err)
	}
	ids := make([]uuid.UUID, len(linked))
	for i, idea := range linked {
		ids[i] = idea.ID
	}
	if err := s.days.Save(ctx, domain.ItinerarySnapshot{TripID: trip.ID, Days: next, LinkedIdeaIDs: ids}); err != nil {
		return fmt.Errorf("service.ItineraryService.Reschedule: %w", err)
	}
	// A store opened while the days were being rewritten holds the old ones.
	s.Close(trip.ID)
	s.log.InfoContext(ctx, "rescheduled itinerary days", "trip_id", trip.ID, "days", len(next))
	return nil
}

// Close closes and forgets the store for tripID, if one is open. In-flight
// enrichments for that trip are dropped.
func (s *ItineraryService) Close(tripID uuid.UUID) {
	s.mu.Lock()
	st, ok := s.stores[tripID]
	delete(s.stores, tripID)
	s.mu.Unlock()
	if ok {
		st.Close()
	}
}

// CloseAll closes every open store. Called on shutdown.
func (s *ItineraryService) CloseAll() {
	s.mu.Lock()
	stores := s.stores
	s.stores = map[uuid.UUID]*itinerary.Store{}
	s.mu.Unlock()
	for _, st := range stores {
		st.Close()
	}
}
