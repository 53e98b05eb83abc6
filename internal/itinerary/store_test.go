package itinerary_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/itinerary-planner/backend/internal/domain"
	"github.com/pkordes/itinerary-planner/backend/internal/itinerary"
)

// ---- test doubles ----------------------------------------------------------

// fakeLookup is a hand-written test double for itinerary.PlaceDetailer.
type fakeLookup struct {
	details func(ctx context.Context, placeID string) (domain.PlaceDetails, error)
}

func (f *fakeLookup) Details(ctx context.Context, placeID string) (domain.PlaceDetails, error) {
	return f.details(ctx, placeID)
}

// recordingSaver keeps every snapshot it is asked to save.
type recordingSaver struct {
	mu    sync.Mutex
	snaps []domain.ItinerarySnapshot
	err   error
}

func (r *recordingSaver) Save(_ context.Context, snap domain.ItinerarySnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, snap)
	return r.err
}

func (r *recordingSaver) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

func (r *recordingSaver) last() domain.ItinerarySnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snaps[len(r.snaps)-1]
}

// ---- helpers ---------------------------------------------------------------

func tripFixture() domain.Trip {
	return domain.Trip{
		ID:        uuid.New(),
		Name:      "Riviera",
		StartDate: date(2025, 6, 1),
		EndDate:   date(2025, 6, 3),
		Cities:    []string{"Paris", "Nice"},
		Countries: []string{"France", "France"},
	}
}

// newLoadedStore returns a loaded store and the saver it writes to.
func newLoadedStore(t *testing.T, lookup itinerary.PlaceDetailer) (*itinerary.Store, *recordingSaver) {
	t.Helper()
	saver := &recordingSaver{}
	s := itinerary.NewStore(tripFixture(), itinerary.Options{
		Lookup:        lookup,
		Saver:         saver,
		EnrichTimeout: 200 * time.Millisecond,
	})
	t.Cleanup(s.Close)
	require.NoError(t, s.Load(context.Background(), nil, nil))
	return s, saver
}

func firstDay(t *testing.T, s *itinerary.Store) domain.Day {
	t.Helper()
	days := s.Days()
	require.NotEmpty(t, days)
	return days[0]
}

func titles(list []domain.Activity) []string {
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = a.Title
	}
	return out
}

// addManual adds manual activities with the given titles to the morning of day.
func addManual(t *testing.T, s *itinerary.Store, dayID uuid.UUID, names ...string) []domain.Activity {
	t.Helper()
	var out []domain.Activity
	for _, n := range names {
		a, err := s.AddActivity(context.Background(), dayID, domain.Morning, itinerary.ManualTemplate(n, ""))
		require.NoError(t, err)
		out = append(out, a)
	}
	return out
}

func morning(t *testing.T, s *itinerary.Store, dayID uuid.UUID) []domain.Activity {
	t.Helper()
	d, ok := s.Day(dayID)
	require.True(t, ok)
	return d.Morning
}

// ---- Load ------------------------------------------------------------------

func TestStore_Load_GeneratesAndSaves(t *testing.T) {
	s, saver := newLoadedStore(t, nil)

	days := s.Days()
	require.Len(t, days, 3)
	assert.Equal(t, "Nice", days[2].City)
	assert.Equal(t, 1, saver.count(), "generated days should be persisted once")
	assert.Len(t, saver.last().Days, 3)
}

func TestStore_Load_Idempotent(t *testing.T) {
	s, saver := newLoadedStore(t, nil)
	before := s.Days()

	require.NoError(t, s.Load(context.Background(), nil, nil))

	assert.Equal(t, before, s.Days())
	assert.Equal(t, 1, saver.count())
}

func TestStore_Load_UsesExistingDays(t *testing.T) {
	trip := tripFixture()
	existing, err := itinerary.GenerateDays(trip.ID, trip.StartDate, trip.EndDate, trip.Cities)
	require.NoError(t, err)
	// Hand them over out of order; the store keeps them sorted.
	existing[0], existing[2] = existing[2], existing[0]
	saver := &recordingSaver{}

	s := itinerary.NewStore(trip, itinerary.Options{Saver: saver})
	defer s.Close()
	require.NoError(t, s.Load(context.Background(), existing, nil))

	days := s.Days()
	require.Len(t, days, 3)
	assert.Equal(t, existing[2].ID, days[0].ID)
	assert.Equal(t, 0, saver.count(), "loading stored days must not save")
}

func TestStore_Load_NoCities(t *testing.T) {
	trip := tripFixture()
	trip.Cities = nil

	s := itinerary.NewStore(trip, itinerary.Options{})
	defer s.Close()

	err := s.Load(context.Background(), nil, nil)

	assert.ErrorIs(t, err, domain.ErrNoCities)
	assert.False(t, s.Loaded())
}

// ---- AddActivity -----------------------------------------------------------

func TestStore_AddActivity_AppendsToEnd(t *testing.T) {
	s, saver := newLoadedStore(t, nil)
	day := firstDay(t, s)

	addManual(t, s, day.ID, "Croissant", "Louvre")

	got := morning(t, s, day.ID)
	assert.Equal(t, []string{"Croissant", "Louvre"}, titles(got))
	assert.Equal(t, domain.Morning, got[1].Segment)
	assert.Equal(t, 3, saver.count(), "one save for generation plus one per add")
}

func TestStore_AddActivity_UnknownDay(t *testing.T) {
	s, _ := newLoadedStore(t, nil)

	_, err := s.AddActivity(context.Background(), uuid.New(), domain.Morning, itinerary.ManualTemplate("x", ""))

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_AddActivity_BadSegment(t *testing.T) {
	s, _ := newLoadedStore(t, nil)
	day := firstDay(t, s)

	_, err := s.AddActivity(context.Background(), day.ID, domain.Segment("night"), itinerary.ManualTemplate("x", ""))

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStore_AddActivity_EnrichesCoordinates(t *testing.T) {
	lookup := &fakeLookup{details: func(_ context.Context, id string) (domain.PlaceDetails, error) {
		return domain.PlaceDetails{
			ID:          id,
			Coordinates: &domain.Coordinates{Latitude: 43.695, Longitude: 7.265},
			Types:       []string{"museum"},
		}, nil
	}}
	s, _ := newLoadedStore(t, lookup)
	day := firstDay(t, s)

	a, err := s.AddActivity(context.Background(), day.ID, domain.Afternoon,
		itinerary.FromSearchResult(domain.PlaceSuggestion{ID: "matisse", Name: "Musée Matisse"}))

	require.NoError(t, err)
	require.NotNil(t, a.Coordinates)
	assert.InDelta(t, 43.695, a.Coordinates.Latitude, 1e-9)
	require.NotNil(t, a.Category)
	assert.Equal(t, "Museum", *a.Category)

	d, _ := s.Day(day.ID)
	require.Len(t, d.Afternoon, 1)
	assert.Equal(t, a.ID, d.Afternoon[0].ID)
}

func TestStore_AddActivity_EnrichmentFailureStillAdds(t *testing.T) {
	lookup := &fakeLookup{details: func(context.Context, string) (domain.PlaceDetails, error) {
		return domain.PlaceDetails{}, errors.New("quota exceeded")
	}}
	s, _ := newLoadedStore(t, lookup)
	day := firstDay(t, s)

	a, err := s.AddActivity(context.Background(), day.ID, domain.Morning,
		itinerary.FromSearchResult(domain.PlaceSuggestion{ID: "p1", Name: "Café de Flore"}))

	require.NoError(t, err)
	assert.Nil(t, a.Coordinates)
	assert.Equal(t, []string{"Café de Flore"}, titles(morning(t, s, day.ID)))
}

func TestStore_AddActivity_EnrichmentTimeoutFallsBack(t *testing.T) {
	lookup := &fakeLookup{details: func(ctx context.Context, _ string) (domain.PlaceDetails, error) {
		<-ctx.Done()
		return domain.PlaceDetails{}, ctx.Err()
	}}
	s, _ := newLoadedStore(t, lookup)
	day := firstDay(t, s)

	start := time.Now()
	a, err := s.AddActivity(context.Background(), day.ID, domain.Morning,
		itinerary.FromSearchResult(domain.PlaceSuggestion{ID: "slow", Name: "Slow Place"}))

	require.NoError(t, err)
	assert.Nil(t, a.Coordinates)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestStore_AddActivity_SkipsLookupWhenCoordinatesKnown(t *testing.T) {
	lookup := &fakeLookup{details: func(context.Context, string) (domain.PlaceDetails, error) {
		t.Fatal("lookup must not be called")
		return domain.PlaceDetails{}, nil
	}}
	s, _ := newLoadedStore(t, lookup)
	day := firstDay(t, s)

	tmpl := itinerary.FromPlaceDetails(domain.PlaceDetails{
		ID:          "known",
		Name:        "Known",
		Coordinates: &domain.Coordinates{Latitude: 1, Longitude: 2},
	})
	_, err := s.AddActivity(context.Background(), day.ID, domain.Evening, tmpl)

	require.NoError(t, err)
}

func TestStore_AddActivity_CloseDuringEnrichmentDropsMutation(t *testing.T) {
	started := make(chan struct{})
	lookup := &fakeLookup{details: func(ctx context.Context, _ string) (domain.PlaceDetails, error) {
		close(started)
		<-ctx.Done()
		return domain.PlaceDetails{}, ctx.Err()
	}}
	saver := &recordingSaver{}
	s := itinerary.NewStore(tripFixture(), itinerary.Options{Lookup: lookup, Saver: saver, EnrichTimeout: time.Minute})
	require.NoError(t, s.Load(context.Background(), nil, nil))
	day := firstDay(t, s)
	savesBefore := saver.count()

	errc := make(chan error, 1)
	go func() {
		_, err := s.AddActivity(context.Background(), day.ID, domain.Morning,
			itinerary.FromSearchResult(domain.PlaceSuggestion{ID: "p", Name: "Late"}))
		errc <- err
	}()

	<-started
	s.Close()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, itinerary.ErrStoreClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("AddActivity did not return after Close")
	}
	assert.Empty(t, morning(t, s, day.ID))
	assert.Equal(t, savesBefore, saver.count())
}

func TestStore_AddActivity_ConcurrentAddsAreNotLost(t *testing.T) {
	lookup := &fakeLookup{details: func(_ context.Context, id string) (domain.PlaceDetails, error) {
		time.Sleep(time.Millisecond)
		return domain.PlaceDetails{ID: id, Coordinates: &domain.Coordinates{}}, nil
	}}
	s, _ := newLoadedStore(t, lookup)
	day := firstDay(t, s)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.AddActivity(context.Background(), day.ID, domain.Morning,
				itinerary.FromSearchResult(domain.PlaceSuggestion{ID: fmt.Sprint(i), Name: fmt.Sprint(i)}))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got := morning(t, s, day.ID)
	assert.Len(t, got, n)
	seen := map[uuid.UUID]bool{}
	for _, a := range got {
		assert.False(t, seen[a.ID], "duplicate activity id")
		seen[a.ID] = true
	}
}

// ---- RemoveActivity --------------------------------------------------------

func TestStore_AddThenRemove_RoundTrip(t *testing.T) {
	s, _ := newLoadedStore(t, nil)
	day := firstDay(t, s)
	addManual(t, s, day.ID, "a", "b")
	before := morning(t, s, day.ID)

	added := addManual(t, s, day.ID, "c")
	removed := s.RemoveActivity(context.Background(), day.ID, added[0].ID, domain.Morning)

	assert.True(t, removed)
	assert.Equal(t, before, morning(t, s, day.ID))
}

func TestStore_RemoveActivity_MissingIsNoOp(t *testing.T) {
	s, saver := newLoadedStore(t, nil)
	day := firstDay(t, s)
	added := addManual(t, s, day.ID, "a")
	saves := saver.count()

	assert.False(t, s.RemoveActivity(context.Background(), day.ID, uuid.New(), domain.Morning))
	assert.False(t, s.RemoveActivity(context.Background(), uuid.New(), added[0].ID, domain.Morning))
	assert.False(t, s.RemoveActivity(context.Background(), day.ID, added[0].ID, domain.Evening))

	assert.Len(t, morning(t, s, day.ID), 1)
	assert.Equal(t, saves, saver.count())
}

// ---- ReorderActivity -------------------------------------------------------

func TestStore_ReorderActivity_MovesForward(t *testing.T) {
	s, saver := newLoadedStore(t, nil)
	day := firstDay(t, s)
	addManual(t, s, day.ID, "a", "b", "c")
	saves := saver.count()

	ok := s.ReorderActivity(context.Background(), day.ID, domain.Morning, 0, 2)

	assert.True(t, ok)
	assert.Equal(t, []string{"b", "c", "a"}, titles(morning(t, s, day.ID)))
	assert.Equal(t, saves+1, saver.count())
}

func TestStore_ReorderActivity_MovesBackward(t *testing.T) {
	s, _ := newLoadedStore(t, nil)
	day := firstDay(t, s)
	addManual(t, s, day.ID, "a", "b", "c", "d")

	ok := s.ReorderActivity(context.Background(), day.ID, domain.Morning, 3, 1)

	assert.True(t, ok)
	assert.Equal(t, []string{"a", "d", "b", "c"}, titles(morning(t, s, day.ID)))
}

func TestStore_ReorderActivity_SameIndexIsNoOp(t *testing.T) {
	s, _ := newLoadedStore(t, nil)
	day := firstDay(t, s)
	addManual(t, s, day.ID, "a", "b")
	before := morning(t, s, day.ID)

	assert.False(t, s.ReorderActivity(context.Background(), day.ID, domain.Morning, 1, 1))
	assert.Equal(t, before, morning(t, s, day.ID))
}

func TestStore_ReorderActivity_OutOfBoundsIsNoOp(t *testing.T) {
	s, saver := newLoadedStore(t, nil)
	day := firstDay(t, s)
	addManual(t, s, day.ID, "a", "b")
	before := morning(t, s, day.ID)
	saves := saver.count()

	for _, idx := range [][2]int{{-1, 0}, {0, 2}, {2, 0}, {0, -1}, {5, 6}} {
		assert.False(t, s.ReorderActivity(context.Background(), day.ID, domain.Morning, idx[0], idx[1]), "%v", idx)
	}
	assert.False(t, s.ReorderActivity(context.Background(), uuid.New(), domain.Morning, 0, 1))

	assert.Equal(t, before, morning(t, s, day.ID))
	assert.Equal(t, saves, saver.count())
}

// ---- ideas -----------------------------------------------------------------

func TestStore_UnlinkIdea_KeepsOrder(t *testing.T) {
	ideas := []domain.Idea{{ID: uuid.New(), Title: "a"}, {ID: uuid.New(), Title: "b"}, {ID: uuid.New(), Title: "c"}}
	saver := &recordingSaver{}
	s := itinerary.NewStore(tripFixture(), itinerary.Options{Saver: saver})
	defer s.Close()
	require.NoError(t, s.Load(context.Background(), nil, ideas))

	assert.True(t, s.UnlinkIdea(context.Background(), ideas[1].ID))
	assert.False(t, s.UnlinkIdea(context.Background(), ideas[1].ID))

	got := s.LinkedIdeas()
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Title)
	assert.Equal(t, "c", got[1].Title)
	assert.Equal(t, []uuid.UUID{ideas[0].ID, ideas[2].ID}, saver.last().LinkedIdeaIDs)
}

func TestStore_LinkIdeas_SkipsDuplicates(t *testing.T) {
	s, _ := newLoadedStore(t, nil)
	a := domain.Idea{ID: uuid.New(), Title: "a"}
	b := domain.Idea{ID: uuid.New(), Title: "b"}

	n, err := s.LinkIdeas(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = s.LinkIdeas(context.Background(), a, b)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got := s.LinkedIdeas()
	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, b.ID, got[1].ID)
}

// ---- expansion & events ----------------------------------------------------

func TestStore_ToggleExpanded(t *testing.T) {
	s, saver := newLoadedStore(t, nil)
	days := s.Days()
	saves := saver.count()

	assert.True(t, s.ToggleExpanded(days[1].ID))
	assert.True(t, s.IsExpanded(days[1].ID))
	assert.Equal(t, []uuid.UUID{days[1].ID}, s.Expanded())
	assert.False(t, s.ToggleExpanded(days[1].ID))
	assert.Empty(t, s.Expanded())
	assert.Equal(t, saves, saver.count(), "expansion is never persisted")
	assert.Equal(t, days, s.Days())
}

func TestStore_Subscribe(t *testing.T) {
	s, _ := newLoadedStore(t, nil)
	day := firstDay(t, s)

	var events []itinerary.Event
	unsubscribe := s.Subscribe(func(ev itinerary.Event) { events = append(events, ev) })

	added := addManual(t, s, day.ID, "a", "b")
	s.ReorderActivity(context.Background(), day.ID, domain.Morning, 0, 1)
	s.RemoveActivity(context.Background(), day.ID, added[0].ID, domain.Morning)
	unsubscribe()
	addManual(t, s, day.ID, "c")

	require.Len(t, events, 4)
	assert.Equal(t, itinerary.EventActivityAdded, events[0].Kind)
	assert.Equal(t, itinerary.EventActivityReordered, events[2].Kind)
	assert.Equal(t, itinerary.EventActivityRemoved, events[3].Kind)
	assert.Equal(t, added[0].ID, events[3].ActivityID)
	assert.Equal(t, s.TripID(), events[3].TripID)
	assert.Equal(t, day.ID, events[3].DayID)
}

func TestStore_SaveFailureKeepsState(t *testing.T) {
	saver := &recordingSaver{err: errors.New("disk full")}
	s := itinerary.NewStore(tripFixture(), itinerary.Options{Saver: saver})
	defer s.Close()
	require.NoError(t, s.Load(context.Background(), nil, nil))
	day := firstDay(t, s)

	addManual(t, s, day.ID, "a")

	assert.Equal(t, []string{"a"}, titles(morning(t, s, day.ID)))
}

func TestStore_ClosedRejectsMutations(t *testing.T) {
	s, _ := newLoadedStore(t, nil)
	day := firstDay(t, s)
	added := addManual(t, s, day.ID, "a", "b")
	s.Close()

	_, err := s.AddActivity(context.Background(), day.ID, domain.Morning, itinerary.ManualTemplate("c", ""))
	assert.ErrorIs(t, err, itinerary.ErrStoreClosed)
	assert.False(t, s.RemoveActivity(context.Background(), day.ID, added[0].ID, domain.Morning))
	assert.False(t, s.ReorderActivity(context.Background(), day.ID, domain.Morning, 0, 1))
	assert.ErrorIs(t, s.Load(context.Background(), nil, nil), itinerary.ErrStoreClosed)
	assert.Equal(t, []string{"a", "b"}, titles(morning(t, s, day.ID)))
}

func TestStore_LinkIdeas_ClosedStore(t *testing.T) {
	s, saver := newLoadedStore(t, nil)
	saves := saver.count()
	s.Close()

	n, err := s.LinkIdeas(context.Background(), domain.Idea{ID: uuid.New(), Title: "late"})

	assert.ErrorIs(t, err, itinerary.ErrStoreClosed)
	assert.Zero(t, n)
	assert.Empty(t, s.LinkedIdeas())
	assert.Equal(t, saves, saver.count())
}
