package itinerary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/itinerary-planner/backend/internal/domain"
)

// ErrStoreClosed is returned by operations that complete after Close.
// The store's state is not modified once it is closed.
var ErrStoreClosed = errors.New("itinerary store closed")

// DefaultEnrichTimeout bounds a single place-details lookup made while adding
// an activity.
const DefaultEnrichTimeout = 5 * time.Second

// PlaceDetailer fetches the full record for a place.
// The store uses it to fill in coordinates before inserting an activity.
type PlaceDetailer interface {
	Details(ctx context.Context, placeID string) (domain.PlaceDetails, error)
}

// Saver persists a trip's itinerary. Save receives a full snapshot; partial
// updates are never sent.
type Saver interface {
	Save(ctx context.Context, snap domain.ItinerarySnapshot) error
}

// Options configures a Store. Every field is optional: without a Lookup no
// enrichment happens, without a Saver nothing is persisted.
type Options struct {
	Lookup        PlaceDetailer
	Saver         Saver
	Logger        *slog.Logger
	EnrichTimeout time.Duration
}

// EventKind identifies what changed in a Store.
type EventKind string

const (
	EventLoaded            EventKind = "loaded"
	EventActivityAdded     EventKind = "activity_added"
	EventActivityRemoved   EventKind = "activity_removed"
	EventActivityReordered EventKind = "activity_reordered"
	EventIdeasChanged      EventKind = "ideas_changed"
	EventExpansionToggled  EventKind = "expansion_toggled"
)

// Event describes one change to a Store. DayID, Segment and ActivityID are
// zero when they do not apply to the kind.
type Event struct {
	Kind       EventKind
	TripID     uuid.UUID
	DayID      uuid.UUID
	Segment    domain.Segment
	ActivityID uuid.UUID
}

// dayEntry guards one Day. Segment mutations on a day are serialised by mu.
type dayEntry struct {
	mu  sync.Mutex
	day domain.Day
}

// Store owns the in-memory days of one open trip and mediates every
// mutation to them.
//
// Lock order is s.mu before dayEntry.mu. Code holding a dayEntry lock never
// acquires s.mu.
type Store struct {
	tripID    uuid.UUID
	startDate time.Time
	endDate   time.Time
	cities    []string

	lookup  PlaceDetailer
	saver   Saver
	log     *slog.Logger
	timeout time.Duration

	// ctx is cancelled by Close so in-flight lookups stop early.
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.RWMutex
	loaded    bool
	closed    bool
	days      []*dayEntry
	index     map[uuid.UUID]*dayEntry
	expanded  map[uuid.UUID]struct{}
	linked    []domain.Idea
	listeners map[int]func(Event)
	nextSubID int

	// saveMu serialises saves so the last one to run writes the latest state.
	saveMu sync.Mutex
}

// NewStore returns an empty, unloaded Store for trip.
func NewStore(trip domain.Trip, opts Options) *Store {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	timeout := opts.EnrichTimeout
	if timeout <= 0 {
		timeout = DefaultEnrichTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Store{
		tripID:    trip.ID,
		startDate: trip.StartDate,
		endDate:   trip.EndDate,
		cities:    slices.Clone(trip.Cities),
		lookup:    opts.Lookup,
		saver:     opts.Saver,
		log:       log.With("trip_id", trip.ID),
		timeout:   timeout,
		ctx:       ctx,
		cancel:    cancel,
		index:     map[uuid.UUID]*dayEntry{},
		expanded:  map[uuid.UUID]struct{}{},
		listeners: map[int]func(Event){},
	}
}

// TripID returns the ID of the trip this store belongs to.
func (s *Store) TripID() uuid.UUID { return s.tripID }

// Load initialises the store. It is idempotent: once loaded, later calls
// return nil without touching the days.
//
// When existing is empty the days are generated from the trip's date range
// and cities, then saved. linked seeds the linked-ideas list.
func (s *Store) Load(ctx context.Context, existing []domain.Day, linked []domain.Idea) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	if s.loaded {
		s.mu.Unlock()
		return nil
	}

	days := existing
	generated := false
	if len(days) == 0 {
		var err error
		days, err = GenerateDays(s.tripID, s.startDate, s.endDate, s.cities)
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("itinerary.Store.Load: %w", err)
		}
		generated = true
	}

	entries := make([]*dayEntry, 0, len(days))
	for _, d := range days {
		d = d.Clone()
		entries = append(entries, &dayEntry{day: d})
	}
	slices.SortFunc(entries, func(a, b *dayEntry) int { return a.day.Date.Compare(b.day.Date) })
	s.days = entries
	for _, e := range entries {
		s.index[e.day.ID] = e
	}
	s.linked = slices.Clone(linked)
	s.loaded = true
	s.mu.Unlock()

	if generated {
		s.log.InfoContext(ctx, "generated itinerary days", "days", len(days))
		s.save(ctx)
	}
	s.notify(Event{Kind: EventLoaded})
	return nil
}

// Loaded reports whether Load has completed successfully.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Days returns a copy of every day, sorted by date.
func (s *Store) Days() []domain.Day {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Day, 0, len(s.days))
	for _, e := range s.days {
		e.mu.Lock()
		out = append(out, e.day.Clone())
		e.mu.Unlock()
	}
	return out
}

// Day returns a copy of the day with the given ID.
func (s *Store) Day(id uuid.UUID) (domain.Day, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.index[id]
	if !ok {
		return domain.Day{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.day.Clone(), true
}

// Snapshot returns the full persistable state of the store.
func (s *Store) Snapshot() domain.ItinerarySnapshot {
	days := s.Days()
	s.mu.RLock()
	ids := make([]uuid.UUID, len(s.linked))
	for i, idea := range s.linked {
		ids[i] = idea.ID
	}
	s.mu.RUnlock()
	return domain.ItinerarySnapshot{TripID: s.tripID, Days: days, LinkedIdeaIDs: ids}
}

// ToggleExpanded flips the expanded flag of a day and returns the new value.
// Expansion is presentation state only; it is never persisted.
func (s *Store) ToggleExpanded(dayID uuid.UUID) bool {
	s.mu.Lock()
	_, on := s.expanded[dayID]
	if on {
		delete(s.expanded, dayID)
	} else {
		s.expanded[dayID] = struct{}{}
	}
	s.mu.Unlock()

	s.notify(Event{Kind: EventExpansionToggled, DayID: dayID})
	return !on
}

// IsExpanded reports whether dayID is in the expanded set.
func (s *Store) IsExpanded(dayID uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.expanded[dayID]
	return ok
}

// Expanded returns the expanded day IDs in day order.
func (s *Store) Expanded() []uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []uuid.UUID{}
	for _, e := range s.days {
		if _, ok := s.expanded[e.day.ID]; ok {
			out = append(out, e.day.ID)
		}
	}
	return out
}

// AddActivity appends a new activity built from tmpl to the end of the
// segment list of the given day and returns it.
//
// If tmpl has a place ID but no coordinates, the place is looked up first.
// A failed or timed-out lookup is logged and the activity is added with the
// template's own data. The lookup runs without holding any lock; the append
// itself is serialised with every other mutation of the same day.
//
// Returns domain.ErrNotFound for an unknown day, an error wrapping
// domain.ErrValidation for a bad segment, and ErrStoreClosed if the store
// was closed before the activity could be inserted.
func (s *Store) AddActivity(ctx context.Context, dayID uuid.UUID, seg domain.Segment, tmpl domain.ActivityTemplate) (domain.Activity, error) {
	if _, err := domain.ParseSegment(string(seg)); err != nil {
		return domain.Activity{}, fmt.Errorf("itinerary.Store.AddActivity: %w", err)
	}
	if err := s.checkDay(dayID); err != nil {
		return domain.Activity{}, fmt.Errorf("itinerary.Store.AddActivity: %w", err)
	}

	if tmpl.NeedsEnrichment() {
		tmpl = s.enrich(ctx, dayID, tmpl)
	}

	a := domain.Activity{ID: uuid.New(), ActivityTemplate: tmpl, Segment: seg}
	_, err := s.mutateDay(dayID, func(d *domain.Day) bool {
		d.SetActivities(seg, append(d.Activities(seg), a))
		return true
	})
	if err != nil {
		if errors.Is(err, ErrStoreClosed) {
			s.log.InfoContext(ctx, "dropping activity for closed itinerary", "day_id", dayID, "title", tmpl.Title)
		}
		return domain.Activity{}, fmt.Errorf("itinerary.Store.AddActivity: %w", err)
	}

	s.save(ctx)
	s.notify(Event{Kind: EventActivityAdded, DayID: dayID, Segment: seg, ActivityID: a.ID})
	return a, nil
}

// RemoveActivity removes the activity with the given ID from a segment.
// Unknown days, segments or activities are ignored; the return value
// reports whether anything was removed.
func (s *Store) RemoveActivity(ctx context.Context, dayID, activityID uuid.UUID, seg domain.Segment) bool {
	removed, err := s.mutateDay(dayID, func(d *domain.Day) bool {
		list := d.Activities(seg)
		i := slices.IndexFunc(list, func(a domain.Activity) bool { return a.ID == activityID })
		if i < 0 {
			return false
		}
		d.SetActivities(seg, slices.Delete(list, i, i+1))
		return true
	})
	if err != nil || !removed {
		return false
	}

	s.save(ctx)
	s.notify(Event{Kind: EventActivityRemoved, DayID: dayID, Segment: seg, ActivityID: activityID})
	return true
}

// ReorderActivity moves the activity at index from to index to within one
// segment, shifting the activities in between. Out-of-range indices and
// unknown days leave the list untouched. Moving an activity onto its own
// position is not a change. The return value reports whether the list
// changed.
func (s *Store) ReorderActivity(ctx context.Context, dayID uuid.UUID, seg domain.Segment, from, to int) bool {
	var moved uuid.UUID
	changed, err := s.mutateDay(dayID, func(d *domain.Day) bool {
		list := d.Activities(seg)
		n := len(list)
		if from < 0 || from >= n || to < 0 || to >= n || from == to {
			return false
		}
		a := list[from]
		list = slices.Delete(list, from, from+1)
		d.SetActivities(seg, slices.Insert(list, to, a))
		moved = a.ID
		return true
	})
	if err != nil || !changed {
		return false
	}

	s.save(ctx)
	s.notify(Event{Kind: EventActivityReordered, DayID: dayID, Segment: seg, ActivityID: moved})
	return true
}

// LinkedIdeas returns the ideas linked to the trip, in link order.
func (s *Store) LinkedIdeas() []domain.Idea {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.linked)
}

// LinkIdeas appends the given ideas to the linked list, skipping ones that
// are already linked. It returns how many were added, or ErrStoreClosed.
func (s *Store) LinkIdeas(ctx context.Context, ideas ...domain.Idea) (int, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, ErrStoreClosed
	}
	added := 0
	for _, idea := range ideas {
		if slices.ContainsFunc(s.linked, func(l domain.Idea) bool { return l.ID == idea.ID }) {
			continue
		}
		s.linked = append(s.linked, idea)
		added++
	}
	s.mu.Unlock()

	if added > 0 {
		s.save(ctx)
		s.notify(Event{Kind: EventIdeasChanged})
	}
	return added, nil
}

// UnlinkIdea removes one idea from the linked list, keeping the others in
// their original order. Returns false if it was not linked.
func (s *Store) UnlinkIdea(ctx context.Context, ideaID uuid.UUID) bool {
	s.mu.Lock()
	i := slices.IndexFunc(s.linked, func(l domain.Idea) bool { return l.ID == ideaID })
	if s.closed || i < 0 {
		s.mu.Unlock()
		return false
	}
	s.linked = slices.Delete(s.linked, i, i+1)
	s.mu.Unlock()

	s.save(ctx)
	s.notify(Event{Kind: EventIdeasChanged})
	return true
}

// Subscribe registers fn to be called after every change. Listeners run on
// the goroutine that made the change, after all locks are released.
// The returned function removes the listener.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Close disposes the store. In-flight lookups are cancelled and any
// mutation that would land afterwards is discarded. Close returns once a
// save already in progress has finished; no save starts after it.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cancel()
	clear(s.listeners)
	s.mu.Unlock()

	s.saveMu.Lock()
	s.saveMu.Unlock() //nolint:staticcheck // waits for an in-flight save
}

// checkDay returns ErrStoreClosed or domain.ErrNotFound when a mutation on
// dayID cannot proceed.
func (s *Store) checkDay(dayID uuid.UUID) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	if _, ok := s.index[dayID]; !ok {
		return domain.ErrNotFound
	}
	return nil
}

// mutateDay runs fn with exclusive access to the day. fn reports whether it
// changed anything.
func (s *Store) mutateDay(dayID uuid.UUID, fn func(d *domain.Day) bool) (bool, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return false, ErrStoreClosed
	}
	e, ok := s.index[dayID]
	if !ok {
		s.mu.RUnlock()
		return false, domain.ErrNotFound
	}
	e.mu.Lock()
	s.mu.RUnlock()
	defer e.mu.Unlock()
	return fn(&e.day), nil
}

// enrich looks up tmpl's place and merges the result. The lookup is bounded
// by the enrichment timeout and by the store's lifetime.
func (s *Store) enrich(ctx context.Context, dayID uuid.UUID, tmpl domain.ActivityTemplate) domain.ActivityTemplate {
	if s.lookup == nil {
		return tmpl
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	details, err := s.lookup.Details(ctx, *tmpl.PlaceID)
	if err != nil {
		s.log.WarnContext(ctx, "place enrichment failed, adding activity without coordinates",
			"day_id", dayID,
			"place_id", *tmpl.PlaceID,
			"error", err,
		)
		return tmpl
	}
	return enrich(tmpl, details)
}

// save writes the current snapshot. Failures are logged and swallowed: the
// in-memory state stays authoritative and the next save retries implicitly.
// The save outlives the caller's cancellation so a finished request does
// not abort a write in progress.
func (s *Store) save(ctx context.Context) {
	if s.saver == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)

	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if s.isClosed() {
		return
	}
	if err := s.saver.Save(ctx, s.Snapshot()); err != nil {
		s.log.ErrorContext(ctx, "itinerary save failed", "error", err)
	}
}

func (s *Store) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *Store) notify(ev Event) {
	ev.TripID = s.tripID
	s.mu.RLock()
	fns := make([]func(Event), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(ev)
	}
}
