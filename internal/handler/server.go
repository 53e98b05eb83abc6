// Package handler implements the HTTP handlers for the itinerary planner API.
// All handlers are methods on Server. They are split into resource files
// (health.go, trip.go, itinerary.go, ...) but share one Server struct so
// they can reach its dependencies. Routes wires them onto a chi router.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/itinerary-planner/backend/internal/domain"
	"github.com/pkordes/itinerary-planner/backend/internal/service"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error)
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	UpdateNotes(ctx context.Context, id uuid.UUID, notes string) (domain.Trip, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ItineraryServicer defines the itinerary operations of one trip.
type ItineraryServicer interface {
	Itinerary(ctx context.Context, tripID uuid.UUID) (service.ItineraryView, error)
	ToggleExpanded(ctx context.Context, tripID, dayID uuid.UUID) (bool, error)
	AddActivity(ctx context.Context, tripID, dayID uuid.UUID, seg domain.Segment, in service.AddActivityInput) (domain.Activity, error)
	RemoveActivity(ctx context.Context, tripID, dayID, activityID uuid.UUID, seg domain.Segment) (bool, error)
	ReorderActivity(ctx context.Context, tripID, dayID uuid.UUID, seg domain.Segment, from, to int) ([]domain.Activity, bool, error)
	LinkedIdeas(ctx context.Context, tripID uuid.UUID) ([]domain.Idea, error)
	LinkIdeas(ctx context.Context, tripID uuid.UUID, ideaIDs []uuid.UUID) ([]domain.Idea, error)
	UnlinkIdea(ctx context.Context, tripID, ideaID uuid.UUID) (bool, error)
	Close(tripID uuid.UUID)
}

// IdeaServicer defines the idea operations.
type IdeaServicer interface {
	Create(ctx context.Context, idea domain.Idea) (domain.Idea, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Idea, error)
	List(ctx context.Context, cityPrefix string) ([]domain.Idea, error)
}

// PlaceServicer defines place search.
type PlaceServicer interface {
	Suggestions(ctx context.Context, query string) []domain.PlaceSuggestion
	Template(ctx context.Context, placeID string) (domain.ActivityTemplate, error)
}

// ExportServicer flattens an itinerary.
type ExportServicer interface {
	Export(ctx context.Context, tripID uuid.UUID) ([]domain.ExportRow, error)
}

// Services groups the Server's dependencies. Nil services leave their
// routes unregistered, which keeps narrow handler tests small.
type Services struct {
	Trips       TripServicer
	Itineraries ItineraryServicer
	Ideas       IdeaServicer
	Places      PlaceServicer
	Export      ExportServicer
}

// Server holds the dependencies of every handler.
type Server struct {
	trips       TripServicer
	itineraries ItineraryServicer
	ideas       IdeaServicer
	places      PlaceServicer
	export      ExportServicer
	log         *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(svcs Services, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		trips:       svcs.Trips,
		itineraries: svcs.Itineraries,
		ideas:       svcs.Ideas,
		places:      svcs.Places,
		export:      svcs.Export,
		log:         log,
	}
}

// Routes returns a chi router serving every endpoint the Server has
// services for. Mount it under "/" in main.go.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	if s.trips != nil {
		r.Route("/trips", func(r chi.Router) {
			r.Post("/", s.CreateTrip)
			r.Get("/", s.ListTrips)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.GetTrip)
				r.Put("/", s.UpdateTrip)
				r.Delete("/", s.DeleteTrip)
				r.Put("/notes", s.UpdateTripNotes)

				if s.itineraries != nil {
					r.Route("/itinerary", func(r chi.Router) {
						r.Get("/", s.GetItinerary)
						if s.export != nil {
							r.Get("/export", s.ExportItinerary)
						}
						r.Route("/days/{dayId}", func(r chi.Router) {
							r.Post("/toggle", s.ToggleDay)
							r.Post("/{segment}/activities", s.AddActivity)
							r.Delete("/{segment}/activities/{activityId}", s.RemoveActivity)
							r.Post("/{segment}/reorder", s.ReorderActivity)
						})
					})
					r.Get("/ideas", s.ListLinkedIdeas)
					r.Post("/ideas", s.LinkIdeas)
					r.Delete("/ideas/{ideaId}", s.UnlinkIdea)
				}
			})
		})
	}

	if s.ideas != nil {
		r.Post("/ideas", s.CreateIdea)
		r.Get("/ideas", s.ListIdeas)
		r.Get("/ideas/{ideaId}", s.GetIdea)
	}

	if s.places != nil {
		r.Get("/places/suggestions", s.GetPlaceSuggestions)
		r.Get("/places/{placeId}", s.GetPlaceTemplate)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	return r
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(Services{}, nil)
}
