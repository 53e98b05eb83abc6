package handler

import (
	"net/http"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/itinerary-planner/backend/internal/domain"
)

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body TripRequest
	if !decodeBody(w, r, &body) {
		return
	}

	created, err := s.trips.Create(r.Context(), requestToTrip(body))
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}

	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// ListTrips handles GET /trips.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	page, ok := queryInt(w, r, "page")
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}

	params := domain.NewPaginationParams(page, limit)
	trips, total, err := s.trips.ListPaged(r.Context(), params)
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}

	data := make([]Trip, len(trips))
	for i, t := range trips {
		data[i] = tripToResponse(t)
	}
	writeJSON(w, http.StatusOK, TripList{
		Data: data,
		Pagination: Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int(total),
		},
	})
}

// GetTrip handles GET /trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	trip, err := s.trips.GetByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}

	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// UpdateTrip handles PUT /trips/{id}.
// Changing the dates or cities does not regenerate days that already exist.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var body TripRequest
	if !decodeBody(w, r, &body) {
		return
	}

	trip := requestToTrip(body)
	trip.ID = id
	updated, err := s.trips.Update(r.Context(), trip)
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}

	writeJSON(w, http.StatusOK, tripToResponse(updated))
}

// UpdateTripNotes handles PUT /trips/{id}/notes. Clients buffer notes
// locally and commit them here once editing ends.
func (s *Server) UpdateTripNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var body NotesRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Notes == nil {
		badRequest(w, "notes is required")
		return
	}

	updated, err := s.trips.UpdateNotes(r.Context(), id, *body.Notes)
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}

	writeJSON(w, http.StatusOK, tripToResponse(updated))
}

// DeleteTrip handles DELETE /trips/{id}. The trip's open itinerary, if any,
// is closed so pending enrichments are dropped.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := s.trips.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	if s.itineraries != nil {
		s.itineraries.Close(id)
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

// requestToTrip converts a TripRequest body into a domain.Trip.
func requestToTrip(body TripRequest) domain.Trip {
	t := domain.Trip{
		Name:          body.Name,
		Destination:   body.Destination,
		StartDate:     body.StartDate.Time,
		EndDate:       body.EndDate.Time,
		Cities:        body.Cities,
		Countries:     body.Countries,
		Collaborators: body.Collaborators,
	}
	if body.Notes != nil {
		t.Notes = *body.Notes
	}
	if body.Completed != nil {
		t.Completed = *body.Completed
	}
	if body.Favorite != nil {
		t.Favorite = *body.Favorite
	}
	return t
}

// tripToResponse converts a domain.Trip into its wire form. Slices are never
// null in the JSON output.
func tripToResponse(t domain.Trip) Trip {
	return Trip{
		Id:            t.ID,
		Name:          t.Name,
		Destination:   t.Destination,
		StartDate:     openapi_types.Date{Time: t.StartDate},
		EndDate:       openapi_types.Date{Time: t.EndDate},
		Cities:        nonNil(t.Cities),
		Countries:     nonNil(t.Countries),
		Notes:         t.Notes,
		Completed:     t.Completed,
		Favorite:      t.Favorite,
		Collaborators: nonNil(t.Collaborators),
		IdeaCount:     t.IdeaCount,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
