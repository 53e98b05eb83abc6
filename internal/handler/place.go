package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// GetPlaceSuggestions handles GET /places/suggestions?q=. A failed lookup
// yields an empty list, never an error.
func (s *Server) GetPlaceSuggestions(w http.ResponseWriter, r *http.Request) {
	found := s.places.Suggestions(r.Context(), r.URL.Query().Get("q"))
	out := make([]PlaceSuggestion, len(found))
	for i, p := range found {
		out[i] = PlaceSuggestion{Id: p.ID, Name: p.Name, Address: p.Address}
	}
	writeJSON(w, http.StatusOK, out)
}

// GetPlaceTemplate handles GET /places/{placeId}. It returns the activity
// template that adding the place would produce.
func (s *Server) GetPlaceTemplate(w http.ResponseWriter, r *http.Request) {
	placeID := chi.URLParam(r, "placeId")
	if placeID == "" {
		badRequest(w, "placeId is required")
		return
	}
	tmpl, err := s.places.Template(r.Context(), placeID)
	if err != nil {
		s.writeServiceError(w, r, err, "place not found")
		return
	}
	writeJSON(w, http.StatusOK, templateToResponse(tmpl))
}
