package handler

import (
	"net/http"

	"github.com/pkordes/itinerary-planner/backend/internal/domain"
)

// CreateIdea handles POST /ideas.
func (s *Server) CreateIdea(w http.ResponseWriter, r *http.Request) {
	var body CreateIdeaRequest
	if !decodeBody(w, r, &body) {
		return
	}

	created, err := s.ideas.Create(r.Context(), domain.Idea{
		Title:    body.Title,
		City:     body.City,
		Country:  body.Country,
		Category: body.Category,
		Source:   body.Source,
		PlaceID:  body.PlaceId,
		PhotoRef: body.PhotoRef,
		BoardIDs: body.BoardIds,
	})
	if err != nil {
		s.writeServiceError(w, r, err, "idea not found")
		return
	}

	writeJSON(w, http.StatusCreated, ideaToResponse(created))
}

// ListIdeas handles GET /ideas. ?city= filters by city prefix.
func (s *Server) ListIdeas(w http.ResponseWriter, r *http.Request) {
	ideas, err := s.ideas.List(r.Context(), r.URL.Query().Get("city"))
	if err != nil {
		s.writeServiceError(w, r, err, "idea not found")
		return
	}
	writeJSON(w, http.StatusOK, ideasToResponse(ideas))
}

// GetIdea handles GET /ideas/{ideaId}.
func (s *Server) GetIdea(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "ideaId")
	if !ok {
		return
	}
	idea, err := s.ideas.GetByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, "idea not found")
		return
	}
	writeJSON(w, http.StatusOK, ideaToResponse(idea))
}

// ListLinkedIdeas handles GET /trips/{id}/ideas.
func (s *Server) ListLinkedIdeas(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	ideas, err := s.itineraries.LinkedIdeas(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, ideasToResponse(ideas))
}

// LinkIdeas handles POST /trips/{id}/ideas. Ideas that are already linked
// are skipped. The response is the full linked list.
func (s *Server) LinkIdeas(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var body LinkIdeasRequest
	if !decodeBody(w, r, &body) {
		return
	}

	ideas, err := s.itineraries.LinkIdeas(r.Context(), id, body.IdeaIds)
	if err != nil {
		s.writeServiceError(w, r, err, "trip or idea not found")
		return
	}
	writeJSON(w, http.StatusOK, ideasToResponse(ideas))
}

// UnlinkIdea handles DELETE /trips/{id}/ideas/{ideaId}. Unlinking an idea
// that is not linked is not an error.
func (s *Server) UnlinkIdea(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	ideaID, ok := pathUUID(w, r, "ideaId")
	if !ok {
		return
	}
	if _, err := s.itineraries.UnlinkIdea(r.Context(), id, ideaID); err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func ideasToResponse(ideas []domain.Idea) []Idea {
	out := make([]Idea, len(ideas))
	for i, idea := range ideas {
		out[i] = ideaToResponse(idea)
	}
	return out
}

func ideaToResponse(i domain.Idea) Idea {
	return Idea{
		Id:        i.ID,
		Title:     i.Title,
		City:      i.City,
		Country:   i.Country,
		Category:  i.Category,
		Source:    i.Source,
		PlaceId:   i.PlaceID,
		PhotoRef:  i.PhotoRef,
		BoardIds:  nonNil(i.BoardIDs),
		CreatedAt: i.CreatedAt,
	}
}
