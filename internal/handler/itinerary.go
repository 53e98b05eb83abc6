package handler

import (
	"net/http"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/itinerary-planner/backend/internal/domain"
	"github.com/pkordes/itinerary-planner/backend/internal/itinerary"
	"github.com/pkordes/itinerary-planner/backend/internal/service"
)

// GetItinerary handles GET /trips/{id}/itinerary. The first request for a
// trip generates its days.
func (s *Server) GetItinerary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	view, err := s.itineraries.Itinerary(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}

	expanded := make(map[openapi_types.UUID]bool, len(view.Expanded))
	for _, dayID := range view.Expanded {
		expanded[dayID] = true
	}
	days := make([]Day, len(view.Days))
	for i, d := range view.Days {
		days[i] = dayToResponse(d, expanded[d.ID])
	}
	writeJSON(w, http.StatusOK, Itinerary{
		Trip:        tripToResponse(view.Trip),
		Days:        days,
		LinkedIdeas: ideasToResponse(view.LinkedIdeas),
	})
}

// ToggleDay handles POST /trips/{id}/itinerary/days/{dayId}/toggle.
func (s *Server) ToggleDay(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	dayID, ok := pathUUID(w, r, "dayId")
	if !ok {
		return
	}

	expanded, err := s.itineraries.ToggleExpanded(r.Context(), id, dayID)
	if err != nil {
		s.writeServiceError(w, r, err, "day not found")
		return
	}

	writeJSON(w, http.StatusOK, ToggleResponse{DayId: dayID, Expanded: expanded})
}

// AddActivity handles POST /trips/{id}/itinerary/days/{dayId}/{segment}/activities.
func (s *Server) AddActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	dayID, ok := pathUUID(w, r, "dayId")
	if !ok {
		return
	}
	seg, ok := pathSegment(w, r)
	if !ok {
		return
	}
	var body AddActivityRequest
	if !decodeBody(w, r, &body) {
		return
	}

	a, err := s.itineraries.AddActivity(r.Context(), id, dayID, seg, requestToActivityInput(body))
	if err != nil {
		s.writeServiceError(w, r, err, "trip, day or idea not found")
		return
	}

	writeJSON(w, http.StatusCreated, activityToResponse(a))
}

// RemoveActivity handles
// DELETE /trips/{id}/itinerary/days/{dayId}/{segment}/activities/{activityId}.
// Removing an activity that is already gone is not an error.
func (s *Server) RemoveActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	dayID, ok := pathUUID(w, r, "dayId")
	if !ok {
		return
	}
	seg, ok := pathSegment(w, r)
	if !ok {
		return
	}
	activityID, ok := pathUUID(w, r, "activityId")
	if !ok {
		return
	}

	if _, err := s.itineraries.RemoveActivity(r.Context(), id, dayID, activityID, seg); err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReorderActivity handles POST /trips/{id}/itinerary/days/{dayId}/{segment}/reorder.
// Out-of-range indices leave the segment unchanged; the response always
// carries the segment as it stands.
func (s *Server) ReorderActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	dayID, ok := pathUUID(w, r, "dayId")
	if !ok {
		return
	}
	seg, ok := pathSegment(w, r)
	if !ok {
		return
	}
	var body ReorderRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if body.From == nil || body.To == nil {
		badRequest(w, "from and to are required")
		return
	}

	list, _, err := s.itineraries.ReorderActivity(r.Context(), id, dayID, seg, *body.From, *body.To)
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}

	writeJSON(w, http.StatusOK, SegmentResponse{
		DayId:      dayID,
		Segment:    string(seg),
		Activities: activitiesToResponse(list),
	})
}

// --- mapping helpers --------------------------------------------------------

func requestToActivityInput(body AddActivityRequest) service.AddActivityInput {
	in := service.AddActivityInput{Source: body.Source}
	if body.Suggestion != nil {
		in.Suggestion = domain.PlaceSuggestion{
			ID:      body.Suggestion.Id,
			Name:    body.Suggestion.Name,
			Address: body.Suggestion.Address,
		}
	}
	if body.PlaceId != nil {
		in.PlaceID = *body.PlaceId
	}
	if body.IdeaId != nil {
		in.IdeaID = *body.IdeaId
	}
	if body.Title != nil {
		in.Title = *body.Title
	}
	if body.Location != nil {
		in.Location = *body.Location
	}
	return in
}

func dayToResponse(d domain.Day, expanded bool) Day {
	return Day{
		Id:             d.ID,
		Date:           openapi_types.Date{Time: d.Date},
		City:           d.City,
		Morning:        activitiesToResponse(d.Morning),
		Afternoon:      activitiesToResponse(d.Afternoon),
		Evening:        activitiesToResponse(d.Evening),
		Expanded:       expanded,
		DistanceMeters: itinerary.DayDistance(d),
	}
}

func activitiesToResponse(list []domain.Activity) []Activity {
	out := make([]Activity, len(list))
	for i, a := range list {
		out[i] = activityToResponse(a)
	}
	return out
}

func activityToResponse(a domain.Activity) Activity {
	return Activity{
		Id:               a.ID,
		ActivityTemplate: templateToResponse(a.ActivityTemplate),
		Segment:          string(a.Segment),
	}
}

func templateToResponse(t domain.ActivityTemplate) ActivityTemplate {
	out := ActivityTemplate{
		Title:      t.Title,
		Location:   t.Location,
		SourceType: t.SourceType,
		PlaceId:    t.PlaceID,
		IdeaId:     t.IdeaID,
		PhotoRef:   t.PhotoRef,
		Category:   t.Category,
		Rating:     t.Rating,
	}
	if t.Coordinates != nil {
		out.Coordinates = &Coordinates{Latitude: t.Coordinates.Latitude, Longitude: t.Coordinates.Longitude}
	}
	return out
}
