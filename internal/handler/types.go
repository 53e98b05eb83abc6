package handler

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Wire types for the JSON API. Field names follow openapi.yaml.

// ErrorDetail is the body of every error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps ErrorDetail so clients can tell errors apart from data.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// TripRequest is the body of POST /trips and PUT /trips/{id}.
type TripRequest struct {
	Name          string             `json:"name"`
	Destination   string             `json:"destination"`
	StartDate     openapi_types.Date `json:"start_date"`
	EndDate       openapi_types.Date `json:"end_date"`
	Cities        []string           `json:"cities"`
	Countries     []string           `json:"countries"`
	Notes         *string            `json:"notes,omitempty"`
	Completed     *bool              `json:"completed,omitempty"`
	Favorite      *bool              `json:"favorite,omitempty"`
	Collaborators []string           `json:"collaborators,omitempty"`
}

// Trip is the API representation of a trip.
type Trip struct {
	Id            openapi_types.UUID `json:"id"`
	Name          string             `json:"name"`
	Destination   string             `json:"destination"`
	StartDate     openapi_types.Date `json:"start_date"`
	EndDate       openapi_types.Date `json:"end_date"`
	Cities        []string           `json:"cities"`
	Countries     []string           `json:"countries"`
	Notes         string             `json:"notes"`
	Completed     bool               `json:"completed"`
	Favorite      bool               `json:"favorite"`
	Collaborators []string           `json:"collaborators"`
	IdeaCount     int                `json:"idea_count"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// Pagination describes one page of a list response.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// TripList is returned by GET /trips.
type TripList struct {
	Data       []Trip     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// NotesRequest is the body of PUT /trips/{id}/notes.
type NotesRequest struct {
	Notes *string `json:"notes"`
}

// Coordinates is a WGS84 position.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ActivityTemplate is an activity that has not been placed on a day yet.
type ActivityTemplate struct {
	Title       string              `json:"title"`
	Location    string              `json:"location"`
	SourceType  string              `json:"source_type"`
	PlaceId     *string             `json:"place_id,omitempty"`
	IdeaId      *openapi_types.UUID `json:"idea_id,omitempty"`
	PhotoRef    *string             `json:"photo_ref,omitempty"`
	Coordinates *Coordinates        `json:"coordinates,omitempty"`
	Category    *string             `json:"category,omitempty"`
	Rating      *float64            `json:"rating,omitempty"`
}

// Activity is a scheduled activity.
type Activity struct {
	Id openapi_types.UUID `json:"id"`
	ActivityTemplate
	Segment string `json:"segment"`
}

// Day is one calendar day of an itinerary.
type Day struct {
	Id             openapi_types.UUID `json:"id"`
	Date           openapi_types.Date `json:"date"`
	City           string             `json:"city"`
	Morning        []Activity         `json:"morning"`
	Afternoon      []Activity         `json:"afternoon"`
	Evening        []Activity         `json:"evening"`
	Expanded       bool               `json:"expanded"`
	DistanceMeters float64            `json:"distance_meters"`
}

// Itinerary is returned by GET /trips/{id}/itinerary.
type Itinerary struct {
	Trip        Trip   `json:"trip"`
	Days        []Day  `json:"days"`
	LinkedIdeas []Idea `json:"linked_ideas"`
}

// PlaceSuggestion is one place search hit.
type PlaceSuggestion struct {
	Id      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// AddActivityRequest is the body of POST .../{segment}/activities.
// Source selects which of the remaining fields are read.
type AddActivityRequest struct {
	Source     string              `json:"source"`
	Suggestion *PlaceSuggestion    `json:"suggestion,omitempty"`
	PlaceId    *string             `json:"place_id,omitempty"`
	IdeaId     *openapi_types.UUID `json:"idea_id,omitempty"`
	Title      *string             `json:"title,omitempty"`
	Location   *string             `json:"location,omitempty"`
}

// ReorderRequest is the body of POST .../{segment}/reorder.
type ReorderRequest struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

// SegmentResponse is a segment's activity list after a reorder.
type SegmentResponse struct {
	DayId      openapi_types.UUID `json:"day_id"`
	Segment    string             `json:"segment"`
	Activities []Activity         `json:"activities"`
}

// ToggleResponse is returned by POST .../days/{dayId}/toggle.
type ToggleResponse struct {
	DayId    openapi_types.UUID `json:"day_id"`
	Expanded bool               `json:"expanded"`
}

// Idea is a saved activity idea.
type Idea struct {
	Id        openapi_types.UUID   `json:"id"`
	Title     string               `json:"title"`
	City      string               `json:"city"`
	Country   string               `json:"country"`
	Category  string               `json:"category"`
	Source    string               `json:"source"`
	PlaceId   *string              `json:"place_id,omitempty"`
	PhotoRef  *string              `json:"photo_ref,omitempty"`
	BoardIds  []openapi_types.UUID `json:"board_ids"`
	CreatedAt time.Time            `json:"created_at"`
}

// CreateIdeaRequest is the body of POST /ideas.
type CreateIdeaRequest struct {
	Title    string               `json:"title"`
	City     string               `json:"city"`
	Country  string               `json:"country"`
	Category string               `json:"category"`
	Source   string               `json:"source"`
	PlaceId  *string              `json:"place_id,omitempty"`
	PhotoRef *string              `json:"photo_ref,omitempty"`
	BoardIds []openapi_types.UUID `json:"board_ids,omitempty"`
}

// LinkIdeasRequest is the body of POST /trips/{id}/ideas.
type LinkIdeasRequest struct {
	IdeaIds []openapi_types.UUID `json:"idea_ids"`
}

// ExportRow is one row of the flat itinerary export.
type ExportRow struct {
	TripId     openapi_types.UUID `json:"trip_id"`
	TripName   string             `json:"trip_name"`
	Date       openapi_types.Date `json:"date"`
	City       string             `json:"city"`
	Segment    *string            `json:"segment,omitempty"`
	Position   *int               `json:"position,omitempty"`
	Title      *string            `json:"title,omitempty"`
	Location   *string            `json:"location,omitempty"`
	SourceType *string            `json:"source_type,omitempty"`
	Category   *string            `json:"category,omitempty"`
	Latitude   *float64           `json:"latitude,omitempty"`
	Longitude  *float64           `json:"longitude,omitempty"`
	Rating     *float64           `json:"rating,omitempty"`
}
