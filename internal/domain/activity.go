package domain

import "github.com/google/uuid"

// Source type labels describing where an activity came from.
const (
	SourceSearch = "search"
	SourceManual = "manual"
)

// Coordinates is a latitude/longitude pair in degrees.
// A nil *Coordinates means the position is unknown; there is no way to
// carry only one of the two values.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ActivityTemplate carries everything needed to build an Activity except
// its identity and segment, which the itinerary store assigns on insertion.
type ActivityTemplate struct {
	Title       string       `json:"title"`
	Location    string       `json:"location"`
	SourceType  string       `json:"source_type"`
	PlaceID     *string      `json:"place_id,omitempty"`
	IdeaID      *uuid.UUID   `json:"idea_id,omitempty"`
	PhotoRef    *string      `json:"photo_ref,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Category    *string      `json:"category,omitempty"`
	Rating      *float64     `json:"rating,omitempty"`
}

// NeedsEnrichment reports whether the template points at an external place
// but lacks the coordinates a details lookup would provide.
func (t ActivityTemplate) NeedsEnrichment() bool {
	return t.PlaceID != nil && *t.PlaceID != "" && t.Coordinates == nil
}

// Activity is a single planned item attached to one segment of one Day.
// Segment never changes after creation; moving an activity between segments
// is a remove followed by an add.
type Activity struct {
	ID uuid.UUID `json:"id"`
	ActivityTemplate
	Segment Segment `json:"segment"`
}
