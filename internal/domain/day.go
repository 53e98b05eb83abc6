package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Segment is one of the three time-of-day slots a Day is divided into.
type Segment string

const (
	Morning   Segment = "morning"
	Afternoon Segment = "afternoon"
	Evening   Segment = "evening"
)

// Segments lists every segment in chronological order.
var Segments = []Segment{Morning, Afternoon, Evening}

// ParseSegment converts s into a Segment.
// Returns an error wrapping ErrValidation for anything other than
// "morning", "afternoon" or "evening".
func ParseSegment(s string) (Segment, error) {
	switch seg := Segment(s); seg {
	case Morning, Afternoon, Evening:
		return seg, nil
	}
	return "", fmt.Errorf("%w: unknown segment %q", ErrValidation, s)
}

// Day is one calendar date of a trip. It exclusively owns its three
// ordered activity lists.
type Day struct {
	ID        uuid.UUID  `json:"id"`
	TripID    uuid.UUID  `json:"trip_id"`
	Date      time.Time  `json:"date"`
	City      string     `json:"city"`
	Morning   []Activity `json:"morning"`
	Afternoon []Activity `json:"afternoon"`
	Evening   []Activity `json:"evening"`
}

// Activities returns the list for seg. The returned slice aliases the Day's
// storage; copy it before handing it to another goroutine.
func (d *Day) Activities(seg Segment) []Activity {
	switch seg {
	case Morning:
		return d.Morning
	case Afternoon:
		return d.Afternoon
	case Evening:
		return d.Evening
	}
	return nil
}

// SetActivities replaces the list for seg.
func (d *Day) SetActivities(seg Segment, list []Activity) {
	switch seg {
	case Morning:
		d.Morning = list
	case Afternoon:
		d.Afternoon = list
	case Evening:
		d.Evening = list
	}
}

// Clone returns a deep copy of d. Activities are values, but their pointer
// fields are shared; they are never mutated after construction.
func (d Day) Clone() Day {
	c := d
	c.Morning = append([]Activity{}, d.Morning...)
	c.Afternoon = append([]Activity{}, d.Afternoon...)
	c.Evening = append([]Activity{}, d.Evening...)
	return c
}

// ItinerarySnapshot is the unit of persistence for one trip's itinerary:
// its days (with activities) and the IDs of the ideas linked to it, in order.
type ItinerarySnapshot struct {
	TripID        uuid.UUID
	Days          []Day
	LinkedIdeaIDs []uuid.UUID
}
