package domain

import (
	"time"

	"github.com/google/uuid"
)

// Idea is a curated suggestion that exists independently of any trip.
// It can be linked to trips and used as a template for an Activity.
type Idea struct {
	ID        uuid.UUID   `json:"id"`
	Title     string      `json:"title"`
	City      string      `json:"city"`
	Country   string      `json:"country"`
	Category  string      `json:"category,omitempty"`
	Source    string      `json:"source"`
	PlaceID   *string     `json:"place_id,omitempty"`
	PhotoRef  *string     `json:"photo_ref,omitempty"`
	BoardIDs  []uuid.UUID `json:"board_ids,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}
