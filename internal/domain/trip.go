// Package domain contains the core data types for the itinerary planner.
// This package depends only on uuid and is imported by every other
// internal package (itinerary, repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trip is the top-level planning aggregate: a date-bounded journey across
// one or more cities. Days are not embedded; they reference the trip by ID.
//
// Cities and Countries are parallel lists of the same length.
// StartDate and EndDate are civil dates (midnight UTC), both inclusive.
type Trip struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Destination   string    `json:"destination,omitempty"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Cities        []string  `json:"cities"`
	Countries     []string  `json:"countries"`
	Notes         string    `json:"notes,omitempty"`
	Completed     bool      `json:"completed"`
	Favorite      bool      `json:"favorite"`
	Collaborators []string  `json:"collaborators,omitempty"`
	IdeaCount     int       `json:"idea_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
