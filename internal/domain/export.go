package domain

import "time"

// ExportRow is a single row in the flat itinerary export.
// It is a denormalized view: one row per activity, with trip and day fields
// repeated on every row. Days with no activities yield one row with empty
// activity fields so the export still shows every date of the trip.
type ExportRow struct {
	// Trip fields, repeated on every row.
	TripID   string
	TripName string

	// Day fields.
	Date time.Time
	City string

	// Activity fields; empty when the day has no activities.
	Segment    string
	Position   int
	Title      string
	Location   string
	SourceType string
	Category   string
	Latitude   *float64
	Longitude  *float64
	Rating     *float64
}
