package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/itinerary-planner/backend/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"trip_id", "trip_name", "date", "city",
	"segment", "position", "title", "location", "source_type", "category",
	"latitude", "longitude", "rating",
}

// ExportItinerary handles GET /trips/{id}/itinerary/export.
// It returns one row per activity. Use ?format=csv to receive CSV; default is JSON.
func (s *Server) ExportItinerary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	format := r.URL.Query().Get("format")
	if format != "" && format != "csv" && format != "json" {
		badRequest(w, "format must be csv or json")
		return
	}

	rows, err := s.export.Export(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}

	if format == "csv" {
		writeCSV(w, id, rows)
		return
	}
	out := make([]ExportRow, len(rows))
	for i, row := range rows {
		out[i] = domainRowToResponse(row)
	}
	writeJSON(w, http.StatusOK, out)
}

// writeCSV encodes rows as an attachment.
func writeCSV(w http.ResponseWriter, tripID uuid.UUID, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	_ = cw.Write(csvHeaders)
	for _, row := range rows {
		_ = cw.Write(domainRowToCSVRecord(row))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="itinerary-%s.csv"`, tripID))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// domainRowToResponse maps a domain.ExportRow to its wire form. Activity
// fields that are empty become nil (omitted in JSON).
func domainRowToResponse(r domain.ExportRow) ExportRow {
	tripID, _ := uuid.Parse(r.TripID)
	row := ExportRow{
		TripId:    tripID,
		TripName:  r.TripName,
		Date:      openapi_types.Date{Time: r.Date},
		City:      r.City,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Rating:    r.Rating,
	}
	if r.Segment == "" {
		return row
	}
	pos := r.Position
	row.Segment = &r.Segment
	row.Position = &pos
	row.Title = &r.Title
	row.Location = optional(r.Location)
	row.SourceType = optional(r.SourceType)
	row.Category = optional(r.Category)
	return row
}

// domainRowToCSVRecord encodes a domain.ExportRow as a flat string slice.
// Missing numbers are encoded as empty strings.
func domainRowToCSVRecord(r domain.ExportRow) []string {
	position := ""
	if r.Segment != "" {
		position = strconv.Itoa(r.Position)
	}
	return []string{
		r.TripID,
		r.TripName,
		r.Date.Format(time.DateOnly),
		r.City,
		r.Segment,
		position,
		r.Title,
		r.Location,
		r.SourceType,
		r.Category,
		formatOptionalFloat(r.Latitude),
		formatOptionalFloat(r.Longitude),
		formatOptionalFloat(r.Rating),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// formatOptionalFloat returns the shortest representation of f, or "" if f is nil.
func formatOptionalFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
