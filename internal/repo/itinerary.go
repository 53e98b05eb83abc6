package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/itinerary-planner/backend/internal/domain"
)

// ItineraryRepo persists the days of a trip and the ideas linked to it.
// Writes always carry a full snapshot; there are no partial updates.
type ItineraryRepo interface {
	// ListDays returns the days of a trip ordered by date.
	// Returns an empty slice when the trip has no days yet.
	ListDays(ctx context.Context, tripID uuid.UUID) ([]domain.Day, error)

	// ListLinkedIdeas returns the ideas linked to a trip in link order.
	ListLinkedIdeas(ctx context.Context, tripID uuid.UUID) ([]domain.Idea, error)

	// Save writes snap in one transaction: days missing from snap are
	// deleted, every other day is upserted, the idea links are replaced, and the trip's idea_count and updated_at are
	// refreshed. Returns domain.ErrNotFound if the trip no longer exists.
	Save(ctx context.Context, snap domain.ItinerarySnapshot) error
}

// pgItineraryRepo is the Postgres implementation of ItineraryRepo.
type pgItineraryRepo struct {
	db db
}

// NewItineraryRepo constructs an ItineraryRepo backed by the provided db connection.
func NewItineraryRepo(db db) ItineraryRepo {
	return &pgItineraryRepo{db: db}
}

func (r *pgItineraryRepo) ListDays(ctx context.Context, tripID uuid.UUID) ([]domain.Day, error) {
	const q = `
		SELECT id, trip_id, date, city, morning, afternoon, evening
		FROM days
		WHERE trip_id = @trip_id
		ORDER BY date`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.ItineraryRepo.ListDays: %w", err)
	}
	defer rows.Close()

	days := []domain.Day{}
	for rows.Next() {
		d, err := scanDay(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ItineraryRepo.ListDays: scan: %w", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ItineraryRepo.ListDays: rows: %w", err)
	}
	return days, nil
}

func (r *pgItineraryRepo) ListLinkedIdeas(ctx context.Context, tripID uuid.UUID) ([]domain.Idea, error) {
	const q = `
		SELECT i.id, i.title, i.city, i.country, i.category, i.source,
		       i.place_id, i.photo_ref, i.board_ids, i.created_at
		FROM ideas i
		JOIN trip_ideas ti ON ti.idea_id = i.id
		WHERE ti.trip_id = @trip_id
		ORDER BY ti.position`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.ItineraryRepo.ListLinkedIdeas: %w", err)
	}
	ideas, err := collectIdeas(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.ItineraryRepo.ListLinkedIdeas: %w", err)
	}
	return ideas, nil
}

func (r *pgItineraryRepo) Save(ctx context.Context, snap domain.ItinerarySnapshot) error {
	const touchTrip = `
		UPDATE trips
		SET idea_count = @idea_count, updated_at = now()
		WHERE id = @trip_id`
	const upsertDay = `
		INSERT INTO days (id, trip_id, date, city, morning, afternoon, evening)
		VALUES (@id, @trip_id, @date, @city, @morning, @afternoon, @evening)
		ON CONFLICT (id) DO UPDATE
		SET city      = EXCLUDED.city,
		    morning   = EXCLUDED.morning,
		    afternoon = EXCLUDED.afternoon,
		    evening   = EXCLUDED.evening`
	const dropDays = `DELETE FROM days WHERE trip_id = @trip_id AND id <> ALL(@day_ids)`
	const clearLinks = `DELETE FROM trip_ideas WHERE trip_id = @trip_id`
	const insertLink = `
		INSERT INTO trip_ideas (trip_id, idea_id, position)
		VALUES (@trip_id, @idea_id, @position)`

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.ItineraryRepo.Save: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after Commit

	// Touch the trip first: it both locks the row against a concurrent delete
	// and tells us whether the trip still exists.
	tag, err := tx.Exec(ctx, touchTrip, pgx.NamedArgs{
		"trip_id":    snap.TripID,
		"idea_count": len(snap.LinkedIdeaIDs),
	})
	if err != nil {
		return fmt.Errorf("repo.ItineraryRepo.Save: trip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ItineraryRepo.Save: %w", domain.ErrNotFound)
	}

	dayIDs := make([]uuid.UUID, len(snap.Days))
	for i, d := range snap.Days {
		dayIDs[i] = d.ID
	}

	// Days missing from the snapshot go first so their dates are free for
	// the upserts.
	batch := &pgx.Batch{}
	batch.Queue(dropDays, pgx.NamedArgs{"trip_id": snap.TripID, "day_ids": toPgUUIDs(dayIDs)})
	for _, d := range snap.Days {
		batch.Queue(upsertDay, pgx.NamedArgs{
			"id":        d.ID,
			"trip_id":   snap.TripID,
			"date":      d.Date,
			"city":      d.City,
			"morning":   orEmpty(d.Morning),
			"afternoon": orEmpty(d.Afternoon),
			"evening":   orEmpty(d.Evening),
		})
	}
	batch.Queue(clearLinks, pgx.NamedArgs{"trip_id": snap.TripID})
	for i, ideaID := range snap.LinkedIdeaIDs {
		batch.Queue(insertLink, pgx.NamedArgs{"trip_id": snap.TripID, "idea_id": ideaID, "position": i})
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("repo.ItineraryRepo.Save: batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.ItineraryRepo.Save: commit: %w", err)
	}
	return nil
}

// scanDay maps a single database row into a domain.Day.
// The segment columns are JSONB arrays decoded straight into activity slices.
func scanDay(s scanner) (domain.Day, error) {
	var (
		d      domain.Day
		id     pgtype.UUID
		tripID pgtype.UUID
		date   pgtype.Date
	)
	err := s.Scan(&id, &tripID, &date, &d.City, &d.Morning, &d.Afternoon, &d.Evening)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Day{}, domain.ErrNotFound
		}
		return domain.Day{}, err
	}
	d.ID = uuid.UUID(id.Bytes)
	d.TripID = uuid.UUID(tripID.Bytes)
	d.Date = date.Time
	d.Morning = orEmpty(d.Morning)
	d.Afternoon = orEmpty(d.Afternoon)
	d.Evening = orEmpty(d.Evening)
	return d, nil
}
