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

// IdeaRepo defines the persistence operations for Ideas.
// Links between ideas and trips are written by ItineraryRepo.
type IdeaRepo interface {
	// Create inserts a new idea and returns the persisted record.
	Create(ctx context.Context, idea domain.Idea) (domain.Idea, error)

	// GetByID retrieves a single idea. Returns domain.ErrNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Idea, error)

	// List returns all ideas whose city starts with cityPrefix
	// (case-insensitive), ordered by title. An empty prefix returns all ideas.
	List(ctx context.Context, cityPrefix string) ([]domain.Idea, error)
}

// pgIdeaRepo is the Postgres implementation of IdeaRepo.
type pgIdeaRepo struct {
	db db
}

// NewIdeaRepo constructs an IdeaRepo backed by the provided db connection.
func NewIdeaRepo(db db) IdeaRepo {
	return &pgIdeaRepo{db: db}
}

const ideaColumns = `id, title, city, country, category, source, place_id, photo_ref, board_ids, created_at`

func (r *pgIdeaRepo) Create(ctx context.Context, idea domain.Idea) (domain.Idea, error) {
	const q = `
		INSERT INTO ideas (title, city, country, category, source, place_id, photo_ref, board_ids)
		VALUES (@title, @city, @country, @category, @source, @place_id, @photo_ref, @board_ids)
		RETURNING ` + ideaColumns

	args := pgx.NamedArgs{
		"title":     idea.Title,
		"city":      idea.City,
		"country":   idea.Country,
		"category":  idea.Category,
		"source":    idea.Source,
		"place_id":  idea.PlaceID,
		"photo_ref": idea.PhotoRef,
		"board_ids": toPgUUIDs(idea.BoardIDs),
	}

	result, err := scanIdea(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Idea{}, fmt.Errorf("repo.IdeaRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgIdeaRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Idea, error) {
	const q = `SELECT ` + ideaColumns + ` FROM ideas WHERE id = @id`

	result, err := scanIdea(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Idea{}, fmt.Errorf("repo.IdeaRepo.GetByID: %w", err)
	}
	return result, nil
}

// List matches cityPrefix literally; % and _ are not wildcards.
func (r *pgIdeaRepo) List(ctx context.Context, cityPrefix string) ([]domain.Idea, error) {
	const q = `
		SELECT ` + ideaColumns + `
		FROM ideas
		WHERE starts_with(lower(city), lower(@prefix))
		ORDER BY title, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"prefix": cityPrefix})
	if err != nil {
		return nil, fmt.Errorf("repo.IdeaRepo.List: %w", err)
	}
	ideas, err := collectIdeas(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.IdeaRepo.List: %w", err)
	}
	return ideas, nil
}

// scanIdea maps a single database row into a domain.Idea.
func scanIdea(s scanner) (domain.Idea, error) {
	var (
		i        domain.Idea
		id       pgtype.UUID
		boardIDs []pgtype.UUID
	)
	err := s.Scan(&id, &i.Title, &i.City, &i.Country, &i.Category, &i.Source,
		&i.PlaceID, &i.PhotoRef, &boardIDs, &i.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Idea{}, domain.ErrNotFound
		}
		return domain.Idea{}, err
	}
	i.ID = uuid.UUID(id.Bytes)
	for _, b := range boardIDs {
		i.BoardIDs = append(i.BoardIDs, uuid.UUID(b.Bytes))
	}
	return i, nil
}

// collectIdeas scans every row and closes rows. Always returns a non-nil slice.
func collectIdeas(rows pgx.Rows) ([]domain.Idea, error) {
	defer rows.Close()

	ideas := []domain.Idea{}
	for rows.Next() {
		i, err := scanIdea(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		ideas = append(ideas, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return ideas, nil
}

func toPgUUIDs(ids []uuid.UUID) []pgtype.UUID {
	out := make([]pgtype.UUID, len(ids))
	for i, id := range ids {
		out[i] = pgtype.UUID{Bytes: id, Valid: true}
	}
	return out
}
