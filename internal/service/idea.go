package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/itinerary-planner/backend/internal/domain"
	"github.com/pkordes/itinerary-planner/backend/internal/repo"
)

// IdeaService implements business logic for saved activity ideas.
type IdeaService struct {
	repo repo.IdeaRepo
}

// NewIdeaService constructs an IdeaService backed by the provided IdeaRepo.
func NewIdeaService(r repo.IdeaRepo) *IdeaService {
	return &IdeaService{repo: r}
}

// Create validates and persists a new idea. Title is required; a missing
// source defaults to "manual".
func (s *IdeaService) Create(ctx context.Context, idea domain.Idea) (domain.Idea, error) {
	idea.Title = strings.TrimSpace(idea.Title)
	idea.City = strings.TrimSpace(idea.City)
	idea.Country = strings.TrimSpace(idea.Country)
	idea.Category = strings.TrimSpace(idea.Category)
	idea.Source = strings.TrimSpace(idea.Source)
	if idea.Title == "" {
		return domain.Idea{}, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if idea.Source == "" {
		idea.Source = domain.SourceManual
	}
	result, err := s.repo.Create(ctx, idea)
	if err != nil {
		return domain.Idea{}, fmt.Errorf("service.IdeaService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single idea. Returns domain.ErrNotFound if absent.
func (s *IdeaService) GetByID(ctx context.Context, id uuid.UUID) (domain.Idea, error) {
	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Idea{}, fmt.Errorf("service.IdeaService.GetByID: %w", err)
	}
	return result, nil
}

// List returns ideas whose city starts with cityPrefix. An empty prefix
// lists every idea. Always returns a non-nil slice.
func (s *IdeaService) List(ctx context.Context, cityPrefix string) ([]domain.Idea, error) {
	ideas, err := s.repo.List(ctx, strings.TrimSpace(cityPrefix))
	if err != nil {
		return nil, fmt.Errorf("service.IdeaService.List: %w", err)
	}
	if ideas == nil {
		return []domain.Idea{}, nil
	}
	return ideas, nil
}
