package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/domain"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/event"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/repository"
	apperrors "github.com/SHANTO612/poshur-sheba-hub-sub000/pkg/errors"
)

// RatingService implements the business logic for rating submission, deletion,
// and provider aggregate maintenance.
type RatingService struct {
	ratings  repository.RatingRepository
	accounts repository.AccountRepository
	producer event.Publisher
	logger   *slog.Logger
}

// NewRatingService creates a new rating service.
func NewRatingService(ratings repository.RatingRepository, accounts repository.AccountRepository, producer event.Publisher, logger *slog.Logger) *RatingService {
	return &RatingService{
		ratings:  ratings,
		accounts: accounts,
		producer: producer,
		logger:   logger,
	}
}

// SubmitRatingInput holds the parameters for submitting a rating.
type SubmitRatingInput struct {
	ReviewerID string
	ProviderID string
	Score      int
	Review     string
	Experience string
}

// SubmitRating creates or updates the reviewer's rating for a provider and
// recomputes the provider's aggregate. A second submission for the same
// (reviewer, provider) pair updates the existing rating in place.
func (s *RatingService) SubmitRating(ctx context.Context, input SubmitRatingInput) (*domain.Rating, error) {
	if input.ReviewerID == "" {
		return nil, apperrors.InvalidInput("reviewer_id is required")
	}
	if input.ProviderID == "" {
		return nil, apperrors.InvalidInput("provider_id is required")
	}
	if input.ReviewerID == input.ProviderID {
		return nil, apperrors.InvalidInput("you cannot rate yourself")
	}
	if !domain.IsValidScore(input.Score) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("score must be between %d and %d", domain.MinRatingScore, domain.MaxRatingScore))
	}
	if strings.TrimSpace(input.Experience) == "" {
		return nil, apperrors.InvalidInput("experience is required")
	}

	provider, err := s.accounts.GetByID(ctx, input.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("resolve provider: %w", err)
	}
	if !provider.IsProvider() {
		return nil, apperrors.InvalidInput("rated account is not a service provider")
	}

	now := time.Now().UTC()
	rating := &domain.Rating{
		ID:         uuid.New().String(),
		ReviewerID: input.ReviewerID,
		ProviderID: input.ProviderID,
		Score:      input.Score,
		Review:     input.Review,
		Experience: strings.TrimSpace(input.Experience),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.ratings.Upsert(ctx, rating); err != nil {
		return nil, fmt.Errorf("upsert rating: %w", err)
	}

	aggregate := s.recomputeAggregate(ctx, input.ProviderID)

	if err := s.producer.PublishRatingSubmitted(ctx, rating, aggregate); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish rating.submitted event",
			slog.String("rating_id", rating.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "rating submitted",
		slog.String("rating_id", rating.ID),
		slog.String("provider_id", rating.ProviderID),
		slog.Int("score", rating.Score),
		slog.Float64("aggregate", aggregate),
	)

	return rating, nil
}

// DeleteRating removes a rating and recomputes the provider's aggregate. The
// reviewer, the rated provider, or an admin may delete.
func (s *RatingService) DeleteRating(ctx context.Context, ratingID string, actor Actor) error {
	rating, err := s.ratings.GetByID(ctx, ratingID)
	if err != nil {
		return fmt.Errorf("get rating: %w", err)
	}

	if actor.ID != rating.ReviewerID && actor.ID != rating.ProviderID && !actor.IsAdmin() {
		return apperrors.Forbidden("you cannot delete this rating")
	}

	if err := s.ratings.Delete(ctx, ratingID); err != nil {
		return fmt.Errorf("delete rating: %w", err)
	}

	aggregate := s.recomputeAggregate(ctx, rating.ProviderID)

	if err := s.producer.PublishRatingDeleted(ctx, ratingID, rating.ProviderID, aggregate); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish rating.deleted event",
			slog.String("rating_id", ratingID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "rating deleted",
		slog.String("rating_id", ratingID),
		slog.String("provider_id", rating.ProviderID),
		slog.Float64("aggregate", aggregate),
	)

	return nil
}

// ListProviderRatings returns a paginated list of a provider's ratings with
// the current summary.
func (s *RatingService) ListProviderRatings(ctx context.Context, providerID string, page, perPage int) ([]domain.Rating, *domain.RatingSummary, int, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	ratings, total, err := s.ratings.List(ctx, repository.RatingFilter{
		ProviderID: &providerID,
		Page:       page,
		PerPage:    perPage,
	})
	if err != nil {
		return nil, nil, 0, fmt.Errorf("list ratings: %w", err)
	}

	summary, err := s.ratings.Summary(ctx, providerID)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("rating summary: %w", err)
	}

	return ratings, summary, total, nil
}

// RecomputeAggregate recomputes a provider's aggregate from its full rating
// set and writes it through the account repository. Used by the cascade
// orchestrator after participant ratings are removed.
func (s *RatingService) RecomputeAggregate(ctx context.Context, providerID string) error {
	summary, err := s.ratings.Summary(ctx, providerID)
	if err != nil {
		return fmt.Errorf("rating summary: %w", err)
	}

	if err := s.accounts.UpdateRating(ctx, providerID, summary.AverageScore); err != nil {
		return fmt.Errorf("write provider aggregate: %w", err)
	}

	return nil
}

// recomputeAggregate recomputes after a committed rating write. A failure here
// leaves the aggregate stale until the next mutation, so it is logged as a
// consistency warning and never surfaced to the caller.
func (s *RatingService) recomputeAggregate(ctx context.Context, providerID string) float64 {
	summary, err := s.ratings.Summary(ctx, providerID)
	if err != nil {
		s.logger.WarnContext(ctx, "aggregate recompute failed, provider rating is stale",
			slog.String("provider_id", providerID),
			slog.String("error", err.Error()),
		)
		return 0
	}

	if err := s.accounts.UpdateRating(ctx, providerID, summary.AverageScore); err != nil {
		s.logger.WarnContext(ctx, "aggregate write failed, provider rating is stale",
			slog.String("provider_id", providerID),
			slog.String("error", err.Error()),
		)
	}

	return summary.AverageScore
}
