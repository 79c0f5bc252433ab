package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/domain"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/repository"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/pkg/database"
	apperrors "github.com/SHANTO612/poshur-sheba-hub-sub000/pkg/errors"
)

// RatingRepository implements repository.RatingRepository using PostgreSQL.
type RatingRepository struct {
	pool database.DBTX
}

// NewRatingRepository creates a new PostgreSQL-backed rating repository.
func NewRatingRepository(pool database.DBTX) *RatingRepository {
	return &RatingRepository{pool: pool}
}

// Upsert inserts a rating or updates the existing (reviewer, provider) row in
// place. The unique index on (reviewer_id, provider_id) is the authoritative
// guard against two first-time submissions racing past an existence check.
func (r *RatingRepository) Upsert(ctx context.Context, rating *domain.Rating) error {
	query := `
		INSERT INTO ratings (id, reviewer_id, provider_id, score, review, experience, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (reviewer_id, provider_id) DO UPDATE
		SET score = EXCLUDED.score,
			review = EXCLUDED.review,
			experience = EXCLUDED.experience,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		rating.ID,
		rating.ReviewerID,
		rating.ProviderID,
		rating.Score,
		rating.Review,
		rating.Experience,
		rating.CreatedAt,
		rating.UpdatedAt,
	).Scan(&rating.ID, &rating.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert rating: %w", err)
	}

	return nil
}

// GetByID retrieves a rating by its ID.
func (r *RatingRepository) GetByID(ctx context.Context, id string) (*domain.Rating, error) {
	query := `
		SELECT id, reviewer_id, provider_id, score, review, experience, created_at, updated_at
		FROM ratings
		WHERE id = $1`

	var rt domain.Rating
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rt.ID,
		&rt.ReviewerID,
		&rt.ProviderID,
		&rt.Score,
		&rt.Review,
		&rt.Experience,
		&rt.CreatedAt,
		&rt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan rating: %w", err)
	}

	return &rt, nil
}

// List returns ratings matching the given filter with the total count.
func (r *RatingRepository) List(ctx context.Context, filter repository.RatingFilter) ([]domain.Rating, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.ProviderID != nil {
		conditions = append(conditions, fmt.Sprintf("provider_id = $%d", argIndex))
		args = append(args, *filter.ProviderID)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT id, reviewer_id, provider_id, score, review, experience, created_at, updated_at,
			   count(*) OVER() AS total_count
		FROM ratings
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	var totalCount int
	ratings := make([]domain.Rating, 0)

	for rows.Next() {
		var rt domain.Rating
		if err := rows.Scan(
			&rt.ID,
			&rt.ReviewerID,
			&rt.ProviderID,
			&rt.Score,
			&rt.Review,
			&rt.Experience,
			&rt.CreatedAt,
			&rt.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan rating row: %w", err)
		}
		ratings = append(ratings, rt)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate rating rows: %w", err)
	}

	return ratings, totalCount, nil
}

// Summary returns the average score (rounded to one decimal) and count for a
// provider's rating set, scanning all current rows.
func (r *RatingRepository) Summary(ctx context.Context, providerID string) (*domain.RatingSummary, error) {
	query := `
		SELECT COALESCE(AVG(score), 0), COUNT(*)
		FROM ratings
		WHERE provider_id = $1`

	summary := domain.RatingSummary{ProviderID: providerID}
	err := r.pool.QueryRow(ctx, query, providerID).Scan(&summary.AverageScore, &summary.TotalRatings)
	if err != nil {
		return nil, fmt.Errorf("rating summary: %w", err)
	}

	summary.AverageScore = math.Round(summary.AverageScore*10) / 10

	return &summary, nil
}

// Delete removes a rating by ID.
func (r *RatingRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM ratings WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete rating: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("rating", id)
	}

	return nil
}

// DeleteByParticipant removes all ratings where the account is reviewer or
// provider. It returns the distinct provider IDs whose rating sets changed so
// the caller can recompute their aggregates. Deleting an account with no
// ratings is a no-op.
func (r *RatingRepository) DeleteByParticipant(ctx context.Context, accountID string) ([]string, error) {
	query := `
		DELETE FROM ratings
		WHERE reviewer_id = $1 OR provider_id = $1
		RETURNING provider_id`

	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("delete ratings by participant: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	providers := make([]string, 0)

	for rows.Next() {
		var providerID string
		if err := rows.Scan(&providerID); err != nil {
			return nil, fmt.Errorf("scan deleted rating provider: %w", err)
		}
		if _, ok := seen[providerID]; ok {
			continue
		}
		seen[providerID] = struct{}{}
		// The deleted account's own aggregate no longer needs maintenance.
		if providerID == accountID {
			continue
		}
		providers = append(providers, providerID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deleted rating rows: %w", err)
	}

	return providers, nil
}
