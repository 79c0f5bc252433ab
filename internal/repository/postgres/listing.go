package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/domain"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/repository"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/pkg/database"
	apperrors "github.com/SHANTO612/poshur-sheba-hub-sub000/pkg/errors"
)

// ListingRepository implements repository.ListingRepository using PostgreSQL.
type ListingRepository struct {
	pool database.DBTX
}

// NewListingRepository creates a new PostgreSQL-backed listing repository.
func NewListingRepository(pool database.DBTX) *ListingRepository {
	return &ListingRepository{pool: pool}
}

// Create inserts a new listing. Image refs are stored as JSONB.
func (r *ListingRepository) Create(ctx context.Context, l *domain.Listing) error {
	imagesJSON, err := json.Marshal(l.Images)
	if err != nil {
		return fmt.Errorf("marshal listing images: %w", err)
	}

	query := `
		INSERT INTO listings (id, seller_id, title, description, category, price, images, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = r.pool.Exec(ctx, query,
		l.ID,
		l.SellerID,
		l.Title,
		l.Description,
		l.Category,
		l.Price,
		imagesJSON,
		l.CreatedAt,
		l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}

	return nil
}

// GetByID retrieves a listing by its ID.
func (r *ListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	query := `
		SELECT id, seller_id, title, description, category, price, images, created_at, updated_at
		FROM listings
		WHERE id = $1`

	var (
		l          domain.Listing
		imagesJSON []byte
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&l.ID,
		&l.SellerID,
		&l.Title,
		&l.Description,
		&l.Category,
		&l.Price,
		&imagesJSON,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan listing: %w", err)
	}

	if err := unmarshalImages(imagesJSON, &l.Images); err != nil {
		return nil, fmt.Errorf("unmarshal listing images: %w", err)
	}

	return &l, nil
}

// List returns listings matching the given filter with the total count.
func (r *ListingRepository) List(ctx context.Context, filter repository.ListingFilter) ([]domain.Listing, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.SellerID != nil {
		conditions = append(conditions, fmt.Sprintf("seller_id = $%d", argIndex))
		args = append(args, *filter.SellerID)
		argIndex++
	}

	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIndex))
		args = append(args, *filter.Category)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT id, seller_id, title, description, category, price, images, created_at, updated_at,
			   count(*) OVER() AS total_count
		FROM listings
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
		return nil, 0, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	var totalCount int
	listings := make([]domain.Listing, 0)

	for rows.Next() {
		var (
			l          domain.Listing
			imagesJSON []byte
		)
		if err := rows.Scan(
			&l.ID,
			&l.SellerID,
			&l.Title,
			&l.Description,
			&l.Category,
			&l.Price,
			&imagesJSON,
			&l.CreatedAt,
			&l.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan listing row: %w", err)
		}
		if err := unmarshalImages(imagesJSON, &l.Images); err != nil {
			return nil, 0, fmt.Errorf("unmarshal listing images: %w", err)
		}
		listings = append(listings, l)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate listing rows: %w", err)
	}

	return listings, totalCount, nil
}

// Delete removes a listing by ID.
func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM listings WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("listing", id)
	}

	return nil
}

// DeleteBySeller removes all listings owned by the seller and returns the
// image refs of the removed rows. Returns an empty slice when the seller owns
// no listings.
func (r *ListingRepository) DeleteBySeller(ctx context.Context, sellerID string) ([]domain.ImageRef, error) {
	query := `
		DELETE FROM listings
		WHERE seller_id = $1
		RETURNING images`

	rows, err := r.pool.Query(ctx, query, sellerID)
	if err != nil {
		return nil, fmt.Errorf("delete listings by seller: %w", err)
	}
	defer rows.Close()

	refs := make([]domain.ImageRef, 0)
	for rows.Next() {
		var imagesJSON []byte
		if err := rows.Scan(&imagesJSON); err != nil {
			return nil, fmt.Errorf("scan deleted listing images: %w", err)
		}
		var images []domain.ImageRef
		if err := unmarshalImages(imagesJSON, &images); err != nil {
			return nil, fmt.Errorf("unmarshal deleted listing images: %w", err)
		}
		refs = append(refs, images...)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deleted listing rows: %w", err)
	}

	return refs, nil
}

// unmarshalImages decodes a JSONB image array, tolerating NULL columns.
func unmarshalImages(data []byte, dst *[]domain.ImageRef) error {
	if len(data) == 0 || string(data) == "null" {
		*dst = []domain.ImageRef{}
		return nil
	}
	return json.Unmarshal(data, dst)
}
