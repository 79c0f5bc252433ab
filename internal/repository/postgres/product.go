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

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create inserts a new product. Image refs are stored as JSONB.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	imagesJSON, err := json.Marshal(p.Images)
	if err != nil {
		return fmt.Errorf("marshal product images: %w", err)
	}

	query := `
		INSERT INTO products (id, seller_id, name, description, price, quantity, images, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = r.pool.Exec(ctx, query,
		p.ID,
		p.SellerID,
		p.Name,
		p.Description,
		p.Price,
		p.Quantity,
		imagesJSON,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `
		SELECT id, seller_id, name, description, price, quantity, images, created_at, updated_at
		FROM products
		WHERE id = $1`

	var (
		p          domain.Product
		imagesJSON []byte
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.SellerID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Quantity,
		&imagesJSON,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	if err := unmarshalImages(imagesJSON, &p.Images); err != nil {
		return nil, fmt.Errorf("unmarshal product images: %w", err)
	}

	return &p, nil
}

// List returns products matching the given filter with the total count.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
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

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT id, seller_id, name, description, price, quantity, images, created_at, updated_at,
			   count(*) OVER() AS total_count
		FROM products
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
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var totalCount int
	products := make([]domain.Product, 0)

	for rows.Next() {
		var (
			p          domain.Product
			imagesJSON []byte
		)
		if err := rows.Scan(
			&p.ID,
			&p.SellerID,
			&p.Name,
			&p.Description,
			&p.Price,
			&p.Quantity,
			&imagesJSON,
			&p.CreatedAt,
			&p.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		if err := unmarshalImages(imagesJSON, &p.Images); err != nil {
			return nil, 0, fmt.Errorf("unmarshal product images: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, totalCount, nil
}

// Delete removes a product by ID.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM products WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}

	return nil
}

// DeleteBySeller removes all products owned by the seller and returns the
// image refs of the removed rows. Returns an empty slice when the seller owns
// no products.
func (r *ProductRepository) DeleteBySeller(ctx context.Context, sellerID string) ([]domain.ImageRef, error) {
	query := `
		DELETE FROM products
		WHERE seller_id = $1
		RETURNING images`

	rows, err := r.pool.Query(ctx, query, sellerID)
	if err != nil {
		return nil, fmt.Errorf("delete products by seller: %w", err)
	}
	defer rows.Close()

	refs := make([]domain.ImageRef, 0)
	for rows.Next() {
		var imagesJSON []byte
		if err := rows.Scan(&imagesJSON); err != nil {
			return nil, fmt.Errorf("scan deleted product images: %w", err)
		}
		var images []domain.ImageRef
		if err := unmarshalImages(imagesJSON, &images); err != nil {
			return nil, fmt.Errorf("unmarshal deleted product images: %w", err)
		}
		refs = append(refs, images...)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deleted product rows: %w", err)
	}

	return refs, nil
}
