package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/domain"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/repository"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/storage"
)

// ListingCascadeDeleter removes all listings owned by an account and
// best-effort deletes their stored assets.
type ListingCascadeDeleter struct {
	listings repository.ListingRepository
	assets   storage.AssetStore
	logger   *slog.Logger
}

// NewListingCascadeDeleter creates a cascade deleter for listings.
func NewListingCascadeDeleter(listings repository.ListingRepository, assets storage.AssetStore, logger *slog.Logger) *ListingCascadeDeleter {
	return &ListingCascadeDeleter{listings: listings, assets: assets, logger: logger}
}

func (d *ListingCascadeDeleter) Name() string { return "listings" }

// DeleteFor removes the account's listings. Asset-store failures are logged
// and do not fail the cascade; metadata rows are already gone.
func (d *ListingCascadeDeleter) DeleteFor(ctx context.Context, accountID string) error {
	refs, err := d.listings.DeleteBySeller(ctx, accountID)
	if err != nil {
		return fmt.Errorf("delete listings by seller: %w", err)
	}

	deleteAssets(ctx, d.assets, refs, d.logger)
	return nil
}

// ProductCascadeDeleter removes all products owned by an account and
// best-effort deletes their stored assets.
type ProductCascadeDeleter struct {
	products repository.ProductRepository
	assets   storage.AssetStore
	logger   *slog.Logger
}

// NewProductCascadeDeleter creates a cascade deleter for products.
func NewProductCascadeDeleter(products repository.ProductRepository, assets storage.AssetStore, logger *slog.Logger) *ProductCascadeDeleter {
	return &ProductCascadeDeleter{products: products, assets: assets, logger: logger}
}

func (d *ProductCascadeDeleter) Name() string { return "products" }

func (d *ProductCascadeDeleter) DeleteFor(ctx context.Context, accountID string) error {
	refs, err := d.products.DeleteBySeller(ctx, accountID)
	if err != nil {
		return fmt.Errorf("delete products by seller: %w", err)
	}

	deleteAssets(ctx, d.assets, refs, d.logger)
	return nil
}

// RatingCascadeDeleter removes all ratings where the account is reviewer or
// provider, then recomputes the aggregate of every other provider whose
// rating set changed.
type RatingCascadeDeleter struct {
	ratings    repository.RatingRepository
	aggregator *RatingService
	logger     *slog.Logger
}

// NewRatingCascadeDeleter creates a cascade deleter for ratings.
func NewRatingCascadeDeleter(ratings repository.RatingRepository, aggregator *RatingService, logger *slog.Logger) *RatingCascadeDeleter {
	return &RatingCascadeDeleter{ratings: ratings, aggregator: aggregator, logger: logger}
}

func (d *RatingCascadeDeleter) Name() string { return "ratings" }

func (d *RatingCascadeDeleter) DeleteFor(ctx context.Context, accountID string) error {
	providers, err := d.ratings.DeleteByParticipant(ctx, accountID)
	if err != nil {
		return fmt.Errorf("delete ratings by participant: %w", err)
	}

	for _, providerID := range providers {
		if err := d.aggregator.RecomputeAggregate(ctx, providerID); err != nil {
			d.logger.WarnContext(ctx, "aggregate recompute failed during cascade",
				slog.String("provider_id", providerID),
				slog.String("error", err.Error()),
			)
		}
	}

	return nil
}

// deleteAssets best-effort deletes the given asset refs, logging failures.
func deleteAssets(ctx context.Context, assets storage.AssetStore, refs []domain.ImageRef, logger *slog.Logger) {
	for _, ref := range refs {
		if ref.AssetID == "" {
			continue
		}
		if err := assets.Delete(ctx, ref.AssetID); err != nil {
			logger.WarnContext(ctx, "asset delete failed",
				slog.String("asset_id", ref.AssetID),
				slog.String("error", err.Error()),
			)
		}
	}
}
