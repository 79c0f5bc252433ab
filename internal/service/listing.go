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
	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/storage"
	apperrors "github.com/SHANTO612/poshur-sheba-hub-sub000/pkg/errors"
)

// ListingService implements the business logic for livestock listings.
type ListingService struct {
	listings repository.ListingRepository
	accounts repository.AccountRepository
	assets   storage.AssetStore
	producer event.Publisher
	logger   *slog.Logger
}

// NewListingService creates a new listing service.
func NewListingService(listings repository.ListingRepository, accounts repository.AccountRepository, assets storage.AssetStore, producer event.Publisher, logger *slog.Logger) *ListingService {
	return &ListingService{
		listings: listings,
		accounts: accounts,
		assets:   assets,
		producer: producer,
		logger:   logger,
	}
}

// CreateListingInput holds the parameters for creating a listing.
type CreateListingInput struct {
	SellerID    string
	Title       string
	Description string
	Category    string
	Price       int64
	Images      []domain.ImageRef
}

// CreateListing creates a new listing owned by a seller-role account.
func (s *ListingService) CreateListing(ctx context.Context, input CreateListingInput) (*domain.Listing, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.InvalidInput("title is required")
	}
	if input.Price < 0 {
		return nil, apperrors.InvalidInput("price cannot be negative")
	}

	seller, err := s.accounts.GetByID(ctx, input.SellerID)
	if err != nil {
		return nil, fmt.Errorf("resolve seller: %w", err)
	}
	if !domain.IsSellerRole(seller.Role) {
		return nil, apperrors.InvalidInput("account cannot own listings")
	}

	now := time.Now().UTC()
	listing := &domain.Listing{
		ID:          uuid.New().String(),
		SellerID:    input.SellerID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Category:    input.Category,
		Price:       input.Price,
		Images:      input.Images,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}

	s.logger.InfoContext(ctx, "listing created",
		slog.String("listing_id", listing.ID),
		slog.String("seller_id", listing.SellerID),
	)

	return listing, nil
}

// GetListing retrieves a listing by its ID.
func (s *ListingService) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get listing by id: %w", err)
	}
	return listing, nil
}

// ListListings returns a filtered, paginated list of listings.
func (s *ListingService) ListListings(ctx context.Context, filter repository.ListingFilter) ([]domain.Listing, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}

	listings, total, err := s.listings.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list listings: %w", err)
	}

	return listings, total, nil
}

// DeleteListing removes a listing. Only the owning seller or an admin may
// delete. Stored assets are removed best-effort; an asset-store failure never
// blocks removal of the metadata row.
func (s *ListingService) DeleteListing(ctx context.Context, id string, actor Actor) error {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get listing: %w", err)
	}

	if actor.ID != listing.SellerID && !actor.IsAdmin() {
		return apperrors.Forbidden("you cannot delete this listing")
	}

	deleteAssets(ctx, s.assets, listing.Images, s.logger)

	if err := s.listings.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}

	if err := s.producer.PublishListingDeleted(ctx, id, listing.SellerID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish listing.deleted event",
			slog.String("listing_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "listing deleted",
		slog.String("listing_id", id),
		slog.String("actor_id", actor.ID),
	)

	return nil
}
