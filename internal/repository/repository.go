package repository

import (
	"context"
	"time"

	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/domain"
)

// AccountFilter defines filter criteria for listing accounts.
type AccountFilter struct {
	Role    *string
	Page    int
	PerPage int
}

// AccountRepository defines the interface for account persistence operations.
type AccountRepository interface {
	// Create inserts a new account.
	Create(ctx context.Context, account *domain.Account) error

	// GetByID retrieves an account by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Account, error)

	// GetByEmail retrieves an account by email address.
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)

	// List returns accounts matching the given filter along with the total count.
	List(ctx context.Context, filter AccountFilter) ([]domain.Account, int, error)

	// UpdateRating writes the derived rating aggregate for a provider account.
	UpdateRating(ctx context.Context, id string, rating float64) error

	// Delete removes an account by ID.
	Delete(ctx context.Context, id string) error
}

// RatingFilter defines filter criteria for listing ratings.
type RatingFilter struct {
	ProviderID *string
	Page       int
	PerPage    int
}

// RatingRepository defines the interface for rating persistence operations.
type RatingRepository interface {
	// Upsert inserts a rating, or updates score, review, and experience in
	// place when a rating for the (reviewer, provider) pair already exists.
	Upsert(ctx context.Context, rating *domain.Rating) error

	// GetByID retrieves a rating by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Rating, error)

	// List returns ratings matching the given filter along with the total count.
	List(ctx context.Context, filter RatingFilter) ([]domain.Rating, int, error)

	// Summary returns the average score and count for a provider's rating set.
	// The average is 0 when no ratings exist.
	Summary(ctx context.Context, providerID string) (*domain.RatingSummary, error)

	// Delete removes a rating by ID.
	Delete(ctx context.Context, id string) error

	// DeleteByParticipant removes all ratings where the account is reviewer or
	// provider and returns the distinct provider IDs whose rating sets changed.
	DeleteByParticipant(ctx context.Context, accountID string) ([]string, error)
}

// ListingFilter defines filter criteria for listing listings.
type ListingFilter struct {
	SellerID *string
	Category *string
	Page     int
	PerPage  int
}

// ListingRepository defines the interface for listing persistence operations.
type ListingRepository interface {
	// Create inserts a new listing.
	Create(ctx context.Context, listing *domain.Listing) error

	// GetByID retrieves a listing by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Listing, error)

	// List returns listings matching the given filter along with the total count.
	List(ctx context.Context, filter ListingFilter) ([]domain.Listing, int, error)

	// Delete removes a listing by ID.
	Delete(ctx context.Context, id string) error

	// DeleteBySeller removes all listings owned by the seller and returns the
	// image refs of the removed rows so callers can clean up stored assets.
	DeleteBySeller(ctx context.Context, sellerID string) ([]domain.ImageRef, error)
}

// ProductFilter defines filter criteria for listing products.
type ProductFilter struct {
	SellerID *string
	Page     int
	PerPage  int
}

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	// Create inserts a new product.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// List returns products matching the given filter along with the total count.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)

	// Delete removes a product by ID.
	Delete(ctx context.Context, id string) error

	// DeleteBySeller removes all products owned by the seller and returns the
	// image refs of the removed rows so callers can clean up stored assets.
	DeleteBySeller(ctx context.Context, sellerID string) ([]domain.ImageRef, error)
}

// AppointmentFilter defines filter criteria for listing appointments.
type AppointmentFilter struct {
	ProviderID  *string
	RequesterID *string
	Status      *string
	Page        int
	PerPage     int
}

// AppointmentStats holds derived counts for a provider's appointment set,
// correct as of query time.
type AppointmentStats struct {
	Today            int `json:"today"`
	ThisWeek         int `json:"this_week"`
	DistinctPatients int `json:"distinct_patients"`
	Pending          int `json:"pending"`
}

// AppointmentRepository defines the interface for appointment persistence operations.
type AppointmentRepository interface {
	// Create inserts a new appointment.
	Create(ctx context.Context, appointment *domain.Appointment) error

	// GetByID retrieves an appointment by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Appointment, error)

	// List returns appointments matching the given filter along with the total count.
	List(ctx context.Context, filter AppointmentFilter) ([]domain.Appointment, int, error)

	// UpdateStatus changes the status of an appointment, sets the matching
	// transition timestamp, and optionally records a cancel reason.
	UpdateStatus(ctx context.Context, id string, status string, reason string, at time.Time) error

	// Stats computes derived counts for a provider's appointment set. now
	// anchors the today and this-week windows.
	Stats(ctx context.Context, providerID string, now time.Time) (*AppointmentStats, error)
}
