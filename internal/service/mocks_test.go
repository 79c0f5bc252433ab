package service

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/domain"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/repository"
)

// --- Mock Repositories ---

type mockAccountRepository struct {
	mock.Mock
}

func (m *mockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *mockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *mockAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *mockAccountRepository) List(ctx context.Context, filter repository.AccountFilter) ([]domain.Account, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Account), args.Int(1), args.Error(2)
}

func (m *mockAccountRepository) UpdateRating(ctx context.Context, id string, rating float64) error {
	args := m.Called(ctx, id, rating)
	return args.Error(0)
}

func (m *mockAccountRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockRatingRepository struct {
	mock.Mock
}

func (m *mockRatingRepository) Upsert(ctx context.Context, rating *domain.Rating) error {
	args := m.Called(ctx, rating)
	return args.Error(0)
}

func (m *mockRatingRepository) GetByID(ctx context.Context, id string) (*domain.Rating, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rating), args.Error(1)
}

func (m *mockRatingRepository) List(ctx context.Context, filter repository.RatingFilter) ([]domain.Rating, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Rating), args.Int(1), args.Error(2)
}

func (m *mockRatingRepository) Summary(ctx context.Context, providerID string) (*domain.RatingSummary, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RatingSummary), args.Error(1)
}

func (m *mockRatingRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockRatingRepository) DeleteByParticipant(ctx context.Context, accountID string) ([]string, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type mockListingRepository struct {
	mock.Mock
}

func (m *mockListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *mockListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *mockListingRepository) List(ctx context.Context, filter repository.ListingFilter) ([]domain.Listing, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Listing), args.Int(1), args.Error(2)
}

func (m *mockListingRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockListingRepository) DeleteBySeller(ctx context.Context, sellerID string) ([]domain.ImageRef, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ImageRef), args.Error(1)
}

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func (m *mockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockProductRepository) DeleteBySeller(ctx context.Context, sellerID string) ([]domain.ImageRef, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ImageRef), args.Error(1)
}

type mockAppointmentRepository struct {
	mock.Mock
}

func (m *mockAppointmentRepository) Create(ctx context.Context, appointment *domain.Appointment) error {
	args := m.Called(ctx, appointment)
	return args.Error(0)
}

func (m *mockAppointmentRepository) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Appointment), args.Error(1)
}

func (m *mockAppointmentRepository) List(ctx context.Context, filter repository.AppointmentFilter) ([]domain.Appointment, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Appointment), args.Int(1), args.Error(2)
}

func (m *mockAppointmentRepository) UpdateStatus(ctx context.Context, id string, status string, reason string, at time.Time) error {
	args := m.Called(ctx, id, status, reason, at)
	return args.Error(0)
}

func (m *mockAppointmentRepository) Stats(ctx context.Context, providerID string, now time.Time) (*repository.AppointmentStats, error) {
	args := m.Called(ctx, providerID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.AppointmentStats), args.Error(1)
}

// --- Mock Event Publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishRatingSubmitted(ctx context.Context, rating *domain.Rating, newAggregate float64) error {
	args := m.Called(ctx, rating, newAggregate)
	return args.Error(0)
}

func (m *mockPublisher) PublishRatingDeleted(ctx context.Context, ratingID, providerID string, newAggregate float64) error {
	args := m.Called(ctx, ratingID, providerID, newAggregate)
	return args.Error(0)
}

func (m *mockPublisher) PublishAccountDeleted(ctx context.Context, accountID, role, actorID string) error {
	args := m.Called(ctx, accountID, role, actorID)
	return args.Error(0)
}

func (m *mockPublisher) PublishListingDeleted(ctx context.Context, listingID, sellerID string) error {
	args := m.Called(ctx, listingID, sellerID)
	return args.Error(0)
}

func (m *mockPublisher) PublishProductDeleted(ctx context.Context, productID, sellerID string) error {
	args := m.Called(ctx, productID, sellerID)
	return args.Error(0)
}

func (m *mockPublisher) PublishAppointmentBooked(ctx context.Context, appt *domain.Appointment) error {
	args := m.Called(ctx, appt)
	return args.Error(0)
}

func (m *mockPublisher) PublishAppointmentStatusChanged(ctx context.Context, appt *domain.Appointment, oldStatus, reason string) error {
	args := m.Called(ctx, appt, oldStatus, reason)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func strPtr(s string) *string {
	return &s
}
