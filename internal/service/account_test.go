package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/domain"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/repository"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/storage"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/storage/memory"
	apperrors "github.com/SHANTO612/poshur-sheba-hub-sub000/pkg/errors"
)

func TestRegister_Success(t *testing.T) {
	accounts := new(mockAccountRepository)
	svc := NewAccountService(accounts, nil, new(mockPublisher), newTestLogger())
	ctx := context.Background()

	accounts.On("Create", ctx, mock.AnythingOfType("*domain.Account")).Return(nil)

	account, err := svc.Register(ctx, RegisterInput{
		Email: "  Karim@Example.COM ",
		Name:  "Karim Uddin",
		Phone: "+8801712345678",
		Role:  domain.RoleFarmer,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, account.ID)
	assert.Equal(t, "karim@example.com", account.Email)
	assert.Equal(t, domain.RoleFarmer, account.Role)
	assert.Zero(t, account.Rating)
	accounts.AssertExpectations(t)
}

func TestRegister_InvalidRole(t *testing.T) {
	svc := NewAccountService(new(mockAccountRepository), nil, new(mockPublisher), newTestLogger())

	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "x@example.com",
		Name:  "X",
		Role:  "wizard",
	})

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	accounts := new(mockAccountRepository)
	svc := NewAccountService(accounts, nil, new(mockPublisher), newTestLogger())
	ctx := context.Background()

	accounts.On("Create", ctx, mock.AnythingOfType("*domain.Account")).
		Return(apperrors.AlreadyExists("account", "email", "karim@example.com"))

	_, err := svc.Register(ctx, RegisterInput{
		Email: "karim@example.com",
		Name:  "Karim",
		Role:  domain.RoleFarmer,
	})

	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestListProviders_FiltersByVeterinarianRole(t *testing.T) {
	accounts := new(mockAccountRepository)
	svc := NewAccountService(accounts, nil, new(mockPublisher), newTestLogger())
	ctx := context.Background()

	accounts.On("List", ctx, mock.MatchedBy(func(f repository.AccountFilter) bool {
		return f.Role != nil && *f.Role == domain.RoleVeterinarian
	})).Return([]domain.Account{{ID: "vet-1", Role: domain.RoleVeterinarian}}, 1, nil)

	providers, total, err := svc.ListProviders(ctx, 1, 20)

	require.NoError(t, err)
	assert.Len(t, providers, 1)
	assert.Equal(t, 1, total)
}

func TestDeleteAccount_CascadeRemovesAllDependents(t *testing.T) {
	accounts := new(mockAccountRepository)
	ratings := new(mockRatingRepository)
	listings := new(mockListingRepository)
	products := new(mockProductRepository)
	producer := new(mockPublisher)
	assets := memory.New("http://assets.local")
	logger := newTestLogger()
	ctx := context.Background()

	ratingSvc := NewRatingService(ratings, accounts, producer, logger)
	deleters := []CascadeDeleter{
		NewListingCascadeDeleter(listings, assets, logger),
		NewProductCascadeDeleter(products, assets, logger),
		NewRatingCascadeDeleter(ratings, ratingSvc, logger),
	}
	svc := NewAccountService(accounts, deleters, producer, logger)

	// Seed assets owned by the account's listings and products.
	_, err := assets.Store(ctx, &storage.StoreInput{AssetID: "asset-l1", ContentType: "image/jpeg"})
	require.NoError(t, err)
	_, err = assets.Store(ctx, &storage.StoreInput{AssetID: "asset-p1", ContentType: "image/jpeg"})
	require.NoError(t, err)
	require.Equal(t, 2, assets.Len())

	accounts.On("GetByID", ctx, "vet-1").Return(&domain.Account{
		ID:   "vet-1",
		Role: domain.RoleVeterinarian,
	}, nil)
	listings.On("DeleteBySeller", ctx, "vet-1").Return([]domain.ImageRef{
		{URL: "http://assets.local/assets/asset-l1", AssetID: "asset-l1"},
	}, nil)
	products.On("DeleteBySeller", ctx, "vet-1").Return([]domain.ImageRef{
		{URL: "http://assets.local/assets/asset-p1", AssetID: "asset-p1"},
	}, nil)
	// Removing the vet's ratings changes another provider's rating set.
	ratings.On("DeleteByParticipant", ctx, "vet-1").Return([]string{"vet-2"}, nil)
	ratings.On("Summary", ctx, "vet-2").Return(&domain.RatingSummary{AverageScore: 3.5, TotalRatings: 2}, nil)
	accounts.On("UpdateRating", ctx, "vet-2", 3.5).Return(nil)
	accounts.On("Delete", ctx, "vet-1").Return(nil)
	producer.On("PublishAccountDeleted", ctx, "vet-1", domain.RoleVeterinarian, "admin-1").Return(nil)

	err = svc.DeleteAccount(ctx, "vet-1", Actor{ID: "admin-1", Role: domain.RoleAdmin})

	require.NoError(t, err)
	assert.Equal(t, 0, assets.Len(), "all stored assets should be cleaned up")
	accounts.AssertCalled(t, "Delete", ctx, "vet-1")
	accounts.AssertCalled(t, "UpdateRating", ctx, "vet-2", 3.5)
	listings.AssertExpectations(t)
	products.AssertExpectations(t)
	ratings.AssertExpectations(t)
}

func TestDeleteAccount_DependentFailureDoesNotBlock(t *testing.T) {
	accounts := new(mockAccountRepository)
	listings := new(mockListingRepository)
	products := new(mockProductRepository)
	producer := new(mockPublisher)
	assets := memory.New("http://assets.local")
	logger := newTestLogger()
	ctx := context.Background()

	deleters := []CascadeDeleter{
		NewListingCascadeDeleter(listings, assets, logger),
		NewProductCascadeDeleter(products, assets, logger),
	}
	svc := NewAccountService(accounts, deleters, producer, logger)

	accounts.On("GetByID", ctx, "seller-1").Return(&domain.Account{
		ID:   "seller-1",
		Role: domain.RoleSeller,
	}, nil)
	listings.On("DeleteBySeller", ctx, "seller-1").Return(nil, errors.New("db timeout"))
	products.On("DeleteBySeller", ctx, "seller-1").Return([]domain.ImageRef{}, nil)
	accounts.On("Delete", ctx, "seller-1").Return(nil)
	producer.On("PublishAccountDeleted", ctx, "seller-1", domain.RoleSeller, "seller-1").Return(nil)

	err := svc.DeleteAccount(ctx, "seller-1", Actor{ID: "seller-1", Role: domain.RoleSeller})

	require.NoError(t, err)
	accounts.AssertCalled(t, "Delete", ctx, "seller-1")
	products.AssertExpectations(t)
}

func TestDeleteAccount_Forbidden(t *testing.T) {
	accounts := new(mockAccountRepository)
	svc := NewAccountService(accounts, nil, new(mockPublisher), newTestLogger())
	ctx := context.Background()

	accounts.On("GetByID", ctx, "farmer-1").Return(&domain.Account{
		ID:   "farmer-1",
		Role: domain.RoleFarmer,
	}, nil)

	err := svc.DeleteAccount(ctx, "farmer-1", Actor{ID: "farmer-2", Role: domain.RoleFarmer})

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	accounts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteAccount_AdminCannotDeleteOtherAdmin(t *testing.T) {
	accounts := new(mockAccountRepository)
	svc := NewAccountService(accounts, nil, new(mockPublisher), newTestLogger())
	ctx := context.Background()

	accounts.On("GetByID", ctx, "admin-2").Return(&domain.Account{
		ID:   "admin-2",
		Role: domain.RoleAdmin,
	}, nil)

	err := svc.DeleteAccount(ctx, "admin-2", Actor{ID: "admin-1", Role: domain.RoleAdmin})

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestDeleteAccount_SelfDeleteAllowed(t *testing.T) {
	accounts := new(mockAccountRepository)
	producer := new(mockPublisher)
	svc := NewAccountService(accounts, nil, producer, newTestLogger())
	ctx := context.Background()

	accounts.On("GetByID", ctx, "buyer-1").Return(&domain.Account{
		ID:   "buyer-1",
		Role: domain.RoleBuyer,
	}, nil)
	accounts.On("Delete", ctx, "buyer-1").Return(nil)
	producer.On("PublishAccountDeleted", ctx, "buyer-1", domain.RoleBuyer, "buyer-1").Return(nil)

	err := svc.DeleteAccount(ctx, "buyer-1", Actor{ID: "buyer-1", Role: domain.RoleBuyer})

	require.NoError(t, err)
	accounts.AssertExpectations(t)
}
