package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/domain"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/pkg/database"
	apperrors "github.com/SHANTO612/poshur-sheba-hub-sub000/pkg/errors"
)

func newTestListingRepo(t *testing.T) (*ListingRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return NewListingRepository(mock), mock
}

func sampleListing() *domain.Listing {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Listing{
		ID:          "listing-001",
		SellerID:    "acct-seller-01",
		Title:       "Holstein dairy cow",
		Description: "3 years old, healthy",
		Category:    "cattle",
		Price:       8500000,
		Images: []domain.ImageRef{
			{URL: "https://assets.example.com/img-1.jpg", AssetID: "asset-1"},
			{URL: "https://assets.example.com/img-2.jpg", AssetID: "asset-2"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestListingRepository_Create_Success(t *testing.T) {
	repo, mock := newTestListingRepo(t)

	l := sampleListing()

	mock.ExpectExec("INSERT INTO listings").
		WithArgs(
			l.ID, l.SellerID, l.Title, l.Description, l.Category, l.Price,
			pgxmock.AnyArg(), // images JSON
			l.CreatedAt, l.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), l)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_GetByID_Success(t *testing.T) {
	repo, mock := newTestListingRepo(t)

	l := sampleListing()
	imagesJSON, err := json.Marshal(l.Images)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT (.+) FROM listings").
		WithArgs(l.ID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "seller_id", "title", "description", "category", "price", "images", "created_at", "updated_at"}).
			AddRow(l.ID, l.SellerID, l.Title, l.Description, l.Category, l.Price, imagesJSON, l.CreatedAt, l.UpdatedAt))

	got, err := repo.GetByID(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, l.Title, got.Title)
	require.Len(t, got.Images, 2)
	assert.Equal(t, "asset-1", got.Images[0].AssetID)
}

func TestListingRepository_GetByID_NullImages(t *testing.T) {
	repo, mock := newTestListingRepo(t)

	l := sampleListing()

	mock.ExpectQuery("SELECT (.+) FROM listings").
		WithArgs(l.ID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "seller_id", "title", "description", "category", "price", "images", "created_at", "updated_at"}).
			AddRow(l.ID, l.SellerID, l.Title, l.Description, l.Category, l.Price, []byte(nil), l.CreatedAt, l.UpdatedAt))

	got, err := repo.GetByID(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Images)
}

func TestListingRepository_Delete_NotFound(t *testing.T) {
	repo, mock := newTestListingRepo(t)

	mock.ExpectExec("DELETE FROM listings").
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListingRepository_DeleteBySeller_ReturnsImageRefs(t *testing.T) {
	repo, mock := newTestListingRepo(t)

	imgs1, _ := json.Marshal([]domain.ImageRef{{URL: "u1", AssetID: "a1"}})
	imgs2, _ := json.Marshal([]domain.ImageRef{{URL: "u2", AssetID: "a2"}, {URL: "u3", AssetID: "a3"}})

	mock.ExpectQuery("DELETE FROM listings").
		WithArgs("acct-seller-01").
		WillReturnRows(pgxmock.NewRows([]string{"images"}).
			AddRow(imgs1).
			AddRow(imgs2))

	refs, err := repo.DeleteBySeller(context.Background(), "acct-seller-01")
	require.NoError(t, err)
	require.Len(t, refs, 3)
	assert.Equal(t, "a1", refs[0].AssetID)
	assert.Equal(t, "a3", refs[2].AssetID)
}

func TestListingRepository_DeleteBySeller_NoListings(t *testing.T) {
	repo, mock := newTestListingRepo(t)

	mock.ExpectQuery("DELETE FROM listings").
		WithArgs("acct-seller-01").
		WillReturnRows(pgxmock.NewRows([]string{"images"}))

	refs, err := repo.DeleteBySeller(context.Background(), "acct-seller-01")
	require.NoError(t, err)
	assert.Empty(t, refs)
}
