package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/domain"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/repository"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/service"
	apperrors "github.com/SHANTO612/poshur-sheba-hub-sub000/pkg/errors"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/pkg/httputil"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/pkg/middleware"
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

// nopPublisher discards all events; handler tests only care about HTTP behavior.
type nopPublisher struct{}

func (nopPublisher) PublishRatingSubmitted(context.Context, *domain.Rating, float64) error {
	return nil
}
func (nopPublisher) PublishRatingDeleted(context.Context, string, string, float64) error { return nil }
func (nopPublisher) PublishAccountDeleted(context.Context, string, string, string) error { return nil }
func (nopPublisher) PublishListingDeleted(context.Context, string, string) error         { return nil }
func (nopPublisher) PublishProductDeleted(context.Context, string, string) error         { return nil }
func (nopPublisher) PublishAppointmentBooked(context.Context, *domain.Appointment) error { return nil }
func (nopPublisher) PublishAppointmentStatusChanged(context.Context, *domain.Appointment, string, string) error {
	return nil
}

// --- Test Helpers ---

const (
	testProviderID  = "550e8400-e29b-41d4-a716-446655440001"
	testReviewerID  = "550e8400-e29b-41d4-a716-446655440002"
	testRatingID    = "550e8400-e29b-41d4-a716-446655440003"
	testAccountID   = "550e8400-e29b-41d4-a716-446655440004"
	testApptID      = "550e8400-e29b-41d4-a716-446655440005"
	testRequesterID = "550e8400-e29b-41d4-a716-446655440006"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// stubValidator trusts the token string as "<account-id>:<role>".
func stubValidator(token string) (*middleware.Claims, error) {
	for i := 0; i < len(token); i++ {
		if token[i] == ':' {
			return &middleware.Claims{AccountID: token[:i], Role: token[i+1:]}, nil
		}
	}
	return nil, apperrors.Unauthorized("malformed token")
}

type testEnv struct {
	accounts     *mockAccountRepository
	ratings      *mockRatingRepository
	appointments *mockAppointmentRepository
	router       http.Handler
}

// newTestEnv wires mock repositories through real services into a router that
// mirrors the production route layout, with a stub token validator.
func newTestEnv() *testEnv {
	logger := testLogger()
	accounts := new(mockAccountRepository)
	ratings := new(mockRatingRepository)
	appointments := new(mockAppointmentRepository)

	accountSvc := service.NewAccountService(accounts, nil, nopPublisher{}, logger)
	ratingSvc := service.NewRatingService(ratings, accounts, nopPublisher{}, logger)
	appointmentSvc := service.NewAppointmentService(appointments, accounts, nil, nopPublisher{}, logger)

	accountHandler := NewAccountHandler(accountSvc, logger)
	ratingHandler := NewRatingHandler(ratingSvc, logger)
	appointmentHandler := NewAppointmentHandler(appointmentSvc, logger)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/accounts", accountHandler.Register)
		r.Get("/accounts/{id}", accountHandler.GetAccount)
		r.Get("/providers", accountHandler.ListProviders)
		r.Get("/providers/{id}/ratings", ratingHandler.ListProviderRatings)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(stubValidator))

			r.Delete("/accounts/{id}", accountHandler.DeleteAccount)
			r.Post("/ratings", ratingHandler.SubmitRating)
			r.Delete("/ratings/{id}", ratingHandler.DeleteRating)
			r.Post("/appointments", appointmentHandler.Book)
			r.Get("/appointments", appointmentHandler.ListMine)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleVeterinarian))
				r.Put("/appointments/{id}/status", appointmentHandler.Transition)
				r.Get("/providers/{id}/stats", appointmentHandler.ProviderStats)
			})
		})
	})

	return &testEnv{
		accounts:     accounts,
		ratings:      ratings,
		appointments: appointments,
		router:       r,
	}
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

// --- Account Tests ---

func TestRegister_Created(t *testing.T) {
	env := newTestEnv()

	env.accounts.On("Create", mock.Anything, mock.AnythingOfType("*domain.Account")).Return(nil)

	rec := doJSON(t, env.router, http.MethodPost, "/api/v1/accounts", "", map[string]any{
		"email": "karim@example.com",
		"name":  "Karim Uddin",
		"role":  "farmer",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	env.accounts.AssertExpectations(t)
}

func TestRegister_ValidationError(t *testing.T) {
	env := newTestEnv()

	rec := doJSON(t, env.router, http.MethodPost, "/api/v1/accounts", "", map[string]any{
		"email": "not-an-email",
		"name":  "K",
		"role":  "wizard",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Fields, "Email")
	assert.Contains(t, resp.Error.Fields, "Role")
}

func TestRegister_DuplicateEmail_Conflict(t *testing.T) {
	env := newTestEnv()

	env.accounts.On("Create", mock.Anything, mock.AnythingOfType("*domain.Account")).
		Return(apperrors.AlreadyExists("account", "email", "karim@example.com"))

	rec := doJSON(t, env.router, http.MethodPost, "/api/v1/accounts", "", map[string]any{
		"email": "karim@example.com",
		"name":  "Karim Uddin",
		"role":  "farmer",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "ALREADY_EXISTS", resp.Error.Code)
}

func TestGetAccount_InvalidUUID(t *testing.T) {
	env := newTestEnv()

	rec := doJSON(t, env.router, http.MethodGet, "/api/v1/accounts/not-a-uuid", "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "INVALID_PARAMETER", resp.Error.Code)
}

func TestDeleteAccount_RequiresAuth(t *testing.T) {
	env := newTestEnv()

	rec := doJSON(t, env.router, http.MethodDelete, "/api/v1/accounts/"+testAccountID, "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDeleteAccount_ForbiddenForOtherAccount(t *testing.T) {
	env := newTestEnv()

	env.accounts.On("GetByID", mock.Anything, testAccountID).Return(&domain.Account{
		ID:   testAccountID,
		Role: domain.RoleFarmer,
	}, nil)

	rec := doJSON(t, env.router, http.MethodDelete, "/api/v1/accounts/"+testAccountID,
		testReviewerID+":farmer", nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteAccount_SelfDelete_NoContent(t *testing.T) {
	env := newTestEnv()

	env.accounts.On("GetByID", mock.Anything, testAccountID).Return(&domain.Account{
		ID:   testAccountID,
		Role: domain.RoleFarmer,
	}, nil)
	env.accounts.On("Delete", mock.Anything, testAccountID).Return(nil)

	rec := doJSON(t, env.router, http.MethodDelete, "/api/v1/accounts/"+testAccountID,
		testAccountID+":farmer", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	env.accounts.AssertExpectations(t)
}

// --- Rating Tests ---

func TestSubmitRating_Created_ReviewerFromToken(t *testing.T) {
	env := newTestEnv()

	env.accounts.On("GetByID", mock.Anything, testProviderID).Return(&domain.Account{
		ID:   testProviderID,
		Role: domain.RoleVeterinarian,
	}, nil)
	env.ratings.On("Upsert", mock.Anything, mock.MatchedBy(func(r *domain.Rating) bool {
		return r.ReviewerID == testReviewerID && r.ProviderID == testProviderID
	})).Return(nil)
	env.ratings.On("Summary", mock.Anything, testProviderID).Return(&domain.RatingSummary{
		ProviderID:   testProviderID,
		AverageScore: 4.0,
		TotalRatings: 1,
	}, nil)
	env.accounts.On("UpdateRating", mock.Anything, testProviderID, 4.0).Return(nil)

	rec := doJSON(t, env.router, http.MethodPost, "/api/v1/ratings",
		testReviewerID+":farmer", map[string]any{
			"provider_id": testProviderID,
			"score":       4,
			"experience":  "treated my cow quickly",
		})

	assert.Equal(t, http.StatusCreated, rec.Code)
	env.ratings.AssertExpectations(t)
}

func TestSubmitRating_SelfRating_BadRequest(t *testing.T) {
	env := newTestEnv()

	rec := doJSON(t, env.router, http.MethodPost, "/api/v1/ratings",
		testProviderID+":veterinarian", map[string]any{
			"provider_id": testProviderID,
			"score":       5,
			"experience":  "excellent",
		})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestSubmitRating_ScoreOutOfRange(t *testing.T) {
	env := newTestEnv()

	rec := doJSON(t, env.router, http.MethodPost, "/api/v1/ratings",
		testReviewerID+":farmer", map[string]any{
			"provider_id": testProviderID,
			"score":       9,
			"experience":  "great",
		})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteRating_Forbidden(t *testing.T) {
	env := newTestEnv()

	env.ratings.On("GetByID", mock.Anything, testRatingID).Return(&domain.Rating{
		ID:         testRatingID,
		ReviewerID: testReviewerID,
		ProviderID: testProviderID,
	}, nil)

	rec := doJSON(t, env.router, http.MethodDelete, "/api/v1/ratings/"+testRatingID,
		testAccountID+":buyer", nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListProviderRatings_Public(t *testing.T) {
	env := newTestEnv()

	env.ratings.On("List", mock.Anything, mock.AnythingOfType("repository.RatingFilter")).
		Return([]domain.Rating{{ID: testRatingID, ProviderID: testProviderID, Score: 5}}, 1, nil)
	env.ratings.On("Summary", mock.Anything, testProviderID).Return(&domain.RatingSummary{
		ProviderID:   testProviderID,
		AverageScore: 5.0,
		TotalRatings: 1,
	}, nil)

	rec := doJSON(t, env.router, http.MethodGet, "/api/v1/providers/"+testProviderID+"/ratings", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data    []domain.Rating       `json:"data"`
		Summary *domain.RatingSummary `json:"summary"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Len(t, body.Data, 1)
	require.NotNil(t, body.Summary)
	assert.Equal(t, 5.0, body.Summary.AverageScore)
}

// --- Appointment Tests ---

func TestBookAppointment_Created(t *testing.T) {
	env := newTestEnv()

	env.accounts.On("GetByID", mock.Anything, testProviderID).Return(&domain.Account{
		ID:   testProviderID,
		Role: domain.RoleVeterinarian,
	}, nil)
	env.appointments.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.Appointment) bool {
		return a.RequesterID == testRequesterID && a.Status == domain.AppointmentStatusPending
	})).Return(nil)

	rec := doJSON(t, env.router, http.MethodPost, "/api/v1/appointments",
		testRequesterID+":farmer", map[string]any{
			"provider_id":  testProviderID,
			"animal_type":  "cattle",
			"scheduled_at": "2026-09-03T10:00:00Z",
		})

	assert.Equal(t, http.StatusCreated, rec.Code)
	env.appointments.AssertExpectations(t)
}

func TestBookAppointment_InvalidAnimalType(t *testing.T) {
	env := newTestEnv()

	rec := doJSON(t, env.router, http.MethodPost, "/api/v1/appointments",
		testRequesterID+":farmer", map[string]any{
			"provider_id":  testProviderID,
			"animal_type":  "dragon",
			"scheduled_at": "2026-09-03T10:00:00Z",
		})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransition_RequiresVeterinarianRole(t *testing.T) {
	env := newTestEnv()

	rec := doJSON(t, env.router, http.MethodPut, "/api/v1/appointments/"+testApptID+"/status",
		testRequesterID+":farmer", map[string]any{"action": "confirm"})

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTransition_DoubleConfirm_Conflict(t *testing.T) {
	env := newTestEnv()

	env.appointments.On("GetByID", mock.Anything, testApptID).Return(&domain.Appointment{
		ID:         testApptID,
		ProviderID: testProviderID,
		Status:     domain.AppointmentStatusConfirmed,
	}, nil)

	rec := doJSON(t, env.router, http.MethodPut, "/api/v1/appointments/"+testApptID+"/status",
		testProviderID+":veterinarian", map[string]any{"action": "confirm"})

	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "INVALID_TRANSITION", resp.Error.Code)
}

func TestTransition_CancelWithoutReason_BadRequest(t *testing.T) {
	env := newTestEnv()

	env.appointments.On("GetByID", mock.Anything, testApptID).Return(&domain.Appointment{
		ID:         testApptID,
		ProviderID: testProviderID,
		Status:     domain.AppointmentStatusPending,
	}, nil)

	rec := doJSON(t, env.router, http.MethodPut, "/api/v1/appointments/"+testApptID+"/status",
		testProviderID+":veterinarian", map[string]any{"action": "cancel"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProviderStats_OK(t *testing.T) {
	env := newTestEnv()

	env.appointments.On("Stats", mock.Anything, testProviderID, mock.AnythingOfType("time.Time")).
		Return(&repository.AppointmentStats{Today: 1, ThisWeek: 4, DistinctPatients: 3, Pending: 2}, nil)

	rec := doJSON(t, env.router, http.MethodGet, "/api/v1/providers/"+testProviderID+"/stats",
		testProviderID+":veterinarian", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

// --- Middleware Tests ---

func TestContentTypeJSON_Rejected(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", bytes.NewBufferString("email=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}
