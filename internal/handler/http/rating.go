package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/domain"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/service"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/pkg/httputil"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/pkg/validator"
)

// RatingHandler handles HTTP requests for rating endpoints.
type RatingHandler struct {
	service *service.RatingService
	logger  *slog.Logger
}

// NewRatingHandler creates a new rating HTTP handler.
func NewRatingHandler(svc *service.RatingService, logger *slog.Logger) *RatingHandler {
	return &RatingHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// SubmitRatingRequest is the JSON request body for submitting a rating.
// The reviewer is always the authenticated actor, never a request field.
type SubmitRatingRequest struct {
	ProviderID string `json:"provider_id" validate:"required,uuid"`
	Score      int    `json:"score" validate:"required,gte=1,lte=5"`
	Review     string `json:"review" validate:"omitempty,max=2000"`
	Experience string `json:"experience" validate:"required,max=2000"`
}

// --- Handlers ---

// SubmitRating handles POST /api/v1/ratings
func (h *RatingHandler) SubmitRating(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req SubmitRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	rating, err := h.service.SubmitRating(r.Context(), service.SubmitRatingInput{
		ReviewerID: actorFromRequest(r).ID,
		ProviderID: req.ProviderID,
		Score:      req.Score,
		Review:     req.Review,
		Experience: req.Experience,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: rating})
}

// ListProviderRatings handles GET /api/v1/providers/{id}/ratings
func (h *RatingHandler) ListProviderRatings(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	page, perPage, ok := parsePagination(w, r)
	if !ok {
		return
	}

	ratings, summary, total, err := h.service.ListProviderRatings(r.Context(), id.String(), page, perPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	resp := struct {
		httputil.PaginatedResponse[domain.Rating]
		Summary *domain.RatingSummary `json:"summary"`
	}{httputil.NewPaginatedResponse(ratings, total, page, perPage), summary}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// DeleteRating handles DELETE /api/v1/ratings/{id}
func (h *RatingHandler) DeleteRating(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteRating(r.Context(), id.String(), actorFromRequest(r)); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
