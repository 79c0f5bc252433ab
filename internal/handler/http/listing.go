package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/domain"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/repository"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/service"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/pkg/httputil"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/pkg/validator"
)

// ListingHandler handles HTTP requests for livestock listing endpoints.
type ListingHandler struct {
	service *service.ListingService
	logger  *slog.Logger
}

// NewListingHandler creates a new listing HTTP handler.
func NewListingHandler(svc *service.ListingService, logger *slog.Logger) *ListingHandler {
	return &ListingHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// ImageRefRequest is the JSON shape for an image reference.
type ImageRefRequest struct {
	URL     string `json:"url" validate:"required,url"`
	AssetID string `json:"asset_id" validate:"omitempty,max=100"`
}

// CreateListingRequest is the JSON request body for creating a listing.
type CreateListingRequest struct {
	Title       string            `json:"title" validate:"required,min=3,max=200"`
	Description string            `json:"description" validate:"omitempty,max=5000"`
	Category    string            `json:"category" validate:"omitempty,max=50"`
	Price       int64             `json:"price" validate:"required,gte=0"`
	Images      []ImageRefRequest `json:"images" validate:"omitempty,max=10,dive"`
}

// --- Handlers ---

// CreateListing handles POST /api/v1/listings
func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateListingRequest
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

	listing, err := h.service.CreateListing(r.Context(), service.CreateListingInput{
		SellerID:    actorFromRequest(r).ID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Images:      toImageRefs(req.Images),
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: listing})
}

// ListListings handles GET /api/v1/listings
func (h *ListingHandler) ListListings(w http.ResponseWriter, r *http.Request) {
	page, perPage, ok := parsePagination(w, r)
	if !ok {
		return
	}

	filter := repository.ListingFilter{Page: page, PerPage: perPage}
	if v := r.URL.Query().Get("seller_id"); v != "" {
		filter.SellerID = &v
	}
	if v := r.URL.Query().Get("category"); v != "" {
		filter.Category = &v
	}

	listings, total, err := h.service.ListListings(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(listings, total, page, perPage))
}

// GetListing handles GET /api/v1/listings/{id}
func (h *ListingHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	listing, err := h.service.GetListing(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: listing})
}

// DeleteListing handles DELETE /api/v1/listings/{id}
func (h *ListingHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteListing(r.Context(), id.String(), actorFromRequest(r)); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toImageRefs converts request image refs to domain image refs.
func toImageRefs(reqs []ImageRefRequest) []domain.ImageRef {
	if len(reqs) == 0 {
		return nil
	}
	refs := make([]domain.ImageRef, len(reqs))
	for i, r := range reqs {
		refs[i] = domain.ImageRef{URL: r.URL, AssetID: r.AssetID}
	}
	return refs
}
