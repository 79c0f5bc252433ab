package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/domain"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/service"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/pkg/httputil"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/pkg/validator"
)

// AppointmentHandler handles HTTP requests for appointment endpoints.
type AppointmentHandler struct {
	service *service.AppointmentService
	logger  *slog.Logger
}

// NewAppointmentHandler creates a new appointment HTTP handler.
func NewAppointmentHandler(svc *service.AppointmentService, logger *slog.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// BookAppointmentRequest is the JSON request body for booking an appointment.
// The requester is always the authenticated actor.
type BookAppointmentRequest struct {
	ProviderID  string    `json:"provider_id" validate:"required,uuid"`
	AnimalType  string    `json:"animal_type" validate:"required,oneof=cattle goat sheep poultry other"`
	Urgency     string    `json:"urgency" validate:"omitempty,oneof=emergency urgent normal"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
}

// TransitionRequest is the JSON request body for an appointment status change.
type TransitionRequest struct {
	Action string `json:"action" validate:"required,oneof=confirm complete cancel"`
	Reason string `json:"reason" validate:"omitempty,max=1000"`
}

// --- Handlers ---

// Book handles POST /api/v1/appointments
func (h *AppointmentHandler) Book(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req BookAppointmentRequest
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

	appt, err := h.service.Book(r.Context(), service.BookInput{
		ProviderID:  req.ProviderID,
		RequesterID: actorFromRequest(r).ID,
		AnimalType:  req.AnimalType,
		Urgency:     req.Urgency,
		ScheduledAt: req.ScheduledAt,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: appt})
}

// GetAppointment handles GET /api/v1/appointments/{id}
func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	appt, err := h.service.GetAppointment(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: appt})
}

// Transition handles PUT /api/v1/appointments/{id}/status
func (h *AppointmentHandler) Transition(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req TransitionRequest
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

	appt, err := h.service.Transition(r.Context(), service.TransitionInput{
		AppointmentID: id.String(),
		Action:        req.Action,
		Reason:        req.Reason,
	}, actorFromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: appt})
}

// ListMine handles GET /api/v1/appointments. Providers see appointments
// assigned to them; everyone else sees appointments they requested.
func (h *AppointmentHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	page, perPage, ok := parsePagination(w, r)
	if !ok {
		return
	}

	var status *string
	if v := r.URL.Query().Get("status"); v != "" {
		status = &v
	}

	actor := actorFromRequest(r)

	var (
		appointments []domain.Appointment
		total        int
		err          error
	)
	if r.URL.Query().Get("as") == "provider" {
		appointments, total, err = h.service.ListForProvider(r.Context(), actor.ID, status, page, perPage)
	} else {
		appointments, total, err = h.service.ListForRequester(r.Context(), actor.ID, status, page, perPage)
	}
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(appointments, total, page, perPage))
}

// ProviderStats handles GET /api/v1/providers/{id}/stats
func (h *AppointmentHandler) ProviderStats(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	stats, err := h.service.ProviderStats(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: stats})
}
