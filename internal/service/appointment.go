package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/cache"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/domain"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/event"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/repository"
	apperrors "github.com/SHANTO612/poshur-sheba-hub-sub000/pkg/errors"
)

// AppointmentService implements appointment booking, the status state machine,
// and provider dashboard statistics.
type AppointmentService struct {
	appointments repository.AppointmentRepository
	accounts     repository.AccountRepository
	stats        *cache.StatsCache
	producer     event.Publisher
	logger       *slog.Logger
	nowFunc      func() time.Time
}

// NewAppointmentService creates a new appointment service.
func NewAppointmentService(appointments repository.AppointmentRepository, accounts repository.AccountRepository, stats *cache.StatsCache, producer event.Publisher, logger *slog.Logger) *AppointmentService {
	return &AppointmentService{
		appointments: appointments,
		accounts:     accounts,
		stats:        stats,
		producer:     producer,
		logger:       logger,
		nowFunc:      func() time.Time { return time.Now().UTC() },
	}
}

// BookInput holds the parameters for booking an appointment.
type BookInput struct {
	ProviderID  string
	RequesterID string
	AnimalType  string
	Urgency     string
	ScheduledAt time.Time
}

// Book creates a pending appointment with a veterinarian provider.
func (s *AppointmentService) Book(ctx context.Context, input BookInput) (*domain.Appointment, error) {
	if input.ProviderID == "" {
		return nil, apperrors.InvalidInput("provider_id is required")
	}
	if input.RequesterID == "" {
		return nil, apperrors.InvalidInput("requester_id is required")
	}
	if !domain.IsValidAnimalType(input.AnimalType) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid animal type %q", input.AnimalType))
	}
	if input.ScheduledAt.IsZero() {
		return nil, apperrors.InvalidInput("scheduled_at is required")
	}

	urgency := input.Urgency
	if urgency == "" {
		urgency = domain.UrgencyNormal
	}
	if !domain.IsValidUrgency(urgency) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid urgency %q", urgency))
	}

	provider, err := s.accounts.GetByID(ctx, input.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("resolve provider: %w", err)
	}
	if !provider.IsProvider() {
		return nil, apperrors.InvalidInput("appointments can only be booked with veterinarians")
	}

	now := s.nowFunc()
	appt := &domain.Appointment{
		ID:          uuid.New().String(),
		ProviderID:  input.ProviderID,
		RequesterID: input.RequesterID,
		AnimalType:  input.AnimalType,
		Urgency:     urgency,
		ScheduledAt: input.ScheduledAt.UTC(),
		Status:      domain.AppointmentStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.appointments.Create(ctx, appt); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	s.invalidateStats(ctx, appt.ProviderID)

	if err := s.producer.PublishAppointmentBooked(ctx, appt); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish appointment.booked event",
			slog.String("appointment_id", appt.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "appointment booked",
		slog.String("appointment_id", appt.ID),
		slog.String("provider_id", appt.ProviderID),
		slog.String("urgency", appt.Urgency),
	)

	return appt, nil
}

// GetAppointment retrieves an appointment by ID.
func (s *AppointmentService) GetAppointment(ctx context.Context, id string) (*domain.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment by id: %w", err)
	}
	return appt, nil
}

// TransitionInput holds the parameters for an appointment status change.
type TransitionInput struct {
	AppointmentID string
	Action        string
	Reason        string
}

// Transition applies an action (confirm, complete, cancel) to an appointment.
// Only the assigned provider may transition; cancelling requires a reason.
// Legality comes from the status transition table, so a repeated or
// out-of-order action fails with a conflict rather than silently re-applying.
func (s *AppointmentService) Transition(ctx context.Context, input TransitionInput, actor Actor) (*domain.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, input.AppointmentID)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}

	if actor.ID != appt.ProviderID {
		return nil, apperrors.Forbidden("only the assigned provider can update this appointment")
	}

	next, ok := appt.NextStatus(input.Action)
	if !ok {
		return nil, apperrors.InvalidTransition(
			fmt.Sprintf("cannot %s an appointment in status %q", input.Action, appt.Status))
	}

	reason := strings.TrimSpace(input.Reason)
	if next == domain.AppointmentStatusCancelled && reason == "" {
		return nil, apperrors.InvalidInput("a cancel reason is required")
	}
	if next != domain.AppointmentStatusCancelled {
		reason = ""
	}

	now := s.nowFunc()
	if err := s.appointments.UpdateStatus(ctx, appt.ID, next, reason, now); err != nil {
		return nil, fmt.Errorf("update appointment status: %w", err)
	}

	oldStatus := appt.Status
	appt.Status = next
	appt.UpdatedAt = now
	switch next {
	case domain.AppointmentStatusConfirmed:
		appt.ConfirmedAt = &now
	case domain.AppointmentStatusCompleted:
		appt.CompletedAt = &now
	case domain.AppointmentStatusCancelled:
		appt.CancelledAt = &now
		appt.CancelReason = reason
	}

	s.invalidateStats(ctx, appt.ProviderID)

	if err := s.producer.PublishAppointmentStatusChanged(ctx, appt, oldStatus, reason); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish appointment.status_changed event",
			slog.String("appointment_id", appt.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "appointment status changed",
		slog.String("appointment_id", appt.ID),
		slog.String("old_status", oldStatus),
		slog.String("new_status", next),
	)

	return appt, nil
}

// ListForProvider returns a provider's appointments, optionally filtered by status.
func (s *AppointmentService) ListForProvider(ctx context.Context, providerID string, status *string, page, perPage int) ([]domain.Appointment, int, error) {
	return s.list(ctx, repository.AppointmentFilter{
		ProviderID: &providerID,
		Status:     status,
		Page:       page,
		PerPage:    perPage,
	})
}

// ListForRequester returns a requester's appointments, optionally filtered by status.
func (s *AppointmentService) ListForRequester(ctx context.Context, requesterID string, status *string, page, perPage int) ([]domain.Appointment, int, error) {
	return s.list(ctx, repository.AppointmentFilter{
		RequesterID: &requesterID,
		Status:      status,
		Page:        page,
		PerPage:     perPage,
	})
}

func (s *AppointmentService) list(ctx context.Context, filter repository.AppointmentFilter) ([]domain.Appointment, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}
	if filter.Status != nil && !domain.IsValidAppointmentStatus(*filter.Status) {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("invalid status %q", *filter.Status))
	}

	appointments, total, err := s.appointments.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}

	return appointments, total, nil
}

// ProviderStats returns the provider's dashboard counts, served from the Redis
// cache when fresh. A cache read failure falls through to the database.
func (s *AppointmentService) ProviderStats(ctx context.Context, providerID string) (*repository.AppointmentStats, error) {
	if s.stats != nil {
		stats, err := s.stats.Get(ctx, providerID)
		if err == nil {
			return stats, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.WarnContext(ctx, "provider stats cache read failed",
				slog.String("provider_id", providerID),
				slog.String("error", err.Error()),
			)
		}
	}

	stats, err := s.appointments.Stats(ctx, providerID, s.nowFunc())
	if err != nil {
		return nil, fmt.Errorf("compute provider stats: %w", err)
	}

	if s.stats != nil {
		if err := s.stats.Set(ctx, providerID, stats); err != nil {
			s.logger.WarnContext(ctx, "provider stats cache write failed",
				slog.String("provider_id", providerID),
				slog.String("error", err.Error()),
			)
		}
	}

	return stats, nil
}

func (s *AppointmentService) invalidateStats(ctx context.Context, providerID string) {
	if s.stats == nil {
		return
	}
	if err := s.stats.Invalidate(ctx, providerID); err != nil {
		s.logger.WarnContext(ctx, "provider stats cache invalidation failed",
			slog.String("provider_id", providerID),
			slog.String("error", err.Error()),
		)
	}
}
