package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/domain"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/repository"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/pkg/database"
	apperrors "github.com/SHANTO612/poshur-sheba-hub-sub000/pkg/errors"
)

// AppointmentRepository implements repository.AppointmentRepository using PostgreSQL.
type AppointmentRepository struct {
	pool database.DBTX
}

// NewAppointmentRepository creates a new PostgreSQL-backed appointment repository.
func NewAppointmentRepository(pool database.DBTX) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

// Create inserts a new appointment.
func (r *AppointmentRepository) Create(ctx context.Context, a *domain.Appointment) error {
	query := `
		INSERT INTO appointments (id, provider_id, requester_id, animal_type, urgency, scheduled_at, status, cancel_reason, provider_notes, confirmed_at, completed_at, cancelled_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.pool.Exec(ctx, query,
		a.ID,
		a.ProviderID,
		a.RequesterID,
		a.AnimalType,
		a.Urgency,
		a.ScheduledAt,
		a.Status,
		a.CancelReason,
		a.ProviderNotes,
		a.ConfirmedAt,
		a.CompletedAt,
		a.CancelledAt,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}

	return nil
}

// GetByID retrieves an appointment by its ID.
func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	query := `
		SELECT id, provider_id, requester_id, animal_type, urgency, scheduled_at, status, cancel_reason, provider_notes, confirmed_at, completed_at, cancelled_at, created_at, updated_at
		FROM appointments
		WHERE id = $1`

	var a domain.Appointment
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID,
		&a.ProviderID,
		&a.RequesterID,
		&a.AnimalType,
		&a.Urgency,
		&a.ScheduledAt,
		&a.Status,
		&a.CancelReason,
		&a.ProviderNotes,
		&a.ConfirmedAt,
		&a.CompletedAt,
		&a.CancelledAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan appointment: %w", err)
	}

	return &a, nil
}

// List returns appointments matching the given filter with the total count.
func (r *AppointmentRepository) List(ctx context.Context, filter repository.AppointmentFilter) ([]domain.Appointment, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.ProviderID != nil {
		conditions = append(conditions, fmt.Sprintf("provider_id = $%d", argIndex))
		args = append(args, *filter.ProviderID)
		argIndex++
	}

	if filter.RequesterID != nil {
		conditions = append(conditions, fmt.Sprintf("requester_id = $%d", argIndex))
		args = append(args, *filter.RequesterID)
		argIndex++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT id, provider_id, requester_id, animal_type, urgency, scheduled_at, status, cancel_reason, provider_notes, confirmed_at, completed_at, cancelled_at, created_at, updated_at,
			   count(*) OVER() AS total_count
		FROM appointments
		%s
		ORDER BY scheduled_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var totalCount int
	appointments := make([]domain.Appointment, 0)

	for rows.Next() {
		var a domain.Appointment
		if err := rows.Scan(
			&a.ID,
			&a.ProviderID,
			&a.RequesterID,
			&a.AnimalType,
			&a.Urgency,
			&a.ScheduledAt,
			&a.Status,
			&a.CancelReason,
			&a.ProviderNotes,
			&a.ConfirmedAt,
			&a.CompletedAt,
			&a.CancelledAt,
			&a.CreatedAt,
			&a.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan appointment row: %w", err)
		}
		appointments = append(appointments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate appointment rows: %w", err)
	}

	return appointments, totalCount, nil
}

// UpdateStatus changes the status of an appointment, sets the matching
// transition timestamp, and optionally records a cancel reason.
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id string, status string, reason string, at time.Time) error {
	var tsColumn string
	switch status {
	case domain.AppointmentStatusConfirmed:
		tsColumn = "confirmed_at"
	case domain.AppointmentStatusCompleted:
		tsColumn = "completed_at"
	case domain.AppointmentStatusCancelled:
		tsColumn = "cancelled_at"
	default:
		return fmt.Errorf("no transition timestamp for status %q", status)
	}

	query := fmt.Sprintf(`
		UPDATE appointments
		SET status = $1, cancel_reason = $2, %s = $3, updated_at = $3
		WHERE id = $4`, tsColumn)

	ct, err := r.pool.Exec(ctx, query, status, reason, at, id)
	if err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("appointment", id)
	}

	return nil
}

// Stats computes derived counts for a provider's appointment set. The today
// and this-week windows are anchored on now in UTC; the week starts Monday.
func (r *AppointmentRepository) Stats(ctx context.Context, providerID string, now time.Time) (*repository.AppointmentStats, error) {
	now = now.UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	weekStart := dayStart.AddDate(0, 0, -(weekday - 1))

	query := `
		SELECT
			COUNT(*) FILTER (WHERE scheduled_at >= $2 AND scheduled_at < $3),
			COUNT(*) FILTER (WHERE scheduled_at >= $4 AND scheduled_at < $5),
			COUNT(DISTINCT requester_id),
			COUNT(*) FILTER (WHERE status = $6)
		FROM appointments
		WHERE provider_id = $1`

	var stats repository.AppointmentStats
	err := r.pool.QueryRow(ctx, query,
		providerID,
		dayStart, dayStart.AddDate(0, 0, 1),
		weekStart, weekStart.AddDate(0, 0, 7),
		domain.AppointmentStatusPending,
	).Scan(&stats.Today, &stats.ThisWeek, &stats.DistinctPatients, &stats.Pending)
	if err != nil {
		return nil, fmt.Errorf("appointment stats: %w", err)
	}

	return &stats, nil
}
