package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/SHANTO612/poshur-sheba-hub-sub000/pkg/kafka"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/domain"
)

// Kafka topic constants for marketplace domain events.
const (
	TopicRatingSubmitted          = "poshursheba.rating.submitted"
	TopicRatingDeleted            = "poshursheba.rating.deleted"
	TopicAccountDeleted           = "poshursheba.account.deleted"
	TopicListingDeleted           = "poshursheba.listing.deleted"
	TopicProductDeleted           = "poshursheba.product.deleted"
	TopicAppointmentBooked        = "poshursheba.appointment.booked"
	TopicAppointmentStatusChanged = "poshursheba.appointment.status_changed"
)

// Aggregate type constants.
const (
	AggregateTypeRating      = "rating"
	AggregateTypeAccount     = "account"
	AggregateTypeListing     = "listing"
	AggregateTypeProduct     = "product"
	AggregateTypeAppointment = "appointment"
)

// Source identifier for events originating from this service.
const SourceMarketplaceCore = "marketplace-core"

// RatingSubmittedData is the payload for a rating.submitted event.
type RatingSubmittedData struct {
	RatingID     string  `json:"rating_id"`
	ReviewerID   string  `json:"reviewer_id"`
	ProviderID   string  `json:"provider_id"`
	Score        int     `json:"score"`
	NewAggregate float64 `json:"new_aggregate"`
}

// RatingDeletedData is the payload for a rating.deleted event.
type RatingDeletedData struct {
	RatingID     string  `json:"rating_id"`
	ProviderID   string  `json:"provider_id"`
	NewAggregate float64 `json:"new_aggregate"`
}

// AccountDeletedData is the payload for an account.deleted event.
type AccountDeletedData struct {
	AccountID string `json:"account_id"`
	Role      string `json:"role"`
	ActorID   string `json:"actor_id"`
}

// EntityDeletedData is the payload for listing.deleted and product.deleted events.
type EntityDeletedData struct {
	ID       string `json:"id"`
	SellerID string `json:"seller_id"`
}

// AppointmentBookedData is the payload for an appointment.booked event.
type AppointmentBookedData struct {
	AppointmentID string `json:"appointment_id"`
	ProviderID    string `json:"provider_id"`
	RequesterID   string `json:"requester_id"`
	AnimalType    string `json:"animal_type"`
	Urgency       string `json:"urgency"`
	ScheduledAt   string `json:"scheduled_at"`
}

// AppointmentStatusChangedData is the payload for an appointment.status_changed event.
type AppointmentStatusChangedData struct {
	AppointmentID string `json:"appointment_id"`
	ProviderID    string `json:"provider_id"`
	OldStatus     string `json:"old_status"`
	NewStatus     string `json:"new_status"`
	Reason        string `json:"reason,omitempty"`
}

// Publisher is the interface services use to emit domain events. Publishing
// failures never abort a committed mutation; services log and continue.
type Publisher interface {
	PublishRatingSubmitted(ctx context.Context, rating *domain.Rating, newAggregate float64) error
	PublishRatingDeleted(ctx context.Context, ratingID, providerID string, newAggregate float64) error
	PublishAccountDeleted(ctx context.Context, accountID, role, actorID string) error
	PublishListingDeleted(ctx context.Context, listingID, sellerID string) error
	PublishProductDeleted(ctx context.Context, productID, sellerID string) error
	PublishAppointmentBooked(ctx context.Context, appt *domain.Appointment) error
	PublishAppointmentStatusChanged(ctx context.Context, appt *domain.Appointment, oldStatus, reason string) error
}

// Producer publishes marketplace domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceMarketplaceCore, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	return nil
}

// PublishRatingSubmitted publishes a rating.submitted event.
func (p *Producer) PublishRatingSubmitted(ctx context.Context, rating *domain.Rating, newAggregate float64) error {
	data := RatingSubmittedData{
		RatingID:     rating.ID,
		ReviewerID:   rating.ReviewerID,
		ProviderID:   rating.ProviderID,
		Score:        rating.Score,
		NewAggregate: newAggregate,
	}

	if err := p.publish(ctx, TopicRatingSubmitted, rating.ID, AggregateTypeRating, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published rating.submitted event",
		slog.String("rating_id", rating.ID),
		slog.String("provider_id", rating.ProviderID),
	)

	return nil
}

// PublishRatingDeleted publishes a rating.deleted event.
func (p *Producer) PublishRatingDeleted(ctx context.Context, ratingID, providerID string, newAggregate float64) error {
	data := RatingDeletedData{
		RatingID:     ratingID,
		ProviderID:   providerID,
		NewAggregate: newAggregate,
	}

	if err := p.publish(ctx, TopicRatingDeleted, ratingID, AggregateTypeRating, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published rating.deleted event",
		slog.String("rating_id", ratingID),
		slog.String("provider_id", providerID),
	)

	return nil
}

// PublishAccountDeleted publishes an account.deleted event.
func (p *Producer) PublishAccountDeleted(ctx context.Context, accountID, role, actorID string) error {
	data := AccountDeletedData{
		AccountID: accountID,
		Role:      role,
		ActorID:   actorID,
	}

	if err := p.publish(ctx, TopicAccountDeleted, accountID, AggregateTypeAccount, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published account.deleted event",
		slog.String("account_id", accountID),
		slog.String("actor_id", actorID),
	)

	return nil
}

// PublishListingDeleted publishes a listing.deleted event.
func (p *Producer) PublishListingDeleted(ctx context.Context, listingID, sellerID string) error {
	data := EntityDeletedData{ID: listingID, SellerID: sellerID}

	if err := p.publish(ctx, TopicListingDeleted, listingID, AggregateTypeListing, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published listing.deleted event",
		slog.String("listing_id", listingID),
	)

	return nil
}

// PublishProductDeleted publishes a product.deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, productID, sellerID string) error {
	data := EntityDeletedData{ID: productID, SellerID: sellerID}

	if err := p.publish(ctx, TopicProductDeleted, productID, AggregateTypeProduct, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published product.deleted event",
		slog.String("product_id", productID),
	)

	return nil
}

// PublishAppointmentBooked publishes an appointment.booked event.
func (p *Producer) PublishAppointmentBooked(ctx context.Context, appt *domain.Appointment) error {
	data := AppointmentBookedData{
		AppointmentID: appt.ID,
		ProviderID:    appt.ProviderID,
		RequesterID:   appt.RequesterID,
		AnimalType:    appt.AnimalType,
		Urgency:       appt.Urgency,
		ScheduledAt:   appt.ScheduledAt.Format("2006-01-02T15:04:05Z07:00"),
	}

	if err := p.publish(ctx, TopicAppointmentBooked, appt.ID, AggregateTypeAppointment, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published appointment.booked event",
		slog.String("appointment_id", appt.ID),
		slog.String("provider_id", appt.ProviderID),
	)

	return nil
}

// PublishAppointmentStatusChanged publishes an appointment.status_changed event.
func (p *Producer) PublishAppointmentStatusChanged(ctx context.Context, appt *domain.Appointment, oldStatus, reason string) error {
	data := AppointmentStatusChangedData{
		AppointmentID: appt.ID,
		ProviderID:    appt.ProviderID,
		OldStatus:     oldStatus,
		NewStatus:     appt.Status,
		Reason:        reason,
	}

	if err := p.publish(ctx, TopicAppointmentStatusChanged, appt.ID, AggregateTypeAppointment, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published appointment.status_changed event",
		slog.String("appointment_id", appt.ID),
		slog.String("old_status", oldStatus),
		slog.String("new_status", appt.Status),
	)

	return nil
}
