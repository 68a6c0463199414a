package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amritage/age-fabric-shop-admin-panel/internal/domain"
	pkgkafka "github.com/amritage/age-fabric-shop-admin-panel/pkg/kafka"
	"github.com/amritage/age-fabric-shop-admin-panel/pkg/logger"
)

// Kafka topic constants for catalog admin events.
const (
	TopicProductSubmitted = "catalog.product.submitted"
	TopicProductDeleted   = "catalog.product.deleted"
	TopicDraftCleared     = "catalog.draft.cleared"
)

// Aggregate types.
const (
	AggregateTypeProduct = "product"
	AggregateTypeDraft   = "intake_draft"
)

// SourceCatalogAdmin identifies events originating from this service.
const SourceCatalogAdmin = "catalog-admin"

// ProductSubmittedData is the payload for a product.submitted event.
type ProductSubmittedData struct {
	ProductID  string   `json:"product_id"`
	Mode       string   `json:"mode"`
	AdminID    string   `json:"admin_id"`
	Name       string   `json:"name"`
	SKU        string   `json:"sku"`
	Slug       string   `json:"slug"`
	MediaSlots []string `json:"media_slots,omitempty"`
}

// ProductDeletedData is the payload for a product.deleted event.
type ProductDeletedData struct {
	ProductID string `json:"product_id"`
	AdminID   string `json:"admin_id"`
}

// DraftClearedData is the payload for a draft.cleared event.
type DraftClearedData struct {
	AdminID string `json:"admin_id"`
	Scope   string `json:"scope"`
}

// Publisher sends one event to a topic. *pkgkafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes catalog admin events.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	return &Producer{publisher: publisher, logger: logger}
}

// PublishProductSubmitted announces a created or updated product.
func (p *Producer) PublishProductSubmitted(ctx context.Context, s *domain.IntakeSession, productID string, d domain.Draft) error {
	data := ProductSubmittedData{
		ProductID: productID,
		Mode:      string(s.Mode),
		AdminID:   s.Owner,
		Name:      d.String("name"),
		SKU:       d.String("sku"),
		Slug:      d.String("slug"),
	}
	for _, slot := range domain.MediaSlots {
		if _, ok := s.Media[slot]; ok {
			data.MediaSlots = append(data.MediaSlots, slot)
		}
	}
	return p.publish(ctx, TopicProductSubmitted, "product.submitted", productID, AggregateTypeProduct, data)
}

// PublishProductDeleted announces a deleted product.
func (p *Producer) PublishProductDeleted(ctx context.Context, owner, productID string) error {
	data := ProductDeletedData{ProductID: productID, AdminID: owner}
	return p.publish(ctx, TopicProductDeleted, "product.deleted", productID, AggregateTypeProduct, data)
}

// PublishDraftCleared announces an abandoned draft.
func (p *Producer) PublishDraftCleared(ctx context.Context, owner, scope string) error {
	data := DraftClearedData{AdminID: owner, Scope: scope}
	return p.publish(ctx, TopicDraftCleared, "draft.cleared", owner+":"+scope, AggregateTypeDraft, data)
}

func (p *Producer) publish(ctx context.Context, topic, eventType, aggregateID, aggregateType string, data any) error {
	evt, err := pkgkafka.NewEvent(eventType, aggregateID, aggregateType, SourceCatalogAdmin, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	evt.WithCorrelationID(logger.CorrelationIDFromContext(ctx)).
		WithActor(logger.AdminIDFromContext(ctx))

	if err := p.publisher.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "event published",
		slog.String("topic", topic),
		slog.String("event_id", evt.ID),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}

// Nop discards every event. It stands in when EVENTS_ENABLED is false.
type Nop struct{}

func (Nop) PublishProductSubmitted(context.Context, *domain.IntakeSession, string, domain.Draft) error {
	return nil
}

func (Nop) PublishProductDeleted(context.Context, string, string) error { return nil }

func (Nop) PublishDraftCleared(context.Context, string, string) error { return nil }
