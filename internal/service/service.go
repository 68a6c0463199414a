package service

import (
	"context"

	"github.com/amritage/age-fabric-shop-admin-panel/internal/domain"
)

// Actor is the admin on whose behalf an operation runs. Token is forwarded
// to the catalog backend and may be empty.
type Actor struct {
	Owner string
	Token string
}

// CatalogBackend is the catalog REST API. *catalog.Client satisfies it.
type CatalogBackend interface {
	ListProducts(ctx context.Context, token string, page, limit int) ([]map[string]any, error)
	GetProduct(ctx context.Context, token, id string) (map[string]any, error)
	ProductsByGroupCode(ctx context.Context, token, groupCodeID string) ([]map[string]any, error)
	CreateProduct(ctx context.Context, token, contentType string, body []byte) (map[string]any, error)
	UpdateProduct(ctx context.Context, token, id, contentType string, body []byte) (map[string]any, error)
	DeleteProduct(ctx context.Context, token, id string) error
}

// OptionLoader loads filter option lists. *catalog.OptionProvider satisfies it.
type OptionLoader interface {
	Load(ctx context.Context, token string, defs []domain.FilterDefinition) domain.FilterSet
	LoadOne(ctx context.Context, token string, def domain.FilterDefinition) ([]domain.Option, error)
}

// EventPublisher announces intake outcomes. *event.Producer and event.Nop
// satisfy it.
type EventPublisher interface {
	PublishProductSubmitted(ctx context.Context, s *domain.IntakeSession, productID string, d domain.Draft) error
	PublishProductDeleted(ctx context.Context, owner, productID string) error
	PublishDraftCleared(ctx context.Context, owner, scope string) error
}
