package service

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/amritage/age-fabric-shop-admin-panel/internal/catalog"
	"github.com/amritage/age-fabric-shop-admin-panel/internal/domain"
	"github.com/amritage/age-fabric-shop-admin-panel/internal/repository"
	apperrors "github.com/amritage/age-fabric-shop-admin-panel/pkg/errors"
	"github.com/amritage/age-fabric-shop-admin-panel/pkg/logger"
	"github.com/amritage/age-fabric-shop-admin-panel/pkg/pagination"
)

// listLimit is how many products the listing fetches before filtering
// locally.
const listLimit = 1000

// ProductService serves the product listing and the actions around it.
type ProductService struct {
	backend  CatalogBackend
	options  OptionLoader
	events   EventPublisher
	activity repository.ActivityRepository
	logger   *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	backend CatalogBackend,
	options OptionLoader,
	events EventPublisher,
	activity repository.ActivityRepository,
	logger *slog.Logger,
) *ProductService {
	return &ProductService{
		backend:  backend,
		options:  options,
		events:   events,
		activity: activity,
		logger:   logger,
	}
}

// List returns one page of the products matching query.
func (s *ProductService) List(ctx context.Context, actor Actor, query string, params pagination.Params) (pagination.Result[domain.ProductSummary], error) {
	records, err := s.backend.ListProducts(ctx, actor.Token, 1, listLimit)
	if err != nil {
		return pagination.Result[domain.ProductSummary]{}, err
	}

	matched := make([]domain.ProductSummary, 0, len(records))
	for _, rec := range records {
		p := domain.SummarizeProduct(rec)
		if p.Matches(query) {
			matched = append(matched, p)
		}
	}
	return pagination.Slice(matched, params), nil
}

// Delete removes a product from the catalog.
func (s *ProductService) Delete(ctx context.Context, actor Actor, productID string) error {
	if err := s.backend.DeleteProduct(ctx, actor.Token, productID); err != nil {
		logger.WithContext(ctx, s.logger).WarnContext(ctx, "product delete rejected",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
		return catalog.Rejection(err, catalog.CodeDeleteRejected, catalog.DeleteMessage(err))
	}

	if err := s.events.PublishProductDeleted(ctx, actor.Owner, productID); err != nil {
		logger.WithContext(ctx, s.logger).ErrorContext(ctx, "failed to publish product deleted event",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}
	entry := domain.NewActivity(actor.Owner, domain.ActionProductDeleted, "", productID, "")
	if err := s.activity.Append(ctx, entry); err != nil {
		logger.WithContext(ctx, s.logger).WarnContext(ctx, "failed to record activity",
			slog.String("action", string(entry.Action)),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// Related returns up to MaxRelatedProducts products sharing groupCodeID,
// leaving out excludeID.
func (s *ProductService) Related(ctx context.Context, actor Actor, groupCodeID, excludeID string) ([]domain.ProductSummary, error) {
	if groupCodeID == "" {
		return nil, apperrors.InvalidInput("groupCode is required")
	}
	records, err := s.backend.ProductsByGroupCode(ctx, actor.Token, groupCodeID)
	if err != nil {
		return nil, err
	}

	related := make([]domain.ProductSummary, 0, domain.MaxRelatedProducts)
	for _, rec := range records {
		p := domain.SummarizeProduct(rec)
		if excludeID != "" && p.ID == excludeID {
			continue
		}
		related = append(related, p)
		if len(related) == domain.MaxRelatedProducts {
			break
		}
	}
	return related, nil
}

// Dashboard counts products and the options of every top-level filter. The
// product count and the option lists are fetched concurrently; a failure of
// either is reported in Errors.
func (s *ProductService) Dashboard(ctx context.Context, actor Actor) domain.DashboardSummary {
	summary := domain.DashboardSummary{
		OptionCounts: make(map[string]int),
		Errors:       make(map[string]string),
	}

	var mu sync.Mutex
	g := new(errgroup.Group)

	g.Go(func() error {
		records, err := s.backend.ListProducts(ctx, actor.Token, 1, listLimit)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			logger.WithContext(ctx, s.logger).WarnContext(ctx, "product count unavailable",
				slog.String("error", err.Error()),
			)
			summary.Errors["products"] = "Failed to load products"
			return nil
		}
		summary.ProductCount = len(records)
		return nil
	})

	g.Go(func() error {
		set := s.options.Load(ctx, actor.Token, domain.TopLevelFilters())
		mu.Lock()
		defer mu.Unlock()
		for _, f := range set.Filters {
			summary.OptionCounts[f.Label] = len(f.Options)
		}
		for name, msg := range set.Errors {
			summary.Errors[name] = msg
		}
		return nil
	})

	_ = g.Wait()
	return summary
}
