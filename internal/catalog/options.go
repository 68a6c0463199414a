package catalog

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/amritage/age-fabric-shop-admin-panel/internal/domain"
)

// OptionFetcher loads the options of one filter definition.
type OptionFetcher interface {
	FetchOptions(ctx context.Context, token string, def domain.FilterDefinition) ([]domain.Option, error)
}

// OptionProvider loads filter option lists concurrently. A failed definition
// never blocks or cancels its siblings.
type OptionProvider struct {
	fetcher     OptionFetcher
	concurrency int
	logger      *slog.Logger
}

// NewOptionProvider caps in-flight fetches at concurrency (at least one).
func NewOptionProvider(fetcher OptionFetcher, concurrency int, logger *slog.Logger) *OptionProvider {
	if concurrency < 1 {
		concurrency = 1
	}
	return &OptionProvider{fetcher: fetcher, concurrency: concurrency, logger: logger}
}

// Load fetches every definition. Filters come back in definition order; a
// failed one has no options and a "Failed to load <label>" entry in Errors.
func (p *OptionProvider) Load(ctx context.Context, token string, defs []domain.FilterDefinition) domain.FilterSet {
	set := domain.FilterSet{
		Filters: make([]domain.Filter, len(defs)),
		Errors:  make(map[string]string),
	}

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(p.concurrency)

	for i, def := range defs {
		i, def := i, def
		set.Filters[i] = domain.Filter{Name: def.Name, Label: def.Label, Options: []domain.Option{}}
		g.Go(func() error {
			opts, err := p.fetcher.FetchOptions(ctx, token, def)
			if err != nil {
				p.logger.WarnContext(ctx, "option fetch failed",
					slog.String("filter", def.Name),
					slog.String("path", def.APIPath),
					slog.String("error", err.Error()),
				)
				mu.Lock()
				set.Errors[def.Name] = "Failed to load " + def.Label
				mu.Unlock()
				return nil
			}
			set.Filters[i].Options = opts
			return nil
		})
	}
	_ = g.Wait()

	return set
}

// LoadOne fetches a single definition, reporting the failure to the caller.
func (p *OptionProvider) LoadOne(ctx context.Context, token string, def domain.FilterDefinition) ([]domain.Option, error) {
	return p.fetcher.FetchOptions(ctx, token, def)
}
