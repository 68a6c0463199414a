package service

import (
	"context"
	"log/slog"

	"github.com/amritage/age-fabric-shop-admin-panel/internal/domain"
	apperrors "github.com/amritage/age-fabric-shop-admin-panel/pkg/errors"
	"github.com/amritage/age-fabric-shop-admin-panel/pkg/logger"
)

// FilterService serves filter option lists and resolves the sub-filters that
// depend on a parent selection.
type FilterService struct {
	loader OptionLoader
	logger *slog.Logger
}

// NewFilterService creates a new filter service.
func NewFilterService(loader OptionLoader, logger *slog.Logger) *FilterService {
	return &FilterService{loader: loader, logger: logger}
}

// Load fetches every top-level filter. A failed definition is reported in
// the set's Errors and never fails the call.
func (s *FilterService) Load(ctx context.Context, actor Actor) domain.FilterSet {
	return s.loader.Load(ctx, actor.Token, domain.TopLevelFilters())
}

// Resolve returns the options of a sub-filter visible under parent, keeping
// selected displayable when it is a known option.
func (s *FilterService) Resolve(ctx context.Context, actor Actor, name, parent, selected string) (domain.Resolution, error) {
	def, ok := domain.LookupFilter(name)
	if !ok {
		return domain.Resolution{}, apperrors.NotFound("filter", name)
	}
	if !def.IsSub() {
		return domain.Resolution{}, apperrors.InvalidInput(def.Label + " does not depend on another filter")
	}

	all, err := s.loader.LoadOne(ctx, actor.Token, def)
	if err != nil {
		return domain.Resolution{}, apperrors.Unavailable("Failed to load "+def.Label, err)
	}

	res := domain.ResolveSubOptions(parent, all, selected)
	res.Filter = def.Name
	return res, nil
}

// Reconcile re-runs the resolver for each given sub-filter against d. A
// sub-filter whose options cannot be loaded is left untouched.
func (s *FilterService) Reconcile(ctx context.Context, actor Actor, d domain.Draft, defs []domain.FilterDefinition) (domain.Draft, []domain.Resolution) {
	var resolutions []domain.Resolution
	for _, def := range defs {
		all, err := s.loader.LoadOne(ctx, actor.Token, def)
		if err != nil {
			logger.WithContext(ctx, s.logger).WarnContext(ctx, "sub-filter options unavailable, selection kept",
				slog.String("filter", def.Name),
				slog.String("error", err.Error()),
			)
			continue
		}
		var res domain.Resolution
		d, res = domain.ReconcileDraft(d, def, all)
		resolutions = append(resolutions, res)
	}
	return d, resolutions
}
