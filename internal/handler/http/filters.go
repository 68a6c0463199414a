package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/amritage/age-fabric-shop-admin-panel/internal/service"
	"github.com/amritage/age-fabric-shop-admin-panel/pkg/httputil"
)

// FilterHandler serves filter option lists.
type FilterHandler struct {
	service *service.FilterService
	logger  *slog.Logger
}

// NewFilterHandler creates a new filter HTTP handler.
func NewFilterHandler(svc *service.FilterService, logger *slog.Logger) *FilterHandler {
	return &FilterHandler{
		service: svc,
		logger:  logger,
	}
}

// ListFilters handles GET /api/v1/filters
func (h *FilterHandler) ListFilters(w http.ResponseWriter, r *http.Request) {
	set := h.service.Load(r.Context(), actorFrom(r))
	httputil.WriteData(w, http.StatusOK, set)
}

// ResolveOptions handles GET /api/v1/filters/{name}/options?parent=&selected=
func (h *FilterHandler) ResolveOptions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.service.Resolve(r.Context(), actorFrom(r), chi.URLParam(r, "name"), q.Get("parent"), q.Get("selected"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, res)
}
