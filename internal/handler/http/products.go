package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/amritage/age-fabric-shop-admin-panel/internal/service"
	"github.com/amritage/age-fabric-shop-admin-panel/pkg/httputil"
	"github.com/amritage/age-fabric-shop-admin-panel/pkg/pagination"
)

// ProductHandler serves the product listing and edit entry points.
type ProductHandler struct {
	products *service.ProductService
	intake   *service.IntakeService
	logger   *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(products *service.ProductService, intake *service.IntakeService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		intake:   intake,
		logger:   logger,
	}
}

// ListProducts handles GET /api/v1/products?q=&page=&per_page=
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	result, err := h.products.List(r.Context(), actorFrom(r), r.URL.Query().Get("q"), params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// RelatedProducts handles GET /api/v1/products/related?groupCode=&exclude=
func (h *ProductHandler) RelatedProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	related, err := h.products.Related(r.Context(), actorFrom(r), q.Get("groupCode"), q.Get("exclude"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, related)
}

// LoadForEdit handles GET /api/v1/products/{id}/edit
func (h *ProductHandler) LoadForEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseResourceID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}
	view, err := h.intake.LoadForEdit(r.Context(), actorFrom(r), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, view)
}

// DeleteProduct handles DELETE /api/v1/products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseResourceID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := h.products.Delete(r.Context(), actorFrom(r), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Dashboard handles GET /api/v1/dashboard/summary
func (h *ProductHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.products.Dashboard(r.Context(), actorFrom(r)))
}
