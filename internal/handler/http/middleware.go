package http

import (
	"net/http"
	"strings"

	"github.com/amritage/age-fabric-shop-admin-panel/internal/service"
	"github.com/amritage/age-fabric-shop-admin-panel/pkg/httputil"
	"github.com/amritage/age-fabric-shop-admin-panel/pkg/middleware"
)

// ContentTypeJSON enforces that requests with a body are JSON. Multipart
// uploads are let through.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") && !strings.HasPrefix(ct, "multipart/form-data") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{Code: "UNSUPPORTED_MEDIA_TYPE", Message: "Content-Type must be application/json"},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// actorFrom returns the admin the request acts for.
func actorFrom(r *http.Request) service.Actor {
	s := middleware.SessionFromContext(r.Context())
	return service.Actor{Owner: s.Owner, Token: s.Token}
}

// scopeFrom reads the optional productId query value selecting an edit
// wizard. Without it the create wizard is used.
func scopeFrom(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.URL.Query().Get("productId")
	if id == "" {
		return service.ScopeCreate, true
	}
	return httputil.ParseResourceID(w, "productId", id)
}
