package middleware

import (
	"log/slog"
	"net/http"

	"github.com/amritage/age-fabric-shop-admin-panel/pkg/logger"
)

// RequestLogger builds a request-scoped logger enriched with correlation_id,
// admin_id, trace_id and span_id and stores it in the context. Mount it after
// RequestLogging, Tracing and AdminSession.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if owner := SessionFromContext(ctx).Owner; owner != AnonymousOwner {
				ctx = logger.WithAdminID(ctx, owner)
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
