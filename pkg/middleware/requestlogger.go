package middleware

import (
	"log/slog"
	"net/http"

	"github.com/customer-platform/customer-service/pkg/logger"
)

// RequestLogger builds a request-scoped logger enriched with correlation_id,
// customer_id, trace_id, and span_id, and stores it in context. Downstream
// handlers retrieve it with logger.FromContext.
//
// Mount AFTER RequestLogging (which sets the correlation ID) and Tracing
// (which sets the span context).
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if subject := SubjectFromContext(ctx); subject != "" {
				ctx = logger.WithCustomerID(ctx, subject)
			}

			enriched := logger.WithContext(ctx, base)
			ctx = logger.NewContext(ctx, enriched)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
