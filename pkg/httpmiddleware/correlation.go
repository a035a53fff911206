package httpmiddleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/lewisedginton/zapbot/pkg/logger"
)

// CorrelationIDHeader carries the request's correlation ID in both directions.
const CorrelationIDHeader = "X-Correlation-ID"

// CorrelationID middleware gives every request a correlation ID. A caller
// supplied ID is kept only when it parses as a UUID; anything else is
// replaced. The ID is stored in the request context and echoed on the response.
func CorrelationID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			correlationID := r.Header.Get(CorrelationIDHeader)
			if _, err := uuid.Parse(correlationID); err != nil {
				correlationID = uuid.New().String()
			}

			r.Header.Set(CorrelationIDHeader, correlationID)
			w.Header().Set(CorrelationIDHeader, correlationID)

			ctx := logger.WithCorrelationIDContext(r.Context(), correlationID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
