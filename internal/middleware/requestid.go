package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/coffersTech/loglab/internal/logging"
)

// RequestIDHeader is honored on inbound requests and echoed on every
// response.
const RequestIDHeader = "X-Request-ID"

// RequestID stores a correlation id in the request context, generating
// one when the client did not send its own. It must sit outside any
// middleware that logs, so every record of the request carries the id.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := logging.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
