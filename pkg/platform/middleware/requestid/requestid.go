// Package requestid assigns each request an ID for log correlation. Inbound
// X-Request-ID headers are honored so IDs survive proxy hops.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"unify/pkg/requestcontext"
)

const headerName = "X-Request-ID"

// Middleware injects the request ID into the context and echoes it on the
// response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerName)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(headerName, requestID)

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
