package httputil

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestID reuses the caller's X-Request-ID or assigns a new one, and
// echoes it on the response before the handler runs. Handlers read it
// back from the response headers.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = "req_" + uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r)
	})
}
