package middleware

import (
	"net/http"

	"github.com/safestream/safestream-go/pkg/requestid"
)

// RequestID tags the request context with the X-Request-Id header sent by the caller,
// generating an ID when there is none, and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestid.Header)
		if requestID == "" {
			requestID = requestid.Generate()
		}

		w.Header().Set(requestid.Header, requestID)
		next.ServeHTTP(w, r.WithContext(requestid.ToContext(r.Context(), requestID)))
	})
}
