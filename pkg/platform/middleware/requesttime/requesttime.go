// Package requesttime captures one "now" per HTTP request so that a member's
// DateReceived and the receipt generated for it carry the same timestamp.
package requesttime

import (
	"net/http"
	"time"

	"programtrack/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request
// and stores it in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
