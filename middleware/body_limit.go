package middleware

import (
	"net/http"

	"github.com/gorilla/mux"
)

// BodyLimit caps request bodies at maxBytes. Reads past the limit fail and the
// JSON decoders in the handlers answer 400.
func BodyLimit(maxBytes int64) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		if maxBytes <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
