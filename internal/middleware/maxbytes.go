package middleware

import (
	"net/http"
)

// DefaultMaxBodyBytes caps request bodies at 64 KiB. Result submissions and
// login forms are tiny; anything bigger is abuse.
const DefaultMaxBodyBytes = 64 << 10

// MaxBytes limits the request body size. Oversized bodies fail the read with
// 413 via http.MaxBytesReader. Apply to routes that accept a body.
func MaxBytes(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
