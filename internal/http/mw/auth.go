// Package mw contains HTTP middleware for the tankwatch-api.
package mw

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// BearerSecret returns middleware that requires the Authorization header to
// carry the given shared secret as a bearer token. The comparison is
// constant-time so the secret cannot be probed byte by byte through response
// timing. An empty configured secret rejects everything.
func BearerSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r)
			if secret == "" || !secretsEqual(token, secret) {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractBearer pulls the token from the Authorization header. A header
// without the Bearer prefix is treated as the bare token, matching what some
// vendor webhook configurations send.
func extractBearer(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return authHeader
}

func secretsEqual(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
