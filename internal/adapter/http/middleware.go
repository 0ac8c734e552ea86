package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/wordbridge/wordbridge/internal/core/ports"
)

// RequestIDMiddleware tags every request with an id for log correlation. A
// caller-supplied X-Request-Id is kept; otherwise one is generated.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

// CorsMiddleware allows requests from any origin (the frontend is served
// from a separate host).
func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AuthMiddleware verifies the bearer token and injects the user id into the
// request context. A string key is used to avoid an import cycle with the
// handlers package.
func AuthMiddleware(tokens ports.TokenMaker, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(raw) == "" {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		payload, err := tokens.VerifyToken(strings.TrimSpace(raw))
		if err != nil {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), "userID", payload.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}
