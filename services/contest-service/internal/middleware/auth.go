// Package middleware provides HTTP middleware for authentication, CORS and rate limiting.
package middleware

import (
	"encoding/json"
	"net/http"

	authpkg "dailyart/shared/pkg/auth"
)

// RequireAuth rejects requests without a valid session token and stores the
// authenticated user in the request context.
func RequireAuth(validator authpkg.TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := authpkg.TokenFromRequest(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "Unauthenticated")
				return
			}
			userCtx, err := validator.ValidateToken(r.Context(), token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Unauthenticated")
				return
			}
			next.ServeHTTP(w, r.WithContext(authpkg.WithUser(r.Context(), userCtx)))
		})
	}
}

// OptionalAuth attaches the user when a valid token is present and lets
// anonymous requests through.
func OptionalAuth(validator authpkg.TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := authpkg.TokenFromRequest(r); token != "" {
				if userCtx, err := validator.ValidateToken(r.Context(), token); err == nil {
					r = r.WithContext(authpkg.WithUser(r.Context(), userCtx))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Guest only allows requests without a valid session, e.g. signup and login.
func Guest(validator authpkg.TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := authpkg.TokenFromRequest(r); token != "" {
				if _, err := validator.ValidateToken(r.Context(), token); err == nil {
					writeError(w, http.StatusForbidden, "Forbidden")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUserFromRequest retrieves user context from the HTTP request context
func GetUserFromRequest(r *http.Request) (*authpkg.UserContext, error) {
	return authpkg.GetUserFromContext(r.Context())
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
