package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

var errNoToken = errors.New("auth: missing bearer token")

// contextKey is unexported so only this package can read or write the
// user ID stored in a request context.
type contextKey string

const userIDKey contextKey = "userID"

// RequireAuth enforces a valid bearer token on protected routes. The user ID
// goes into the request context; a missing or invalid token stops the chain
// with a 401.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}`))
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth extracts the user identity when a valid token is present but
// never blocks the request. Public reads use it so viewer-relative fields
// (user_has_liked and friends) can still be populated for signed-in users.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, err := extractUserID(r, tokens); err == nil && userID > 0 {
				ctx := context.WithValue(r.Context(), userIDKey, userID)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFromContext retrieves the authenticated user's ID from the request
// context. ok is false for anonymous requests.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok && id > 0
}

func extractUserID(r *http.Request, tokens *TokenService) (int64, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return 0, errNoToken
	}
	return tokens.Validate(token)
}
