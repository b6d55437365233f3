package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

var errNoToken = errors.New("auth: missing bearer token")

// contextKey is an unexported type for context keys in this package.
// Using a package-private type means only this package can read or write
// the userID value, so there are no collisions with other packages' keys.
type contextKey string

const userIDKey contextKey = "userID"

// UserChecker reports whether a user ID still corresponds to a stored
// account. The middleware uses it so that a syntactically valid token whose
// subject has disappeared is rejected exactly like a forged one; callers
// can't distinguish the two cases.
type UserChecker interface {
	UserExists(ctx context.Context, userID string) (bool, error)
}

// RequireAuth is a middleware that enforces authentication on protected
// routes.
//
// It reads the "Authorization: Bearer <token>" header, validates the JWT,
// confirms the subject exists, and stores the userID in the request
// context. Anything short of that returns 401 and stops the chain.
func RequireAuth(tokens *TokenService, users UserChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err == nil {
				var exists bool
				exists, err = users.UserExists(r.Context(), userID)
				if err == nil && !exists {
					err = errNoToken // the response is uniform either way
				}
			}
			if err != nil {
				w.Header().Set("WWW-Authenticate", "Bearer")
				http.Error(w, `{"error":"unauthorized","message":"valid authentication required"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext retrieves the authenticated user's ID from the request
// context. Returns ("", false) if the request is anonymous.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// extractUserID reads the bearer token from the Authorization header and
// validates it.
func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", errNoToken
	}

	return tokens.Validate(token)
}
