package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// contextKey is unexported so no other package can read or overwrite the
// user ID stored by this middleware.
type contextKey string

const userIDKey contextKey = "userID"

// CookieName is the cookie the GitHub login flow stores the token in.
const CookieName = "token"

var errNoToken = errors.New("auth: no token")

// UserChecker confirms that the subject of a valid token still exists.
// *sqlite.UserDB satisfies it.
type UserChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// RequireAuth rejects the request with 401 unless it carries a valid token
// whose subject is a stored user. On success the user ID is placed in the
// request context for UserIDFromContext.
//
// The token is read from "Authorization: Bearer <jwt>" first, then from the
// "token" cookie.
func RequireAuth(tokens *TokenService, users UserChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := tokenFromRequest(r)
			if err != nil {
				deny(w, http.StatusUnauthorized, "No token, authorization denied")
				return
			}

			userID, err := tokens.Validate(raw)
			if err != nil {
				deny(w, http.StatusUnauthorized, "Token is not valid")
				return
			}

			ok, err := users.Exists(r.Context(), userID)
			if err != nil {
				deny(w, http.StatusInternalServerError, "Server error during authentication")
				return
			}
			if !ok {
				deny(w, http.StatusUnauthorized, "User not found")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithUserID returns a copy of ctx carrying userID, as RequireAuth would.
// Handler tests use it to skip token plumbing.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user's ID, or ("", false) for
// an anonymous request.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

func tokenFromRequest(r *http.Request) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, found := strings.Cut(h, " ")
		if found && strings.EqualFold(scheme, "Bearer") && strings.TrimSpace(token) != "" {
			return strings.TrimSpace(token), nil
		}
	}

	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	return "", errNoToken
}

// deny writes the same {success, message} envelope as handler.writeError.
// auth cannot import handler, so keep the two shapes in step by hand.
func deny(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}
