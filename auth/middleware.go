package auth

import (
	"context"
	"log/slog"
	"net/http"
)

// DefaultTokenHeader is the request header carrying the session token.
const DefaultTokenHeader = "jwt-token"

type loggedInUserKey struct{}

// Middleware gates protected routes on a verified session token and
// makes the resolved user id available to downstream handlers.
type Middleware struct {
	// TokenHeader defaults to "jwt-token".
	TokenHeader string

	// VerifyToken resolves a token string to a user id.
	VerifyToken func(tokenString string) (userID string, err error)
}

func (m *Middleware) EnsureReasonableDefaults() {
	if m.TokenHeader == "" {
		m.TokenHeader = DefaultTokenHeader
	}
}

// RequireUser rejects requests without a valid token. Missing and
// invalid tokens get distinct codes but the same 400 status.
func (m *Middleware) RequireUser(next http.Handler) http.Handler {
	m.EnsureReasonableDefaults()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := r.Header.Get(m.TokenHeader)
		if tokenString == "" {
			WriteError(w, http.StatusBadRequest,
				NewAuthError(ErrCodeMissingToken, "Please use a valid token", ""))
			return
		}

		userID, err := m.VerifyToken(tokenString)
		if err != nil || userID == "" {
			if err != nil {
				slog.Warn("rejected auth token", "error", err)
			}
			WriteError(w, http.StatusBadRequest,
				NewAuthError(ErrCodeInvalidCreds, "Authenticate using correct credentials", ""))
			return
		}

		next.ServeHTTP(w, WithLoggedInUser(r, userID))
	})
}

// WithLoggedInUser returns a request whose context carries the user id.
func WithLoggedInUser(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), loggedInUserKey{}, userID)
	return r.WithContext(ctx)
}

// LoggedInUserID returns the user id set by RequireUser, or "".
func LoggedInUserID(r *http.Request) string {
	if v, ok := r.Context().Value(loggedInUserKey{}).(string); ok {
		return v
	}
	return ""
}
