package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"
)

// SessionUserKey is the session variable holding the user id that the
// OAuth callback establishes before redirecting back to the client.
const SessionUserKey = "loggedInUserId"

// SessionAuth resolves "who am I" requests from either a session token
// header or the provider-established session, and handles logout.
type SessionAuth struct {
	Store   UserStore
	Tokens  *Issuer
	Session *scs.SessionManager

	// TokenHeader defaults to "jwt-token".
	TokenHeader string

	// LoginURL is where logout sends the browser.
	LoginURL string
}

func (s *SessionAuth) tokenHeader() string {
	if s.TokenHeader == "" {
		return DefaultTokenHeader
	}
	return s.TokenHeader
}

// HandleLoginSuccess serves GET /auth/login/success.
//
// With a token header it verifies the token and returns the sanitized
// user (picture stripped; it has its own endpoint). Without one it falls
// back to the session identity left by the OAuth callback and issues a
// fresh token for it. Neither means the caller is not logged in.
func (s *SessionAuth) HandleLoginSuccess(w http.ResponseWriter, r *http.Request) {
	tokenString := r.Header.Get(s.tokenHeader())
	if tokenString != "" {
		userID, err := s.Tokens.Verify(tokenString)
		if err != nil {
			WriteError(w, http.StatusBadRequest,
				NewAuthError(ErrCodeInvalidCreds, "Authenticate using correct credentials", ""))
			return
		}

		user, err := s.Store.GetUserByID(userID)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				WriteError(w, http.StatusNotFound, NewAuthError(ErrCodeNotFound, "User not found", ""))
				return
			}
			slog.Error("loading user failed", "error", err, "user", userID)
			WriteError(w, http.StatusInternalServerError, NewAuthError(ErrCodeStorage, "Internal server error", ""))
			return
		}

		WriteJSON(w, http.StatusOK, map[string]any{
			"error":   false,
			"message": fmt.Sprintf("Welcome again %s", user.Name),
			"user":    user.WithoutPicture(),
		})
		return
	}

	// Post-OAuth-redirect case: the callback stored the identity in the
	// session; trade it for a token the client can keep.
	userID := s.Session.GetString(r.Context(), SessionUserKey)
	if userID == "" {
		WriteError(w, http.StatusBadRequest, NewAuthError(ErrCodeNotAuthorized, "Not authorized", ""))
		return
	}

	user, err := s.Store.GetUserByID(userID)
	if err != nil {
		slog.Error("loading session user failed", "error", err, "user", userID)
		WriteError(w, http.StatusInternalServerError, NewAuthError(ErrCodeStorage, "Internal server error", ""))
		return
	}

	fresh, err := s.Tokens.Issue(user.ID)
	if err != nil {
		slog.Error("issuing token failed", "error", err, "user", user.ID)
		WriteError(w, http.StatusInternalServerError, NewAuthError(ErrCodeStorage, "Internal server error", ""))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"error":   false,
		"message": "Logged in successfully",
		"user":    user.Sanitized(),
		"jwtoken": fresh,
	})
}

// HandleLoginFailed serves GET /auth/login/failed, the OAuth failure
// redirect target.
func (s *SessionAuth) HandleLoginFailed(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusUnauthorized, NewAuthError(ErrCodeUpstreamAuth, "Login failed", ""))
}

// HandleLogout clears the provider session and sends the browser back to
// the login page.
func (s *SessionAuth) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.Session.Destroy(r.Context()); err != nil {
		slog.Warn("destroying session failed", "error", err)
	}
	http.Redirect(w, r, s.LoginURL, http.StatusFound)
}
