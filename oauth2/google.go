package oauth2

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo?access_token="

// Google drives the Google OAuth2 login flow.
type Google struct {
	oauthConfig oauth2.Config

	// FailureURL is where the callback redirects when the provider
	// exchange fails. No user record is created on that path.
	FailureURL string

	// HandleUser completes a successful login.
	HandleUser HandleUserFunc
}

func NewGoogle(clientID, clientSecret, callbackURL, failureURL string, handleUser HandleUserFunc) *Google {
	return &Google{
		oauthConfig: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		FailureURL: failureURL,
		HandleUser: handleUser,
	}
}

// HandleRedirect serves GET /auth/google: set the state cookie and send
// the browser to the consent screen.
func (g *Google) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	state := generateStateOauthCookie(w)
	http.Redirect(w, r, g.oauthConfig.AuthCodeURL(state), http.StatusFound)
}

// HandleCallback serves GET /auth/google/callback. Every failure path
// redirects to FailureURL; only a fully verified exchange reaches
// HandleUser.
func (g *Google) HandleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, _ := r.Cookie(stateCookieName)
	if stateCookie == nil || r.FormValue("state") != stateCookie.Value {
		slog.Warn("oauth state mismatch")
		clearStateCookie(w)
		http.Redirect(w, r, g.FailureURL, http.StatusTemporaryRedirect)
		return
	}
	clearStateCookie(w)

	token, err := g.oauthConfig.Exchange(r.Context(), r.FormValue("code"))
	if err != nil {
		slog.Warn("oauth code exchange failed", "error", err)
		http.Redirect(w, r, g.FailureURL, http.StatusTemporaryRedirect)
		return
	}

	userInfo, err := fetchGoogleUserInfo(token)
	if err != nil {
		slog.Warn("fetching google userinfo failed", "error", err)
		http.Redirect(w, r, g.FailureURL, http.StatusTemporaryRedirect)
		return
	}

	g.HandleUser("google", token, userInfo, w, r)
}

func fetchGoogleUserInfo(token *oauth2.Token) (map[string]any, error) {
	response, err := http.Get(googleUserInfoURL + token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed getting user info: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo endpoint returned %d", response.StatusCode)
	}

	contents, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed reading userinfo response: %w", err)
	}

	var userInfo map[string]any
	if err := json.Unmarshal(contents, &userInfo); err != nil {
		return nil, fmt.Errorf("failed decoding userinfo response: %w", err)
	}
	return userInfo, nil
}
