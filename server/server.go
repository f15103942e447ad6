// Package server assembles the HTTP surface: routes, CORS, sessions.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	xoauth2 "golang.org/x/oauth2"

	"github.com/lakshc/picauth/auth"
	"github.com/lakshc/picauth/config"
	"github.com/lakshc/picauth/oauth2"
	"github.com/lakshc/picauth/pictures"
)

// New wires every handler to its route and returns the root handler.
func New(cfg config.App, store auth.UserStore) http.Handler {
	sessions := scs.New()
	sessions.Lifetime = time.Duration(cfg.SessionTimeoutSeconds) * time.Second
	return newHandler(cfg, store, sessions)
}

func newHandler(cfg config.App, store auth.UserStore, sessions *scs.SessionManager) http.Handler {
	issuer := &auth.Issuer{
		SecretKey: cfg.JWTSecretKey,
		Issuer:    cfg.JWTIssuer,
		Expiry:    time.Duration(cfg.JWTExpiryHours) * time.Hour,
	}
	middleware := &auth.Middleware{VerifyToken: issuer.Verify}
	local := &auth.LocalAuth{Store: store, Tokens: issuer}
	session := &auth.SessionAuth{
		Store:    store,
		Tokens:   issuer,
		Session:  sessions,
		LoginURL: cfg.LoginURL,
	}
	bridge := &auth.OAuthBridge{Store: store}
	pics := pictures.NewManager(store, cfg.UploadDir)

	google := oauth2.NewGoogle(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleCallbackURL,
		"/auth/login/failed",
		func(provider string, token *xoauth2.Token, userInfo map[string]any, w http.ResponseWriter, r *http.Request) {
			user, err := bridge.EnsureUser(auth.ProfileFromUserInfo(userInfo))
			if err != nil {
				slog.Warn("oauth user reconciliation failed", "provider", provider, "error", err)
				http.Redirect(w, r, "/auth/login/failed", http.StatusTemporaryRedirect)
				return
			}
			sessions.Put(r.Context(), auth.SessionUserKey, user.ID)
			http.Redirect(w, r, cfg.ClientURL, http.StatusFound)
		},
	)

	r := mux.NewRouter()
	a := r.PathPrefix("/auth").Subrouter()

	a.HandleFunc("/login/success", session.HandleLoginSuccess).Methods(http.MethodGet)
	a.HandleFunc("/login/failed", session.HandleLoginFailed).Methods(http.MethodGet)
	a.HandleFunc("/logout", session.HandleLogout).Methods(http.MethodGet)

	a.HandleFunc("/google", google.HandleRedirect).Methods(http.MethodGet)
	a.HandleFunc("/google/callback", google.HandleCallback).Methods(http.MethodGet)

	a.HandleFunc("/user/createuser", local.HandleCreateUser).Methods(http.MethodPost)
	a.HandleFunc("/user/login", local.HandleLogin).Methods(http.MethodPost)

	a.Handle("/user/uploadpicture",
		middleware.RequireUser(http.HandlerFunc(pics.HandleUpload))).Methods(http.MethodPost)
	a.Handle("/user/getprofilepicture",
		middleware.RequireUser(http.HandlerFunc(pics.HandleFetch))).Methods(http.MethodGet)
	a.Handle("/user/updatepassword",
		middleware.RequireUser(http.HandlerFunc(local.HandleUpdatePassword))).Methods(http.MethodPost)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{cfg.CORSOrigin}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}),
		handlers.AllowedHeaders([]string{"Content-Type", auth.DefaultTokenHeader}),
		handlers.AllowCredentials(),
	)

	return sessions.LoadAndSave(cors(r))
}
