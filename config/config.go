// Package config loads all process configuration from the environment in
// one place, so nothing else in the codebase reaches for os.Getenv.
package config

import (
	"github.com/kelseyhightower/envconfig"
)

type App struct {
	// Network
	Port int `envconfig:"PORT" default:"8000"`

	// Database. When empty the server falls back to the JSON file store
	// under DataDir (useful for local development).
	DatabaseURL string `envconfig:"DATABASE_URL"`
	DataDir     string `envconfig:"DATA_DIR" default:"./data"`

	// JWT
	JWTSecretKey   string `envconfig:"JWT_SECRET_KEY" required:"true"`
	JWTIssuer      string `envconfig:"JWT_ISSUER" default:"picauth"`
	JWTExpiryHours int    `envconfig:"JWT_EXPIRY_HOURS" default:"72"`

	// Google OAuth2
	GoogleClientID     string `envconfig:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET"`
	GoogleCallbackURL  string `envconfig:"GOOGLE_CALLBACK_URL" default:"http://localhost:8000/auth/google/callback"`

	// Where browsers get sent after OAuth login / logout.
	ClientURL string `envconfig:"CLIENT_URL" default:"http://localhost:3000"`
	LoginURL  string `envconfig:"LOGIN_URL" default:"http://localhost:3000/login"`

	// Uploaded profile pictures live here.
	UploadDir string `envconfig:"UPLOAD_DIR" default:"./upload"`

	// CORS
	CORSOrigin string `envconfig:"CORS_ORIGIN" default:"http://localhost:3000"`

	// Session cookie lifetime for the OAuth redirect flow.
	SessionTimeoutSeconds int `envconfig:"SESSION_TIMEOUT_SECONDS" default:"86400"`
}

func Load() (App, error) {
	var c App
	err := envconfig.Process("", &c)
	return c, err
}
