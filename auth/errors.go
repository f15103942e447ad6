package auth

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Error codes returned in JSON error responses.
const (
	ErrCodeValidation    = "validation_error"
	ErrCodeUserExists    = "user_exists"
	ErrCodeInvalidCreds  = "invalid_credentials"
	ErrCodeMissingToken  = "missing_token"
	ErrCodeInvalidToken  = "invalid_token"
	ErrCodeNotAuthorized = "not_authorized"
	ErrCodeNotFound      = "not_found"
	ErrCodeStorage       = "storage_failure"
	ErrCodeUpstreamAuth  = "upstream_auth_failure"
)

// Sentinel errors surfaced by UserStore implementations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// AuthError is a structured authentication/validation error carrying an
// error code and, for validation errors, the offending field.
type AuthError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *AuthError) Error() string {
	return e.Message
}

func NewAuthError(code, message, field string) *AuthError {
	return &AuthError{Code: code, Message: message, Field: field}
}

// WriteError writes a single JSON error response. Handlers funnel every
// failure through here so each request produces exactly one response.
func WriteError(w http.ResponseWriter, status int, err *AuthError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"field":   err.Field,
	})
}

// WriteJSON writes a success response body.
func WriteJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
