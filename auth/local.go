package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength applies to registration, login and password update.
const MinPasswordLength = 8

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// LocalAuth implements email/password registration, login and password
// update on top of a UserStore.
type LocalAuth struct {
	Store  UserStore
	Tokens *Issuer
}

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// parseCredentials accepts a JSON body or an urlencoded form.
func parseCredentials(r *http.Request) (*credentials, *AuthError) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return nil, NewAuthError(ErrCodeValidation, "Error parsing form", "")
		}
		return &credentials{
			Name:     r.FormValue("name"),
			Email:    r.FormValue("email"),
			Password: r.FormValue("password"),
		}, nil
	}

	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		return nil, NewAuthError(ErrCodeValidation, "Invalid post body", "")
	}
	return &creds, nil
}

func validateEmail(email string) *AuthError {
	if !emailRegex.MatchString(email) {
		return NewAuthError(ErrCodeValidation, "Use the correct email", "email")
	}
	return nil
}

func validatePassword(password string) *AuthError {
	if len(password) < MinPasswordLength {
		return NewAuthError(ErrCodeValidation,
			fmt.Sprintf("Password length must be %d or above", MinPasswordLength), "password")
	}
	return nil
}

// HandleCreateUser processes POST /auth/user/createuser. Validation runs
// before any store access; success returns a fresh session token.
func (a *LocalAuth) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	creds, parseErr := parseCredentials(r)
	if parseErr != nil {
		WriteError(w, http.StatusBadRequest, parseErr)
		return
	}

	if creds.Name == "" {
		WriteError(w, http.StatusBadRequest, NewAuthError(ErrCodeValidation, "Use the correct name", "name"))
		return
	}
	if authErr := validateEmail(creds.Email); authErr != nil {
		WriteError(w, http.StatusBadRequest, authErr)
		return
	}
	if authErr := validatePassword(creds.Password); authErr != nil {
		WriteError(w, http.StatusBadRequest, authErr)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("hashing password failed", "error", err)
		WriteError(w, http.StatusInternalServerError, NewAuthError(ErrCodeStorage, "Internal server error", ""))
		return
	}

	user, err := a.Store.CreateUser(&User{
		Name:         creds.Name,
		Email:        creds.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			WriteError(w, http.StatusConflict,
				NewAuthError(ErrCodeUserExists, "User already exists, please login", "email"))
			return
		}
		slog.Error("creating user failed", "error", err)
		WriteError(w, http.StatusInternalServerError, NewAuthError(ErrCodeStorage, "Internal server error", ""))
		return
	}

	tokenString, err := a.Tokens.Issue(user.ID)
	if err != nil {
		slog.Error("issuing token failed", "error", err, "user", user.ID)
		WriteError(w, http.StatusInternalServerError, NewAuthError(ErrCodeStorage, "Internal server error", ""))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"error":   false,
		"message": "Account created",
		"jwtoken": tokenString,
	})
}

// HandleLogin processes POST /auth/user/login. A missing account and a
// wrong password return identical responses so the endpoint cannot be
// used to enumerate registered emails.
func (a *LocalAuth) HandleLogin(w http.ResponseWriter, r *http.Request) {
	creds, parseErr := parseCredentials(r)
	if parseErr != nil {
		WriteError(w, http.StatusBadRequest, parseErr)
		return
	}

	if authErr := validateEmail(creds.Email); authErr != nil {
		WriteError(w, http.StatusBadRequest, authErr)
		return
	}
	if authErr := validatePassword(creds.Password); authErr != nil {
		WriteError(w, http.StatusBadRequest, authErr)
		return
	}

	user, err := a.Store.GetUserByEmail(creds.Email)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			slog.Error("looking up user failed", "error", err)
			WriteError(w, http.StatusInternalServerError, NewAuthError(ErrCodeStorage, "Internal server error", ""))
			return
		}
		a.invalidCredentials(w)
		return
	}

	// OAuth-only accounts have no hash to compare against.
	if user.PasswordHash == "" {
		a.invalidCredentials(w)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		a.invalidCredentials(w)
		return
	}

	tokenString, err := a.Tokens.Issue(user.ID)
	if err != nil {
		slog.Error("issuing token failed", "error", err, "user", user.ID)
		WriteError(w, http.StatusInternalServerError, NewAuthError(ErrCodeStorage, "Internal server error", ""))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"error":   false,
		"message": "Welcome again",
		"jwtoken": tokenString,
	})
}

func (a *LocalAuth) invalidCredentials(w http.ResponseWriter) {
	WriteError(w, http.StatusBadRequest,
		NewAuthError(ErrCodeInvalidCreds, "Please use the correct credentials", ""))
}

// HandleUpdatePassword processes POST /auth/user/updatepassword behind
// the auth middleware. The previous password is not required; this is
// how OAuth-only accounts gain a password and become hybrid.
func (a *LocalAuth) HandleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID := LoggedInUserID(r)
	if userID == "" {
		WriteError(w, http.StatusBadRequest, NewAuthError(ErrCodeNotAuthorized, "Not authorized", ""))
		return
	}

	creds, parseErr := parseCredentials(r)
	if parseErr != nil {
		WriteError(w, http.StatusBadRequest, parseErr)
		return
	}
	if authErr := validatePassword(creds.Password); authErr != nil {
		WriteError(w, http.StatusBadRequest, authErr)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("hashing password failed", "error", err)
		WriteError(w, http.StatusInternalServerError, NewAuthError(ErrCodeStorage, "Internal server error", ""))
		return
	}

	if err := a.Store.UpdatePasswordHash(userID, string(hash)); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			WriteError(w, http.StatusBadRequest, NewAuthError(ErrCodeNotFound, "User not found", ""))
			return
		}
		slog.Error("updating password failed", "error", err, "user", userID)
		WriteError(w, http.StatusInternalServerError, NewAuthError(ErrCodeStorage, "Internal server error", ""))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"error":   false,
		"message": "Password updated",
	})
}
