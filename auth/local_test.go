package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lakshc/picauth/auth"
	"github.com/lakshc/picauth/stores"
)

func newTestLocalAuth(t *testing.T) (*auth.LocalAuth, auth.UserStore) {
	store := stores.NewFSUserStore(t.TempDir())
	return &auth.LocalAuth{Store: store, Tokens: newTestIssuer()}, store
}

func postJSON(handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestCreateUser(t *testing.T) {
	local, _ := newTestLocalAuth(t)

	tests := []struct {
		name           string
		body           string
		expectedStatus int
		checkError     string
	}{
		{
			name:           "successful signup",
			body:           `{"name": "Test User", "email": "test@example.com", "password": "password123"}`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "duplicate email",
			body:           `{"name": "Other User", "email": "test@example.com", "password": "password456"}`,
			expectedStatus: http.StatusConflict,
			checkError:     auth.ErrCodeUserExists,
		},
		{
			name:           "empty name",
			body:           `{"name": "", "email": "new@example.com", "password": "password123"}`,
			expectedStatus: http.StatusBadRequest,
			checkError:     auth.ErrCodeValidation,
		},
		{
			name:           "bad email",
			body:           `{"name": "Test User", "email": "not-an-email", "password": "password123"}`,
			expectedStatus: http.StatusBadRequest,
			checkError:     auth.ErrCodeValidation,
		},
		{
			name:           "short password",
			body:           `{"name": "Test User", "email": "new@example.com", "password": "short"}`,
			expectedStatus: http.StatusBadRequest,
			checkError:     auth.ErrCodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postJSON(local.HandleCreateUser, "/auth/user/createuser", tt.body)

			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d. Body: %s", tt.expectedStatus, rr.Code, rr.Body.String())
			}
			if tt.checkError != "" && !strings.Contains(rr.Body.String(), tt.checkError) {
				t.Errorf("Expected error code %q, got: %s", tt.checkError, rr.Body.String())
			}
			if tt.expectedStatus == http.StatusOK && !strings.Contains(rr.Body.String(), "jwtoken") {
				t.Errorf("Expected a jwtoken in response, got: %s", rr.Body.String())
			}
		})
	}
}

func TestCreateUserTokenResolvesToUser(t *testing.T) {
	local, store := newTestLocalAuth(t)

	rr := postJSON(local.HandleCreateUser, "/auth/user/createuser",
		`{"name": "Test User", "email": "token@example.com", "password": "password123"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("Signup failed: %s", rr.Body.String())
	}

	var response map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("Invalid response: %v", err)
	}
	tokenString, _ := response["jwtoken"].(string)
	if tokenString == "" {
		t.Fatal("No jwtoken in response")
	}

	userID, err := local.Tokens.Verify(tokenString)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	user, err := store.GetUserByEmail("token@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if userID != user.ID {
		t.Errorf("Token subject %q does not match created user %q", userID, user.ID)
	}
}

func TestLogin(t *testing.T) {
	local, _ := newTestLocalAuth(t)

	rr := postJSON(local.HandleCreateUser, "/auth/user/createuser",
		`{"name": "Login User", "email": "login@example.com", "password": "password123"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("Signup failed: %s", rr.Body.String())
	}

	tests := []struct {
		name           string
		body           string
		expectedStatus int
		checkError     string
	}{
		{
			name:           "successful login",
			body:           `{"email": "login@example.com", "password": "password123"}`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "wrong password",
			body:           `{"email": "login@example.com", "password": "wrongpassword"}`,
			expectedStatus: http.StatusBadRequest,
			checkError:     auth.ErrCodeInvalidCreds,
		},
		{
			name:           "non-existent user",
			body:           `{"email": "nobody@example.com", "password": "password123"}`,
			expectedStatus: http.StatusBadRequest,
			checkError:     auth.ErrCodeInvalidCreds,
		},
		{
			name:           "short password rejected before lookup",
			body:           `{"email": "login@example.com", "password": "short"}`,
			expectedStatus: http.StatusBadRequest,
			checkError:     auth.ErrCodeValidation,
		},
		{
			name:           "bad email rejected before lookup",
			body:           `{"email": "not-an-email", "password": "password123"}`,
			expectedStatus: http.StatusBadRequest,
			checkError:     auth.ErrCodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postJSON(local.HandleLogin, "/auth/user/login", tt.body)

			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d. Body: %s", tt.expectedStatus, rr.Code, rr.Body.String())
			}
			if tt.checkError != "" && !strings.Contains(rr.Body.String(), tt.checkError) {
				t.Errorf("Expected error code %q, got: %s", tt.checkError, rr.Body.String())
			}
		})
	}
}

// Wrong-password and unknown-email responses must be indistinguishable
// so the endpoint cannot be used to enumerate accounts.
func TestLoginDoesNotLeakAccountExistence(t *testing.T) {
	local, _ := newTestLocalAuth(t)

	rr := postJSON(local.HandleCreateUser, "/auth/user/createuser",
		`{"name": "Enum User", "email": "enum@example.com", "password": "password123"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("Signup failed: %s", rr.Body.String())
	}

	wrongPassword := postJSON(local.HandleLogin, "/auth/user/login",
		`{"email": "enum@example.com", "password": "wrongpassword"}`)
	unknownEmail := postJSON(local.HandleLogin, "/auth/user/login",
		`{"email": "ghost@example.com", "password": "wrongpassword"}`)

	if wrongPassword.Code != unknownEmail.Code {
		t.Errorf("Status codes differ: %d vs %d", wrongPassword.Code, unknownEmail.Code)
	}
	if wrongPassword.Body.String() != unknownEmail.Body.String() {
		t.Errorf("Bodies differ: %q vs %q", wrongPassword.Body.String(), unknownEmail.Body.String())
	}
}

func TestLoginRejectsOAuthOnlyAccount(t *testing.T) {
	local, store := newTestLocalAuth(t)

	if _, err := store.CreateUser(&auth.User{
		Name:     "OAuth User",
		Email:    "oauth@example.com",
		GoogleID: "google-sub-1",
	}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	rr := postJSON(local.HandleLogin, "/auth/user/login",
		`{"email": "oauth@example.com", "password": "password123"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for oauth-only account, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), auth.ErrCodeInvalidCreds) {
		t.Errorf("Expected %q, got: %s", auth.ErrCodeInvalidCreds, rr.Body.String())
	}
}

func TestUpdatePassword(t *testing.T) {
	local, store := newTestLocalAuth(t)

	user, err := store.CreateUser(&auth.User{
		Name:     "OAuth User",
		Email:    "hybrid@example.com",
		GoogleID: "google-sub-2",
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/user/updatepassword",
		strings.NewReader(`{"password": "newpassword1"}`))
	req.Header.Set("Content-Type", "application/json")
	req = auth.WithLoggedInUser(req, user.ID)
	rr := httptest.NewRecorder()
	local.HandleUpdatePassword(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d. Body: %s", rr.Code, rr.Body.String())
	}

	// The OAuth-only account is now hybrid and can log in locally.
	login := postJSON(local.HandleLogin, "/auth/user/login",
		`{"email": "hybrid@example.com", "password": "newpassword1"}`)
	if login.Code != http.StatusOK {
		t.Errorf("Expected login with new password to succeed, got %d: %s", login.Code, login.Body.String())
	}

	updated, err := store.GetUserByID(user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if updated.Kind() != auth.KindHybrid {
		t.Errorf("Expected hybrid account, got %q", updated.Kind())
	}
}

func TestUpdatePasswordValidation(t *testing.T) {
	local, store := newTestLocalAuth(t)

	user, err := store.CreateUser(&auth.User{Name: "U", Email: "pw@example.com", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/user/updatepassword",
		strings.NewReader(`{"password": "short"}`))
	req.Header.Set("Content-Type", "application/json")
	req = auth.WithLoggedInUser(req, user.ID)
	rr := httptest.NewRecorder()
	local.HandleUpdatePassword(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for short password, got %d", rr.Code)
	}
}
