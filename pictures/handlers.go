package pictures

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/lakshc/picauth/auth"
)

// maxUploadBytes caps multipart memory for picture uploads.
const maxUploadBytes = 8 << 20

// HandleUpload serves POST /auth/user/uploadpicture behind the auth
// middleware. Exactly one file, in the multipart field "picture".
func (m *Manager) HandleUpload(w http.ResponseWriter, r *http.Request) {
	userID := auth.LoggedInUserID(r)
	if userID == "" {
		auth.WriteError(w, http.StatusBadRequest, auth.NewAuthError(auth.ErrCodeNotAuthorized, "Not authorized", ""))
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		auth.WriteError(w, http.StatusBadRequest,
			auth.NewAuthError(auth.ErrCodeValidation, "Expected a multipart upload", "picture"))
		return
	}
	file, header, err := r.FormFile("picture")
	if err != nil {
		auth.WriteError(w, http.StatusBadRequest,
			auth.NewAuthError(auth.ErrCodeValidation, "Picture file is required", "picture"))
		return
	}
	defer file.Close()

	if _, err := m.Replace(userID, file, header.Filename); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			auth.WriteError(w, http.StatusBadRequest, auth.NewAuthError(auth.ErrCodeNotFound, "User not found", ""))
			return
		}
		slog.Error("replacing picture failed", "error", err, "user", userID)
		auth.WriteError(w, http.StatusInternalServerError, auth.NewAuthError(auth.ErrCodeStorage, "Internal server error", ""))
		return
	}

	auth.WriteJSON(w, http.StatusOK, map[string]any{
		"error":   false,
		"message": "Successfully uploaded",
	})
}

// HandleFetch serves GET /auth/user/getprofilepicture behind the auth
// middleware. Managed files stream back as bytes; anything else (a
// provider URL, or no picture at all) comes back as JSON.
func (m *Manager) HandleFetch(w http.ResponseWriter, r *http.Request) {
	userID := auth.LoggedInUserID(r)
	if userID == "" {
		auth.WriteError(w, http.StatusBadRequest, auth.NewAuthError(auth.ErrCodeNotAuthorized, "Not authorized", ""))
		return
	}

	user, err := m.Store.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			auth.WriteError(w, http.StatusNotFound, auth.NewAuthError(auth.ErrCodeNotFound, "User not found", ""))
			return
		}
		slog.Error("loading user failed", "error", err, "user", userID)
		auth.WriteError(w, http.StatusInternalServerError, auth.NewAuthError(auth.ErrCodeStorage, "Internal server error", ""))
		return
	}

	if m.Managed(user.Picture) {
		http.ServeFile(w, r, user.Picture)
		return
	}

	auth.WriteJSON(w, http.StatusOK, map[string]any{
		"blobFile": false,
		"picture":  user.Picture,
	})
}
