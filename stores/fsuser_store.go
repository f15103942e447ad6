// Package stores provides a JSON-file-backed UserStore for development
// and tests. The production store lives in stores/gorm.
package stores

import (
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lakshc/picauth/auth"
)

// FSUserStore stores users as JSON files, one per user, with a separate
// email index for lookups by email.
type FSUserStore struct {
	StoragePath string
	mu          sync.Mutex
}

func NewFSUserStore(storagePath string) *FSUserStore {
	return &FSUserStore{StoragePath: storagePath}
}

func (s *FSUserStore) userPath(userID string) string {
	return filepath.Join(s.StoragePath, "users", userID+".json")
}

func (s *FSUserStore) emailPath(email string) string {
	return filepath.Join(s.StoragePath, "emails", url.PathEscape(strings.ToLower(email)))
}

func (s *FSUserStore) CreateUser(user *auth.User) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.emailPath(user.Email)); err == nil {
		return nil, auth.ErrUserExists
	}

	out := *user
	if out.ID == "" {
		out.ID = uuid.NewString()
	}
	out.CreatedAt = time.Now()
	out.UpdatedAt = out.CreatedAt

	if err := s.save(&out); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(s.emailPath(out.Email)), 0755); err != nil {
		return nil, err
	}
	if err := writeAtomicFile(s.emailPath(out.Email), []byte(out.ID)); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *FSUserStore) GetUserByID(userID string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(userID)
}

func (s *FSUserStore) GetUserByEmail(email string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := os.ReadFile(s.emailPath(email))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return s.load(string(id))
}

func (s *FSUserStore) UpdatePasswordHash(userID string, hash string) error {
	return s.update(userID, func(u *auth.User) {
		u.PasswordHash = hash
	})
}

func (s *FSUserStore) UpdatePicture(userID string, picture string) error {
	return s.update(userID, func(u *auth.User) {
		u.Picture = picture
	})
}

func (s *FSUserStore) update(userID string, mutate func(*auth.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.load(userID)
	if err != nil {
		return err
	}
	mutate(user)
	user.UpdatedAt = time.Now()
	return s.save(user)
}

// fsUser is the on-disk shape; unlike the API shape it keeps the hash.
type fsUser struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"`
	GoogleID     string    `json:"google_id,omitempty"`
	Picture      string    `json:"picture,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (s *FSUserStore) load(userID string) (*auth.User, error) {
	data, err := os.ReadFile(s.userPath(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}

	var stored fsUser
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}
	return &auth.User{
		ID:           stored.ID,
		Name:         stored.Name,
		Email:        stored.Email,
		PasswordHash: stored.PasswordHash,
		GoogleID:     stored.GoogleID,
		Picture:      stored.Picture,
		CreatedAt:    stored.CreatedAt,
		UpdatedAt:    stored.UpdatedAt,
	}, nil
}

func (s *FSUserStore) save(user *auth.User) error {
	path := s.userPath(user.ID)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(fsUser{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		GoogleID:     user.GoogleID,
		Picture:      user.Picture,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomicFile(path, data)
}
