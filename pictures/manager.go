// Package pictures manages profile picture files: replacing a user's
// picture without ever leaving the record pointing at a deleted file,
// and serving it back.
package pictures

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/lakshc/picauth/auth"
)

// Manager replaces and resolves stored picture files for users.
type Manager struct {
	Store auth.UserStore

	// Dir is the managed upload directory. Picture values outside it
	// (provider URLs) are passed through untouched.
	Dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewManager(store auth.UserStore, dir string) *Manager {
	return &Manager{
		Store: store,
		Dir:   dir,
		locks: make(map[string]*sync.Mutex),
	}
}

// userLock returns the mutex serializing picture updates for one user,
// so interleaved uploads cannot delete a file the record still points
// at.
func (m *Manager) userLock(userID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[userID] = lock
	}
	return lock
}

// Replace stores a new picture for the user and returns its path. The
// order is write-new, commit, delete-old: the new file lands on disk
// first, the record is updated, and only then is the previous file
// removed. A failed delete leaves a stray file, never a broken record.
func (m *Manager) Replace(userID string, file io.Reader, originalName string) (string, error) {
	lock := m.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	user, err := m.Store.GetUserByID(userID)
	if err != nil {
		return "", err
	}

	ext := filepath.Ext(originalName)
	if ext == "" {
		ext = ".jpg"
	}
	newPath := filepath.Join(m.Dir, uuid.NewString()+ext)

	if err := writeFile(newPath, file); err != nil {
		return "", fmt.Errorf("storing picture: %w", err)
	}

	if err := m.Store.UpdatePicture(userID, newPath); err != nil {
		if removeErr := os.Remove(newPath); removeErr != nil {
			slog.Warn("removing orphaned picture failed", "path", newPath, "error", removeErr)
		}
		return "", err
	}

	if old := user.Picture; old != "" && m.Managed(old) {
		if err := os.Remove(old); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("deleting previous picture failed", "path", old, "error", err)
		}
	}

	return newPath, nil
}

// Managed reports whether a picture value refers to a file under the
// upload directory, as opposed to a provider-supplied URL.
func (m *Manager) Managed(picture string) bool {
	if picture == "" || strings.Contains(picture, "://") {
		return false
	}
	rel, err := filepath.Rel(m.Dir, filepath.Clean(picture))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func writeFile(path string, src io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return err
	}
	return dst.Close()
}
