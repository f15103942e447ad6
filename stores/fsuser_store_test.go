package stores_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakshc/picauth/auth"
	"github.com/lakshc/picauth/stores"
)

func TestCreateAndLookup(t *testing.T) {
	store := stores.NewFSUserStore(t.TempDir())

	user, err := store.CreateUser(&auth.User{
		Name:         "Store User",
		Email:        "store@example.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID, "store must assign an id")
	assert.False(t, user.CreatedAt.IsZero())

	byID, err := store.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)
	assert.Equal(t, "hash", byID.PasswordHash)

	byEmail, err := store.GetUserByEmail("store@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestEmailLookupIsCaseInsensitive(t *testing.T) {
	store := stores.NewFSUserStore(t.TempDir())

	user, err := store.CreateUser(&auth.User{Email: "Mixed@Example.com"})
	require.NoError(t, err)

	byEmail, err := store.GetUserByEmail("mixed@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestDuplicateEmail(t *testing.T) {
	store := stores.NewFSUserStore(t.TempDir())

	_, err := store.CreateUser(&auth.User{Email: "dup@example.com"})
	require.NoError(t, err)

	_, err = store.CreateUser(&auth.User{Email: "dup@example.com"})
	assert.ErrorIs(t, err, auth.ErrUserExists)
}

func TestNotFound(t *testing.T) {
	store := stores.NewFSUserStore(t.TempDir())

	_, err := store.GetUserByID("missing")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)

	_, err = store.GetUserByEmail("missing@example.com")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)

	assert.ErrorIs(t, store.UpdatePasswordHash("missing", "h"), auth.ErrUserNotFound)
	assert.ErrorIs(t, store.UpdatePicture("missing", "p"), auth.ErrUserNotFound)
}

func TestUpdates(t *testing.T) {
	store := stores.NewFSUserStore(t.TempDir())

	user, err := store.CreateUser(&auth.User{
		Email:    "update@example.com",
		GoogleID: "google-sub",
	})
	require.NoError(t, err)

	require.NoError(t, store.UpdatePasswordHash(user.ID, "newhash"))
	require.NoError(t, store.UpdatePicture(user.ID, "upload/pic.jpg"))

	updated, err := store.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "newhash", updated.PasswordHash)
	assert.Equal(t, "upload/pic.jpg", updated.Picture)
	// Updates must not clobber unrelated fields.
	assert.Equal(t, "google-sub", updated.GoogleID)
	assert.Equal(t, "update@example.com", updated.Email)
}
