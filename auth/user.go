package auth

import "time"

// AccountKind classifies a user record by which credentials it carries.
// The kind is derived from the record rather than stored, so an account
// moves from OAuth to Hybrid the moment a password is set.
type AccountKind string

const (
	KindLocal  AccountKind = "local"  // password hash only
	KindOAuth  AccountKind = "oauth"  // provider subject only
	KindHybrid AccountKind = "hybrid" // both
)

// User is the unified account record shared by the local-credential and
// OAuth flows. Email is the lookup key across both: the same email must
// resolve to the same record regardless of how it was created.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name,omitempty"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	GoogleID     string    `json:"googleId,omitempty"`
	Picture      string    `json:"picture,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitzero"`
	UpdatedAt    time.Time `json:"updated_at,omitzero"`
}

func (u *User) Kind() AccountKind {
	switch {
	case u.PasswordHash != "" && u.GoogleID != "":
		return KindHybrid
	case u.GoogleID != "":
		return KindOAuth
	default:
		return KindLocal
	}
}

// Sanitized returns a copy safe to put in a response body. The password
// hash never serializes, and for hybrid accounts the provider subject is
// hidden too; OAuth-only accounts keep it so clients can offer the
// "set a password" flow.
func (u *User) Sanitized() *User {
	out := *u
	if u.Kind() == KindHybrid {
		out.GoogleID = ""
	}
	return &out
}

// WithoutPicture returns a sanitized copy with the picture reference
// stripped, for endpoints that serve the picture separately.
func (u *User) WithoutPicture() *User {
	out := u.Sanitized()
	out.Picture = ""
	return out
}

// UserStore persists user records. Implementations must return
// ErrUserNotFound / ErrUserExists so callers can map failures to the
// right response without inspecting message text.
type UserStore interface {
	// CreateUser persists a new user, assigning an ID if unset, and
	// fails with ErrUserExists when the email is already registered.
	CreateUser(user *User) (*User, error)

	GetUserByID(id string) (*User, error)
	GetUserByEmail(email string) (*User, error)

	// UpdatePasswordHash overwrites the stored hash unconditionally.
	UpdatePasswordHash(id string, hash string) error

	// UpdatePicture records a new picture reference for the user.
	UpdatePicture(id string, picture string) error
}
