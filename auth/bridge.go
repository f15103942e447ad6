package auth

import (
	"errors"
	"fmt"
	"log/slog"
)

// ProviderProfile is the subset of an identity provider's userinfo
// response the bridge cares about.
type ProviderProfile struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// ProfileFromUserInfo maps a raw userinfo payload to a ProviderProfile.
// Google returns the subject under "id" on the v2 endpoint and "sub" on
// the OIDC one; accept either.
func ProfileFromUserInfo(info map[string]any) ProviderProfile {
	str := func(key string) string {
		if v, ok := info[key].(string); ok {
			return v
		}
		return ""
	}
	subject := str("sub")
	if subject == "" {
		subject = str("id")
	}
	return ProviderProfile{
		Subject: subject,
		Email:   str("email"),
		Name:    str("name"),
		Picture: str("picture"),
	}
}

// OAuthBridge reconciles provider identities with local user records.
type OAuthBridge struct {
	Store UserStore
}

// EnsureUser finds the user owning the profile's email, or creates one
// from the profile on first login. Existing records are returned as-is:
// repeat logins never overwrite a locally chosen name or picture.
func (b *OAuthBridge) EnsureUser(profile ProviderProfile) (*User, error) {
	if profile.Email == "" {
		return nil, fmt.Errorf("provider profile has no email")
	}

	user, err := b.Store.GetUserByEmail(profile.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	user, err = b.Store.CreateUser(&User{
		Name:     profile.Name,
		Email:    profile.Email,
		GoogleID: profile.Subject,
		Picture:  profile.Picture,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("created user from oauth profile", "user", user.ID)
	return user, nil
}
