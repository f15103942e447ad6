package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer mints and verifies the signed session tokens clients carry in
// the jwt-token header. Tokens are HS256 with the user id as subject.
type Issuer struct {
	SecretKey string
	Issuer    string

	// Expiry of 0 issues non-expiring tokens.
	Expiry time.Duration
}

func (i *Issuer) Issue(userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("cannot issue token without a user id")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iss": i.Issuer,
		"iat": now.Unix(),
	}
	if i.Expiry != 0 {
		claims["exp"] = now.Add(i.Expiry).Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(i.SecretKey))
}

// Verify checks the signature (and expiry, when present) and returns the
// subject user id. Tampered or malformed input comes back as an error,
// never a panic.
func (i *Issuer) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return []byte(i.SecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims == nil {
		return "", fmt.Errorf("claims is not a map")
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return "", err
	}
	if sub == "" {
		return "", fmt.Errorf("subject not found")
	}
	return sub, nil
}
