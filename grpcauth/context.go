// Package grpcauth lets internal gRPC services accept the same signed
// session token the HTTP API uses, carried as request metadata.
package grpcauth

import (
	"context"

	"google.golang.org/grpc/metadata"
)

// DefaultMetadataKeyToken mirrors the HTTP token header name.
const DefaultMetadataKeyToken = "jwt-token"

type userIDKey struct{}

// Config configures token extraction and verification.
type Config struct {
	// MetadataKeyToken defaults to "jwt-token".
	MetadataKeyToken string

	// VerifyToken resolves a token string to a user id.
	VerifyToken func(tokenString string) (userID string, err error)

	// RequireAuth when true rejects unauthenticated requests.
	RequireAuth bool

	// PublicMethods don't require auth even when RequireAuth is set.
	// Keys are full method names like "/package.Service/Method".
	PublicMethods map[string]bool
}

func (c *Config) EnsureDefaults() {
	if c.MetadataKeyToken == "" {
		c.MetadataKeyToken = DefaultMetadataKeyToken
	}
	if c.PublicMethods == nil {
		c.PublicMethods = make(map[string]bool)
	}
}

// UserIDFromContext returns the user id resolved by the interceptor, or
// "" for unauthenticated requests.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey{}).(string); ok {
		return v
	}
	return ""
}

// TokenToOutgoingContext attaches a session token to an outgoing call.
func TokenToOutgoingContext(ctx context.Context, tokenString string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, DefaultMetadataKeyToken, tokenString)
}

// resolveUserID verifies the token from incoming metadata, if any.
func resolveUserID(ctx context.Context, config *Config) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(config.MetadataKeyToken)
	if len(values) == 0 || values[0] == "" {
		return ""
	}
	userID, err := config.VerifyToken(values[0])
	if err != nil {
		return ""
	}
	return userID
}
