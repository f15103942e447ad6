package grpcauth

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UnaryAuthInterceptor returns a unary interceptor that verifies the
// session token from metadata and puts the user id on the context.
func UnaryAuthInterceptor(config *Config) grpc.UnaryServerInterceptor {
	config.EnsureDefaults()

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		userID := resolveUserID(ctx, config)

		if config.RequireAuth && !config.PublicMethods[info.FullMethod] && userID == "" {
			return nil, status.Error(codes.Unauthenticated, "authentication required")
		}

		if userID != "" {
			ctx = context.WithValue(ctx, userIDKey{}, userID)
		}
		return handler(ctx, req)
	}
}

// StreamAuthInterceptor returns the stream counterpart. Streams only
// gate on authentication; handlers needing the user id should re-read
// the metadata from the stream context.
func StreamAuthInterceptor(config *Config) grpc.StreamServerInterceptor {
	config.EnsureDefaults()

	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		userID := resolveUserID(ss.Context(), config)

		if config.RequireAuth && !config.PublicMethods[info.FullMethod] && userID == "" {
			return status.Error(codes.Unauthenticated, "authentication required")
		}

		return handler(srv, ss)
	}
}
