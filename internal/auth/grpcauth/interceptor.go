// Package grpcauth applies the access-token guard to gRPC servers. The token
// is read from the "authorization" metadata key in the same Bearer form the
// HTTP API uses.
//
// The auth binary only serves HTTP. This package is the entry point for
// services that embed a TokenService and expose their own gRPC API; install
// both interceptors with grpc.UnaryInterceptor and grpc.StreamInterceptor.
package grpcauth

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
	"github.com/aussiebroadwan/sessionauth/pkg/slogx"
)

// MetadataKey is where callers put "Bearer <access token>".
const MetadataKey = "authorization"

// Authorizer is satisfied by service.TokenService.
type Authorizer interface {
	Authorize(ctx context.Context, presented string) (domain.Identity, error)
}

type ctxKey struct{}

// IdentityFromContext returns the identity placed by the interceptors.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(domain.Identity)
	return id, ok
}

// errUnauthenticated is the only status a rejected call ever sees.
var errUnauthenticated = status.Error(codes.Unauthenticated, "invalid access token")

func authorize(ctx context.Context, a Authorizer) (context.Context, error) {
	var presented string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get(MetadataKey); len(vals) > 0 {
			presented = vals[0]
		}
	}

	identity, err := a.Authorize(ctx, presented)
	if err != nil {
		return nil, errUnauthenticated
	}

	ctx = context.WithValue(ctx, ctxKey{}, identity)
	return slogx.With(ctx, "sub", identity.Identifier), nil
}

// UnaryServerInterceptor rejects unary calls without a valid access token.
func UnaryServerInterceptor(a Authorizer) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx, err := authorize(ctx, a)
		if err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// StreamServerInterceptor rejects streams without a valid access token. The
// token is checked once when the stream opens.
func StreamServerInterceptor(a Authorizer) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx, err := authorize(ss.Context(), a)
		if err != nil {
			return err
		}
		return handler(srv, &authedStream{ServerStream: ss, ctx: ctx})
	}
}

type authedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *authedStream) Context() context.Context { return s.ctx }
