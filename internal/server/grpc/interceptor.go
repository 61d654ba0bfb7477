package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/notesync/internal/common"
	"github.com/dmitrijs2005/notesync/internal/rpc"
	"github.com/dmitrijs2005/notesync/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Info(ctx, "handled", "method", info.FullMethod, "code", status.Code(err).String(), "duration", time.Since(start))
	return resp, err
}

// accessTokenInterceptor guards every method except Ping when a secret is
// configured. Expired tokens are reported with common.ErrTokenExpired as the
// status message.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if len(s.jwtSecret) == 0 || info.FullMethod == rpc.MethodPing {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	clientID, err := auth.GetClientIDFromToken(accessToken, s.jwtSecret)
	if errors.Is(err, common.ErrTokenExpired) {
		return nil, status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
	}
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	return handler(auth.WithClientID(ctx, clientID), req)
}
