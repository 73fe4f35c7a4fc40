package grpc

import (
	"context"

	"github.com/dmitrijs2005/followhub/internal/common"
	pb "github.com/dmitrijs2005/followhub/internal/proto"
	"github.com/dmitrijs2005/followhub/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const privateIDKey ctxKey = "privateID"

// authenticated lists the methods that act on behalf of a registered user.
var authenticated = map[string]bool{
	pb.MethodGetProfile: true,
	pb.MethodGetFeed:    true,
	pb.MethodFollow:     true,
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	if authenticated[info.FullMethod] {

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

		privateID, err := auth.GetPrivateIDFromToken(accessToken, s.jwtSecret)
		if err != nil {
			s.logger.Warn(ctx, "rejected token", "method", info.FullMethod, "err", err)
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}

		ctx = context.WithValue(ctx, privateIDKey, privateID)
	}

	return handler(ctx, req)
}

func privateIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(privateIDKey).(string)
	return id, ok && id != ""
}
