// Package grpc exposes the follow operations over gRPC.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/followhub/internal/logging"
	pb "github.com/dmitrijs2005/followhub/internal/proto"
	"github.com/dmitrijs2005/followhub/internal/server/config"
	"github.com/dmitrijs2005/followhub/internal/server/services"
	"google.golang.org/grpc"
)

type GRPCServer struct {
	address         string
	registry        *services.Registry
	ledger          *services.Ledger
	feed            *services.FeedAssembler
	logger          logging.Logger
	jwtSecret       []byte
	sessionValidity time.Duration
}

var _ pb.FollowServiceServer = (*GRPCServer)(nil)

func NewGRPCServer(cfg *config.Config, l logging.Logger, r *services.Registry, ld *services.Ledger, f *services.FeedAssembler) *GRPCServer {
	return &GRPCServer{
		address:         cfg.EndpointAddrGRPC,
		logger:          l.With("module", "grpc_server"),
		registry:        r,
		ledger:          ld,
		feed:            f,
		jwtSecret:       []byte(cfg.SecretKey),
		sessionValidity: cfg.SessionValidityDuration,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	srv.RegisterService(&pb.FollowServiceDesc, s)
	return srv
}

// Run serves until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
