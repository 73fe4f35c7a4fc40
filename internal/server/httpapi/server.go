// Package httpapi serves the browser-facing JSON API. The session credential
// travels in the privateUserID cookie or as a bearer token.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/followhub/internal/logging"
	"github.com/dmitrijs2005/followhub/internal/server/config"
	"github.com/dmitrijs2005/followhub/internal/server/services"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
	maxBodyBytes      = 1 << 20
)

type HTTPServer struct {
	address         string
	registry        *services.Registry
	ledger          *services.Ledger
	feed            *services.FeedAssembler
	logger          logging.Logger
	jwtSecret       []byte
	sessionValidity time.Duration
}

func NewHTTPServer(cfg *config.Config, l logging.Logger, r *services.Registry, ld *services.Ledger, f *services.FeedAssembler) *HTTPServer {
	return &HTTPServer{
		address:         cfg.EndpointAddrHTTP,
		registry:        r,
		ledger:          ld,
		feed:            f,
		logger:          l.With("module", "http_server"),
		jwtSecret:       []byte(cfg.SecretKey),
		sessionValidity: cfg.SessionValidityDuration,
	}
}

// Routes returns the API mux wrapped in request logging.
func (s *HTTPServer) Routes() http.Handler {
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", s.Health)
	mux.HandleFunc("POST /api/create_user", s.CreateUser)

	// Session required
	mux.Handle("GET /api/user_info", s.requireSession(http.HandlerFunc(s.UserInfo)))
	mux.Handle("GET /api/users_feed", s.requireSession(http.HandlerFunc(s.UsersFeed)))
	mux.Handle("POST /api/follow_user", s.requireSession(http.HandlerFunc(s.FollowUser)))

	return s.logRequests(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Routes(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
