// Package server wires storage, services and both transports together and
// runs them until a signal arrives or one of the servers fails.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/followhub/internal/logging"
	"github.com/dmitrijs2005/followhub/internal/server/config"
	"github.com/dmitrijs2005/followhub/internal/server/docstore"
	"github.com/dmitrijs2005/followhub/internal/server/docstore/memory"
	"github.com/dmitrijs2005/followhub/internal/server/docstore/postgres"
	"github.com/dmitrijs2005/followhub/internal/server/httpapi"
	"github.com/dmitrijs2005/followhub/internal/server/services"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/followhub/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	store    docstore.Store
	registry *services.Registry
	ledger   *services.Ledger
	feed     *services.FeedAssembler
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)
	return newApp(ctx, c, logger)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	store, err := openStore(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	logger.Info(ctx, "storage ready", "backend", c.StorageBackend)

	return &App{
		config:   c,
		logger:   logger,
		store:    store,
		registry: services.NewRegistry(store, c, logger),
		ledger:   services.NewLedger(store, c, logger),
		feed:     services.NewFeedAssembler(store, c, logger),
	}, nil
}

func openStore(ctx context.Context, c *config.Config) (docstore.Store, error) {
	switch c.StorageBackend {
	case config.StorageMemory:
		return memory.New(), nil
	case config.StoragePostgres:
		return postgres.Open(ctx, c.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "signal received", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run serves HTTP and gRPC until ctx is cancelled, a signal arrives or a
// server fails. The store is closed before Run returns.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return httpapi.NewHTTPServer(app.config, app.logger, app.registry, app.ledger, app.feed).Run(ctx)
	})
	g.Go(func() error {
		return gs.NewGRPCServer(app.config, app.logger, app.registry, app.ledger, app.feed).Run(ctx)
	})

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "server failed", "err", err)
	}

	if cerr := app.store.Close(); cerr != nil {
		app.logger.Error(ctx, "storage close failed", "err", cerr)
	}

	app.logger.Info(ctx, "App stopped")
	return err
}
