package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/six78/gamelobby/internal/config"
	"github.com/six78/gamelobby/internal/server/admin"
	"github.com/six78/gamelobby/internal/server/gaming"
	"github.com/six78/gamelobby/internal/server/network"
	"github.com/six78/gamelobby/internal/version"
	"github.com/six78/gamelobby/pkg/plugin"
	"github.com/six78/gamelobby/pkg/plugin/minimal"
	"github.com/six78/gamelobby/pkg/storage"
)

const shutdownTimeout = 5 * time.Second

func main() {
	err := config.ParseArguments(os.Args[0], os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	config.SetupLogger()
	defer func() { _ = config.Logger.Sync() }()

	config.Logger.Info("starting lobby server", zap.String("version", version.Version()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = run(ctx)
	if err != nil {
		config.Logger.Error("server failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	logger := config.Logger

	registry := plugin.NewRegistry(minimal.New())

	replays := storage.NewLocalStorage(config.ReplayDir())
	err := replays.Initialize()
	if err != nil {
		return errors.Wrap(err, "failed to initialize storage")
	}

	prometheusRegistry := prometheus.NewRegistry()
	prometheusRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := gaming.NewMetrics(prometheusRegistry)

	manager := gaming.NewManager(registry,
		gaming.WithLogger(logger),
		gaming.WithClock(clockwork.NewRealClock()),
		gaming.WithStorage(replays),
		gaming.WithSaveReplays(config.SaveReplays()),
		gaming.WithPauseOnJoin(config.Paused()),
		gaming.WithLoadFile(config.LoadFile(), config.LoadTurn()),
		gaming.WithMetrics(metrics),
	)

	if config.Password() == "" {
		logger.Warn("no password configured, administrative requests are disabled")
	}

	lobby := network.NewLobby(manager,
		network.WithLogger(logger),
		network.WithPassword(config.Password()),
		network.WithMetrics(metrics),
	)

	server, err := network.Listen(config.Address(), lobby, logger)
	if err != nil {
		return errors.Wrap(err, "failed to start lobby")
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(server.Run)

	var httpServer *http.Server
	if config.HTTPAddress() != "" {
		httpServer = &http.Server{
			Addr:              config.HTTPAddress(),
			Handler:           admin.SetupRoutes(manager, server, prometheusRegistry, logger),
			ReadHeaderTimeout: 10 * time.Second,
		}
		group.Go(func() error {
			logger.Info("admin http listening", zap.String("address", httpServer.Addr))
			err := httpServer.ListenAndServe()
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return errors.Wrap(err, "admin http failed")
		})
	}

	group.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var err error
		if httpServer != nil {
			err = multierr.Append(err, httpServer.Shutdown(shutdownCtx))
		}
		return multierr.Append(err, server.Stop())
	})

	return group.Wait()
}
