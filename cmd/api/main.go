// cmd/api/main.go

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mixee/internal/adapter/bus"
	"mixee/internal/app"
	"mixee/internal/config"
	"mixee/internal/logging"
	"mixee/internal/server"
	"mixee/internal/server/handlers"
)

var (
	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mixee",
	Short: "Mixee live-activity simulation service",
	Long: `Runs the simulated live-activity pulse, feed and navigation badges
behind an HTTP and WebSocket surface for the Mixee deck.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		logger, err = logging.New(cfg.Environment, cfg.Log.Level)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and WebSocket server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(simulateCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func serve(ctx context.Context) error {
	application, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer application.Dispose()

	hub := handlers.NewStreamHub(application.Pulse, application.Badges, application.Shell, logger.Named("stream"))
	hub.Attach()

	// Optional NATS fan-out
	if cfg.NATS.URL != "" {
		natsConn, err := bus.Connect(bus.Config{
			URL:            cfg.NATS.URL,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectTimeout: cfg.NATS.ConnectTimeout,
		}, logger.Named("nats"))
		if err != nil {
			return err
		}
		defer natsConn.Close()

		bus.NewPublisher(natsConn, cfg.NATS.Topic, logger.Named("bus")).Attach(application.Pulse, application.Badges)
	}

	httpServer := server.NewServer(cfg.Server, server.Dependencies{
		Pulse:    application.Pulse,
		Badges:   application.Badges,
		Shell:    application.Shell,
		Sections: application.Catalog.NavSections(),
		Setup:    application.Setup,
		Hub:      hub,
	}, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", zap.String("host", cfg.Server.Host), zap.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Stop schedules before the hub so no tick is left waiting on it
		application.Dispose()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server shutdown error: %w", err)
		}
		return nil
	})

	if cfg.Simulation.AutoStart {
		application.Pulse.SetActive(true)
		application.Badges.SetActive(true)
	}

	err = g.Wait()
	logger.Info("Shutdown complete")
	return err
}
