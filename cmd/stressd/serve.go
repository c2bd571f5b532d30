package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stresscheck/db"
	qhttp "stresscheck/http"
	"stresscheck/monitoring"
	"stresscheck/sensor"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the detection page, JSON API and event stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port > 0 {
				a.cfg.Http.Port = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (overrides http.port)")
	return cmd
}

// serve runs until ctx is cancelled, then drains in-flight requests.
func (a *app) serve(ctx context.Context) error {
	detector, err := a.loadDetector()
	if err != nil {
		return err
	}

	deps := qhttp.Deps{
		Detector: detector,
		Source:   sensor.NewFetcher(a.cfg.Sheet.URL, a.cfg.Sheet.Timeout),
		Stats:    monitoring.NewStats(),
		Logger:   a.logger,
	}

	if a.cfg.Database.Path != "" {
		store, err := db.Open(a.cfg.Database.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		deps.History = store
		a.logger.Info("detection history enabled", zap.String("path", a.cfg.Database.Path))
	} else {
		a.logger.Info("detection history disabled")
	}

	hub := monitoring.NewHub(a.logger)
	go hub.Run()
	defer hub.Stop()
	deps.Events = hub
	deps.Stream = hub

	handlers, err := qhttp.NewHandlers(deps)
	if err != nil {
		return err
	}

	serverCfg := qhttp.DefaultServerConfig()
	serverCfg.Port = a.cfg.Http.Port
	serverCfg.Timeout = a.cfg.Http.Timeout
	server := qhttp.NewServer(serverCfg, handlers, a.logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		a.logger.Warn("server forced to shutdown", zap.Error(err))
	}
	return nil
}
