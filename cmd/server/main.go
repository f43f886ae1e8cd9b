package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/rohits-web03/codedrop/internal/api"
	"github.com/rohits-web03/codedrop/internal/app"
	"github.com/rohits-web03/codedrop/internal/config"
	"github.com/rohits-web03/codedrop/internal/scheduler"
)

const shutdownTimeout = 15 * time.Second

func main() {
	conf, err := config.Load()
	if err == nil {
		err = conf.Validate()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := app.NewLogger(conf.Log)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, conf, logger); err != nil {
		logger.Error("server exited", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, conf config.Config, logger *zap.Logger) error {
	a, err := app.New(ctx, conf, logger)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	sweeps, err := scheduler.New(ctx, conf.Sweep.Schedule, a.Manager, logger)
	if err != nil {
		return err
	}
	sweeps.Start()

	handler := api.SetupRouter(api.RouterConfig{
		Transfers:      a.Manager,
		MaxUploadBytes: conf.Transfer.MaxUploadBytes,
		LocalBlobs:     a.LocalBlobs(),
		Cors:           conf.CorsConfig,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", conf.Port),
		Handler: handler,
		// Timeouts prevent resource exhaustion from slow clients
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting codedrop server", zap.String("port", conf.Port), zap.String("env", conf.Environment))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return errors.Wrapf(err, "listen on port %s", conf.Port)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	sweeps.Stop(shutdownCtx)
	if err := server.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	logger.Info("server stopped")
	return nil
}
