package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/david/grantdraft/internal/api"
	"github.com/david/grantdraft/internal/client"
	"github.com/david/grantdraft/internal/config"
	"github.com/david/grantdraft/internal/dashboard"
	"github.com/david/grantdraft/internal/logging"
)

func main() {
	cfg := config.Get()
	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	apiClient := client.New(cfg.APIURL, client.WithTimeout(cfg.RequestTimeout))
	loader := dashboard.NewLoader(apiClient, clockwork.NewRealClock(), logger, cfg.LoaderConfig())

	srv, err := api.NewServer(api.Options{
		Loader:        loader,
		Logger:        logger,
		InitialFilter: cfg.InitialFilter(),
		Debounce:      cfg.Debounce,
	})
	if err != nil {
		logger.Error("failed to build server", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("dashboard starting", "addr", cfg.Addr(), "api_url", cfg.APIURL)
		if err := srv.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("dashboard stopped")
}
