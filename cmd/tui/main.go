package main

import (
	"fmt"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/pflag"

	"github.com/david/grantdraft/internal/client"
	"github.com/david/grantdraft/internal/config"
	"github.com/david/grantdraft/internal/dashboard"
	"github.com/david/grantdraft/internal/logging"
	"github.com/david/grantdraft/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Get()

	flags := pflag.NewFlagSet("grantdraft-tui", pflag.ContinueOnError)
	apiURL := flags.String("api-url", cfg.APIURL, "grants API base URL")
	logFile := flags.String("log-file", "grantdraft-tui.log", "file to write logs to")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	cfg.APIURL = *apiURL
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closer, err := logging.NewFileLogger(*logFile, logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer closer.Close()

	clk := clockwork.NewRealClock()
	apiClient := client.New(cfg.APIURL, client.WithTimeout(cfg.RequestTimeout))
	return tui.Run(tui.Options{
		Loader:   dashboard.NewLoader(apiClient, clk, logger, cfg.LoaderConfig()),
		Clock:    clk,
		Logger:   logger,
		Initial:  cfg.InitialFilter(),
		Debounce: cfg.Debounce,
	})
}
