package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/pflag"

	"github.com/david/grantdraft/internal/client"
	"github.com/david/grantdraft/internal/config"
	"github.com/david/grantdraft/internal/dashboard"
	"github.com/david/grantdraft/internal/logging"
	"github.com/david/grantdraft/internal/models"
)

func main() {
	cfg := config.Get()

	apiURL := pflag.String("api-url", cfg.APIURL, "grants API base URL")
	source := pflag.StringP("source", "s", models.SyncAll, "source to sync (all, jgrants, erad)")
	wait := pflag.BoolP("wait", "w", false, "wait for the job to finish")
	pflag.Parse()

	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
	loaderCfg := cfg.LoaderConfig()
	loaderCfg.SyncMode = dashboard.SyncModePoll

	apiClient := client.New(*apiURL, client.WithTimeout(cfg.RequestTimeout))
	loader := dashboard.NewLoader(apiClient, clockwork.NewRealClock(), logger, loaderCfg)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.SyncTimeout+time.Minute)
	defer cancel()

	resp, err := loader.TriggerSync(ctx, *source)
	if err != nil {
		fmt.Printf("Error triggering sync: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s (scrape_log_id=%s)\n", resp.Message, resp.ScrapeLogID)
	if !*wait {
		return
	}

	log, err := loader.AwaitSync(ctx, resp)
	if err != nil {
		fmt.Printf("Error waiting for sync: %v\n", err)
		os.Exit(1)
	}
	if log == nil {
		fmt.Println("Sync status unavailable")
		return
	}
	fmt.Printf("Status: %s  found=%d created=%d updated=%d\n",
		log.Status, log.RecordsFound, log.RecordsCreated, log.RecordsUpdated)
	if log.ErrorMessage != nil && *log.ErrorMessage != "" {
		fmt.Printf("Error: %s\n", *log.ErrorMessage)
		os.Exit(1)
	}
}
