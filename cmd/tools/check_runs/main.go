package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/pflag"

	"github.com/david/grantdraft/internal/client"
	"github.com/david/grantdraft/internal/config"
	"github.com/david/grantdraft/internal/format"
)

func main() {
	cfg := config.Get()
	apiURL := pflag.String("api-url", cfg.APIURL, "grants API base URL")
	pflag.Parse()

	ids := pflag.Args()
	if len(ids) == 0 {
		log.Fatal("usage: check_runs [--api-url URL] SCRAPE_LOG_ID...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()
	c := client.New(*apiURL, client.WithTimeout(cfg.RequestTimeout))

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Source", "Status", "Found", "Created", "Updated", "Duration", "Started At", "Error"})

	for _, id := range ids {
		run, err := c.GetSyncStatus(ctx, id)
		if err != nil {
			log.Printf("%s: %v", id, err)
			continue
		}

		duration := "Running..."
		started, okStart := format.Parse(run.StartedAt, time.Local)
		if run.FinishedAt != nil {
			if finished, ok := format.Parse(*run.FinishedAt, time.Local); ok && okStart {
				duration = finished.Sub(started).Round(time.Second).String()
			}
		}
		errMsg := ""
		if run.ErrorMessage != nil {
			errMsg = *run.ErrorMessage
		}

		t.AppendRow(table.Row{run.SourceID, run.Status, run.RecordsFound, run.RecordsCreated, run.RecordsUpdated,
			duration, format.DateTime(run.StartedAt), errMsg})
	}
	t.Render()
}
