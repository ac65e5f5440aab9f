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
	"github.com/david/grantdraft/internal/dashboard"
	"github.com/david/grantdraft/internal/filter"
)

func main() {
	cfg := config.Get()

	apiURL := pflag.String("api-url", cfg.APIURL, "grants API base URL")
	status := pflag.String("status", "", "status filter (open, closing_soon, closed, upcoming)")
	source := pflag.String("source", "", "source filter (jgrants, erad)")
	keyword := pflag.StringP("keyword", "k", "", "keyword filter")
	sortKey := pflag.String("sort", "deadline_asc", "sort selector, e.g. amount_desc")
	page := pflag.IntP("page", "p", 1, "page number")
	limit := pflag.IntP("limit", "n", cfg.PageSize, "page size")
	pflag.Parse()

	m := filter.NewManager(filter.Default())
	if _, err := m.SetSort(*sortKey); err != nil {
		log.Fatal(err)
	}
	if _, err := m.Set(filter.Patch{Status: status, Source: source, Keyword: keyword, Limit: limit}); err != nil {
		log.Fatal(err)
	}
	m.SetPage(*page)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	c := client.New(*apiURL, client.WithTimeout(cfg.RequestTimeout))
	resp, err := c.ListGrants(ctx, m.State())
	if err != nil {
		log.Fatal(err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{
		dashboard.ColSource, dashboard.ColTitle, dashboard.ColOrganization,
		dashboard.ColAmount, dashboard.ColDeadline, dashboard.ColStatus,
	})
	for _, r := range dashboard.Rows(resp.Data, time.Now()) {
		deadline := r.Deadline
		if r.DeadlineSoon {
			deadline += " !"
		}
		t.AppendRow(table.Row{r.Source.Label, r.Title, r.Organization, r.Amount, deadline, r.Status.Label})
	}
	t.AppendFooter(table.Row{"", dashboard.NewPager(resp.Pagination).Label()})
	t.Render()
}
