package api

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/david/grantdraft/internal/catalog"
	"github.com/david/grantdraft/internal/dashboard"
	"github.com/david/grantdraft/internal/filter"
	"github.com/david/grantdraft/internal/format"
)

type option struct {
	Value    string
	Label    string
	Selected bool
}

type pageLink struct {
	Label    string
	URL      string
	Current  bool
	Ellipsis bool
}

func (s *Server) handleDashboard(c echo.Context) error {
	state := filter.FromQuery(c.QueryParams(), s.initial)
	view := dashboard.NewView(state)
	defer view.Close()
	// The sort selector posts one combined key such as "amount_desc".
	if key := c.QueryParam("sort_key"); key != "" {
		if _, err := view.Filter.SetSort(key); err != nil {
			s.logger.Debug("ignoring sort key", "sort_key", key, "error", err)
		}
	}

	s.Loader.Refresh(c.Request().Context(), view)
	job := s.currentJob()
	applySyncState(view, c.QueryParam("sync"), job)

	now := s.clock.Now()
	state = view.Filter.State()
	query := state.Query()

	data := map[string]any{
		"Title":       dashboard.AppTitle + " - " + dashboard.AppSubtitle,
		"Query":       query,
		"Keyword":     state.Keyword,
		"Limit":       state.Limit,
		"Stats":       view.Stats(),
		"Rows":        dashboard.Rows(view.Grants(), now),
		"Statuses":    statusOptions(state),
		"Sources":     sourceOptions(state),
		"SortOptions": sortOptions(state),
		"DebounceMS":  s.debounce.Milliseconds(),
		"Syncing":     view.Syncing,
		"Notice":      view.Notice,
		"NoticeError": view.SyncErr != nil,
	}
	if title, hint := view.Message(); title != "" {
		data["Message"] = title
		data["Hint"] = hint
	}
	if synced := view.LastSynced(); synced != "" {
		data["LastSynced"] = format.DateTimeIn(synced, now.Location())
	}
	if p, ok := view.Pager(); ok && p.Visible() {
		data["Pager"] = pagerData(p, state)
	}
	if view.Syncing {
		data["RefreshURL"] = dashboardURL(query, "done")
		data["RefreshSeconds"] = s.refreshSeconds()
	}

	status := http.StatusOK
	if view.Err != nil && view.List == nil {
		status = http.StatusBadGateway
	}
	return c.Render(status, "dashboard", data)
}

// applySyncState reflects the tracked job on the view. flag is the value
// the sync form redirect appended to the dashboard URL.
func applySyncState(v *dashboard.View, flag string, job *syncJob) {
	if job != nil && job.Status == jobRunning {
		v.BeginSync()
		if flag == "started" {
			v.Notice = dashboard.MsgSyncStarted
		}
		return
	}
	switch flag {
	case "started", "done", "failed":
	default:
		return
	}

	var err error
	if flag == "failed" || (job != nil && job.Status == jobFailed) {
		msg := "sync failed"
		if job != nil && job.Error != "" {
			msg = job.Error
		}
		err = errors.New(msg)
	}
	v.BeginSync()
	v.FinishSync(err)
}

// refreshSeconds is how long a dashboard showing a running sync waits
// before reloading.
func (s *Server) refreshSeconds() int {
	cfg := s.Loader.Config()
	wait := cfg.SyncDelay
	if cfg.SyncMode == dashboard.SyncModePoll {
		wait = cfg.PollInterval
	}
	return max(1, int(math.Ceil(wait.Seconds())))
}

func statusOptions(state filter.State) []option {
	opts := []option{{Label: dashboard.OptionAllStatuses, Selected: state.Status == ""}}
	for _, e := range catalog.Default().Statuses {
		opts = append(opts, option{Value: e.ID, Label: e.Label, Selected: e.ID == string(state.Status)})
	}
	return opts
}

func sourceOptions(state filter.State) []option {
	opts := []option{{Label: dashboard.OptionAllSources, Selected: state.Source == ""}}
	for _, e := range catalog.Default().Sources {
		opts = append(opts, option{Value: e.ID, Label: e.Label, Selected: e.ID == string(state.Source)})
	}
	return opts
}

func sortOptions(state filter.State) []option {
	current := state.SortKey()
	return lo.Map(filter.SortOptions(), func(o filter.SortOption, _ int) option {
		return option{Value: o.Key(), Label: o.Label, Selected: o.Key() == current}
	})
}

func pagerData(p dashboard.Pager, state filter.State) map[string]any {
	link := func(n int) string {
		return "/?" + state.WithPage(n).Query()
	}
	pages := lo.Map(p.Items(), func(item dashboard.PageItem, _ int) pageLink {
		if item.Ellipsis {
			return pageLink{Label: "...", Ellipsis: true}
		}
		return pageLink{Label: format.Count(item.Number), URL: link(item.Number), Current: item.Current}
	})

	data := map[string]any{
		"Label": p.Label(),
		"Pages": pages,
	}
	if p.HasPrev() {
		data["PrevURL"] = link(p.Prev())
	}
	if p.HasNext() {
		data["NextURL"] = link(p.Next())
	}
	return data
}

func (s *Server) handleGrantDetail(c echo.Context) error {
	id := c.Param("id")
	back := "/?" + s.returnQuery(c.QueryParam("return"))

	detail := dashboard.NewDetailView(id)
	detail.Apply(s.Loader.LoadDetail(c.Request().Context(), id))

	if msg := detail.Message(); msg != "" {
		status := http.StatusNotFound
		if detail.Err != nil {
			status = http.StatusBadGateway
		}
		return c.Render(status, "error", map[string]any{
			"Title":   msg + " - " + dashboard.AppTitle,
			"Message": msg,
			"BackURL": back,
		})
	}

	return c.Render(http.StatusOK, "detail", detailData(detail, back, s.clock.Now()))
}

func detailData(d *dashboard.DetailView, back string, now time.Time) map[string]any {
	g := d.Grant
	loc := now.Location()
	cat := catalog.Default()

	return map[string]any{
		"Title":        g.Title + " - " + dashboard.AppTitle,
		"BackURL":      back,
		"Grant":        g,
		"Source":       cat.Source(string(g.Source)),
		"Status":       cat.Status(string(g.Status)),
		"Category":     lo.FromPtr(g.Category),
		"Start":        optionalDate(g.ApplicationStart, loc),
		"Deadline":     optionalDate(g.ApplicationDeadline, loc),
		"DeadlineSoon": g.ApplicationDeadline != nil && format.DeadlineSoonAt(*g.ApplicationDeadline, now),
		"Amount":       format.AmountRange(g.AmountMin, g.AmountMax),
		"DetailURL":    lo.FromPtr(g.DetailURL),
		"GuidelineURL": lo.FromPtr(g.GuidelineURL),
		"Summary":      lo.FromPtr(g.Summary),
		"Audience":     lo.FromPtr(g.TargetAudience),
		"RawJSON":      d.RawJSON(),
		"GrantSynced":  format.DateTimeIn(g.LastSyncedAt, loc),
		"CreatedAt":    format.DateTimeIn(g.CreatedAt, loc),
		"UpdatedAt":    format.DateTimeIn(g.UpdatedAt, loc),
	}
}

func optionalDate(s *string, loc *time.Location) string {
	if s == nil {
		return format.NotAvailable
	}
	return format.DateIn(*s, loc)
}
