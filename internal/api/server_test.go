package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/david/grantdraft/internal/client"
	"github.com/david/grantdraft/internal/dashboard"
	"github.com/david/grantdraft/internal/filter"
	"github.com/david/grantdraft/internal/format"
	"github.com/david/grantdraft/internal/models"
)

const (
	grantID  = "5f0c6a8e-3d55-4d8a-9f57-0a4a3c1e2b10"
	brokenID = "0b7d9c1e-8f1a-4c55-a2e3-6f5e4d3c2b1a"
	otherID  = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
)

var epoch = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

// backend is a stand-in for the grants REST API.
type backend struct {
	mu          sync.Mutex
	total       int
	failList    bool
	failSync    bool
	listQueries []string
	syncSources []string
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/grants", b.handleList)
	mux.HandleFunc("GET /api/v1/grants/{id}", b.handleDetail)
	mux.HandleFunc("POST /api/v1/grants/sync", b.handleSync)
	return mux
}

func (b *backend) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	b.mu.Lock()
	fail := b.failList
	total := b.total
	if q.Get("sort") != "" {
		b.listQueries = append(b.listQueries, r.URL.RawQuery)
	}
	b.mu.Unlock()

	if fail {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}

	// Status count requests carry only status and limit=1.
	if q.Get("limit") == "1" && q.Get("sort") == "" {
		switch q.Get("status") {
		case "open":
			total = 12
		case "closing_soon":
			total = 3
		}
	}
	if q.Get("keyword") == "none" {
		total = 0
	}

	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	resp := models.ListResponse{
		Pagination: models.NewPagination(total, max(page, 1), max(limit, 1)),
		Meta: models.ListMeta{
			Sources:    map[string]int{"jgrants": 30, "erad": 15},
			LastSynced: strPtr("2026-02-01T00:30:05Z"),
		},
	}
	from, to := resp.Pagination.Range()
	for i := from; i <= to && i > 0; i++ {
		deadline := "2026-04-01"
		if i == 1 {
			deadline = "2026-02-04"
		}
		resp.Data = append(resp.Data, models.Grant{
			ID:                  grantID,
			Source:              models.SourceERad,
			Title:               "研究助成 " + strconv.Itoa(i),
			Organization:        "日本学術振興会",
			AmountMax:           int64Ptr(5_000_000),
			ApplicationDeadline: strPtr(deadline),
			Status:              models.StatusOpen,
		})
	}
	writeJSON(w, resp)
}

func (b *backend) handleDetail(w http.ResponseWriter, r *http.Request) {
	switch r.PathValue("id") {
	case grantID:
		writeJSON(w, map[string]any{
			"id":                   grantID,
			"source":               "jgrants",
			"title":                "ものづくり補助金",
			"organization":         "中小企業庁",
			"summary":              "<script>alert(1)</script>設備投資を支援します。\n<b>本文</b>",
			"amount_min":           1_000_000,
			"amount_max":           5_000_000,
			"application_start":    "2026-01-10",
			"application_deadline": "2026-02-10",
			"detail_url":           "https://www.jgrants-portal.go.jp/subsidy/a0W5h",
			"status":               "closing_soon",
			"last_synced_at":       "2026-02-01T00:30:05Z",
			"raw_data":             map[string]any{"jgrants_id": "R-1"},
			"created_at":           "2026-01-15T10:30:00Z",
			"updated_at":           "2026-01-31T08:05:09Z",
		})
	case brokenID:
		http.Error(w, "boom", http.StatusInternalServerError)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (b *backend) handleSync(w http.ResponseWriter, r *http.Request) {
	var req models.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	b.syncSources = append(b.syncSources, req.Source)
	fail := b.failSync
	b.mu.Unlock()
	if fail {
		http.Error(w, "busy", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, models.SyncResponse{ScrapeLogID: "log-1", Message: "Sync started for " + req.Source})
}

func (b *backend) queries() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.listQueries...)
}

func (b *backend) synced() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.syncSources...)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

// waitForTimers blocks until n timers are armed on clk, so a goroutine's
// wait has started before the test advances time.
func waitForTimers(t *testing.T, clk *clockwork.FakeClock, n int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, clk.BlockUntilContext(ctx, n))
}

func newTestServer(t *testing.T, b *backend) (*Server, *clockwork.FakeClock) {
	t.Helper()
	if b.total == 0 {
		b.total = 45
	}
	api := httptest.NewServer(b.handler())
	t.Cleanup(api.Close)

	clk := clockwork.NewFakeClockAt(epoch)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	loader := dashboard.NewLoader(client.New(api.URL), clk, logger, dashboard.DefaultLoaderConfig())

	s, err := NewServer(Options{Loader: loader, Logger: logger, Clock: clk})
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Shutdown(ctx)
	})
	return s, clk
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, s *Server, target string) (*httptest.ResponseRecorder, *goquery.Document) {
	t.Helper()
	rec := do(t, s, httptest.NewRequest(http.MethodGet, target, nil))
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	return rec, doc
}

func postSync(t *testing.T, s *Server, form url.Values, accept string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/sync", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	if accept != "" {
		req.Header.Set(echo.HeaderAccept, accept)
	}
	return do(t, s, req)
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, &backend{})
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestDashboardRendersTableAndStats(t *testing.T) {
	s, _ := newTestServer(t, &backend{})

	rec, doc := get(t, s, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	rows := doc.Find("#grant-rows tr.grant-row")
	assert.Equal(t, 20, rows.Length())
	assert.Equal(t, "e-Rad", strings.TrimSpace(rows.First().Find(".badge.source").Text()))
	assert.Equal(t, "募集中", strings.TrimSpace(rows.First().Find(".badge.status").Text()))
	assert.Equal(t, format.AmountCeiling(int64Ptr(5_000_000)), rows.First().Find(".amount").Text())
	assert.Equal(t, "2026/02/04", rows.First().Find(".deadline").Text())
	assert.Equal(t, 1, doc.Find("#grant-rows .deadline.soon").Length(), "only the deadline within 14 days is highlighted")

	var stats []string
	doc.Find(".stat-card .stat-value").Each(func(_ int, sel *goquery.Selection) {
		stats = append(stats, sel.Text())
	})
	assert.Equal(t, []string{"12", "3", "30", "15"}, stats)

	assert.Equal(t, "最終更新: 2026/2/1 0:30:05", strings.TrimSpace(doc.Find("#last-synced").Text()))
	assert.Equal(t, dashboard.SkeletonRows, doc.Find("#grant-skeleton tr").Length())
	assert.Equal(t, 0, doc.Find("#empty").Length())
}

func TestDashboardFiltersFromQuery(t *testing.T) {
	b := &backend{}
	s, _ := newTestServer(t, b)

	rec, doc := get(t, s, "/?status=open&keyword=%E7%A0%94%E7%A9%B6&page=2&bogus=1")
	require.Equal(t, http.StatusOK, rec.Code)

	queries := b.queries()
	require.NotEmpty(t, queries)
	assert.Equal(t, "status=open&keyword=%E7%A0%94%E7%A9%B6&sort=deadline&order=asc&page=2&limit=20", queries[len(queries)-1])

	val, _ := doc.Find("select[name=status] option[selected]").Attr("value")
	assert.Equal(t, "open", val)
	kw, _ := doc.Find("input[name=keyword]").Attr("value")
	assert.Equal(t, "研究", kw)
	assert.Equal(t, "全45件中 21-40件", doc.Find("#pager p").Text())

	prev, _ := doc.Find("#pager a.prev").Attr("href")
	assert.Equal(t, "/?status=open&keyword=%E7%A0%94%E7%A9%B6&sort=deadline&order=asc&page=1&limit=20", prev)
	assert.Equal(t, "2", doc.Find("#pager .page.current").Text())
}

func TestDashboardSortKey(t *testing.T) {
	b := &backend{}
	s, _ := newTestServer(t, b)

	_, doc := get(t, s, "/?sort_key=amount_desc&page=3")

	queries := b.queries()
	require.NotEmpty(t, queries)
	assert.Equal(t, "sort=amount&order=desc&page=1&limit=20", queries[len(queries)-1], "a sort change resets the page")
	val, _ := doc.Find("select[name=sort_key] option[selected]").Attr("value")
	assert.Equal(t, "amount_desc", val)
}

func TestDashboardPagerEllipsis(t *testing.T) {
	s, _ := newTestServer(t, &backend{})

	_, doc := get(t, s, "/?limit=2&page=10")

	var labels []string
	doc.Find("#pager .page, #pager .ellipsis").Each(func(_ int, sel *goquery.Selection) {
		labels = append(labels, sel.Text())
	})
	assert.Equal(t, []string{"1", "...", "9", "10", "11", "...", "23"}, labels)
}

func TestDashboardNoPagerForSinglePage(t *testing.T) {
	s, _ := newTestServer(t, &backend{total: 5})

	_, doc := get(t, s, "/")
	assert.Equal(t, 5, doc.Find("#grant-rows tr.grant-row").Length())
	assert.Equal(t, 0, doc.Find("#pager").Length())
}

func TestDashboardEmptyResult(t *testing.T) {
	s, _ := newTestServer(t, &backend{})

	rec, doc := get(t, s, "/?keyword=none")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, doc.Find("#grant-rows tr.grant-row").Length())
	assert.Contains(t, doc.Find("#empty").Text(), dashboard.MsgEmptyTitle)
	assert.Contains(t, doc.Find("#empty").Text(), dashboard.MsgEmptyHint)
}

func TestDashboardListFailure(t *testing.T) {
	s, _ := newTestServer(t, &backend{failList: true})

	rec, doc := get(t, s, "/")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, doc.Find("#empty").Text(), dashboard.MsgFetchFailed)
}

func TestGrantDetail(t *testing.T) {
	s, _ := newTestServer(t, &backend{})

	rec, doc := get(t, s, "/grants/"+grantID+"?return="+url.QueryEscape("status=open&page=4"))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "ものづくり補助金", doc.Find("h1").Text())
	assert.Equal(t, "締切間近", doc.Find(".badge.status").Text())
	assert.Equal(t, format.AmountRange(int64Ptr(1_000_000), int64Ptr(5_000_000)), doc.Find("#amount p").Text())
	assert.Equal(t, 1, doc.Find("#period .deadline.soon").Length())
	assert.Equal(t, "2026/02/10", doc.Find("#period .deadline").Text())

	href, _ := doc.Find("a.detail-url").Attr("href")
	assert.Equal(t, "https://www.jgrants-portal.go.jp/subsidy/a0W5h", href)
	assert.Equal(t, 0, doc.Find("a.guideline-url").Length())

	summary := doc.Find("#summary")
	assert.Equal(t, 0, summary.Find("script, b").Length(), "scraped markup is stripped")
	assert.Contains(t, summary.Text(), "設備投資を支援します。")
	assert.Contains(t, summary.Text(), "本文")
	assert.NotContains(t, summary.Text(), "alert")
	assert.Equal(t, 0, doc.Find("#audience").Length())

	assert.Contains(t, doc.Find("#raw-data pre").Text(), `"jgrants_id": "R-1"`)
	assert.Contains(t, doc.Find("#timestamps").Text(), "作成日: 2026/1/15 10:30:00")

	back, _ := doc.Find("a.back").Attr("href")
	assert.Equal(t, "/?status=open&sort=deadline&order=asc&page=4&limit=20", back)
}

func TestPagesUseSharedText(t *testing.T) {
	s, _ := newTestServer(t, &backend{})

	_, doc := get(t, s, "/")
	headers := doc.Find("thead th").Map(func(_ int, sel *goquery.Selection) string {
		return sel.Text()
	})
	assert.Equal(t, []string{
		dashboard.ColSource, dashboard.ColTitle, dashboard.ColOrganization,
		dashboard.ColAmount, dashboard.ColDeadline, dashboard.ColStatus,
	}, headers)
	assert.Equal(t, dashboard.SkeletonRows, doc.Find("#grant-skeleton tr").Length())
	assert.Equal(t, dashboard.LabelSync, strings.TrimSpace(doc.Find("#sync button").Text()))
	placeholder, _ := doc.Find("input[name=keyword]").Attr("placeholder")
	assert.Equal(t, dashboard.PlaceholderKeyword, placeholder)

	_, doc = get(t, s, "/grants/"+grantID)
	sections := doc.Find("article h2").Map(func(_ int, sel *goquery.Selection) string {
		return sel.Text()
	})
	assert.Equal(t, []string{
		dashboard.SectionPeriod, dashboard.SectionAmount, dashboard.SectionLinks,
		dashboard.SectionSummary, dashboard.SectionRawData,
	}, sections)
	assert.Equal(t, dashboard.LinkDetail, doc.Find("a.detail-url").Text())
	assert.Contains(t, doc.Find("a.back").Text(), dashboard.LabelBack)
	assert.Contains(t, doc.Find("#timestamps").Text(), dashboard.LabelLastSynced+": ")
}

func TestUnknownTextName(t *testing.T) {
	got, err := uiText("ColSource")
	require.NoError(t, err)
	assert.Equal(t, dashboard.ColSource, got)

	_, err = uiText("NoSuchLabel")
	assert.Error(t, err)
}

func TestGrantDetailErrors(t *testing.T) {
	s, _ := newTestServer(t, &backend{})

	tests := []struct {
		name   string
		id     string
		status int
		msg    string
	}{
		{"unknown id", otherID, http.StatusNotFound, dashboard.MsgNotFound},
		{"not a uuid", "not-a-uuid", http.StatusNotFound, dashboard.MsgNotFound},
		{"backend failure", brokenID, http.StatusBadGateway, dashboard.MsgFetchFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, doc := get(t, s, "/grants/"+tt.id)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.msg, doc.Find("#message").Text())
		})
	}
}

func TestSyncRedirectsAndRefreshesAfterDelay(t *testing.T) {
	b := &backend{}
	s, clk := newTestServer(t, b)

	rec := postSync(t, s, url.Values{"return": {"status=open&page=3"}}, "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?status=open&sort=deadline&order=asc&page=3&limit=20&sync=started", rec.Header().Get("Location"))
	assert.Equal(t, []string{"all"}, b.synced())

	_, doc := get(t, s, rec.Header().Get("Location"))
	assert.Equal(t, dashboard.MsgSyncStarted, doc.Find("#notice").Text())
	_, disabled := doc.Find("#sync button").Attr("disabled")
	assert.True(t, disabled)
	refresh, ok := doc.Find(`meta[http-equiv=refresh]`).Attr("content")
	require.True(t, ok)
	assert.Equal(t, "3;url=/?status=open&sort=deadline&order=asc&page=3&limit=20&sync=done", refresh)

	waitForTimers(t, clk, 1)
	clk.Advance(3 * time.Second)
	require.Eventually(t, func() bool {
		job := s.currentJob()
		return job != nil && job.Status == jobCompleted
	}, time.Second, 5*time.Millisecond)

	_, doc = get(t, s, "/?sync=done")
	assert.Equal(t, dashboard.MsgSyncCompleted, doc.Find("#notice").Text())
	assert.Equal(t, 0, doc.Find(`meta[http-equiv=refresh]`).Length())
	_, disabled = doc.Find("#sync button").Attr("disabled")
	assert.False(t, disabled)
}

func TestSyncFailure(t *testing.T) {
	s, _ := newTestServer(t, &backend{failSync: true})

	rec := postSync(t, s, url.Values{"source": {"jgrants"}}, "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?sort=deadline&order=asc&page=1&limit=20&sync=failed", rec.Header().Get("Location"))

	_, doc := get(t, s, rec.Header().Get("Location"))
	assert.Equal(t, dashboard.MsgSyncFailed, doc.Find("#notice").Text())

	job := s.currentJob()
	require.NotNil(t, job)
	assert.Equal(t, jobFailed, job.Status)
	assert.Equal(t, "API error: 503", job.Error)
}

func TestSyncJSON(t *testing.T) {
	s, _ := newTestServer(t, &backend{})

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/sync/job", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = postSync(t, s, url.Values{"source": {"erad"}}, "application/json")
	require.Equal(t, http.StatusAccepted, rec.Code)
	var accepted map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accepted))
	assert.Equal(t, "log-1", accepted["job_id"])

	rec = postSync(t, s, url.Values{"source": {"erad"}}, "application/json")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/sync/job", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var job map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, "running", job["status"])
	assert.Equal(t, "erad", job["source"])
}

func TestSyncRejectsUnknownSource(t *testing.T) {
	b := &backend{}
	s, _ := newTestServer(t, b)

	rec := postSync(t, s, url.Values{"source": {"kaken"}}, "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, b.synced())
}

func TestReturnQueryDropsUnknownParameters(t *testing.T) {
	s, _ := newTestServer(t, &backend{})
	assert.Equal(t, filter.Default().Query(), s.returnQuery("%zz"))
	assert.Equal(t, "source=erad&sort=deadline&order=asc&page=1&limit=20", s.returnQuery("source=erad&admin=1"))
}
