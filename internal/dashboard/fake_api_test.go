package dashboard

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/david/grantdraft/internal/client"
	"github.com/david/grantdraft/internal/filter"
	"github.com/david/grantdraft/internal/models"
)

// fakeAPI serves canned responses and records the calls it receives.
type fakeAPI struct {
	mu sync.Mutex

	list      func(f filter.State) (*models.ListResponse, error)
	detail    func(id string) (*models.GrantDetail, error)
	trigger   func(source string) (*models.SyncResponse, error)
	statuses  []*models.SyncLog
	statusErr error

	queries     []string
	detailCalls int
	syncSources []string
	statusCalls int
}

func (f *fakeAPI) ListGrants(ctx context.Context, s filter.State) (*models.ListResponse, error) {
	f.mu.Lock()
	f.queries = append(f.queries, s.Query())
	fn := f.list
	f.mu.Unlock()
	if fn == nil {
		return listOf(0, s), nil
	}
	return fn(s)
}

func (f *fakeAPI) GetGrant(ctx context.Context, id string) (*models.GrantDetail, error) {
	f.mu.Lock()
	f.detailCalls++
	fn := f.detail
	f.mu.Unlock()
	if fn == nil {
		return nil, &client.RequestError{StatusCode: 404}
	}
	return fn(id)
}

func (f *fakeAPI) TriggerSync(ctx context.Context, source string) (*models.SyncResponse, error) {
	f.mu.Lock()
	f.syncSources = append(f.syncSources, source)
	fn := f.trigger
	f.mu.Unlock()
	if fn == nil {
		return &models.SyncResponse{ScrapeLogID: "log-1", Message: "Sync started for " + source}, nil
	}
	return fn(source)
}

func (f *fakeAPI) GetSyncStatus(ctx context.Context, logID string) (*models.SyncLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	if len(f.statuses) == 0 {
		return &models.SyncLog{ID: logID, Status: "running"}, nil
	}
	log := f.statuses[0]
	if len(f.statuses) > 1 {
		f.statuses = f.statuses[1:]
	}
	return log, nil
}

func (f *fakeAPI) recordedQueries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

// listOf builds a response with total matches for s.
func listOf(total int, s filter.State) *models.ListResponse {
	limit := s.Limit
	if limit == 0 {
		limit = filter.DefaultLimit
	}
	page := max(s.Page, 1)
	resp := &models.ListResponse{
		Pagination: models.NewPagination(total, page, limit),
		Meta:       models.ListMeta{Sources: map[string]int{"jgrants": 30, "erad": 15}},
	}
	from, to := resp.Pagination.Range()
	for i := from; i <= to && i > 0; i++ {
		resp.Data = append(resp.Data, models.Grant{ID: "g", Title: s.Keyword, Source: models.SourceJGrants, Status: models.StatusOpen})
	}
	return resp
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
