package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/david/grantdraft/internal/filter"
	"github.com/david/grantdraft/internal/models"
)

// API is the part of the grants client the dashboard uses.
type API interface {
	ListGrants(ctx context.Context, f filter.State) (*models.ListResponse, error)
	GetGrant(ctx context.Context, id string) (*models.GrantDetail, error)
	TriggerSync(ctx context.Context, source string) (*models.SyncResponse, error)
	GetSyncStatus(ctx context.Context, logID string) (*models.SyncLog, error)
}

// ErrInvalidID is returned for grant ids that cannot exist.
var ErrInvalidID = errors.New("invalid grant id")

// SyncMode selects how the dashboard waits for a sync job before
// refreshing.
type SyncMode string

const (
	// SyncModeDelay waits a fixed time. The job may still be running when
	// the refresh happens.
	SyncModeDelay SyncMode = "delay"
	// SyncModePoll polls the job log until it reports completion.
	SyncModePoll SyncMode = "poll"
)

type LoaderConfig struct {
	SyncMode     SyncMode
	SyncDelay    time.Duration
	PollInterval time.Duration
	SyncTimeout  time.Duration
}

func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{
		SyncMode:     SyncModeDelay,
		SyncDelay:    3 * time.Second,
		PollInterval: 2 * time.Second,
		SyncTimeout:  2 * time.Minute,
	}
}

// Loader runs the fetches behind a View.
type Loader struct {
	api    API
	clock  clockwork.Clock
	logger *slog.Logger
	cfg    LoaderConfig
}

func NewLoader(api API, clk clockwork.Clock, logger *slog.Logger, cfg LoaderConfig) *Loader {
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultLoaderConfig()
	if cfg.SyncMode == "" {
		cfg.SyncMode = def.SyncMode
	}
	if cfg.SyncDelay <= 0 {
		cfg.SyncDelay = def.SyncDelay
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.SyncTimeout <= 0 {
		cfg.SyncTimeout = def.SyncTimeout
	}
	return &Loader{api: api, clock: clk, logger: logger, cfg: cfg}
}

func (l *Loader) Config() LoaderConfig {
	return l.cfg
}

// LoadList fetches one page for req.
func (l *Loader) LoadList(ctx context.Context, req ListRequest) ListResult {
	resp, err := l.api.ListGrants(ctx, req.Filter)
	if err != nil && !errors.Is(err, context.Canceled) {
		l.logger.Error("failed to fetch grants", "error", err, "query", req.Filter.Query())
	}
	if err == nil && resp != nil && !resp.Pagination.Consistent() {
		p := resp.Pagination
		l.logger.Warn("inconsistent pagination from API", "query", req.Filter.Query(),
			"total", p.Total, "page", p.Page, "limit", p.Limit, "total_pages", p.TotalPages)
	}
	return ListResult{Gen: req.Gen, Resp: resp, Err: err}
}

// LoadCounts fetches the open and closing-soon totals. Both use a bare
// one-item query so the active filters never affect them.
func (l *Loader) LoadCounts(ctx context.Context, gen uint64) CountsResult {
	var counts StatusCounts
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		resp, err := l.api.ListGrants(gctx, filter.State{Status: models.StatusOpen, Limit: 1})
		if err != nil {
			return err
		}
		counts.Open = resp.Pagination.Total
		return nil
	})
	g.Go(func() error {
		resp, err := l.api.ListGrants(gctx, filter.State{Status: models.StatusClosingSoon, Limit: 1})
		if err != nil {
			return err
		}
		counts.ClosingSoon = resp.Pagination.Total
		return nil
	})
	if err := g.Wait(); err != nil {
		l.logger.Error("failed to fetch status counts", "error", err)
		return CountsResult{Gen: gen, Err: err}
	}
	return CountsResult{Gen: gen, Counts: counts}
}

// Refresh loads the list and the counts concurrently and applies both to
// v. It is the synchronous path used when a whole page is rendered at
// once.
func (l *Loader) Refresh(ctx context.Context, v *View) {
	listCtx, req := v.BeginList(ctx)
	countsGen := v.BeginCounts()

	var (
		list   ListResult
		counts CountsResult
	)
	var g errgroup.Group
	g.Go(func() error {
		list = l.LoadList(listCtx, req)
		return nil
	})
	g.Go(func() error {
		counts = l.LoadCounts(ctx, countsGen)
		return nil
	})
	g.Wait()

	v.ApplyList(list)
	v.ApplyCounts(counts)
}

// LoadDetail fetches one grant. Ids that are not UUIDs fail without a
// request.
func (l *Loader) LoadDetail(ctx context.Context, id string) (*models.GrantDetail, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	g, err := l.api.GetGrant(ctx, id)
	if err != nil {
		l.logger.Error("failed to fetch grant", "id", id, "error", err)
		return nil, err
	}
	return g, nil
}

// TriggerSync starts a sync job and returns once it is accepted.
func (l *Loader) TriggerSync(ctx context.Context, source string) (*models.SyncResponse, error) {
	resp, err := l.api.TriggerSync(ctx, source)
	if err != nil {
		l.logger.Error("sync failed", "source", source, "error", err)
		return nil, err
	}
	l.logger.Info("sync accepted", "source", source, "scrape_log_id", resp.ScrapeLogID)
	return resp, nil
}

// AwaitSync blocks until a refresh after the accepted job is due. In
// delay mode that is a fixed wait; in poll mode it is when the job log
// reports completion, the timeout passes, or polling fails (after which
// the fixed wait applies). It returns the last job log seen, if any, and
// only fails when ctx ends.
func (l *Loader) AwaitSync(ctx context.Context, accepted *models.SyncResponse) (*models.SyncLog, error) {
	if l.cfg.SyncMode != SyncModePoll || accepted == nil || accepted.ScrapeLogID == "" {
		return nil, l.sleep(ctx, l.cfg.SyncDelay)
	}

	deadline := l.clock.Now().Add(l.cfg.SyncTimeout)
	var last *models.SyncLog
	for {
		log, err := l.api.GetSyncStatus(ctx, accepted.ScrapeLogID)
		if err != nil {
			if ctx.Err() != nil {
				return last, ctx.Err()
			}
			l.logger.Warn("sync status unavailable, falling back to fixed delay",
				"scrape_log_id", accepted.ScrapeLogID, "error", err)
			return last, l.sleep(ctx, l.cfg.SyncDelay)
		}
		last = log
		if log.Finished() {
			l.logger.Info("sync finished", "scrape_log_id", log.ID, "status", log.Status,
				"found", log.RecordsFound, "created", log.RecordsCreated, "updated", log.RecordsUpdated)
			return last, nil
		}
		if !l.clock.Now().Before(deadline) {
			l.logger.Warn("sync still running after timeout, refreshing anyway",
				"scrape_log_id", accepted.ScrapeLogID, "timeout", l.cfg.SyncTimeout)
			return last, nil
		}
		if err := l.sleep(ctx, l.cfg.PollInterval); err != nil {
			return last, err
		}
	}
}

// Sync triggers a job and waits until a refresh is due.
func (l *Loader) Sync(ctx context.Context, source string) (*models.SyncLog, error) {
	accepted, err := l.TriggerSync(ctx, source)
	if err != nil {
		return nil, err
	}
	return l.AwaitSync(ctx, accepted)
}

func (l *Loader) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-l.clock.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
