package dashboard

import (
	"context"

	"github.com/david/grantdraft/internal/catalog"
	"github.com/david/grantdraft/internal/filter"
	"github.com/david/grantdraft/internal/models"
)

// StatusCounts are the filter-independent totals behind the summary
// cards.
type StatusCounts struct {
	Open        int
	ClosingSoon int
}

// ListRequest identifies one list fetch. Gen increases with every
// BeginList so results of superseded requests can be recognised.
type ListRequest struct {
	Gen    uint64
	Filter filter.State
}

type ListResult struct {
	Gen  uint64
	Resp *models.ListResponse
	Err  error
}

type CountsResult struct {
	Gen    uint64
	Counts StatusCounts
	Err    error
}

// View is the dashboard's state container. It has a single writer: the
// web handler serving a request or the terminal UI's update loop. Fetches
// run elsewhere and hand their results back through the Apply methods.
type View struct {
	Filter *filter.Manager

	List    *models.ListResponse
	Loading bool
	Err     error

	Counts StatusCounts

	Syncing bool
	SyncErr error
	Notice  string

	listGen    uint64
	countsGen  uint64
	cancelList context.CancelFunc
}

func NewView(initial filter.State) *View {
	return &View{Filter: filter.NewManager(initial)}
}

// BeginList starts a list fetch for the current filters. It enters the
// loading state and cancels the previous fetch, whose result will be
// ignored by ApplyList anyway.
func (v *View) BeginList(parent context.Context) (context.Context, ListRequest) {
	if v.cancelList != nil {
		v.cancelList()
	}
	ctx, cancel := context.WithCancel(parent)
	v.cancelList = cancel
	v.listGen++
	v.Loading = true
	return ctx, ListRequest{Gen: v.listGen, Filter: v.Filter.State()}
}

// ApplyList stores a finished fetch. Results from anything but the most
// recent BeginList are dropped and ApplyList reports false. A failed
// fetch keeps the previous data on screen.
func (v *View) ApplyList(res ListResult) bool {
	if res.Gen != v.listGen {
		return false
	}
	v.Loading = false
	if v.cancelList != nil {
		v.cancelList()
		v.cancelList = nil
	}
	if res.Err != nil {
		v.Err = res.Err
		return true
	}
	v.Err = nil
	v.List = res.Resp
	return true
}

func (v *View) BeginCounts() uint64 {
	v.countsGen++
	return v.countsGen
}

// ApplyCounts stores new totals. On error the previous totals stay.
func (v *View) ApplyCounts(res CountsResult) bool {
	if res.Gen != v.countsGen {
		return false
	}
	if res.Err == nil {
		v.Counts = res.Counts
	}
	return true
}

// BeginSync marks a sync as running. It returns false if one already is.
func (v *View) BeginSync() bool {
	if v.Syncing {
		return false
	}
	v.Syncing = true
	v.SyncErr = nil
	v.Notice = ""
	return true
}

// FinishSync clears the running flag. A nil error means the refresh after
// the sync is due.
func (v *View) FinishSync(err error) {
	v.Syncing = false
	v.SyncErr = err
	if err != nil {
		v.Notice = MsgSyncFailed
		return
	}
	v.Notice = MsgSyncCompleted
}

// SetFilter applies a filter patch. It reports whether a refetch is due.
func (v *View) SetFilter(p filter.Patch) (bool, error) {
	return v.Filter.Set(p)
}

func (v *View) SetPage(n int) bool {
	return v.Filter.SetPage(n)
}

// Close cancels an in-flight list fetch.
func (v *View) Close() {
	if v.cancelList != nil {
		v.cancelList()
		v.cancelList = nil
	}
}

func (v *View) Grants() []models.Grant {
	if v.List == nil {
		return nil
	}
	return v.List.Data
}

// Empty reports whether the finished list has no rows to show.
func (v *View) Empty() bool {
	return !v.Loading && len(v.Grants()) == 0
}

// Message is the text shown in place of the table, if any.
func (v *View) Message() (title, hint string) {
	switch {
	case v.Loading:
		return "", ""
	case v.Err != nil && v.List == nil:
		return MsgFetchFailed, ""
	case v.Empty():
		return MsgEmptyTitle, MsgEmptyHint
	}
	return "", ""
}

// Pager returns page navigation for the current list, or ok=false before
// the first successful fetch.
func (v *View) Pager() (p Pager, ok bool) {
	if v.List == nil {
		return Pager{}, false
	}
	return NewPager(v.List.Pagination), true
}

// LastSynced is the most recent sync time across all sources, or "".
func (v *View) LastSynced() string {
	if v.List == nil || v.List.Meta.LastSynced == nil {
		return ""
	}
	return *v.List.Meta.LastSynced
}

// Stats returns the four summary cards.
func (v *View) Stats() []Stat {
	cat := catalog.Default()
	return []Stat{
		{Title: cat.Status(string(models.StatusOpen)).Label, Value: v.Counts.Open, Tone: "green"},
		{Title: cat.Status(string(models.StatusClosingSoon)).Label, Value: v.Counts.ClosingSoon, Tone: "orange"},
		{Title: cat.Source(string(models.SourceJGrants)).Label, Value: v.List.SourceCount(models.SourceJGrants), Tone: "blue"},
		{Title: cat.Source(string(models.SourceERad)).Label, Value: v.List.SourceCount(models.SourceERad), Tone: "purple"},
	}
}
