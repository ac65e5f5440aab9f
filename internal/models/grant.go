package models

// Source is the origin system of a grant record.
type Source string

const (
	SourceJGrants Source = "jgrants"
	SourceERad    Source = "erad"
)

// SyncAll asks the backend to refresh every source.
const SyncAll = "all"

// Sources lists the known origin systems in display order.
var Sources = []Source{SourceJGrants, SourceERad}

func (s Source) Valid() bool {
	return s == SourceJGrants || s == SourceERad
}

// Status is the application status assigned by the backend.
type Status string

const (
	StatusOpen        Status = "open"
	StatusClosingSoon Status = "closing_soon"
	StatusClosed      Status = "closed"
	StatusUpcoming    Status = "upcoming"
)

// Statuses lists the known statuses in display order.
var Statuses = []Status{StatusOpen, StatusClosingSoon, StatusClosed, StatusUpcoming}

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusClosingSoon, StatusClosed, StatusUpcoming:
		return true
	}
	return false
}

// Grant is one listing as returned by the grants API. Dates are kept as
// the raw strings the API sends (date-only for application dates,
// RFC3339 for sync timestamps) and parsed at display time.
type Grant struct {
	ID                  string  `json:"id"`
	Source              Source  `json:"source"`
	Title               string  `json:"title"`
	Organization        string  `json:"organization"`
	Category            *string `json:"category"`
	Summary             *string `json:"summary"`
	TargetAudience      *string `json:"target_audience"`
	AmountMin           *int64  `json:"amount_min"`
	AmountMax           *int64  `json:"amount_max"`
	ApplicationStart    *string `json:"application_start"`
	ApplicationDeadline *string `json:"application_deadline"`
	DetailURL           *string `json:"detail_url"`
	GuidelineURL        *string `json:"guideline_url"`
	Status              Status  `json:"status"`
	LastSyncedAt        string  `json:"last_synced_at"`
}

// GrantDetail is the full record behind the detail view.
type GrantDetail struct {
	Grant
	RawData   map[string]any `json:"raw_data"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at"`
}

// ListMeta carries dashboard-wide figures that do not depend on the
// active filters.
type ListMeta struct {
	Sources    map[string]int `json:"sources"`
	LastSynced *string        `json:"last_synced"`
}

type ListResponse struct {
	Data       []Grant    `json:"data"`
	Pagination Pagination `json:"pagination"`
	Meta       ListMeta   `json:"meta"`
}

// SourceCount returns the number of grants held for src, zero when the
// backend did not report it.
func (r *ListResponse) SourceCount(src Source) int {
	if r == nil {
		return 0
	}
	return r.Meta.Sources[string(src)]
}

type SyncRequest struct {
	Source string `json:"source"`
}

// SyncResponse confirms that a sync job was accepted. It says nothing
// about the job's completion.
type SyncResponse struct {
	ScrapeLogID string `json:"scrape_log_id"`
	Message     string `json:"message"`
}

// SyncLog is the backend's record of one sync job.
type SyncLog struct {
	ID             string  `json:"id"`
	SourceID       string  `json:"source_id"`
	StartedAt      string  `json:"started_at"`
	FinishedAt     *string `json:"finished_at"`
	Status         string  `json:"status"`
	RecordsFound   int     `json:"records_found"`
	RecordsCreated int     `json:"records_created"`
	RecordsUpdated int     `json:"records_updated"`
	ErrorMessage   *string `json:"error_message"`
}

// Finished reports whether the job has stopped, successfully or not.
func (l *SyncLog) Finished() bool {
	if l == nil {
		return false
	}
	if l.FinishedAt != nil && *l.FinishedAt != "" {
		return true
	}
	switch l.Status {
	case "success", "completed", "failed", "error":
		return true
	}
	return false
}
