package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/david/grantdraft/internal/client"
	"github.com/david/grantdraft/internal/filter"
	"github.com/david/grantdraft/internal/models"
)

const (
	jobRunning   = "running"
	jobCompleted = "completed"
	jobFailed    = "failed"
)

// syncJob is a backend sync started from the dashboard, followed until a
// refresh is due.
type syncJob struct {
	ID        string          `json:"id"` // scrape_log_id once accepted
	Source    string          `json:"source"`
	Status    string          `json:"status"`
	Message   string          `json:"message,omitempty"`
	StartedAt time.Time       `json:"started_at"`
	EndedAt   time.Time       `json:"ended_at,omitempty"`
	Result    *models.SyncLog `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`

	cancel context.CancelFunc
}

func (s *Server) currentJob() *syncJob {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()
	if s.runningJob == nil {
		return nil
	}
	job := *s.runningJob
	return &job
}

func (s *Server) handleSync(c echo.Context) error {
	source := strings.TrimSpace(c.FormValue("source"))
	if source == "" {
		source = models.SyncAll
	}
	back := s.returnQuery(c.FormValue("return"))
	wantsJSON := strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)

	s.jobMu.Lock()
	if s.runningJob != nil && s.runningJob.Status == jobRunning {
		job := s.runningJob
		s.jobMu.Unlock()
		if wantsJSON {
			return c.JSON(http.StatusConflict, map[string]interface{}{
				"error":  "A sync job is already running",
				"job_id": job.ID,
			})
		}
		return c.Redirect(http.StatusSeeOther, dashboardURL(back, ""))
	}
	job := &syncJob{Source: source, Status: jobRunning, StartedAt: s.clock.Now()}
	s.runningJob = job
	s.jobMu.Unlock()

	accepted, err := s.Loader.TriggerSync(c.Request().Context(), source)
	if err != nil {
		s.finishJob(job, nil, err)
		if wantsJSON {
			status := http.StatusBadRequest
			if errors.Is(err, client.ErrRequestFailed) {
				status = http.StatusBadGateway
			}
			return c.JSON(status, map[string]string{"error": err.Error()})
		}
		return c.Redirect(http.StatusSeeOther, dashboardURL(back, "failed"))
	}

	// The wait outlives the request and is bounded by the timeout.
	cfg := s.Loader.Config()
	jobCtx, cancel := context.WithTimeout(
		context.WithoutCancel(c.Request().Context()), cfg.SyncTimeout+cfg.SyncDelay,
	)

	s.jobMu.Lock()
	job.ID = accepted.ScrapeLogID
	job.Message = accepted.Message
	job.cancel = cancel
	s.jobMu.Unlock()

	go func() {
		defer cancel()
		log, err := s.Loader.AwaitSync(jobCtx, accepted)
		s.finishJob(job, log, err)
	}()

	if wantsJSON {
		return c.JSON(http.StatusAccepted, map[string]interface{}{
			"message": accepted.Message,
			"job_id":  accepted.ScrapeLogID,
			"poll":    "/sync/job",
		})
	}
	return c.Redirect(http.StatusSeeOther, dashboardURL(back, "started"))
}

func (s *Server) finishJob(job *syncJob, log *models.SyncLog, err error) {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	job.EndedAt = s.clock.Now()
	job.Result = log
	job.cancel = nil
	switch {
	case err != nil:
		job.Status = jobFailed
		job.Error = err.Error()
	case log != nil && log.ErrorMessage != nil && *log.ErrorMessage != "":
		job.Status = jobFailed
		job.Error = *log.ErrorMessage
	default:
		job.Status = jobCompleted
	}
	s.logger.Info("sync job finished", "job_id", job.ID, "source", job.Source,
		"status", job.Status, "duration", job.EndedAt.Sub(job.StartedAt))
}

func (s *Server) handleJobStatus(c echo.Context) error {
	job := s.currentJob()
	if job == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}

	resp := map[string]interface{}{
		"id":         job.ID,
		"source":     job.Source,
		"status":     job.Status,
		"started_at": job.StartedAt,
	}
	if job.Message != "" {
		resp["message"] = job.Message
	}
	if !job.EndedAt.IsZero() {
		resp["ended_at"] = job.EndedAt
		resp["duration"] = job.EndedAt.Sub(job.StartedAt).String()
	}
	if job.Result != nil {
		resp["result"] = job.Result
	}
	if job.Error != "" {
		resp["error"] = job.Error
	}
	return c.JSON(http.StatusOK, resp)
}

// returnQuery normalises the filters a form posted back, so only known
// parameters survive the redirect.
func (s *Server) returnQuery(raw string) string {
	q, err := url.ParseQuery(raw)
	if err != nil {
		return s.initial.Query()
	}
	return filter.FromQuery(q, s.initial).Query()
}

func dashboardURL(query, syncFlag string) string {
	u := "/?" + query
	if syncFlag != "" {
		u += "&sync=" + syncFlag
	}
	return u
}
