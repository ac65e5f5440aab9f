package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/david/grantdraft/internal/dashboard"
	"github.com/david/grantdraft/internal/filter"
)

// Server is the web dashboard. It renders HTML pages from the grants API
// and tracks at most one sync job it started.
type Server struct {
	Echo   *echo.Echo
	Loader *dashboard.Loader

	logger   *slog.Logger
	clock    clockwork.Clock
	initial  filter.State
	debounce time.Duration

	// Sync job tracking
	jobMu      sync.Mutex
	runningJob *syncJob
}

type Options struct {
	Loader        *dashboard.Loader
	Logger        *slog.Logger
	Clock         clockwork.Clock
	InitialFilter filter.State
	Debounce      time.Duration
}

func NewServer(opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.InitialFilter.Limit == 0 {
		opts.InitialFilter = filter.Default()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = filter.DefaultDebounce
	}

	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}

	logger := opts.Logger.With("component", "web")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				logger.Error("request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			logger.Debug("request", attrs...)
			return nil
		},
	}))

	s := &Server{
		Echo:     e,
		Loader:   opts.Loader,
		logger:   logger,
		clock:    opts.Clock,
		initial:  opts.InitialFilter,
		debounce: opts.Debounce,
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	s.Echo.GET("/", s.handleDashboard)
	s.Echo.GET("/grants/:id", s.handleGrantDetail)
	s.Echo.POST("/sync", s.handleSync)
	s.Echo.GET("/sync/job", s.handleJobStatus)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	return s.Echo.Start(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.jobMu.Lock()
	if s.runningJob != nil && s.runningJob.cancel != nil {
		s.runningJob.cancel()
	}
	s.jobMu.Unlock()
	return s.Echo.Shutdown(ctx)
}
