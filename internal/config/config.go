package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfighcl"

	"github.com/david/grantdraft/internal/dashboard"
	"github.com/david/grantdraft/internal/filter"
)

type Config struct {
	APIURL           string        `hcl:"api_url" env:"API_URL" default:"http://localhost:8000"`
	Port             int           `hcl:"port" env:"PORT" default:"3000"`
	LogLevel         string        `hcl:"log_level" env:"LOG_LEVEL" default:"info"`
	LogFormat        string        `hcl:"log_format" env:"LOG_FORMAT" default:"text"`
	PageSize         int           `hcl:"page_size" env:"PAGE_SIZE" default:"20"`
	Debounce         time.Duration `hcl:"debounce" env:"DEBOUNCE" default:"300ms"`
	RequestTimeout   time.Duration `hcl:"request_timeout" env:"REQUEST_TIMEOUT" default:"30s"`
	SyncMode         string        `hcl:"sync_mode" env:"SYNC_MODE" default:"delay"`
	SyncDelay        time.Duration `hcl:"sync_delay" env:"SYNC_DELAY" default:"3s"`
	SyncPollInterval time.Duration `hcl:"sync_poll_interval" env:"SYNC_POLL_INTERVAL" default:"2s"`
	SyncTimeout      time.Duration `hcl:"sync_timeout" env:"SYNC_TIMEOUT" default:"2m"`
}

// DefaultFiles are read in order; later files override earlier ones.
var DefaultFiles = []string{
	"./grantdraft.hcl",
	"./grantdraft.local.hcl",
	"$HOME/.config/grantdraft/config.hcl",
}

const envPrefix = "GRANTDRAFT"

var (
	cfg  Config
	once sync.Once
)

// Get loads the configuration once per process. A broken config is
// logged and the defaults are used.
func Get() Config {
	once.Do(func() {
		loaded, err := Load(DefaultFiles...)
		if err != nil {
			slog.Error("failed to load config", "err", err)
		}
		cfg = loaded
	})

	return cfg
}

// Load reads defaults, then files, then GRANTDRAFT_* environment
// variables. Command-line flags are left to the caller.
func Load(files ...string) (Config, error) {
	var c Config
	loader := aconfig.LoaderFor(&c, aconfig.Config{
		EnvPrefix: envPrefix,
		SkipFlags: true,
		SkipFiles: len(files) == 0,
		Files:     files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".hcl": aconfighcl.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return c, err
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api_url %q", c.APIURL)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.PageSize < 1 || c.PageSize > filter.MaxLimit {
		return fmt.Errorf("page_size must be between 1 and %d, got %d", filter.MaxLimit, c.PageSize)
	}
	switch dashboard.SyncMode(c.SyncMode) {
	case dashboard.SyncModeDelay, dashboard.SyncModePoll:
	default:
		return fmt.Errorf("invalid sync_mode %q", c.SyncMode)
	}
	return nil
}

// Addr is the listen address of the web dashboard.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// InitialFilter is the filter state a fresh dashboard starts with.
func (c Config) InitialFilter() filter.State {
	s := filter.Default()
	if c.PageSize > 0 {
		s.Limit = c.PageSize
	}
	return s
}

func (c Config) LoaderConfig() dashboard.LoaderConfig {
	return dashboard.LoaderConfig{
		SyncMode:     dashboard.SyncMode(c.SyncMode),
		SyncDelay:    c.SyncDelay,
		PollInterval: c.SyncPollInterval,
		SyncTimeout:  c.SyncTimeout,
	}
}
