package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pagetrend/pagetrend/internal/pathfilter"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultWindowDays      = 7
	DefaultTopN            = 25
	DefaultHTTPPort        = 8080
	DefaultRefreshInterval = time.Hour
	DefaultReportTTL       = 6 * time.Hour
	DefaultPathLabel       = "path"
	DefaultAuthHeader      = "X-API-Key"
)

// sourceTypes is the set of fetcher implementations a source may select.
var sourceTypes = map[string]bool{
	"json":        true,
	"prometheus":  true,
	"openmetrics": true,
}

// Config is the top-level pagetrend configuration.
// Fields map 1:1 to config.example.yaml.
type Config struct {
	Report  ReportConfig `yaml:"report"`
	Filter  FilterConfig `yaml:"filter"`
	Sources []Source     `yaml:"sources"`
	Serve   ServeConfig  `yaml:"serve"`
	Alerts  AlertsConfig `yaml:"alerts"`
}

// ReportConfig controls the comparison windows and ranked list size.
type ReportConfig struct {
	// WindowDays is the length of each reporting window in days. The recent
	// window is the last WindowDays days; the prior window is the WindowDays
	// days before that.
	WindowDays int `yaml:"window_days"`

	// TopN is how many entries the winner and loser lists each carry.
	TopN int `yaml:"top_n"`
}

// FilterConfig is the path noise policy, overriding pathfilter.Default.
type FilterConfig struct {
	// MinPathLength rejects paths shorter than this many characters.
	MinPathLength int `yaml:"min_path_length"`

	// SkipSubstrings rejects paths containing any of these fragments.
	SkipSubstrings []string `yaml:"skip_substrings"`

	// AllowQueryStrings keeps paths containing '?' or '&'.
	AllowQueryStrings bool `yaml:"allow_query_strings"`
}

// Rules converts the filter configuration into pathfilter rules.
func (f FilterConfig) Rules() pathfilter.Rules {
	return pathfilter.Rules{
		MinLength:         f.MinPathLength,
		SkipSubstrings:    f.SkipSubstrings,
		AllowQueryStrings: f.AllowQueryStrings,
	}
}

// Source describes one analytics backend to pull page counts from.
type Source struct {
	// ID is a unique, human-readable identifier for this source.
	ID string `yaml:"id"`

	// Type selects the fetcher: json | prometheus | openmetrics.
	Type string `yaml:"type"`

	// Endpoint is the URL queried for count rows. For the prometheus type
	// this is the server base URL (the /api/v1/query path is appended).
	Endpoint string `yaml:"endpoint"`

	// Metric is the counter family to read. Required for the prometheus and
	// openmetrics types; ignored by json.
	Metric string `yaml:"metric"`

	// PathLabel is the metric label that carries the page path.
	PathLabel string `yaml:"path_label"`

	// Auth configures how pagetrend authenticates to this source.
	Auth AuthConfig `yaml:"auth"`

	// TLS holds optional TLS dial options.
	TLS TLSConfig `yaml:"tls"`
}

// AuthConfig specifies the authentication mode for a source.
type AuthConfig struct {
	// Mode is one of: mtls | apikey | bearer | basic | none.
	Mode string `yaml:"mode"`

	// mTLS fields — used when Mode == "mtls".
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
	CAFile   string `yaml:"ca_file"`

	// API key fields — used when Mode == "apikey".
	// Header is the HTTP header name to send the key in.
	Header string `yaml:"header"`
	// KeyEnv is the name of the environment variable that holds the key value.
	KeyEnv string `yaml:"key_env"`

	// Bearer token fields — used when Mode == "bearer".
	// TokenEnv is the name of the environment variable that holds the token.
	TokenEnv string `yaml:"token_env"`

	// Basic auth fields — used when Mode == "basic".
	// Username is the literal username (safe to store in config).
	Username string `yaml:"username"`
	// PasswordEnv is the name of the environment variable that holds the password.
	PasswordEnv string `yaml:"password_env"`
}

// Key returns the API key value resolved from the environment.
// Returns empty string if KeyEnv is unset or the variable is not found.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// Token returns the bearer token value resolved from the environment.
func (a AuthConfig) Token() string {
	if a.TokenEnv == "" {
		return ""
	}
	return os.Getenv(a.TokenEnv)
}

// Password returns the basic-auth password resolved from the environment.
func (a AuthConfig) Password() string {
	if a.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(a.PasswordEnv)
}

// TLSConfig holds per-source TLS dial options.
type TLSConfig struct {
	// InsecureSkipVerify disables TLS certificate verification.
	// Only use this for internal CAs in development environments.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// ServeConfig holds serve-mode settings. Ignored in one-shot mode.
type ServeConfig struct {
	// HTTPPort is the port the REST API and WebSocket feed listen on.
	HTTPPort int `yaml:"http_port"`

	// RefreshInterval controls how often reports are recomputed.
	RefreshInterval Duration `yaml:"refresh_interval"`

	// ReportTTL is how long a source's report stays visible after its last
	// successful refresh. Stale reports are evicted, not persisted.
	ReportTTL Duration `yaml:"report_ttl"`

	// Auth configures REST API authentication.
	Auth ServeAuthConfig `yaml:"auth"`
}

// ServeAuthConfig configures REST API authentication.
type ServeAuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// Header is the HTTP header clients send the key in.
	Header string `yaml:"header"`

	// KeyEnv is the name of the environment variable holding the expected key.
	KeyEnv string `yaml:"key_env"`
}

// Key returns the serve API key resolved from the environment.
func (a ServeAuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// AlertsConfig holds all alerting rules and webhook targets.
type AlertsConfig struct {
	Rules    []AlertRule     `yaml:"rules"`
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// AlertRule defines a threshold-based trend alert.
type AlertRule struct {
	// Name is the human-readable alert identifier.
	Name string `yaml:"name"`

	// Condition is an expression over a delta record, like
	// "percent_delta < -0.5" or "absolute_delta < -1000".
	Condition string `yaml:"condition"`

	// Severity is one of: critical | warning | info.
	Severity string `yaml:"severity"`

	// Cooldown suppresses re-fires for this duration after an alert fires.
	Cooldown Duration `yaml:"cooldown"`
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is one of: slack | teams | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable holding the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	for i := range cfg.Sources {
		if cfg.Sources[i].PathLabel == "" {
			cfg.Sources[i].PathLabel = DefaultPathLabel
		}
	}
	if cfg.Serve.Auth.Header == "" {
		cfg.Serve.Auth.Header = DefaultAuthHeader
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Report: ReportConfig{
			WindowDays: DefaultWindowDays,
			TopN:       DefaultTopN,
		},
		Filter: FilterConfig{
			MinPathLength:  pathfilter.DefaultMinLength,
			SkipSubstrings: pathfilter.DefaultSkipSubstrings,
		},
		Serve: ServeConfig{
			HTTPPort:        DefaultHTTPPort,
			RefreshInterval: Duration(DefaultRefreshInterval),
			ReportTTL:       Duration(DefaultReportTTL),
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.Report.WindowDays <= 0 {
		return fmt.Errorf("report.window_days must be positive, got %d", cfg.Report.WindowDays)
	}
	if cfg.Report.TopN <= 0 {
		return fmt.Errorf("report.top_n must be positive, got %d", cfg.Report.TopN)
	}
	if len(cfg.Sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}

	seen := make(map[string]bool, len(cfg.Sources))
	for i, src := range cfg.Sources {
		if src.ID == "" {
			return fmt.Errorf("sources[%d]: id is required", i)
		}
		if seen[src.ID] {
			return fmt.Errorf("sources[%d]: duplicate id %q", i, src.ID)
		}
		seen[src.ID] = true
		if !sourceTypes[src.Type] {
			return fmt.Errorf("sources[%d] (%s): unsupported type %q", i, src.ID, src.Type)
		}
		if src.Endpoint == "" {
			return fmt.Errorf("sources[%d] (%s): endpoint is required", i, src.ID)
		}
		if (src.Type == "prometheus" || src.Type == "openmetrics") && src.Metric == "" {
			return fmt.Errorf("sources[%d] (%s): metric is required for type %q", i, src.ID, src.Type)
		}
	}

	if cfg.Serve.HTTPPort <= 0 || cfg.Serve.HTTPPort > 65535 {
		return fmt.Errorf("serve.http_port %d out of range", cfg.Serve.HTTPPort)
	}
	if cfg.Serve.RefreshInterval <= 0 {
		return fmt.Errorf("serve.refresh_interval must be positive")
	}
	if cfg.Serve.ReportTTL < cfg.Serve.RefreshInterval {
		return fmt.Errorf("serve.report_ttl must be at least serve.refresh_interval")
	}

	for i, rule := range cfg.Alerts.Rules {
		if rule.Name == "" {
			return fmt.Errorf("alerts.rules[%d]: name is required", i)
		}
		if rule.Condition == "" {
			return fmt.Errorf("alerts.rules[%d] (%s): condition is required", i, rule.Name)
		}
	}

	return nil
}
