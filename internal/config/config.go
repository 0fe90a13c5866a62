package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultListen     = "127.0.0.1:8080"
	DefaultTimezone   = "Europe/Berlin"
	DefaultEndpoint   = "https://%s/WebUntis/jsonrpc.do?school=%s"
	DefaultClientName = "untiscal"
	DefaultProductID  = "-//untiscal//timetable export//EN"
	defaultTimeout    = 15
)

// Environment variables overriding file values.
const (
	EnvListen    = "UNTISCAL_LISTEN"
	EnvTimezone  = "UNTISCAL_TIMEZONE"
	EnvLogLevel  = "UNTISCAL_LOG_LEVEL"
	EnvLogFormat = "UNTISCAL_LOG_FORMAT"
	EnvEndpoint  = "UNTISCAL_ENDPOINT"
	EnvProbeCron = "UNTISCAL_PROBE_CRON"
)

// LogConfig selects the log level and encoder.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" json:"level"`
	// Format is "json" or "console".
	Format string `yaml:"format" json:"format"`
}

// UpstreamConfig describes how to reach the timetable service.
type UpstreamConfig struct {
	// Endpoint is a URL template with two %s verbs: server host and school.
	Endpoint       string `yaml:"endpoint" json:"endpoint"`
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
	// ClientName is sent as the client identifier on authenticate.
	ClientName string `yaml:"client_name" json:"client_name"`
}

// Timeout returns TimeoutSeconds as a duration.
func (u UpstreamConfig) Timeout() time.Duration {
	return time.Duration(u.TimeoutSeconds) * time.Second
}

type CORSConfig struct {
	// AllowOrigin is sent as Access-Control-Allow-Origin. Empty disables CORS.
	AllowOrigin string `yaml:"allow_origin" json:"allow_origin"`
}

type CalendarConfig struct {
	ProductID string `yaml:"product_id" json:"product_id"`
}

// ProbeConfig schedules a periodic login check against one account.
// The probe is disabled unless Cron, Server and School are all set.
type ProbeConfig struct {
	Cron     string `yaml:"cron" json:"cron"`
	Server   string `yaml:"server" json:"server"`
	School   string `yaml:"school" json:"school"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"-"`
}

// Enabled reports whether the probe has enough settings to run.
func (p ProbeConfig) Enabled() bool {
	return p.Cron != "" && p.Server != "" && p.School != ""
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone upstream dates and times are interpreted in.
	Timezone string `yaml:"timezone" json:"timezone"`

	Log      LogConfig      `yaml:"log" json:"log"`
	Upstream UpstreamConfig `yaml:"upstream" json:"upstream"`
	CORS     CORSConfig     `yaml:"cors" json:"cors"`
	Calendar CalendarConfig `yaml:"calendar" json:"calendar"`
	Probe    ProbeConfig    `yaml:"probe" json:"probe"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:   DefaultListen,
		Timezone: DefaultTimezone,
		Log:      LogConfig{Level: "info", Format: "console"},
		Upstream: UpstreamConfig{
			Endpoint:       DefaultEndpoint,
			TimeoutSeconds: defaultTimeout,
			ClientName:     DefaultClientName,
		},
		Calendar: CalendarConfig{ProductID: DefaultProductID},
	}
}

// Normalize fills in missing/zero values with defaults so that partially
// filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		c.Log.Format = "console"
	}
	if c.Upstream.Endpoint == "" {
		c.Upstream.Endpoint = DefaultEndpoint
	}
	if c.Upstream.TimeoutSeconds <= 0 {
		c.Upstream.TimeoutSeconds = defaultTimeout
	}
	if c.Upstream.ClientName == "" {
		c.Upstream.ClientName = DefaultClientName
	}
	if c.Calendar.ProductID == "" {
		c.Calendar.ProductID = DefaultProductID
	}
}

// Validate reports settings that cannot be used as given.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	if strings.Count(c.Upstream.Endpoint, "%s") != 2 {
		return fmt.Errorf("config: upstream endpoint %q needs two %%s verbs (server, school)", c.Upstream.Endpoint)
	}
	return nil
}

// Location loads the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// ApplyEnv overrides file values with UNTISCAL_* environment variables.
func (c *Config) ApplyEnv() {
	set := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	set(EnvListen, &c.Listen)
	set(EnvTimezone, &c.Timezone)
	set(EnvLogLevel, &c.Log.Level)
	set(EnvLogFormat, &c.Log.Format)
	set(EnvEndpoint, &c.Upstream.Endpoint)
	set(EnvProbeCron, &c.Probe.Cron)
}

// loadDotEnv loads a .env file next to the config, if there is one. Variables
// already present in the environment win.
func loadDotEnv(path string) error {
	envPath := filepath.Join(filepath.Dir(path), ".env")
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: load %s: %w", envPath, err)
	}
	return nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600 perms.
//   - A .env file in the same directory is loaded into the environment.
//   - UNTISCAL_* variables override file values.
//   - Missing values are normalized to defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// First run: create default config file.
		if err := Save(path, cfg); err != nil {
			return cfg, err
		}
	case err != nil:
		return nil, err
	default:
		cfg = &Config{}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := loadDotEnv(path); err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	cfg.Normalize()

	return cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".untiscal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
