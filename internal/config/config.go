package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SourceSQLite = "sqlite"
	SourceCSV    = "csv"

	DriverURI  = "uri"
	DriverFile = "file"
)

var (
	validSources    = []string{SourceSQLite, SourceCSV}
	validDrivers    = []string{DriverURI, DriverFile}
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"json", "text"}
)

type Config struct {
	Server    ServerConfig
	Data      DataConfig
	Logger    LoggerConfig
	Security  SecurityConfig
	Dashboard DashboardConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DataConfig selects where sales records are read from.
type DataConfig struct {
	Source  string
	DBURI   string
	Driver  string
	CSVPath string
}

type LoggerConfig struct {
	Level  string
	Format string
}

type SecurityConfig struct {
	EnableRateLimit bool
	RateLimitRPS    int
	RateLimitBurst  int
	AllowedOrigins  []string
	TrustedProxies  []string
}

type DashboardConfig struct {
	DefaultTopN int
	LoadTimeout time.Duration
}

// Load reads the optional dotenv file and then the process environment.
// Values from the dotenv file override the environment.
func Load() (*Config, error) {
	if err := loadDotEnv(envString("DOTENV_PATH", ".env")); err != nil {
		return nil, fmt.Errorf("load dotenv: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            envString("SERVER_HOST", "localhost"),
			Port:            env("SERVER_PORT", 8084, strconv.Atoi),
			ReadTimeout:     env("SERVER_READ_TIMEOUT", 10*time.Second, time.ParseDuration),
			WriteTimeout:    env("SERVER_WRITE_TIMEOUT", 30*time.Second, time.ParseDuration),
			IdleTimeout:     env("SERVER_IDLE_TIMEOUT", 60*time.Second, time.ParseDuration),
			ShutdownTimeout: env("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second, time.ParseDuration),
		},
		Data: DataConfig{
			Source:  normalize(envString("DATA_SOURCE", SourceSQLite)),
			DBURI:   strings.TrimSpace(envString("DB_URI", "sqlite:///db/app.db")),
			Driver:  normalize(envString("DB_DRIVER", DriverURI)),
			CSVPath: strings.TrimSpace(envString("CSV_PATH", "data/sales.csv")),
		},
		Logger: LoggerConfig{
			Level:  normalize(envString("LOG_LEVEL", "info")),
			Format: normalize(envString("LOG_FORMAT", "json")),
		},
		Security: SecurityConfig{
			EnableRateLimit: env("SECURITY_RATE_LIMIT_ENABLED", true, strconv.ParseBool),
			RateLimitRPS:    env("SECURITY_RATE_LIMIT_RPS", 100, strconv.Atoi),
			RateLimitBurst:  env("SECURITY_RATE_LIMIT_BURST", 10, strconv.Atoi),
			AllowedOrigins:  env("SECURITY_ALLOWED_ORIGINS", []string{"http://localhost:8084"}, splitList),
			TrustedProxies:  env("SECURITY_TRUSTED_PROXIES", []string{"127.0.0.1"}, splitList),
		},
		Dashboard: DashboardConfig{
			DefaultTopN: env("DEFAULT_TOP_N", 10, strconv.Atoi),
			LoadTimeout: env("DATA_LOAD_TIMEOUT", 30*time.Second, time.ParseDuration),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Overload(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (c *Config) validate() error {
	if err := c.Data.Validate(); err != nil {
		return err
	}

	checks := []struct {
		ok  bool
		msg string
	}{
		{c.Server.Port >= 1 && c.Server.Port <= 65535, fmt.Sprintf("server port must be between 1 and 65535, got %d", c.Server.Port)},
		{c.Server.ReadTimeout > 0, "server read timeout must be positive"},
		{c.Server.WriteTimeout > 0, "server write timeout must be positive"},
		{slices.Contains(validLogLevels, c.Logger.Level), fmt.Sprintf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))},
		{slices.Contains(validLogFormats, c.Logger.Format), fmt.Sprintf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))},
		{c.Security.RateLimitRPS > 0, "rate limit RPS must be positive"},
		{c.Security.RateLimitBurst > 0, "rate limit burst must be positive"},
		{c.Dashboard.DefaultTopN >= 1, fmt.Sprintf("default top N must be positive, got %d", c.Dashboard.DefaultTopN)},
		{c.Dashboard.LoadTimeout > 0, "data load timeout must be positive"},
	}
	for _, check := range checks {
		if !check.ok {
			return errors.New(check.msg)
		}
	}
	return nil
}

// Validate checks the data source selection. The returned error is an
// *InvalidSourceError for unknown source kinds or drivers.
func (d DataConfig) Validate() error {
	if !slices.Contains(validSources, d.Source) {
		return &InvalidSourceError{Setting: "DATA_SOURCE", Value: d.Source, Allowed: validSources}
	}
	if !slices.Contains(validDrivers, d.Driver) {
		return &InvalidSourceError{Setting: "DB_DRIVER", Value: d.Driver, Allowed: validDrivers}
	}
	if d.Locator() == "" {
		return fmt.Errorf("no locator configured for DATA_SOURCE=%s", d.Source)
	}
	return nil
}

// InvalidSourceError reports an unrecognized data source setting.
type InvalidSourceError struct {
	Setting string
	Value   string
	Allowed []string
}

func (e *InvalidSourceError) Error() string {
	return fmt.Sprintf("invalid %s %q, must be one of: %s", e.Setting, e.Value, strings.Join(e.Allowed, ", "))
}

// Locator returns the path or connection string of the selected source.
func (d DataConfig) Locator() string {
	if d.Source == SourceCSV {
		return d.CSVPath
	}
	return d.DBURI
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// env parses the variable with parse, keeping def when it is unset or
// does not parse.
func env[T any](key string, def T, parse func(string) (T, error)) T {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := parse(v)
	if err != nil {
		return def
	}
	return parsed
}

func splitList(s string) ([]string, error) {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
