// Package config provides configuration loading for the analytics service.
// Configuration comes from a YAML file with environment variable overrides.
package config

import (
	"fmt"
	"time"
)

// Default service configuration values.
const (
	defaultServiceName    = "analytics"
	defaultServiceVersion = "1.0.0"
	defaultServicePort    = 8087
	defaultLogLevel       = "info"
	defaultLogFormat      = "json"
)

// Default database configuration values.
const (
	defaultDBHost          = "localhost"
	defaultDBPort          = 5432
	defaultDBUser          = "postgres"
	defaultDBName          = "phenomwatch"
	defaultDBSSLMode       = "disable"
	defaultDBMaxConns      = 25
	defaultDBMaxIdleConns  = 5
	defaultDBConnLifetimeH = 1
)

// Default analytics configuration values.
const (
	defaultTimezone         = "UTC"
	defaultBreakdownScanCap = 10000
	defaultTimeOfDayScanCap = 5000
	defaultResolverTimeoutS = 10
	defaultRequestTimeoutS  = 30
	defaultCacheMaxAgeS     = 300
)

// Config holds the application configuration.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Database  DatabaseConfig  `yaml:"database"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServiceConfig holds service identity and runtime settings.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `env:"ANALYTICS_PORT" yaml:"port"`
	Debug   bool   `env:"APP_DEBUG"      yaml:"debug"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host                  string        `env:"POSTGRES_ANALYTICS_HOST"     yaml:"host"`
	Port                  int           `env:"POSTGRES_ANALYTICS_PORT"     yaml:"port"`
	User                  string        `env:"POSTGRES_ANALYTICS_USER"     yaml:"user"`
	Password              string        `env:"POSTGRES_ANALYTICS_PASSWORD" yaml:"password"`
	Database              string        `env:"POSTGRES_ANALYTICS_DB"       yaml:"database"`
	SSLMode               string        `yaml:"sslmode"`
	MaxConnections        int           `yaml:"max_connections"`
	MaxIdleConns          int           `yaml:"max_idle_connections"`
	ConnectionMaxLifetime time.Duration `yaml:"connection_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

// AnalyticsConfig holds aggregation tuning parameters.
type AnalyticsConfig struct {
	// Timezone is the IANA zone used for calendar-month and day-of-week
	// boundaries. Explicit so tests and deployments agree on bucketing.
	Timezone string `env:"ANALYTICS_TIMEZONE" yaml:"timezone"`
	// BreakdownScanCap bounds the fallback row scan for breakdown metrics.
	BreakdownScanCap int `yaml:"breakdown_scan_cap"`
	// TimeOfDayScanCap bounds the fallback row scan for hourly buckets.
	TimeOfDayScanCap int `yaml:"time_of_day_scan_cap"`
	// ResolverTimeout bounds a single resolver's execution.
	ResolverTimeout time.Duration `yaml:"resolver_timeout"`
	// RequestTimeout bounds the whole summary request.
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// CacheMaxAge is the advertised shared-cache freshness window.
	CacheMaxAge time.Duration `yaml:"cache_max_age"`
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	JWTSecret string `env:"AUTH_JWT_SECRET" yaml:"jwt_secret"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// Load loads configuration from a YAML file, applies defaults, then env overrides.
func Load(path string) (*Config, error) {
	cfg, loadErr := load(path, setDefaults)
	if loadErr != nil {
		return nil, fmt.Errorf("load config: %w", loadErr)
	}

	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return cfg, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := ValidatePort("service.port", c.Service.Port); err != nil {
		return err
	}

	if c.Database.Host == "" {
		return &ValidationError{Field: "database.host", Message: "is required"}
	}

	if c.Database.Database == "" {
		return &ValidationError{Field: "database.database", Message: "is required"}
	}

	if _, err := time.LoadLocation(c.Analytics.Timezone); err != nil {
		return &ValidationError{Field: "analytics.timezone", Message: "must be a valid IANA time zone"}
	}

	return nil
}

// setDefaults applies default values to all configuration sections.
func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	setAnalyticsDefaults(&cfg.Analytics)
	setLoggingDefaults(&cfg.Logging)
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}

	if s.Version == "" {
		s.Version = defaultServiceVersion
	}

	if s.Port == 0 {
		s.Port = defaultServicePort
	}
}

func setDatabaseDefaults(d *DatabaseConfig) {
	if d.Host == "" {
		d.Host = defaultDBHost
	}

	if d.Port == 0 {
		d.Port = defaultDBPort
	}

	if d.User == "" {
		d.User = defaultDBUser
	}

	if d.Database == "" {
		d.Database = defaultDBName
	}

	if d.SSLMode == "" {
		d.SSLMode = defaultDBSSLMode
	}

	if d.MaxConnections == 0 {
		d.MaxConnections = defaultDBMaxConns
	}

	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = defaultDBMaxIdleConns
	}

	if d.ConnectionMaxLifetime == 0 {
		d.ConnectionMaxLifetime = defaultDBConnLifetimeH * time.Hour
	}
}

func setAnalyticsDefaults(a *AnalyticsConfig) {
	if a.Timezone == "" {
		a.Timezone = defaultTimezone
	}

	if a.BreakdownScanCap == 0 {
		a.BreakdownScanCap = defaultBreakdownScanCap
	}

	if a.TimeOfDayScanCap == 0 {
		a.TimeOfDayScanCap = defaultTimeOfDayScanCap
	}

	if a.ResolverTimeout == 0 {
		a.ResolverTimeout = defaultResolverTimeoutS * time.Second
	}

	if a.RequestTimeout == 0 {
		a.RequestTimeout = defaultRequestTimeoutS * time.Second
	}

	if a.CacheMaxAge == 0 {
		a.CacheMaxAge = defaultCacheMaxAgeS * time.Second
	}
}

func setLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = defaultLogLevel
	}

	if l.Format == "" {
		l.Format = defaultLogFormat
	}
}
