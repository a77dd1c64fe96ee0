//nolint:testpackage // Testing internal defaults requires same package access
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	if writeErr := os.WriteFile(path, []byte(content), 0o600); writeErr != nil {
		t.Fatalf("failed to write config file: %v", writeErr)
	}

	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "service:\n  name: analytics\n")

	cfg, loadErr := Load(path)
	if loadErr != nil {
		t.Fatalf("Load() error = %v", loadErr)
	}

	if cfg.Service.Port != defaultServicePort {
		t.Errorf("Service.Port = %d, want %d", cfg.Service.Port, defaultServicePort)
	}

	if cfg.Analytics.Timezone != defaultTimezone {
		t.Errorf("Analytics.Timezone = %q, want %q", cfg.Analytics.Timezone, defaultTimezone)
	}

	if cfg.Analytics.BreakdownScanCap != defaultBreakdownScanCap {
		t.Errorf("BreakdownScanCap = %d, want %d", cfg.Analytics.BreakdownScanCap, defaultBreakdownScanCap)
	}

	if cfg.Analytics.CacheMaxAge != defaultCacheMaxAgeS*time.Second {
		t.Errorf("CacheMaxAge = %v, want %v", cfg.Analytics.CacheMaxAge, defaultCacheMaxAgeS*time.Second)
	}

	if cfg.Database.Host != defaultDBHost {
		t.Errorf("Database.Host = %q, want %q", cfg.Database.Host, defaultDBHost)
	}
}

func TestLoad_EnvOverridesFileAndDefaults(t *testing.T) {
	path := writeConfig(t, "service:\n  port: 9000\nanalytics:\n  timezone: UTC\n")

	t.Setenv("ANALYTICS_PORT", "9100")
	t.Setenv("ANALYTICS_TIMEZONE", "America/New_York")
	t.Setenv("POSTGRES_ANALYTICS_HOST", "db.internal")

	cfg, loadErr := Load(path)
	if loadErr != nil {
		t.Fatalf("Load() error = %v", loadErr)
	}

	if cfg.Service.Port != 9100 {
		t.Errorf("Service.Port = %d, want 9100", cfg.Service.Port)
	}

	if cfg.Analytics.Timezone != "America/New_York" {
		t.Errorf("Analytics.Timezone = %q, want America/New_York", cfg.Analytics.Timezone)
	}

	if cfg.Database.Host != "db.internal" {
		t.Errorf("Database.Host = %q, want db.internal", cfg.Database.Host)
	}
}

func TestLoad_RejectsInvalidTimezone(t *testing.T) {
	path := writeConfig(t, "analytics:\n  timezone: Mars/Olympus_Mons\n")

	if _, loadErr := Load(path); loadErr == nil {
		t.Error("Load() accepted an invalid time zone")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, loadErr := Load(filepath.Join(t.TempDir(), "missing.yml")); loadErr == nil {
		t.Error("Load() succeeded for a missing file")
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	db := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "secret",
		Database: "phenomwatch",
		SSLMode:  "disable",
	}

	want := "host=localhost port=5432 user=postgres password=secret dbname=phenomwatch sslmode=disable"
	if got := db.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestValidatePort(t *testing.T) {
	if err := ValidatePort("service.port", 8087); err != nil {
		t.Errorf("ValidatePort(8087) error = %v", err)
	}

	if err := ValidatePort("service.port", 0); err == nil {
		t.Error("ValidatePort(0) accepted an invalid port")
	}

	if err := ValidatePort("service.port", 70000); err == nil {
		t.Error("ValidatePort(70000) accepted an invalid port")
	}
}
