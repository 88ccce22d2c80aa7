package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 5000 {
		t.Errorf("expected Port=5000, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 300 {
		t.Errorf("expected WriteTimeoutSec=300, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Auth.Username != "admin" || cfg.Auth.Password != "admin123" {
		t.Errorf("expected default credentials, got %s/%s", cfg.Auth.Username, cfg.Auth.Password)
	}
	if cfg.Auth.SessionTTLMin != 720 {
		t.Errorf("expected SessionTTLMin=720, got %d", cfg.Auth.SessionTTLMin)
	}
	if cfg.Database.Path != filepath.Join("data", "phone_location.db") {
		t.Errorf("unexpected database path %q", cfg.Database.Path)
	}
	if cfg.Generator.Workers != runtime.NumCPU() {
		t.Errorf("expected Workers=%d, got %d", runtime.NumCPU(), cfg.Generator.Workers)
	}
	if cfg.Generator.MaxTotal != 10_000_000 {
		t.Errorf("expected MaxTotal=10000000, got %d", cfg.Generator.MaxTotal)
	}
	if cfg.Download.Dir != "downloads" {
		t.Errorf("expected Dir=downloads, got %q", cfg.Download.Dir)
	}
	if cfg.Download.FileSizeLimitMB != 20 {
		t.Errorf("expected FileSizeLimitMB=20, got %d", cfg.Download.FileSizeLimitMB)
	}
	if cfg.Download.ExpireHours != 24 {
		t.Errorf("expected ExpireHours=24, got %d", cfg.Download.ExpireHours)
	}
	if cfg.Download.SweepIntervalMin != 60 {
		t.Errorf("expected SweepIntervalMin=60, got %d", cfg.Download.SweepIntervalMin)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 8080, WriteTimeoutSec: 60},
		Generator: GeneratorConfig{Workers: 2, MaxTotal: 500},
		Download:  DownloadConfig{FileSizeLimitMB: 5},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected Port=8080, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Generator.Workers != 2 || cfg.Generator.MaxTotal != 500 {
		t.Errorf("explicit generator settings overwritten: %+v", cfg.Generator)
	}
	if cfg.Download.FileSizeLimitMB != 5 {
		t.Errorf("expected FileSizeLimitMB=5, got %d", cfg.Download.FileSizeLimitMB)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{HTTP: HTTPConfig{Port: 70000}}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{Port: 5000},
		Logging: LoggingConfig{Level: "verbose"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid log level")
	}

	expected := `logging.level must be debug, info, warn or error, got "verbose"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_ValidLogLevels(t *testing.T) {
	for _, level := range []string{"", "debug", "info", "warn", "error"} {
		t.Run("level="+level, func(t *testing.T) {
			cfg := Config{
				HTTP:    HTTPConfig{Port: 5000},
				Logging: LoggingConfig{Level: level},
			}
			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for level %q: %v", level, err)
			}
		})
	}
}

// chdir switches the working directory for the duration of the test,
// restoring the original directory on cleanup (testing.T.Chdir needs go1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Errorf("restore wd: %v", err)
		}
	})
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	chdir(t, t.TempDir())

	if err := os.MkdirAll("config", 0o755); err != nil {
		t.Fatalf("mkdir config: %v", err)
	}
	yaml := `
http:
  port: ${TEST_PHONEGEN_PORT:-6000}
auth:
  enabled: true
  secret: ${TEST_PHONEGEN_SECRET}
download:
  dir: exports
`
	if err := os.WriteFile(filepath.Join("config", "test.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TEST_PHONEGEN_SECRET", "s3cret")

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Port != 6000 {
		t.Errorf("Port = %d, want default expansion 6000", cfg.HTTP.Port)
	}
	if cfg.Auth.Secret != "s3cret" {
		t.Errorf("Secret = %q, want env expansion", cfg.Auth.Secret)
	}
	if !cfg.Auth.Enabled {
		t.Error("Enabled lost in load")
	}
	if cfg.Download.Dir != "exports" {
		t.Errorf("Dir = %q, want exports", cfg.Download.Dir)
	}
	// Untouched sections still get defaults.
	if cfg.Generator.MaxTotal != 10_000_000 {
		t.Errorf("MaxTotal = %d, want default", cfg.Generator.MaxTotal)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	chdir(t, t.TempDir())

	if _, err := Load("nonexistent"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
