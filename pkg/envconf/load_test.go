package envconf

import (
	"errors"
	"log/slog"
	"testing"
	"time"
)

type nested struct {
	DSN     string        `env:"TEST_DSN"`
	MaxIdle time.Duration `env:"TEST_MAX_IDLE"`
}

type testConfig struct {
	Port     uint16     `env:"TEST_PORT"`
	LogLevel slog.Level `env:"TEST_LOG_LEVEL"`
	Brokers  string     `env:"TEST_BROKERS,optional"`
	Debug    bool       `env:"TEST_DEBUG"`
	Postgres nested

	ignored string //nolint:unused
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_PORT", "8080")
	t.Setenv("TEST_LOG_LEVEL", "WARN")
	t.Setenv("TEST_DEBUG", "true")
	t.Setenv("TEST_DSN", "postgres://localhost/bartab")
	t.Setenv("TEST_MAX_IDLE", "90s")

	cfg := new(testConfig)

	err := Load(cfg)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("port: want 8080, got %d", cfg.Port)
	}

	if cfg.LogLevel != slog.LevelWarn {
		t.Errorf("log level: want WARN, got %v", cfg.LogLevel)
	}

	if !cfg.Debug {
		t.Error("debug: want true")
	}

	if cfg.Brokers != "" {
		t.Errorf("optional unset field should stay zero, got %q", cfg.Brokers)
	}

	if cfg.Postgres.DSN != "postgres://localhost/bartab" {
		t.Errorf("nested dsn: got %q", cfg.Postgres.DSN)
	}

	if cfg.Postgres.MaxIdle != 90*time.Second {
		t.Errorf("nested duration: got %v", cfg.Postgres.MaxIdle)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("TEST_PORT", "8080")
	t.Setenv("TEST_LOG_LEVEL", "INFO")
	t.Setenv("TEST_DEBUG", "false")
	t.Setenv("TEST_MAX_IDLE", "1s")
	// TEST_DSN deliberately unset

	err := Load(new(testConfig))
	if !errors.Is(err, ErrMissingRequired) {
		t.Fatalf("want ErrMissingRequired, got %v", err)
	}
}

func TestLoadOptional(t *testing.T) {
	t.Setenv("TEST_PORT", "1")
	t.Setenv("TEST_LOG_LEVEL", "INFO")
	t.Setenv("TEST_DEBUG", "false")
	t.Setenv("TEST_DSN", "x")
	t.Setenv("TEST_MAX_IDLE", "1s")
	t.Setenv("TEST_BROKERS", "kafka:9092")

	cfg := new(testConfig)

	err := Load(cfg)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Brokers != "kafka:9092" {
		t.Errorf("optional set field: got %q", cfg.Brokers)
	}
}

func TestLoadRejectsNonStruct(t *testing.T) {
	err := Load(nil)
	if err == nil {
		t.Fatal("want error for nil destination")
	}

	var s string

	err = Load(&s)
	if err == nil {
		t.Fatal("want error for non-struct destination")
	}
}

func TestLoadBadValue(t *testing.T) {
	t.Setenv("TEST_PORT", "not-a-number")
	t.Setenv("TEST_LOG_LEVEL", "INFO")
	t.Setenv("TEST_DEBUG", "false")
	t.Setenv("TEST_DSN", "x")
	t.Setenv("TEST_MAX_IDLE", "1s")

	err := Load(new(testConfig))
	if err == nil {
		t.Fatal("want parse error for bad uint")
	}
}
