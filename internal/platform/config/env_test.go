package config

import (
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	Timeout time.Duration `env:"KEYSTRAND_TEST_TIMEOUT" envDefault:"30s"`
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load[envTestConfig]()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Timeout != 30*time.Second {
		t.Fatalf("expected default timeout 30s, got %v", cfg.Timeout)
	}
}

func TestLoadOverride(t *testing.T) {
	t.Setenv("KEYSTRAND_TEST_TIMEOUT", "5s")

	cfg, err := Load[envTestConfig]()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Timeout != 5*time.Second {
		t.Fatalf("expected 5s, got %v", cfg.Timeout)
	}
}

func TestLoadError(t *testing.T) {
	t.Setenv("KEYSTRAND_TEST_TIMEOUT", "not-a-duration")

	_, err := Load[envTestConfig]()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
