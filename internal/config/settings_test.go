package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadFromPath(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BackendAddress() != "127.0.0.1:7788" {
		t.Fatalf("unexpected backend address %q", cfg.BackendAddress())
	}
	if cfg.PollInterval() != 5*time.Second {
		t.Fatalf("unexpected poll interval %v", cfg.PollInterval())
	}
	if cfg.LogLevel() != "info" {
		t.Fatalf("unexpected log level %q", cfg.LogLevel())
	}
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[backend]\naddress = \"127.0.0.1:9900\"\n\n[sync]\npoll_interval_ms = 250\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BackendAddress() != "127.0.0.1:9900" {
		t.Fatalf("address not overlaid: %q", cfg.BackendAddress())
	}
	if cfg.PollInterval() != 250*time.Millisecond {
		t.Fatalf("poll interval not overlaid: %v", cfg.PollInterval())
	}
	// Untouched sections keep their defaults.
	if cfg.RequestTimeout() != 10*time.Second {
		t.Fatalf("request timeout should default: %v", cfg.RequestTimeout())
	}
}

func TestBackendAddressNormalization(t *testing.T) {
	cases := map[string]string{
		"":                        "127.0.0.1:7788",
		"http://localhost:8080/":  "localhost:8080",
		"https://localhost:8443":  "localhost:8443",
		"  127.0.0.1:7788  ":      "127.0.0.1:7788",
		"example.internal:7788//": "example.internal:7788",
	}
	for raw, want := range cases {
		cfg := Config{Backend: BackendConfig{Address: raw}}
		if got := cfg.BackendAddress(); got != want {
			t.Errorf("address %q: got %q, want %q", raw, got, want)
		}
	}
}
