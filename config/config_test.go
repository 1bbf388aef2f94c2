package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsAndEnvOverride(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("MESSAGE_INTERVAL", "5s")
	t.Setenv("HISTORY_MAX_PAGES", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MessageInterval != 5*time.Second {
		t.Fatalf("env override ignored: %v", cfg.MessageInterval)
	}
	if cfg.HistoryMaxPages != 2 {
		t.Fatalf("env override ignored: %d", cfg.HistoryMaxPages)
	}
	if cfg.HistoryPageSize != 100 {
		t.Fatalf("unexpected default page size: %d", cfg.HistoryPageSize)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "addr: \":9090\"\nlist_interval: 45s\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("ADDR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Fatalf("yaml addr ignored: %q", cfg.Addr)
	}
	if cfg.ListInterval != 45*time.Second {
		t.Fatalf("yaml interval ignored: %v", cfg.ListInterval)
	}
}
