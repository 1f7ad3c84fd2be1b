package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("READLOG_CONFIG_PATH", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Driver() != DriverDiskv {
		t.Fatalf("driver = %q", cfg.Driver())
	}
	if cfg.Catalog.URL != DefaultCatalogURL {
		t.Fatalf("catalog url = %q", cfg.Catalog.URL)
	}
	if cfg.Catalog.Lang != "ru" {
		t.Fatalf("catalog lang = %q", cfg.Catalog.Lang)
	}
	if cfg.Search.Debounce != 300*time.Millisecond {
		t.Fatalf("debounce = %v", cfg.Search.Debounce)
	}
	if cfg.Search.MinQuery != 3 {
		t.Fatalf("min query = %d", cfg.Search.MinQuery)
	}
	if strings.HasPrefix(cfg.BasePath(), "~") {
		t.Fatalf("expected ~ to be expanded, got %q", cfg.BasePath())
	}
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(t.TempDir())
	body := "path: " + filepath.Join(dir, "books") + "\ndriver: sqlite\nsearch:\n  debounce: 50ms\ncatalog:\n  lang: en\n"
	if err := os.WriteFile(filepath.Join(dir, ".readlog.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("READLOG_CONFIG_PATH", dir)
	t.Setenv("READLOG_SEARCH_MIN_QUERY", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Driver() != DriverSQLite {
		t.Fatalf("driver = %q", cfg.Driver())
	}
	if cfg.BasePath() != filepath.Join(dir, "books") {
		t.Fatalf("path = %q", cfg.BasePath())
	}
	if cfg.Search.Debounce != 50*time.Millisecond {
		t.Fatalf("debounce = %v", cfg.Search.Debounce)
	}
	if cfg.Search.MinQuery != 4 {
		t.Fatalf("min query from env = %d", cfg.Search.MinQuery)
	}
	if cfg.Catalog.Lang != "en" {
		t.Fatalf("lang = %q", cfg.Catalog.Lang)
	}
	if cfg.File == "" {
		t.Fatalf("expected config file to be recorded")
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("READLOG_CONFIG_PATH", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("READLOG_DRIVER", "postgres")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
