package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigMissingDefault(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
}

func TestLoadConfigMissingExplicit(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("want error for missing explicit config")
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pinfold.toml")
	content := `
[cache]
location = "redis://localhost:6379/0"
ttl = "12h"

[lint]
disable = ["vcs-no-ref", "duplicate"]
unpinned = true
fail_on = "warning"

[registry]
url = "https://mirror.example.com/pypi"

[server]
addr = ":9090"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cache.Location != "redis://localhost:6379/0" {
		t.Errorf("Cache.Location = %q", cfg.Cache.Location)
	}
	if cfg.Cache.TTL.Duration != 12*time.Hour {
		t.Errorf("Cache.TTL = %v", cfg.Cache.TTL.Duration)
	}
	if len(cfg.Lint.Disable) != 2 || !cfg.Lint.Unpinned || cfg.Lint.FailOn != "warning" {
		t.Errorf("Lint = %+v", cfg.Lint)
	}
	if cfg.Registry.URL != "https://mirror.example.com/pypi" {
		t.Errorf("Registry.URL = %q", cfg.Registry.URL)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
}

func TestLoadConfigBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[cache\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("want error for malformed TOML")
	}
}
