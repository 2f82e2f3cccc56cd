package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got, want := DefaultPath(), "/custom/config/ccsg/config.yml"; got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	if got, want := DefaultPath(), filepath.Join(home, ".config", "ccsg", "config.yml"); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}

func TestLoad_DefaultMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *cfg != Defaults() {
		t.Errorf("Load() = %+v, want defaults", *cfg)
	}
}

func TestLoad_ExplicitMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Error("Load() of a named missing file succeeded")
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	configDir := filepath.Join(dir, ConfigDir)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	content := `people_path: ~/cc/people.ttl
works_path: /srv/cc/works.ttl
agent_email: Librarian@Example.edu
policy: interactive
`
	if err := os.WriteFile(filepath.Join(configDir, ConfigFile), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "cc/people.ttl"); cfg.PeoplePath != want {
		t.Errorf("PeoplePath = %q, want %q", cfg.PeoplePath, want)
	}
	if cfg.WorksPath != "/srv/cc/works.ttl" {
		t.Errorf("WorksPath = %q", cfg.WorksPath)
	}
	if cfg.Policy != PolicyInteractive {
		t.Errorf("Policy = %q, want interactive", cfg.Policy)
	}
	// Keys absent from the file keep their defaults.
	if cfg.OnError != "skip" || cfg.CatalogSuffix != "~s5" {
		t.Errorf("defaults lost: OnError = %q, CatalogSuffix = %q", cfg.OnError, cfg.CatalogSuffix)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("policy: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() should return error for invalid YAML")
	}
}

func TestResolve_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("policy: interactive\nlog_level: info\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CCSG_POLICY", "batch-fail")

	cfg, err := Resolve(path)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.Policy != PolicyBatchFail {
		t.Errorf("Policy = %q, want batch-fail from env", cfg.Policy)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info from file", cfg.LogLevel)
	}
}
