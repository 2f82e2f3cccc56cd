package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults_Valid(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Defaults().Validate() = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"interactive", func(c *Config) { c.Policy = PolicyInteractive }, false},
		{"abort", func(c *Config) { c.OnError = "abort" }, false},
		{"console logs", func(c *Config) { c.LogFormat = "console"; c.LogLevel = "debug" }, false},
		{"unknown policy", func(c *Config) { c.Policy = "ask" }, true},
		{"unknown on_error", func(c *Config) { c.OnError = "retry" }, true},
		{"unknown ambiguity", func(c *Config) { c.Ambiguity = "last" }, true},
		{"unknown log format", func(c *Config) { c.LogFormat = "xml" }, true},
		{"unknown log level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"empty log level", func(c *Config) { c.LogLevel = "" }, true},
		{"relative agent", func(c *Config) { c.AgentIRI = "jdoe" }, true},
		{"absolute agent", func(c *Config) { c.AgentIRI = "http://people.example.edu/jdoe" }, false},
		{"family-only single names", func(c *Config) { c.SingleTokenNames = SingleTokenFamily }, false},
		{"unknown single names", func(c *Config) { c.SingleTokenNames = "given" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalid) {
				t.Errorf("error %v does not wrap ErrInvalid", err)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"CCSG_PEOPLE":   "/data/people.ttl",
		"CCSG_POLICY":   "interactive",
		"CCSG_ON_ERROR": "  abort ",
		"CCSG_WORKS":    "",

		"CCSG_SINGLE_TOKEN_NAMES": "family",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Defaults()
	cfg.WorksPath = "/from/file.ttl"
	cfg.ApplyEnv(lookup)

	if cfg.PeoplePath != "/data/people.ttl" {
		t.Errorf("PeoplePath = %q", cfg.PeoplePath)
	}
	if cfg.Policy != PolicyInteractive {
		t.Errorf("Policy = %q, want interactive", cfg.Policy)
	}
	if cfg.OnError != "abort" {
		t.Errorf("OnError = %q, want abort", cfg.OnError)
	}
	if cfg.SingleTokenNames != SingleTokenFamily {
		t.Errorf("SingleTokenNames = %q, want family", cfg.SingleTokenNames)
	}
	if cfg.WorksPath != "/from/file.ttl" {
		t.Errorf("WorksPath = %q, empty env var should not override", cfg.WorksPath)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	tests := []struct {
		in, want string
	}{
		{"~/works.ttl", filepath.Join(home, "works.ttl")},
		{"~", home},
		{"/abs/works.ttl", "/abs/works.ttl"},
		{"~other/works.ttl", "~other/works.ttl"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
