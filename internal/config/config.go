// Package config resolves ccsg settings from defaults, a YAML file and
// environment variables. Command-line flags are applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Config holds every setting of an ingestion run.
type Config struct {
	PeoplePath    string `yaml:"people_path,omitempty"`
	WorksPath     string `yaml:"works_path,omitempty"`
	AgentIRI      string `yaml:"agent_iri,omitempty"`
	AgentEmail    string `yaml:"agent_email,omitempty"`
	Policy        string `yaml:"policy,omitempty"`
	OverridesPath string `yaml:"overrides_path,omitempty"`
	OnError       string `yaml:"on_error,omitempty"`
	Ambiguity     string `yaml:"ambiguity,omitempty"`
	MintBase      string `yaml:"mint_base,omitempty"`
	CatalogBase   string `yaml:"catalog_base,omitempty"`
	CatalogSuffix string `yaml:"catalog_suffix,omitempty"`
	LogLevel      string `yaml:"log_level,omitempty"`
	LogFormat     string `yaml:"log_format,omitempty"`
	MetricsFile   string `yaml:"metrics_file,omitempty"`

	// SingleTokenNames is how a one-word author name is looked up:
	// "both" uses the word as given and family name, "family" as the
	// family name alone.
	SingleTokenNames string `yaml:"single_token_names,omitempty"`
}

// Author resolution policies.
const (
	PolicyBatchFail   = "batch-fail"
	PolicyInteractive = "interactive"
)

// Single-token name readings.
const (
	SingleTokenBoth   = "both"
	SingleTokenFamily = "family"
)

// Defaults returns the settings used when nothing else is configured.
func Defaults() Config {
	return Config{
		Policy:        PolicyBatchFail,
		OnError:       "skip",
		Ambiguity:     "first",
		MintBase:      "http://catalog.coloradocollege.edu/",
		CatalogBase:   "https://tiger.coloradocollege.edu/record=",
		CatalogSuffix: "~s5",
		LogLevel:      "warn",
		LogFormat:     "json",

		SingleTokenNames: SingleTokenBoth,
	}
}

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

var (
	validPolicies   = []string{PolicyBatchFail, PolicyInteractive}
	validOnError    = []string{"skip", "abort"}
	validAmbiguity  = []string{"first", "reject"}
	validLogFormats = []string{"json", "console"}
	validSingleName = []string{SingleTokenBoth, SingleTokenFamily}
)

// Validate rejects unknown enum values and malformed IRIs.
func (c *Config) Validate() error {
	checks := []struct {
		key, value string
		valid      []string
	}{
		{"policy", c.Policy, validPolicies},
		{"on_error", c.OnError, validOnError},
		{"ambiguity", c.Ambiguity, validAmbiguity},
		{"log_format", c.LogFormat, validLogFormats},
		{"single_token_names", c.SingleTokenNames, validSingleName},
	}
	for _, ch := range checks {
		if !contains(ch.valid, ch.value) {
			return fmt.Errorf("%w: %s %q (valid: %s)", ErrInvalid, ch.key, ch.value, strings.Join(ch.valid, ", "))
		}
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil || c.LogLevel == "" {
		return fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	for _, iri := range []struct{ key, value string }{
		{"agent_iri", c.AgentIRI},
		{"mint_base", c.MintBase},
		{"catalog_base", c.CatalogBase},
	} {
		if iri.value != "" && !strings.Contains(iri.value, "://") {
			return fmt.Errorf("%w: %s %q is not an absolute IRI", ErrInvalid, iri.key, iri.value)
		}
	}
	return nil
}

// Environment variables, by key.
var envVars = []struct {
	name  string
	field func(*Config) *string
}{
	{"CCSG_PEOPLE", func(c *Config) *string { return &c.PeoplePath }},
	{"CCSG_WORKS", func(c *Config) *string { return &c.WorksPath }},
	{"CCSG_AGENT", func(c *Config) *string { return &c.AgentIRI }},
	{"CCSG_AGENT_EMAIL", func(c *Config) *string { return &c.AgentEmail }},
	{"CCSG_POLICY", func(c *Config) *string { return &c.Policy }},
	{"CCSG_OVERRIDES", func(c *Config) *string { return &c.OverridesPath }},
	{"CCSG_ON_ERROR", func(c *Config) *string { return &c.OnError }},
	{"CCSG_AMBIGUITY", func(c *Config) *string { return &c.Ambiguity }},
	{"CCSG_MINT_BASE", func(c *Config) *string { return &c.MintBase }},
	{"CCSG_CATALOG_BASE", func(c *Config) *string { return &c.CatalogBase }},
	{"CCSG_CATALOG_SUFFIX", func(c *Config) *string { return &c.CatalogSuffix }},
	{"CCSG_LOG_LEVEL", func(c *Config) *string { return &c.LogLevel }},
	{"CCSG_LOG_FORMAT", func(c *Config) *string { return &c.LogFormat }},
	{"CCSG_METRICS_FILE", func(c *Config) *string { return &c.MetricsFile }},
	{"CCSG_SINGLE_TOKEN_NAMES", func(c *Config) *string { return &c.SingleTokenNames }},
}

// ApplyEnv overrides settings from non-empty environment variables. lookup
// is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	for _, v := range envVars {
		if value, ok := lookup(v.name); ok && strings.TrimSpace(value) != "" {
			*v.field(c) = strings.TrimSpace(value)
		}
	}
	c.expandPaths()
}

func (c *Config) expandPaths() {
	for _, p := range []*string{&c.PeoplePath, &c.WorksPath, &c.OverridesPath, &c.MetricsFile} {
		*p = ExpandPath(*p)
	}
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
