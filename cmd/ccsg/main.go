// Package main provides the ccsg CLI entry point.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Tutt-Library/cc-scholarship-graph/internal/config"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/logging"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// rootOptions are the flags shared by every command.
type rootOptions struct {
	human      bool
	configPath string
	logLevel   string
	logFormat  string
}

func main() {
	// Load .env file if present (for CCSG_* settings)
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs one command line and returns the exit code.
func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts := &rootOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	if !silent(err) {
		reportError(stdout, stderr, opts.human, err)
	}
	return exitCode(err)
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ccsg",
		Short: "Colorado College scholarship graph ingestion",
		Long: `ccsg ingests citations of faculty scholarship into an RDF work graph.

Citations (BibTeX or JSON lines) are matched against the person registry,
deduplicated against the existing graph, and written as schema.org and
BIBFRAME triples with optional PROV-O provenance.

All commands output JSON by default; use --human for readable output.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
	}

	cmd.PersistentFlags().BoolVar(&opts.human, "human", false, "Use human-readable output instead of JSON")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/ccsg/config.yml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "Log format: json or console")

	cmd.AddCommand(newIngestCmd(opts))
	cmd.AddCommand(newPeopleCmd(opts))
	cmd.AddCommand(newLookupCmd(opts))
	return cmd
}

// loadConfig resolves the config file and environment, then applies the
// flags of cmd that were set explicitly. flags maps flag names to the
// settings they override.
func (o *rootOptions) loadConfig(cmd *cobra.Command, flags []settingFlag) (*config.Config, error) {
	cfg, err := config.Resolve(o.configPath)
	if err != nil {
		return nil, withCode(ExitConfigError, err)
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.logFormat != "" {
		cfg.LogFormat = o.logFormat
	}
	for _, f := range flags {
		if cmd.Flags().Changed(f.name) {
			*f.field(cfg) = config.ExpandPath(*f.value)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, withCode(ExitConfigError, err)
	}
	return cfg, nil
}

// settingFlag binds a command flag to the config setting it overrides.
type settingFlag struct {
	name  string
	value *string
	field func(*config.Config) *string
}

func newLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	return logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Writer: w})
}

func requirePath(value, flag, key string) error {
	if value == "" {
		return withCode(ExitConfigError, fmt.Errorf("%s is required (--%s or %s in config)", key, flag, key))
	}
	return nil
}
