package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Tutt-Library/cc-scholarship-graph/internal/author"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/citation"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/config"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/graph"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/ingest"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/logging"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/lookup"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/metrics"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/mint"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/registry"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/work"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// IngestResult is the document written by the ingest command.
type IngestResult struct {
	Citations   string `json:"citations,omitempty"`
	Works       string `json:"works"`
	DryRun      bool   `json:"dry_run,omitempty"`
	Written     bool   `json:"written"`
	PeopleSaved bool   `json:"people_saved,omitempty"`
	ingest.Summary
}

type ingestOptions struct {
	people      string
	works       string
	citations   string
	policy      string
	overrides   string
	agent       string
	agentEmail  string
	onError     string
	ambiguity   string
	metricsFile string
	singleNames string
	dryRun      bool
}

func (o *ingestOptions) settings() []settingFlag {
	return []settingFlag{
		{"people", &o.people, func(c *config.Config) *string { return &c.PeoplePath }},
		{"works", &o.works, func(c *config.Config) *string { return &c.WorksPath }},
		{"policy", &o.policy, func(c *config.Config) *string { return &c.Policy }},
		{"overrides", &o.overrides, func(c *config.Config) *string { return &c.OverridesPath }},
		{"agent", &o.agent, func(c *config.Config) *string { return &c.AgentIRI }},
		{"agent-email", &o.agentEmail, func(c *config.Config) *string { return &c.AgentEmail }},
		{"on-error", &o.onError, func(c *config.Config) *string { return &c.OnError }},
		{"ambiguity", &o.ambiguity, func(c *config.Config) *string { return &c.Ambiguity }},
		{"metrics-file", &o.metricsFile, func(c *config.Config) *string { return &c.MetricsFile }},
		{"single-token-names", &o.singleNames, func(c *config.Config) *string { return &c.SingleTokenNames }},
	}
}

func newIngestCmd(root *rootOptions) *cobra.Command {
	o := &ingestOptions{}
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest a batch of citations into the work graph",
		Long: `Ingest reads citations, resolves their authors against the person
registry and adds articles, books and chapters to the work graph.

Records are processed in order. A record that cannot be ingested is
reported and skipped unless --on-error abort is given, in which case
nothing is written. The work graph is rewritten at the end unless
--dry-run is set or no citation source was given.

Exit status is 3 when any record was rejected or skipped, 4 when the
batch was aborted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig(cmd, o.settings())
			if err != nil {
				return err
			}
			log := logging.WithRun(newLogger(cfg, cmd.ErrOrStderr()), o.citations, cfg.WorksPath)
			res, err := runIngest(cmd.Context(), cfg, o.citations, o.dryRun, cmd.InOrStdin(), cmd.ErrOrStderr(), log)
			if res == nil {
				return err
			}
			if root.human {
				reportIngestHuman(cmd.OutOrStdout(), res)
			} else if jerr := outputJSON(cmd.OutOrStdout(), res); jerr != nil && err == nil {
				return fmt.Errorf("writing result: %w", jerr)
			}
			// Stdout already holds the result document.
			if err != nil && !silent(err) {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", err)
				return withCode(exitCode(err), nil)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&o.people, "people", "", "Person registry (Turtle)")
	cmd.Flags().StringVar(&o.works, "works", "", "Work graph (Turtle), read and rewritten")
	cmd.Flags().StringVar(&o.citations, "citations", "", "Citation source (.bib or .jsonl)")
	cmd.Flags().StringVar(&o.policy, "policy", "", "Unresolved author policy: batch-fail or interactive")
	cmd.Flags().StringVar(&o.overrides, "overrides", "", "YAML map of author strings or names to person IRIs")
	cmd.Flags().StringVar(&o.agent, "agent", "", "IRI of the agent recorded in provenance")
	cmd.Flags().StringVar(&o.agentEmail, "agent-email", "", "Email of a registered person to use as provenance agent")
	cmd.Flags().StringVar(&o.onError, "on-error", "", "Failed record policy: skip or abort")
	cmd.Flags().StringVar(&o.ambiguity, "ambiguity", "", "Ambiguous lookup policy: first or reject")
	cmd.Flags().StringVar(&o.metricsFile, "metrics-file", "", "Write batch metrics to this textfile")
	cmd.Flags().StringVar(&o.singleNames, "single-token-names", "", "One-word author names: both (given and family) or family")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "Process records without writing any file")
	return cmd
}

// runIngest runs one batch. It returns a nil result only when the batch
// never started.
func runIngest(ctx context.Context, cfg *config.Config, citations string, dryRun bool, stdin io.Reader, stderr io.Writer, log zerolog.Logger) (*IngestResult, error) {
	if err := requirePath(cfg.PeoplePath, "people", "people_path"); err != nil {
		return nil, err
	}
	if err := requirePath(cfg.WorksPath, "works", "works_path"); err != nil {
		return nil, err
	}
	onError, err := ingest.ParseOnError(cfg.OnError)
	if err != nil {
		return nil, withCode(ExitConfigError, err)
	}
	ambiguity, err := work.ParseAmbiguity(cfg.Ambiguity)
	if err != nil {
		return nil, withCode(ExitConfigError, err)
	}

	reg, err := registry.Load(ctx, cfg.PeoplePath)
	if err != nil {
		return nil, withCode(ExitConfigError, err)
	}
	defer reg.Close()

	works, err := loadWorks(ctx, cfg.WorksPath, log)
	if err != nil {
		return nil, withCode(ExitDataError, fmt.Errorf("loading work graph: %w", err))
	}
	defer works.Close()

	res := &IngestResult{Citations: citations, Works: cfg.WorksPath, DryRun: dryRun}
	if citations == "" {
		log.Info().Msg("no citation source given, nothing to ingest")
		res.Outcomes = []ingest.Outcome{}
		return res, nil
	}

	records, sourceErrs, err := citation.Open(citations)
	if err != nil {
		return nil, err
	}

	agent, err := resolveAgent(ctx, cfg, reg)
	if err != nil {
		return nil, err
	}
	minter := mint.NewUUID(cfg.MintBase)
	policy, err := buildPolicy(cfg, reg, minter, agent, stdin, stderr)
	if err != nil {
		return nil, err
	}

	resolver := &author.Resolver{
		Registry:              reg,
		Policy:                policy,
		Logger:                log,
		FamilyOnlySingleNames: cfg.SingleTokenNames == config.SingleTokenFamily,
	}

	batch := metrics.NewBatch()
	p := ingest.New(&ingest.Context{
		Works:     works,
		Authors:   resolver,
		Lookup:    lookup.New(works),
		Minter:    minter,
		Catalog:   work.Catalog{Base: cfg.CatalogBase, Suffix: cfg.CatalogSuffix},
		Agent:     agent,
		OnError:   onError,
		Ambiguity: ambiguity,
		Logger:    log,
		Recorder:  batch,
	})

	started := time.Now()
	sum, runErr := p.Run(ctx, records, sourceErrs)
	batch.Finish(started, time.Now())
	res.Summary = sum

	// An aborted batch or a storage failure persists nothing. A cancelled
	// batch keeps the records it finished.
	persist := runErr == nil || errors.Is(runErr, context.Canceled)
	if persist && !dryRun {
		wctx := context.WithoutCancel(ctx)
		if err := works.WriteTurtleFile(wctx, cfg.WorksPath); err != nil {
			return res, fmt.Errorf("writing work graph: %w", err)
		}
		res.Written = true
		if reg.Dirty() {
			if err := reg.Save(wctx, cfg.PeoplePath); err != nil {
				return res, fmt.Errorf("writing person registry: %w", err)
			}
			res.PeopleSaved = true
		}
	}

	if cfg.MetricsFile != "" {
		if err := batch.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Warn().Err(err).Str("path", cfg.MetricsFile).Msg("writing metrics failed")
		}
	}

	switch {
	case errors.Is(runErr, ingest.ErrAborted):
		return res, withCode(ExitAborted, runErr)
	case runErr != nil:
		return res, runErr
	case sum.Failed() > 0:
		return res, withCode(ExitDataError, nil)
	}
	return res, nil
}

// resolveAgent returns the provenance agent: the configured IRI, or the
// registered person with the configured email.
func resolveAgent(ctx context.Context, cfg *config.Config, reg *registry.Registry) (graph.IRI, error) {
	if cfg.AgentIRI != "" {
		return graph.IRI(cfg.AgentIRI), nil
	}
	if cfg.AgentEmail == "" {
		return "", nil
	}
	iri, ok, err := reg.FindByEmail(ctx, cfg.AgentEmail)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", withCode(ExitConfigError, fmt.Errorf("no registered person has email %q", cfg.AgentEmail))
	}
	return iri, nil
}

func buildPolicy(cfg *config.Config, reg *registry.Registry, minter mint.Minter, agent graph.IRI, stdin io.Reader, stderr io.Writer) (author.Policy, error) {
	var policy author.Policy = author.BatchFail{}
	if cfg.Policy == config.PolicyInteractive {
		policy = &author.Interactive{
			Prompter:   author.NewIOPrompter(stdin, stderr),
			Registry:   reg,
			Minter:     minter,
			Provenance: graph.Provenance{Agent: agent, At: time.Now()},
		}
	}
	if cfg.OverridesPath != "" {
		m, err := author.LoadOverrides(cfg.OverridesPath)
		if err != nil {
			return nil, withCode(ExitConfigError, err)
		}
		policy = author.Overrides{Map: m, Next: policy}
	}
	return policy, nil
}

func reportIngestHuman(w io.Writer, res *IngestResult) {
	if res.Citations == "" {
		outputHuman(w, "No citation source given; %s not modified\n", res.Works)
		return
	}
	outputHuman(w, "Processed %d records from %s\n", res.Total, res.Citations)
	outputHuman(w, "  Succeeded: %d\n", res.Succeeded)
	outputHuman(w, "  Rejected:  %d\n", res.Rejected)
	outputHuman(w, "  Skipped:   %d\n", res.Skipped)
	if res.Cancelled > 0 {
		outputHuman(w, "  Cancelled: %d\n", res.Cancelled)
	}
	outputHuman(w, "  Triples:   %d added\n", res.Triples)

	for _, o := range res.Outcomes {
		switch o.Status {
		case ingest.StatusSucceeded:
			for _, warn := range o.Warnings {
				outputHuman(w, "  warning [%d] %s: %s\n", o.Index, o.Key, truncateString(warn, MessageMaxLen))
			}
		case ingest.StatusRejected, ingest.StatusSkipped:
			outputHuman(w, "  %s [%d] %s (%s): %s\n", o.Status, o.Index, o.Key, o.Reason, truncateString(o.Message, MessageMaxLen))
		}
	}

	switch {
	case res.Aborted:
		outputHuman(w, "\nBatch aborted; %s not modified\n", res.Works)
	case res.DryRun:
		outputHuman(w, "\nDry run; %s not modified\n", res.Works)
	case res.Written:
		outputHuman(w, "\nWrote %s\n", res.Works)
	}
	if res.PeopleSaved {
		outputHuman(w, "Registered new people in the person registry\n")
	}
}
