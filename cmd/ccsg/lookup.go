package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Tutt-Library/cc-scholarship-graph/internal/config"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/graph"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/lookup"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/work"
	"github.com/spf13/cobra"
)

// LookupResult is the document written by the lookup commands.
type LookupResult struct {
	Kind       string   `json:"kind"`
	Query      string   `json:"query"`
	Found      bool     `json:"found"`
	IRI        string   `json:"iri,omitempty"`
	Candidates []string `json:"candidates,omitempty"` // set when more than one entity matched
}

// lookupFunc runs one lookup against the index.
type lookupFunc func(ctx context.Context, x *lookup.Index) (graph.IRI, bool, error)

func newLookupCmd(root *rootOptions) *cobra.Command {
	var works, bookBy, volume string
	var catalog work.Catalog
	settings := []settingFlag{
		{"works", &works, func(c *config.Config) *string { return &c.WorksPath }},
	}

	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Find existing entities in the work graph",
		Long: `Lookup runs the same dedup lookups ingest uses, without changing the
work graph. Matches are exact.`,
	}
	cmd.PersistentFlags().StringVar(&works, "works", "", "Work graph (Turtle)")

	run := func(cmd *cobra.Command, kind, query string, fn lookupFunc) error {
		cfg, err := root.loadConfig(cmd, settings)
		if err != nil {
			return err
		}
		if err := requirePath(cfg.WorksPath, "works", "works_path"); err != nil {
			return err
		}
		catalog = work.Catalog{Base: cfg.CatalogBase, Suffix: cfg.CatalogSuffix}

		log := newLogger(cfg, cmd.ErrOrStderr())
		g, err := loadWorks(cmd.Context(), cfg.WorksPath, log)
		if err != nil {
			return withCode(ExitDataError, fmt.Errorf("loading work graph: %w", err))
		}
		defer g.Close()

		res := LookupResult{Kind: kind, Query: query}
		iri, found, err := fn(cmd.Context(), lookup.New(g))
		var amb *lookup.AmbiguityError
		switch {
		case errors.As(err, &amb):
			for _, c := range amb.Candidates {
				res.Candidates = append(res.Candidates, string(c))
			}
		case err != nil:
			return err
		}
		res.Found = found
		res.IRI = string(iri)

		if root.human {
			reportLookupHuman(cmd.OutOrStdout(), res)
			return nil
		}
		return outputJSON(cmd.OutOrStdout(), res)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "journal <name>",
		Short: "Find a periodical by exact name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, "journal", args[0], func(ctx context.Context, x *lookup.Index) (graph.IRI, bool, error) {
				return x.Periodical(ctx, args[0])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "volume <journal> <number>",
		Short: "Find a volume of a periodical",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := args[0] + " vol. " + args[1]
			return run(cmd, "volume", query, func(ctx context.Context, x *lookup.Index) (graph.IRI, bool, error) {
				journal, ok, err := x.Periodical(ctx, args[0])
				if err != nil || !ok {
					return "", false, err
				}
				return x.Volume(ctx, journal, args[1])
			})
		},
	})

	issueCmd := &cobra.Command{
		Use:   "issue <journal> <number>",
		Short: "Find an issue of a periodical, or of one of its volumes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := args[0] + " no. " + args[1]
			if volume != "" {
				query = args[0] + " vol. " + volume + " no. " + args[1]
			}
			return run(cmd, "issue", query, func(ctx context.Context, x *lookup.Index) (graph.IRI, bool, error) {
				journal, ok, err := x.Periodical(ctx, args[0])
				if err != nil || !ok {
					return "", false, err
				}
				if volume == "" {
					return x.Issue(ctx, journal, args[1])
				}
				vol, ok, err := x.Volume(ctx, journal, volume)
				if err != nil || !ok {
					return "", false, err
				}
				return x.IssueOfVolume(ctx, vol, args[1])
			})
		},
	}
	issueCmd.Flags().StringVar(&volume, "volume", "", "Volume the issue belongs to")
	cmd.AddCommand(issueCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "doi <doi>",
		Short: "Check whether a work with this DOI exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, "doi", args[0], func(ctx context.Context, x *lookup.Index) (graph.IRI, bool, error) {
				return x.DOI(ctx, work.DOIIRI(args[0]))
			})
		},
	})

	bookCmd := &cobra.Command{
		Use:   "book <value>",
		Short: "Find a book by ISBN, catalog record or title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			by := strings.ToLower(bookBy)
			var fn lookupFunc
			switch by {
			case "isbn":
				fn = func(ctx context.Context, x *lookup.Index) (graph.IRI, bool, error) {
					return x.BookByISBN(ctx, args[0])
				}
			case "catalog":
				fn = func(ctx context.Context, x *lookup.Index) (graph.IRI, bool, error) {
					return x.BookByIRI(ctx, catalog.IRI(args[0]))
				}
			case "title":
				fn = func(ctx context.Context, x *lookup.Index) (graph.IRI, bool, error) {
					return x.BookByTitle(ctx, args[0])
				}
			default:
				return fmt.Errorf("invalid --by %q (want isbn, catalog or title)", bookBy)
			}
			return run(cmd, "book", args[0], fn)
		},
	}
	bookCmd.Flags().StringVar(&bookBy, "by", "isbn", "What value is: isbn, catalog (bib record number) or title")
	cmd.AddCommand(bookCmd)

	return cmd
}

func reportLookupHuman(w io.Writer, res LookupResult) {
	if !res.Found {
		outputHuman(w, "No %s found for %q\n", res.Kind, res.Query)
		return
	}
	outputHuman(w, "%s\n", res.IRI)
	if len(res.Candidates) > 1 {
		outputHuman(w, "  ambiguous, %d candidates:\n", len(res.Candidates))
		for _, c := range res.Candidates {
			outputHuman(w, "    %s\n", c)
		}
	}
}
