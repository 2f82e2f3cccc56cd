package main

import (
	"context"
	"io"

	"github.com/Tutt-Library/cc-scholarship-graph/internal/config"
	"github.com/Tutt-Library/cc-scholarship-graph/internal/registry"
	"github.com/spf13/cobra"
)

func newPeopleCmd(root *rootOptions) *cobra.Command {
	var people string
	settings := []settingFlag{
		{"people", &people, func(c *config.Config) *string { return &c.PeoplePath }},
	}

	cmd := &cobra.Command{
		Use:   "people",
		Short: "Query the person registry",
	}
	cmd.PersistentFlags().StringVar(&people, "people", "", "Person registry (Turtle)")

	list := func(cmd *cobra.Command, query func(context.Context, *registry.Registry) ([]registry.Person, error)) error {
		cfg, err := root.loadConfig(cmd, settings)
		if err != nil {
			return err
		}
		if err := requirePath(cfg.PeoplePath, "people", "people_path"); err != nil {
			return err
		}
		reg, err := registry.Load(cmd.Context(), cfg.PeoplePath)
		if err != nil {
			return withCode(ExitConfigError, err)
		}
		defer reg.Close()

		persons, err := query(cmd.Context(), reg)
		if err != nil {
			return err
		}
		if persons == nil {
			persons = []registry.Person{}
		}
		if root.human {
			reportPeopleHuman(cmd.OutOrStdout(), persons)
			return nil
		}
		return outputJSON(cmd.OutOrStdout(), persons)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "search <token>",
		Short: "Find people whose label, alternate names or email contain token",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return list(cmd, func(ctx context.Context, reg *registry.Registry) ([]registry.Person, error) {
				return reg.Search(ctx, args[0])
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every registered person",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return list(cmd, func(ctx context.Context, reg *registry.Registry) ([]registry.Person, error) {
				return reg.All(ctx)
			})
		},
	})
	return cmd
}

func reportPeopleHuman(w io.Writer, persons []registry.Person) {
	if len(persons) == 0 {
		outputHuman(w, "No people found\n")
		return
	}
	for _, p := range persons {
		outputHuman(w, "%-40s %s", truncateString(p.Label, LabelMaxLen), p.IRI)
		if p.Email != "" {
			outputHuman(w, " <%s>", p.Email)
		}
		outputHuman(w, "\n")
	}
}
