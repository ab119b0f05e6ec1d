package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/showcase/internal/project"
	"github.com/fyrsmithlabs/showcase/internal/results"
)

func newQueryCmd() *cobra.Command {
	var (
		filterArgs []string
		title      string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run the pipeline once and print the results",
		Long: `Run the filter, search, bucket and sort stages once over the catalog
and print the ordered results.

Filters within one dimension are alternatives; filters across dimensions
must all match. Title search is a case-insensitive substring match.

Examples:
  # Everything, in bucket order
  showcase query

  # Vulkan or OpenGL projects written in Rust
  showcase query --filter api=Vulkan --filter api=OpenGL --filter language=Rust

  # Title search with JSON output
  showcase query --title viewer --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), configPath, appOptions{quiet: true, oneShot: true, catalogPath: catalogPath})
			if err != nil {
				return err
			}
			defer a.close(cmd.Context())

			selected := project.NewFilterSet()
			for _, arg := range filterArgs {
				f, err := project.ParseFilter(arg)
				if err != nil {
					return err
				}
				if _, err := a.dims.Parse(string(f.Dimension)); err != nil {
					return fmt.Errorf("filter %q: %w", arg, err)
				}
				selected[f] = struct{}{}
			}

			got := a.pipeline.Run(cmd.Context(), a.manager.Projects(), selected, title)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), got)
			}
			writeTable(cmd.OutOrStdout(), got)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&filterArgs, "filter", "f", nil, "filter as dimension=value (repeatable)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "case-insensitive title substring")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

func writeJSON(w io.Writer, projects []project.Project) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results.Snapshot{
		Count:    len(projects),
		Projects: projects,
	})
}

func writeTable(w io.Writer, projects []project.Project) {
	if len(projects) == 0 {
		fmt.Fprintln(w, "no matching projects")
		return
	}
	for _, p := range projects {
		if len(p.Tags) > 0 {
			fmt.Fprintf(w, "%s\t[%s]\n", p.Name, strings.Join(p.Tags, ", "))
			continue
		}
		fmt.Fprintln(w, p.Name)
	}
	fmt.Fprintf(w, "\n%d project(s)\n", len(projects))
}
