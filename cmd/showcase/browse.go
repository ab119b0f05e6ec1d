package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/showcase/internal/tui"
)

func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the catalog interactively",
		Long: `Open a terminal browser over the catalog.

Type to search titles, press tab to move to the filter list, space to
toggle a filter and c to clear all filters. Logging is disabled while the
browser owns the terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, configPath, appOptions{quiet: true, catalogPath: catalogPath})
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				a.close(closeCtx)
			}()

			updates, stopWatching := a.memory.Watch()
			defer stopWatching()

			if err := a.start(ctx); err != nil {
				return err
			}

			model := tui.NewModel(a.filters, a.manager, a.dims, a.memory.Snapshot(), updates)
			return tui.Run(ctx, model)
		},
	}
}
