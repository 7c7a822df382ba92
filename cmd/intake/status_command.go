package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"intake/internal/catalog"
	"intake/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration, environment checks, and per-entity activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config file: %s\n", ctx.configPath)
			fmt.Fprintf(out, "Watch root:  %s\n", cfg.Paths.WatchRoot)
			fmt.Fprintf(out, "Log dir:     %s\n\n", cfg.Paths.LogDir)

			results := preflight.RunAll(cfg)
			rows := make([][]string, 0, len(results))
			for _, result := range results {
				rows = append(rows, []string{result.Name, passLabel(result.Passed), result.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, rows, nil))

			entities, err := listEntities(cfg.Paths.WatchRoot)
			if err != nil {
				return fmt.Errorf("enumerate watch root: %w", err)
			}
			if len(entities) == 0 {
				fmt.Fprintln(out, "\nNo entity directories under the watch root yet.")
				return nil
			}

			if !cfg.Catalog.Enabled {
				fmt.Fprintf(out, "\nEntities: %d\n", len(entities))
				for _, name := range entities {
					fmt.Fprintf(out, "  %s\n", name)
				}
				return nil
			}

			return ctx.withCatalog(func(store *catalog.Store) error {
				summaries, err := store.Summary(cmd.Context())
				if err != nil {
					return fmt.Errorf("read catalog: %w", err)
				}
				byEntity := make(map[string]catalog.EntitySummary, len(summaries))
				for _, summary := range summaries {
					byEntity[summary.Entity] = summary
				}

				rows := make([][]string, 0, len(entities))
				for _, name := range entities {
					summary := byEntity[name]
					last := ""
					if !summary.LastActivity.IsZero() {
						last = summary.LastActivity.Format("2006-01-02 15:04:05")
					}
					rows = append(rows, []string{
						name,
						fmt.Sprintf("%d", summary.Completed),
						fmt.Sprintf("%d", summary.Skipped),
						fmt.Sprintf("%d", summary.Failed),
						last,
					})
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderTable(
					[]string{"Entity", "Completed", "Skipped", "Failed", "Last activity"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
}

func listEntities(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func passLabel(passed bool) string {
	if passed {
		return "ok"
	}
	return "failed"
}
