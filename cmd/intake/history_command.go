package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"intake/internal/catalog"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [entity]",
		Short: "Show recent normalization outcomes from the catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Catalog.Enabled {
				return fmt.Errorf("catalog is disabled; enable [catalog] in the configuration to record history")
			}

			entity := ""
			if len(args) == 1 {
				entity = args[0]
			}

			return ctx.withCatalog(func(store *catalog.Store) error {
				records, err := store.Recent(cmd.Context(), entity, limit)
				if err != nil {
					return fmt.Errorf("read catalog: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(records) == 0 {
					fmt.Fprintln(out, "No normalization history recorded yet.")
					return nil
				}

				rows := make([][]string, 0, len(records))
				for _, rec := range records {
					detail := filepath.Base(rec.OutputPath)
					if rec.Error != "" {
						detail = rec.Error
					}
					rows = append(rows, []string{
						rec.CreatedAt.Format("2006-01-02 15:04:05"),
						rec.Entity,
						filepath.Base(rec.SourcePath),
						rec.Kind,
						string(rec.Status),
						fmt.Sprintf("%d", rec.Entries),
						detail,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"When", "Entity", "Item", "Kind", "Status", "Entries", "Detail"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of records to show")
	return cmd
}
