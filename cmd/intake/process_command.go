package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"intake/internal/config"
	"intake/internal/logging"
	"intake/internal/normalize"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var entity string
	var dest string

	cmd := &cobra.Command{
		Use:   "process <path>",
		Short: "Normalize a single file or directory without running the daemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			source, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve source path: %w", err)
			}

			destDir, err := resolveProcessDest(cfg, entity, dest)
			if err != nil {
				return err
			}

			logger, err := logging.New(logging.Options{
				Level:       cfg.Logging.Level,
				Format:      cfg.Logging.Format,
				OutputPaths: []string{"stdout"},
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			result, err := normalize.New(logger).Normalize(source, destDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Kind:    %s\n", result.Kind)
			fmt.Fprintf(out, "Output:  %s\n", result.OutputPath)
			fmt.Fprintf(out, "Entries: %d\n", result.Entries)
			return nil
		},
	}

	cmd.Flags().StringVarP(&entity, "entity", "e", "", "Entity whose destination folder receives the output")
	cmd.Flags().StringVarP(&dest, "dest", "d", "", "Explicit destination directory")
	return cmd
}

func resolveProcessDest(cfg *config.Config, entity, dest string) (string, error) {
	entity = strings.TrimSpace(entity)
	dest = strings.TrimSpace(dest)
	switch {
	case entity != "" && dest != "":
		return "", fmt.Errorf("--entity and --dest are mutually exclusive")
	case entity != "":
		return filepath.Join(cfg.Paths.WatchRoot, entity, cfg.Watch.DestDirName), nil
	case dest != "":
		return config.ExpandPath(dest)
	default:
		return "", fmt.Errorf("either --entity or --dest is required")
	}
}
