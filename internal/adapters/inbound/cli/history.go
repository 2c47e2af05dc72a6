package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/forcekit/forcekit/internal/adapters/outbound/history"
	"github.com/forcekit/forcekit/internal/adapters/outbound/report"
	"github.com/forcekit/forcekit/internal/application"
)

func newHistoryCmd() *cobra.Command {
	var (
		jsonOutput bool
		artifact   string
		last       int
	)

	cmd := &cobra.Command{
		Use:   "history [path]",
		Short: "Show recorded validation outcomes for a project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			absPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			svc := application.NewHistoryService(history.New())
			entries, err := svc.Entries(absPath, last)
			if err != nil {
				return err
			}
			if artifact != "" {
				entries, err = svc.ForArtifact(absPath, artifact)
				if err != nil {
					return err
				}
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			fmt.Fprint(cmd.OutOrStdout(), report.RenderHistory(entries))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output history as JSON")
	cmd.Flags().StringVar(&artifact, "artifact", "", "Only entries for this artifact path")
	cmd.Flags().IntVar(&last, "last", 0, "Only the most recent N entries")

	return cmd
}
