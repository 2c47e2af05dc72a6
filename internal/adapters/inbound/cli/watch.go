package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/forcekit/forcekit/internal/adapters/outbound/report"
	"github.com/forcekit/forcekit/internal/adapters/outbound/watcher"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Revalidate Salesforce artifacts as they change",
		Long: "Watch a directory tree and rerun validation whenever an Apex, Flow, " +
			"SOQL or SKILL.md file is written. Stops on interrupt.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}
			absRoot, err := filepath.Abs(root)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			svc, _, err := newValidateService(absRoot)
			if err != nil {
				return err
			}

			w, err := watcher.New(func(ctx context.Context, path string) {
				r, err := svc.Validate(ctx, absRoot, path)
				if err != nil {
					return
				}
				fmt.Fprint(cmd.OutOrStdout(), report.Render(r))
			})
			if err != nil {
				return fmt.Errorf("starting watcher: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "watching %s (ctrl-c to stop)\n", absRoot)
			return w.Watch(cmd.Context(), absRoot)
		},
	}

	return cmd
}
