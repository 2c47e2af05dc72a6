package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	hookadapter "github.com/forcekit/forcekit/internal/adapters/inbound/hook"
	"github.com/forcekit/forcekit/internal/adapters/outbound/attempts"
	"github.com/forcekit/forcekit/internal/application"
	"github.com/forcekit/forcekit/internal/domain"
)

func newHookCmd() *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "hook",
		Short: "Run one PostToolUse hook invocation (stdin JSON envelope)",
		Long: "Read a {tool_input, tool_response} envelope from stdin, validate the " +
			"written file or parse the command output, and answer with a " +
			"{continue: true} envelope on stdout. This command never exits non-zero " +
			"and never blocks the tool call that triggered it.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := filepath.Abs(projectPath)
			if err != nil {
				absPath = projectPath
			}

			// The hook contract forbids failing here: a broken config
			// degrades to defaults with collaborators off instead of an
			// error.
			svc, cfg, err := newValidateService(absPath)
			if err != nil {
				off := false
				cfg = domain.DefaultConfig()
				cfg.Scan.Enabled, cfg.Plan.Enabled, cfg.History.Enabled = &off, &off, &off
				svc = application.NewValidateService(cfg, nil, nil, nil, nil)
			}

			hooks := application.NewHookService(svc, attempts.New(absPath), cfg)
			hookadapter.NewRunner(hooks, absPath).Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().StringVar(&projectPath, "project", ".", "Project root for config and history")

	return cmd
}
