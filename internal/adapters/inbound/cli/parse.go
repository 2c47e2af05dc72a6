package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/forcekit/forcekit/internal/adapters/outbound/config"
	"github.com/forcekit/forcekit/internal/adapters/outbound/report"
	"github.com/forcekit/forcekit/internal/domain/debuglog"
	"github.com/forcekit/forcekit/internal/domain/testresults"
)

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse sf CLI output into structured summaries",
	}
	cmd.AddCommand(newParseLogCmd())
	cmd.AddCommand(newParseTestsCmd())
	return cmd
}

// readInput returns the file content, or stdin when no file is named.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", args[0], err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

func newParseLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log [file]",
		Short: "Analyze an Apex debug log for loops, limits and exceptions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			if !debuglog.LooksLikeLog(content) {
				return fmt.Errorf("input does not look like an Apex debug log")
			}

			cfg, err := config.New().Load(".")
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			analysis := debuglog.Parse(content, cfg)
			fmt.Fprint(cmd.OutOrStdout(), report.RenderLog(analysis))
			return nil
		},
	}
}

func newParseTestsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tests [file]",
		Short: "Summarize an Apex test run and classify its failures",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			results := testresults.Parse(content)
			fmt.Fprint(cmd.OutOrStdout(), report.RenderTests(results))
			return nil
		},
	}
}
