package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/forcekit/forcekit/internal/adapters/outbound/config"
	"github.com/forcekit/forcekit/internal/adapters/outbound/gitinfo"
	"github.com/forcekit/forcekit/internal/adapters/outbound/history"
	"github.com/forcekit/forcekit/internal/adapters/outbound/orgquery"
	"github.com/forcekit/forcekit/internal/adapters/outbound/report"
	"github.com/forcekit/forcekit/internal/adapters/outbound/scanner"
	"github.com/forcekit/forcekit/internal/application"
	"github.com/forcekit/forcekit/internal/domain"
)

// newValidateService wires the validate service for one project. Every
// command run is a one-shot process, so adapters are built fresh each time.
func newValidateService(projectPath string) (*application.ValidateService, domain.Config, error) {
	cfg, err := config.New().Load(projectPath)
	if err != nil {
		return nil, domain.Config{}, fmt.Errorf("loading config: %w", err)
	}
	svc := application.NewValidateService(
		cfg,
		scanner.New(cfg.Scan),
		orgquery.New(cfg.Plan),
		history.New(),
		gitinfo.New(),
	)
	return svc, cfg, nil
}

func newValidateCmd() *cobra.Command {
	var (
		format      string
		projectPath string
		minScore    int
	)

	cmd := &cobra.Command{
		Use:   "validate <file> [file...]",
		Short: "Score Salesforce artifacts against best-practice rules",
		Long: "Validate Apex classes, triggers, Flow metadata, SOQL files and SKILL.md " +
			"documents. Each file gets a category breakdown, a star rating and fix " +
			"suggestions; Apex files are additionally checked with sf code-analyzer " +
			"when it is installed.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := filepath.Abs(projectPath)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			svc, _, err := newValidateService(absPath)
			if err != nil {
				return err
			}

			var reports []*domain.ValidationReport
			for _, file := range args {
				r, err := svc.Validate(cmd.Context(), absPath, file)
				if errors.Is(err, application.ErrUnsupportedArtifact) {
					fmt.Fprintf(cmd.ErrOrStderr(), "skipping %s: not a Salesforce artifact\n", file)
					continue
				}
				if err != nil {
					return err
				}
				reports = append(reports, r)
			}

			for _, r := range reports {
				switch format {
				case "json":
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					if err := enc.Encode(r); err != nil {
						return err
					}
				case "sarif":
					if err := report.WriteSARIF(r, cmd.OutOrStdout()); err != nil {
						return err
					}
				default:
					fmt.Fprint(cmd.OutOrStdout(), report.Render(r))
				}
			}

			if minScore > 0 {
				for _, r := range reports {
					if r.Score < minScore {
						return fmt.Errorf("%s scored %d, below minimum %d",
							filepath.Base(r.Artifact), r.Score, minScore)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json or sarif")
	cmd.Flags().StringVar(&projectPath, "project", ".", "Project root for config and history")
	cmd.Flags().IntVar(&minScore, "min", 0, "Exit non-zero when any score is below this (CI gate)")

	return cmd
}
