package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forcekit/forcekit/internal/adapters/outbound/config"
	"github.com/forcekit/forcekit/internal/adapters/outbound/orgquery"
	"github.com/forcekit/forcekit/internal/adapters/outbound/report"
	"github.com/forcekit/forcekit/internal/application"
)

func newPlanCmd() *cobra.Command {
	var targetOrg string

	cmd := &cobra.Command{
		Use:   "plan <query | file.soql>",
		Short: "Ask the connected org for a query execution plan",
		Long: "Run a SOQL query through the org's query planner and report its " +
			"relative cost, leading operation and selectivity. The argument is " +
			"either query text or a .soql file.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := args[0]
			if strings.HasSuffix(query, ".soql") {
				data, err := os.ReadFile(query)
				if err != nil {
					return fmt.Errorf("reading %s: %w", query, err)
				}
				query = strings.TrimSpace(string(data))
			}

			cfg, err := config.New().Load(".")
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if targetOrg != "" {
				cfg.Plan.TargetOrg = targetOrg
			}

			svc := application.NewPlanService(orgquery.New(cfg.Plan))
			outcome, err := svc.Explain(cmd.Context(), query)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Org: %s\n\n", outcome.Org)
			fmt.Fprint(cmd.OutOrStdout(), report.RenderPlan(outcome.Query, *outcome.Plan, outcome.Suggestions))
			return nil
		},
	}

	cmd.Flags().StringVar(&targetOrg, "target-org", "", "Org alias to plan against (default from sf config)")

	return cmd
}
