package cli

import "github.com/spf13/cobra"

var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forcekit",
		Short: "Advisory quality tooling for Salesforce development",
		Long: "Forcekit scores Apex, Flow and SOQL artifacts against best-practice rules, " +
			"parses debug logs and test runs, and packages Salesforce skills for agentic CLIs. " +
			"Everything it reports is advisory: no command blocks the work that triggered it.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newHookCmd())
	cmd.AddCommand(newParseCmd())
	cmd.AddCommand(newPlanCmd())
	cmd.AddCommand(newPackCmd())
	cmd.AddCommand(newFlowCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newMCPCmd())
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}
