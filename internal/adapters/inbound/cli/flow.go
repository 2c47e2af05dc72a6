package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/forcekit/forcekit/internal/domain/flow"
)

func newFlowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flow",
		Short: "Flow metadata utilities",
	}
	cmd.AddCommand(newFlowDocCmd())
	return cmd
}

func newFlowDocCmd() *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "doc <file.flow-meta.xml>",
		Short: "Generate markdown documentation for a Flow",
		Long: "Parse Flow metadata and emit a markdown document covering its label, " +
			"type, element counts, fault path coverage, variables and subflows.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			f, err := flow.Parse(data)
			if err != nil {
				return fmt.Errorf("parsing flow metadata: %w", err)
			}
			doc, err := flow.Document(f)
			if err != nil {
				return fmt.Errorf("rendering documentation: %w", err)
			}

			if outFile != "" {
				if err := os.WriteFile(outFile, []byte(doc), 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", outFile, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outFile)
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), doc)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Write the document to a file instead of stdout")

	return cmd
}
