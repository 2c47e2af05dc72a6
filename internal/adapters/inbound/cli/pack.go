package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forcekit/forcekit/internal/adapters/outbound/config"
	"github.com/forcekit/forcekit/internal/adapters/outbound/packaging"
	"github.com/forcekit/forcekit/internal/adapters/outbound/report"
	"github.com/forcekit/forcekit/internal/application"
	"github.com/forcekit/forcekit/internal/domain/skills"
)

// packagers adapts the registry to the service port.
func packagers() []application.SkillPackager {
	reg := packaging.Registry()
	out := make([]application.SkillPackager, len(reg))
	for i, a := range reg {
		out[i] = a
	}
	return out
}

func newPackService(projectPath string) (*application.PackService, error) {
	cfg, err := config.New().Load(projectPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return application.NewPackService(cfg, packagers()), nil
}

func newPackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Package Salesforce skills for agentic CLI targets",
	}
	cmd.AddCommand(newPackListCmd())
	cmd.AddCommand(newPackTargetsCmd())
	cmd.AddCommand(newPackInstallCmd())
	cmd.AddCommand(newPackPreviewCmd())
	return cmd
}

func newPackListCmd() *cobra.Command {
	var skillsDir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the skill bundles available for packaging",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newPackService(".")
			if err != nil {
				return err
			}
			names, err := svc.Skills(skillsDir)
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%-22s %s\n", n, skills.DisplayName(n))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&skillsDir, "skills-dir", "", "Skill bundle directory (default from config)")

	return cmd
}

func newPackTargetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List supported CLI targets and which are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			detected := make(map[string]bool)
			for _, n := range packaging.Detect() {
				detected[n] = true
			}
			for _, a := range packaging.Registry() {
				mark := " "
				if detected[a.Name()] {
					mark = "✓"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", mark, a.Name())
			}
			return nil
		},
	}
}

func newPackInstallCmd() *cobra.Command {
	var (
		targets    []string
		skillNames []string
		all        bool
		detect     bool
		force      bool
		skillsDir  string
	)

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install skills into one or more CLI layouts",
		Long: "Repackage skill bundles into the directory layouts of the selected " +
			"targets. Already-installed skills are skipped unless --force is given.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projectPath, err := filepath.Abs(".")
			if err != nil {
				return err
			}
			svc, err := newPackService(projectPath)
			if err != nil {
				return err
			}

			if detect {
				targets = append(targets, packaging.Detect()...)
			}
			if len(targets) == 0 {
				return fmt.Errorf("no targets: use --cli or --detect")
			}
			if !all && len(skillNames) == 0 {
				return fmt.Errorf("no skills selected: use --skills or --all")
			}

			summaries, err := svc.Install(application.InstallRequest{
				SkillsDir:  skillsDir,
				ProjectDir: projectPath,
				Targets:    dedupeNames(targets),
				Skills:     skillNames,
				Force:      force,
			})
			if err != nil {
				return err
			}

			for _, s := range summaries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", s.Target, s.Root)
				fmt.Fprintf(cmd.OutOrStdout(), "  installed %d, skipped %d, failed %d\n",
					len(s.Installed), len(s.Skipped), len(s.Failed))
				for _, f := range s.Failed {
					fmt.Fprintf(cmd.OutOrStdout(), "  ✗ %s\n", f)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&targets, "cli", nil, "Target CLIs (claude, opencode, codex, gemini, droid, cursor, cline)")
	cmd.Flags().BoolVar(&detect, "detect", false, "Install for every detected CLI")
	cmd.Flags().StringSliceVar(&skillNames, "skills", nil, "Skills to install")
	cmd.Flags().BoolVar(&all, "all", false, "Install every discovered skill")
	cmd.Flags().BoolVar(&force, "force", false, "Reinstall over existing skills")
	cmd.Flags().StringVar(&skillsDir, "skills-dir", "", "Skill bundle directory (default from config)")

	return cmd
}

func newPackPreviewCmd() *cobra.Command {
	var (
		target    string
		skillsDir string
		raw       bool
	)

	cmd := &cobra.Command{
		Use:   "preview <skill>",
		Short: "Render the document a target would install for a skill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newPackService(".")
			if err != nil {
				return err
			}
			doc, err := svc.Preview(skillsDir, args[0], target)
			if err != nil {
				return err
			}
			if raw {
				fmt.Fprintln(cmd.OutOrStdout(), doc)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.Markdown(doc, 100))
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "cli", "claude", "Target CLI to preview for")
	cmd.Flags().StringVar(&skillsDir, "skills-dir", "", "Skill bundle directory (default from config)")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the document without terminal rendering")

	return cmd
}

func dedupeNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
