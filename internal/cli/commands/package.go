package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/benchforge/benchforge/internal/archive"
	"github.com/benchforge/benchforge/internal/cli/config"
	"github.com/benchforge/benchforge/internal/scaffold"
)

// NewPackageCommand creates the package command
func NewPackageCommand() *cobra.Command {
	var benchPath string

	cmd := &cobra.Command{
		Use:   "package <app-name>",
		Short: "Package an existing app as a zip archive",
		Long: `Package an app that already exists in the bench apps directory as a
zip archive next to the bench, ready to hand off or install elsewhere.

Examples:
  benchforge package library_app
  benchforge package todo_app --bench-path /srv/bench`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appName := args[0]
			if err := scaffold.ValidateAppName(appName); err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if benchPath != "" {
				cfg.BenchPath = benchPath
			}

			zipPath, err := archive.ZipApp(cfg.BenchPath, appName)
			if err != nil {
				return err
			}

			successColor := color.New(color.FgGreen, color.Bold)
			successColor.Printf("✓ Packaged %s\n", zipPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&benchPath, "bench-path", "", "Path to the bench installation (overrides config)")

	return cmd
}
