package commands

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/benchforge/benchforge/internal/archive"
	"github.com/benchforge/benchforge/internal/bench"
	"github.com/benchforge/benchforge/internal/cli/config"
	"github.com/benchforge/benchforge/internal/cli/ui"
	"github.com/benchforge/benchforge/internal/provision"
	"github.com/benchforge/benchforge/internal/scaffold"
	"github.com/benchforge/benchforge/prompt/parser"
)

var (
	generateBenchPath     string
	generateSite          string
	generateAdminPassword string
	generateHost          string
	generatePort          int
	generateSkipProvision bool
	generateSkipZip       bool
	generateVerbose       bool
)

// NewGenerateCommand creates the generate command
func NewGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate [prompt]",
		Aliases: []string{"g"},
		Short:   "Generate a Frappe app from a prompt",
		Long: `Generate a Frappe app from a natural-language prompt, install it into
the configured bench site, and package it as a zip archive.

If no prompt is provided, you will be asked for an app name and a
standard library app is generated.

Examples:
  benchforge generate "Create an app named library_app with DocTypes: Article (name: Data, author: Data), Member (name: Data, membership_date: Date)"
  benchforge generate --skip-provision "Create an app named todo_app with DocTypes: Task (name: Data, due: Date)"
  benchforge g --site dev.local "Create an app named crm_app with DocTypes: Lead (name: Data, status: Select[New,Won,Lost])"`,
		RunE: runGenerate,
	}

	cmd.Flags().StringVar(&generateBenchPath, "bench-path", "", "Path to the bench installation (overrides config)")
	cmd.Flags().StringVar(&generateSite, "site", "", "Target site (overrides config)")
	cmd.Flags().StringVar(&generateAdminPassword, "admin-password", "", "Administrator password for a newly created site")
	cmd.Flags().StringVar(&generateHost, "host", "", "Host the bench server is reachable at (overrides config)")
	cmd.Flags().IntVar(&generatePort, "port", 0, "Port the bench server is reachable at (overrides config)")
	cmd.Flags().BoolVar(&generateSkipProvision, "skip-provision", false, "Only write the app to disk, skip site provisioning")
	cmd.Flags().BoolVar(&generateSkipZip, "skip-zip", false, "Skip packaging the app as a zip archive")
	cmd.Flags().BoolVarP(&generateVerbose, "verbose", "v", false, "Verbose logging")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	successColor := color.New(color.FgGreen, color.Bold)
	infoColor := color.New(color.FgCyan)
	promptColor := color.New(color.FgYellow)

	prompt := ""
	if len(args) > 0 {
		prompt = args[0]
	}

	// No prompt: ask for an app name and synthesize the standard prompt
	if prompt == "" {
		var appName string
		q := &survey.Input{
			Message: "App name (lowercase letters and underscores):",
			Default: "library_app",
		}
		if err := survey.AskOne(q, &appName, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
		if err := scaffold.ValidateAppName(appName); err != nil {
			return err
		}
		prompt = defaultPrompt(appName)
		infoColor.Printf("Using prompt: %s\n\n", prompt)
	}

	desc, err := parser.Parse(prompt)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if generateBenchPath != "" {
		cfg.BenchPath = generateBenchPath
	}
	if generateSite != "" {
		cfg.Site.Name = generateSite
	}
	if generateAdminPassword != "" {
		cfg.Site.AdminPassword = generateAdminPassword
	}
	if generateHost != "" {
		cfg.Server.Host = generateHost
	}
	if generatePort != 0 {
		cfg.Server.Port = generatePort
	}
	if !cfg.InBench() {
		return fmt.Errorf("%s does not look like a bench installation (missing apps/ or sites/)", cfg.BenchPath)
	}

	log := newLogger(generateVerbose)
	defer log.Sync() //nolint:errcheck

	runner := bench.NewRunner(cfg.BenchPath, bench.NewSystemExecer(), log)
	prov := provision.New(cfg, runner, log)
	ctx := cmd.Context()

	infoColor.Printf("Generating app: %s (%d DocTypes)\n", desc.AppName, len(desc.DocTypes))
	app, err := prov.GenerateApp(ctx, desc)
	if err != nil {
		return err
	}
	for _, dt := range desc.DocTypes {
		infoColor.Printf("  ✓ DocType %s (%d fields)\n", dt.Name, len(dt.Fields))
	}
	if app.BackupPath != "" {
		promptColor.Printf("  Existing app moved to %s\n", app.BackupPath)
	}

	if !generateSkipProvision {
		out := cmd.OutOrStdout()

		var siteCreated bool
		err = ui.Step(out, fmt.Sprintf("Ensuring site %s", cfg.Site.Name), color.NoColor, func() error {
			var err error
			siteCreated, err = prov.EnsureSite(ctx)
			return err
		})
		if err != nil {
			return err
		}
		if siteCreated {
			infoColor.Printf("  New site %s (login: Administrator / %s)\n", cfg.Site.Name, cfg.Site.AdminPassword)
		}

		var forced bool
		err = ui.Step(out, fmt.Sprintf("Installing %s into %s", app.Name, cfg.Site.Name), color.NoColor, func() error {
			var err error
			forced, err = prov.InstallApp(ctx, app.Name)
			return err
		})
		if err != nil {
			return err
		}
		if forced {
			promptColor.Println("  Install needed a bench repair and --force")
		}

		if removed, err := prov.SyncInstalledApps(ctx); err != nil {
			promptColor.Printf("  App list sync skipped: %v\n", err)
		} else {
			for _, stale := range removed {
				promptColor.Printf("  Removed stale app %s\n", stale)
			}
		}

		err = ui.Step(out, "Migrating and rebuilding assets", color.NoColor, func() error {
			return prov.Finalize(ctx)
		})
		if err != nil {
			return err
		}

		started, err := prov.StartServer(ctx)
		if err != nil {
			return err
		}
		if started {
			infoColor.Printf("  ✓ Started bench server at %s\n", cfg.LiveURL())
		} else {
			infoColor.Printf("  ✓ Bench server already running at %s\n", cfg.LiveURL())
		}
	}

	zipPath := ""
	if !generateSkipZip {
		zipPath, err = archive.ZipApp(cfg.BenchPath, app.Name)
		if err != nil {
			return err
		}
		infoColor.Printf("  ✓ Packaged %s\n", zipPath)
	}

	fmt.Println()
	successColor.Printf("✓ Generated app: %s\n\n", app.Name)

	promptColor.Println("Next steps:")
	if generateSkipProvision {
		fmt.Printf("  benchforge generate \"%s\"  # without --skip-provision\n", prompt)
	} else {
		fmt.Printf("  open %s\n", cfg.LiveURL())
	}
	if zipPath != "" {
		fmt.Printf("  unzip -l %s\n", zipPath)
	}
	fmt.Println()

	return nil
}

// defaultPrompt is the library-app prompt used when generate is run with
// only an app name
func defaultPrompt(appName string) string {
	return fmt.Sprintf("Create an app named %s with DocTypes: "+
		"Article (title: Data, status: Select[Issued,Available]), "+
		"Member (name: Data, membership_date: Date)", appName)
}

// newLogger builds the command logger; verbose runs get development output,
// everything else is silent
func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}
