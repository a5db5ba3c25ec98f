// Package provision sequences app generation and site setup against a
// bench installation: scaffold the app, write its DocTypes, ensure the
// site exists, install, migrate, and start the server.
package provision

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/benchforge/benchforge/internal/bench"
	"github.com/benchforge/benchforge/internal/cli/config"
	"github.com/benchforge/benchforge/internal/doctype"
	"github.com/benchforge/benchforge/internal/scaffold"
	"github.com/benchforge/benchforge/prompt/parser"
)

// Provisioner drives the generation and provisioning recipe
type Provisioner struct {
	cfg    *config.Config
	runner *bench.Runner
	log    *zap.Logger
}

// New creates a Provisioner
func New(cfg *config.Config, runner *bench.Runner, log *zap.Logger) *Provisioner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Provisioner{cfg: cfg, runner: runner, log: log}
}

// GenerateApp scaffolds the app for a descriptor, writes its DocType
// files, registers it in the bench apps registry, and installs its Python
// package into the bench virtualenv.
func (p *Provisioner) GenerateApp(ctx context.Context, desc *parser.Descriptor) (*scaffold.App, error) {
	moduleName := p.cfg.ModuleName(desc.AppName)

	scaffolder := scaffold.New(p.cfg.AppsDir(), p.cfg.Publisher.Name, p.cfg.Publisher.Email, p.log)
	app, err := scaffolder.Create(desc.AppName, moduleName)
	if err != nil {
		return nil, fmt.Errorf("failed to create app: %w", err)
	}

	gen := doctype.NewGenerator(moduleName)
	files, err := gen.GenerateAll(desc)
	if err != nil {
		return nil, err
	}
	if err := scaffolder.WriteModuleFiles(app, files); err != nil {
		return nil, err
	}

	if err := scaffold.EnsureAppListed(p.cfg.AppsTxtPath(), app.Name); err != nil {
		return nil, err
	}

	if err := p.runner.PipInstall(ctx, app.Path); err != nil {
		return nil, err
	}

	p.log.Info("generated app",
		zap.String("app", app.Name),
		zap.Int("doctypes", len(desc.DocTypes)))
	return app, nil
}

// EnsureSite creates the configured site if its directory does not exist,
// enabling developer mode on a fresh site. Returns true when a site was
// created.
func (p *Provisioner) EnsureSite(ctx context.Context) (bool, error) {
	if _, err := os.Stat(p.cfg.SitePath()); err == nil {
		p.log.Debug("site exists", zap.String("site", p.cfg.Site.Name))
		return false, nil
	}

	if err := p.runner.NewSite(ctx, p.cfg.Site.Name, p.cfg.Site.AdminPassword); err != nil {
		return false, err
	}
	if err := p.runner.SetDeveloperMode(ctx, p.cfg.Site.Name); err != nil {
		return false, err
	}

	p.log.Info("created site", zap.String("site", p.cfg.Site.Name))
	return true, nil
}

// InstallApp installs the app into the site. When the plain install
// fails it repairs the bench (requirements, caches, assets) and retries
// with --force. Returns true when the forced path was taken.
func (p *Provisioner) InstallApp(ctx context.Context, appName string) (bool, error) {
	err := p.runner.InstallApp(ctx, p.cfg.Site.Name, appName, false)
	if err == nil {
		return false, nil
	}

	p.log.Warn("install failed, repairing bench and forcing",
		zap.String("app", appName),
		zap.Error(err))

	if err := p.runner.SetupRequirements(ctx); err != nil {
		return false, err
	}
	if err := p.runner.ClearCache(ctx, "all"); err != nil {
		return false, err
	}
	if err := p.runner.Build(ctx); err != nil {
		return false, err
	}
	if err := p.runner.InstallApp(ctx, p.cfg.Site.Name, appName, true); err != nil {
		return false, err
	}

	return true, nil
}

// SyncInstalledApps reconciles the apps registry and the site's installed
// apps against the app directories that actually exist. Stale entries are
// removed from the site; removal failures are logged and skipped rather
// than aborting the run.
func (p *Provisioner) SyncInstalledApps(ctx context.Context) ([]string, error) {
	registered, err := scaffold.ReadAppList(p.cfg.AppsTxtPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read apps.txt: %w", err)
	}

	valid := []string{"frappe"}
	for _, app := range registered {
		if app == "frappe" {
			continue
		}
		if _, err := os.Stat(filepath.Join(p.cfg.AppsDir(), app)); err != nil {
			p.log.Warn("app directory missing, dropping from registry", zap.String("app", app))
			continue
		}
		valid = append(valid, app)
	}

	installed, err := p.runner.ListApps(ctx, p.cfg.Site.Name)
	if err != nil {
		return nil, err
	}

	validSet := map[string]bool{}
	for _, app := range valid {
		validSet[app] = true
	}

	var removed []string
	for _, app := range installed {
		if validSet[app] || app == "frappe" {
			continue
		}
		if err := p.runner.RemoveApp(ctx, p.cfg.Site.Name, app); err != nil {
			p.log.Warn("failed to remove stale app", zap.String("app", app), zap.Error(err))
			continue
		}
		removed = append(removed, app)
	}

	if err := scaffold.WriteAppList(p.cfg.AppsTxtPath(), valid); err != nil {
		return nil, err
	}

	return removed, nil
}

// Finalize runs migrations, builds assets, and clears every cache so the
// freshly installed DocTypes are live
func (p *Provisioner) Finalize(ctx context.Context) error {
	site := p.cfg.Site.Name

	if err := p.runner.Migrate(ctx, site); err != nil {
		return err
	}
	if err := p.runner.Build(ctx); err != nil {
		return err
	}
	if err := p.runner.ClearCache(ctx, ""); err != nil {
		return err
	}
	if err := p.runner.ClearCache(ctx, site); err != nil {
		return err
	}
	return p.runner.ClearWebsiteCache(ctx, site)
}

// StartServer launches the bench server unless one is already running.
// Returns true when a server was started.
func (p *Provisioner) StartServer(ctx context.Context) (bool, error) {
	return p.runner.Start(ctx)
}
