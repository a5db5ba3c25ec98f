// Package bench drives the external bench CLI. Every operation here is a
// thin, logged wrapper around one subprocess invocation; sequencing and
// fallback policy live in the provisioner.
package bench

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Runner wraps the bench CLI for one bench directory
type Runner struct {
	benchPath string
	exec      Execer
	log       *zap.Logger
}

// NewRunner creates a Runner. A nil execer or logger falls back to the
// system execer and a no-op logger.
func NewRunner(benchPath string, execer Execer, log *zap.Logger) *Runner {
	if execer == nil {
		execer = NewSystemExecer()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{benchPath: benchPath, exec: execer, log: log}
}

// bench runs one bench subcommand in the bench directory
func (r *Runner) bench(ctx context.Context, args ...string) error {
	r.log.Debug("running bench", zap.Strings("args", args))
	if err := r.exec.Run(ctx, r.benchPath, "bench", args...); err != nil {
		return fmt.Errorf("bench %s: %w", strings.Join(args, " "), err)
	}
	return nil
}

// NewSite creates a new site with the given admin password
func (r *Runner) NewSite(ctx context.Context, site, adminPassword string) error {
	return r.bench(ctx, "new-site", site, "--admin-password", adminPassword, "--no-mariadb-socket")
}

// SetDeveloperMode enables developer mode for a site
func (r *Runner) SetDeveloperMode(ctx context.Context, site string) error {
	return r.bench(ctx, "--site", site, "set-config", "developer_mode", "1")
}

// InstallApp installs an app into a site
func (r *Runner) InstallApp(ctx context.Context, site, app string, force bool) error {
	args := []string{"--site", site, "install-app", app}
	if force {
		args = append(args, "--force")
	}
	return r.bench(ctx, args...)
}

// ListApps returns the apps installed in a site
func (r *Runner) ListApps(ctx context.Context, site string) ([]string, error) {
	r.log.Debug("listing apps", zap.String("site", site))
	out, err := r.exec.Output(ctx, r.benchPath, "bench", "list-apps", "--site", site)
	if err != nil {
		return nil, fmt.Errorf("bench list-apps: %w", err)
	}

	var apps []string
	for _, line := range strings.Split(out, "\n") {
		if app := strings.TrimSpace(line); app != "" {
			apps = append(apps, app)
		}
	}
	return apps, nil
}

// RemoveApp removes an app from a site
func (r *Runner) RemoveApp(ctx context.Context, site, app string) error {
	return r.bench(ctx, "remove-app", app, "--site", site)
}

// Migrate runs migrations for a site
func (r *Runner) Migrate(ctx context.Context, site string) error {
	return r.bench(ctx, "--site", site, "migrate")
}

// ClearCache clears the bench cache; with a site it clears that site's
// cache (the literal "all" clears every site)
func (r *Runner) ClearCache(ctx context.Context, site string) error {
	if site == "" {
		return r.bench(ctx, "clear-cache")
	}
	return r.bench(ctx, "--site", site, "clear-cache")
}

// ClearWebsiteCache clears a site's website cache
func (r *Runner) ClearWebsiteCache(ctx context.Context, site string) error {
	return r.bench(ctx, "--site", site, "clear-website-cache")
}

// SetupRequirements reinstalls bench requirements
func (r *Runner) SetupRequirements(ctx context.Context) error {
	return r.bench(ctx, "setup", "requirements")
}

// Build builds bench assets
func (r *Runner) Build(ctx context.Context) error {
	return r.bench(ctx, "build")
}

// IsRunning reports whether a bench server process is already alive
func (r *Runner) IsRunning(ctx context.Context) bool {
	out, err := r.exec.Output(ctx, r.benchPath, "pgrep", "-f", "bench start")
	return err == nil && strings.TrimSpace(out) != ""
}

// Start launches the bench server in the background unless one is already
// running. Returns true if a server was started.
func (r *Runner) Start(ctx context.Context) (bool, error) {
	if r.IsRunning(ctx) {
		r.log.Debug("bench server already running")
		return false, nil
	}
	r.log.Debug("starting bench server")
	if err := r.exec.StartDetached(r.benchPath, "bench", "start"); err != nil {
		return false, fmt.Errorf("bench start: %w", err)
	}
	return true, nil
}

// PipInstall installs an app into the bench virtualenv in editable mode
func (r *Runner) PipInstall(ctx context.Context, appPath string) error {
	python := filepath.Join(r.benchPath, "env", "bin", "python")
	r.log.Debug("installing app dependencies", zap.String("app", appPath))
	if err := r.exec.Run(ctx, r.benchPath, python, "-m", "pip", "install", "-e", appPath); err != nil {
		return fmt.Errorf("pip install: %w", err)
	}
	return nil
}
