package provision

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchforge/benchforge/internal/bench"
	"github.com/benchforge/benchforge/internal/cli/config"
	"github.com/benchforge/benchforge/internal/scaffold"
	"github.com/benchforge/benchforge/prompt/parser"
)

// fakeExecer records commands and serves canned results
type fakeExecer struct {
	calls    []string
	detached []string
	failOn   map[string]error
	outputs  map[string]string
}

func newFakeExecer() *fakeExecer {
	return &fakeExecer{
		failOn:  map[string]error{},
		outputs: map[string]string{},
	}
}

func key(name string, args []string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

func (f *fakeExecer) Run(_ context.Context, _, name string, args ...string) error {
	k := key(name, args)
	f.calls = append(f.calls, k)
	return f.failOn[k]
}

func (f *fakeExecer) Output(_ context.Context, _, name string, args ...string) (string, error) {
	k := key(name, args)
	f.calls = append(f.calls, k)
	return f.outputs[k], f.failOn[k]
}

func (f *fakeExecer) StartDetached(_, name string, args ...string) error {
	k := key(name, args)
	f.detached = append(f.detached, k)
	return f.failOn[k]
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	benchPath := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(benchPath, "apps"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(benchPath, "sites"), 0o755))
	return &config.Config{
		BenchPath:    benchPath,
		Site:         config.SiteConfig{Name: "site1.local", AdminPassword: "admin"},
		Server:       config.ServerConfig{Host: "localhost", Port: 8002},
		ModuleSuffix: "_module",
		Publisher:    config.Publisher{Name: "BenchForge", Email: "ops@benchforge.dev"},
	}
}

func newTestProvisioner(t *testing.T) (*Provisioner, *config.Config, *fakeExecer) {
	t.Helper()
	cfg := testConfig(t)
	fake := newFakeExecer()
	runner := bench.NewRunner(cfg.BenchPath, fake, nil)
	return New(cfg, runner, nil), cfg, fake
}

func TestGenerateApp(t *testing.T) {
	p, cfg, fake := newTestProvisioner(t)

	desc, err := parser.Parse("Create an app named library_app with DocTypes: Book (name: Data, status: Select[Issued,Available])")
	require.NoError(t, err)

	app, err := p.GenerateApp(context.Background(), desc)
	require.NoError(t, err)
	assert.Equal(t, "library_app", app.Name)
	assert.Equal(t, "library_app_module", app.Module)

	// skeleton and DocType files on disk
	hooks, err := os.ReadFile(filepath.Join(app.Path, "library_app", "hooks.py"))
	require.NoError(t, err)
	assert.Contains(t, string(hooks), `app_name = "library_app"`)

	schema := filepath.Join(app.Path, "library_app", "library_app_module", "doctype", "book", "book.json")
	data, err := os.ReadFile(schema)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "Book"`)

	// registered in apps.txt
	apps, err := scaffold.ReadAppList(cfg.AppsTxtPath())
	require.NoError(t, err)
	assert.Contains(t, apps, "library_app")

	// installed into the bench virtualenv
	python := filepath.Join(cfg.BenchPath, "env", "bin", "python")
	assert.Equal(t, []string{python + " -m pip install -e " + app.Path}, fake.calls)
}

func TestEnsureSiteCreatesMissingSite(t *testing.T) {
	p, _, fake := newTestProvisioner(t)

	created, err := p.EnsureSite(context.Background())
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, []string{
		"bench new-site site1.local --admin-password admin --no-mariadb-socket",
		"bench --site site1.local set-config developer_mode 1",
	}, fake.calls)
}

func TestEnsureSiteSkipsExistingSite(t *testing.T) {
	p, cfg, fake := newTestProvisioner(t)
	require.NoError(t, os.MkdirAll(cfg.SitePath(), 0o755))

	created, err := p.EnsureSite(context.Background())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Empty(t, fake.calls)
}

func TestInstallAppPlain(t *testing.T) {
	p, _, fake := newTestProvisioner(t)

	forced, err := p.InstallApp(context.Background(), "library_app")
	require.NoError(t, err)
	assert.False(t, forced)
	assert.Equal(t, []string{"bench --site site1.local install-app library_app"}, fake.calls)
}

func TestInstallAppRepairsAndForces(t *testing.T) {
	p, _, fake := newTestProvisioner(t)
	fake.failOn["bench --site site1.local install-app library_app"] = assert.AnError

	forced, err := p.InstallApp(context.Background(), "library_app")
	require.NoError(t, err)
	assert.True(t, forced)
	assert.Equal(t, []string{
		"bench --site site1.local install-app library_app",
		"bench setup requirements",
		"bench --site all clear-cache",
		"bench build",
		"bench --site site1.local install-app library_app --force",
	}, fake.calls)
}

func TestInstallAppForcedFailureSurfaces(t *testing.T) {
	p, _, fake := newTestProvisioner(t)
	fake.failOn["bench --site site1.local install-app library_app"] = assert.AnError
	fake.failOn["bench --site site1.local install-app library_app --force"] = assert.AnError

	_, err := p.InstallApp(context.Background(), "library_app")
	assert.Error(t, err)
}

func TestSyncInstalledApps(t *testing.T) {
	p, cfg, fake := newTestProvisioner(t)

	// registry claims two apps but only one exists on disk
	require.NoError(t, scaffold.WriteAppList(cfg.AppsTxtPath(), []string{"frappe", "library_app", "ghost_app"}))
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.AppsDir(), "library_app"), 0o755))

	// the site still has a stale app installed
	fake.outputs["bench list-apps --site site1.local"] = "frappe\nlibrary_app\nstale_app\n"

	removed, err := p.SyncInstalledApps(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"stale_app"}, removed)
	assert.Contains(t, fake.calls, "bench remove-app stale_app --site site1.local")

	apps, err := scaffold.ReadAppList(cfg.AppsTxtPath())
	require.NoError(t, err)
	assert.Equal(t, []string{"frappe", "library_app"}, apps)
}

func TestSyncInstalledAppsToleratesRemovalFailure(t *testing.T) {
	p, cfg, fake := newTestProvisioner(t)

	require.NoError(t, scaffold.WriteAppList(cfg.AppsTxtPath(), []string{"frappe"}))
	fake.outputs["bench list-apps --site site1.local"] = "frappe\nstale_app\n"
	fake.failOn["bench remove-app stale_app --site site1.local"] = assert.AnError

	removed, err := p.SyncInstalledApps(context.Background())
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestFinalize(t *testing.T) {
	p, _, fake := newTestProvisioner(t)

	require.NoError(t, p.Finalize(context.Background()))
	assert.Equal(t, []string{
		"bench --site site1.local migrate",
		"bench build",
		"bench clear-cache",
		"bench --site site1.local clear-cache",
		"bench --site site1.local clear-website-cache",
	}, fake.calls)
}

func TestStartServer(t *testing.T) {
	p, _, fake := newTestProvisioner(t)

	started, err := p.StartServer(context.Background())
	require.NoError(t, err)
	assert.True(t, started)
	assert.Equal(t, []string{"bench start"}, fake.detached)
}

func TestStartServerSkipsWhenRunning(t *testing.T) {
	p, _, fake := newTestProvisioner(t)
	fake.outputs["pgrep -f bench start"] = "1234\n"

	started, err := p.StartServer(context.Background())
	require.NoError(t, err)
	assert.False(t, started)
	assert.Empty(t, fake.detached)
}
