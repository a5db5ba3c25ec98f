package scaffold

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScaffolder(t *testing.T) (*Scaffolder, string) {
	t.Helper()
	appsDir := t.TempDir()
	return New(appsDir, "Tester", "tester@example.com", nil), appsDir
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err, "expected %s to exist", path)
	return string(raw)
}

func TestValidateAppName(t *testing.T) {
	tests := []struct {
		name    string
		appName string
		wantErr bool
	}{
		{"simple", "library_app", false},
		{"single letter", "x", false},
		{"empty", "", true},
		{"uppercase", "Library", true},
		{"digits", "app2", true},
		{"dash", "my-app", true},
		{"path traversal", "../evil", true},
		{"too long", strings.Repeat("a", 101), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAppName(tt.appName)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreate_AppSkeleton(t *testing.T) {
	s, appsDir := newTestScaffolder(t)

	app, err := s.Create("library_app", "library_app_module")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(appsDir, "library_app"), app.Path)
	assert.Empty(t, app.BackupPath)

	pkgDir := filepath.Join(app.Path, "library_app")
	assert.Equal(t, "", readFile(t, filepath.Join(app.Path, "__init__.py")))
	assert.Equal(t, "__version__ = '0.0.1'\n", readFile(t, filepath.Join(pkgDir, "__init__.py")))
	assert.Equal(t, "library_app_module\n", readFile(t, filepath.Join(pkgDir, "modules.txt")))

	hooks := readFile(t, filepath.Join(pkgDir, "hooks.py"))
	assert.Contains(t, hooks, `app_name = "library_app"`)
	assert.Contains(t, hooks, `app_title = "Library_app"`)
	assert.Contains(t, hooks, `app_publisher = "Tester"`)
	assert.Contains(t, hooks, `app_email = "tester@example.com"`)
	assert.Contains(t, hooks, `app_modules = ["library_app_module"]`)

	pyproject := readFile(t, filepath.Join(app.Path, "pyproject.toml"))
	assert.Contains(t, pyproject, `name = "library_app"`)
	assert.Contains(t, pyproject, `version = "0.0.1"`)
	assert.Contains(t, pyproject, `dependencies = ["frappe"]`)
	assert.Contains(t, pyproject, "flit_core.buildapi")
}

func TestCreate_MovesExistingAppAside(t *testing.T) {
	s, appsDir := newTestScaffolder(t)

	appPath := filepath.Join(appsDir, "library_app")
	require.NoError(t, os.MkdirAll(appPath, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(appPath, "old.txt"), []byte("old"), 0644))

	app, err := s.Create("library_app", "library_app_module")
	require.NoError(t, err)

	require.NotEmpty(t, app.BackupPath)
	assert.True(t, strings.HasPrefix(filepath.Base(app.BackupPath), "library_app.bak-"))
	assert.Equal(t, "old", readFile(t, filepath.Join(app.BackupPath, "old.txt")))

	// The new skeleton replaced the old tree
	if _, err := os.Stat(filepath.Join(appPath, "old.txt")); !os.IsNotExist(err) {
		t.Error("expected old content to be gone from the app path")
	}
}

func TestCreate_RejectsInvalidName(t *testing.T) {
	s, _ := newTestScaffolder(t)

	_, err := s.Create("Bad Name", "m")
	assert.Error(t, err)
}

func TestWriteModuleFiles(t *testing.T) {
	s, _ := newTestScaffolder(t)
	app, err := s.Create("library_app", "library_app_module")
	require.NoError(t, err)

	files := map[string]string{
		"__init__.py":                  "",
		"doctype/article/article.json": "{}\n",
	}
	require.NoError(t, s.WriteModuleFiles(app, files))

	moduleDir := filepath.Join(app.Path, "library_app", "library_app_module")
	assert.Equal(t, "{}\n", readFile(t, filepath.Join(moduleDir, "doctype", "article", "article.json")))
}

func TestEnsureAppListed(t *testing.T) {
	dir := t.TempDir()
	appsTxt := filepath.Join(dir, "apps.txt")

	// Missing registry starts from frappe
	require.NoError(t, EnsureAppListed(appsTxt, "library_app"))
	assert.Equal(t, "frappe\nlibrary_app\n", readFile(t, appsTxt))

	// Idempotent
	require.NoError(t, EnsureAppListed(appsTxt, "library_app"))
	assert.Equal(t, "frappe\nlibrary_app\n", readFile(t, appsTxt))

	// Appends to an existing registry
	require.NoError(t, EnsureAppListed(appsTxt, "other_app"))
	assert.Equal(t, "frappe\nlibrary_app\nother_app\n", readFile(t, appsTxt))
}

func TestReadAppList(t *testing.T) {
	dir := t.TempDir()
	appsTxt := filepath.Join(dir, "apps.txt")
	require.NoError(t, os.WriteFile(appsTxt, []byte("frappe\n\n  library_app  \n"), 0644))

	apps, err := ReadAppList(appsTxt)
	require.NoError(t, err)
	assert.Equal(t, []string{"frappe", "library_app"}, apps)
}
