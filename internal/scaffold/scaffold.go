// Package scaffold creates the on-disk skeleton of a generated app inside
// a bench's apps directory.
package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:embed templates/*
var templatesFS embed.FS

const appVersion = "0.0.1"

// App describes a scaffolded app
type App struct {
	Name       string
	Module     string
	Path       string // apps/<name>
	BackupPath string // Non-empty when a pre-existing app dir was moved aside
}

// Scaffolder writes generated app skeletons under a bench apps directory
type Scaffolder struct {
	appsDir   string
	publisher string
	email     string
	log       *zap.Logger
}

// New creates a Scaffolder
func New(appsDir, publisher, email string, log *zap.Logger) *Scaffolder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scaffolder{
		appsDir:   appsDir,
		publisher: publisher,
		email:     email,
		log:       log,
	}
}

// ValidateAppName validates a generated app name: the parser only ever
// produces lowercase letters and underscores, but app names also arrive
// from the command line.
func ValidateAppName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) == 0 || len(name) > 100 {
		return fmt.Errorf("app name must be 1-100 characters")
	}

	for _, r := range name {
		if r != '_' && (r < 'a' || r > 'z') {
			return fmt.Errorf("app name can only contain lowercase letters and underscores")
		}
	}

	return nil
}

// Create scaffolds the skeleton for an app. An existing app directory is
// moved aside rather than deleted, so a rerun never destroys previous
// output.
func (s *Scaffolder) Create(appName, moduleName string) (*App, error) {
	if err := ValidateAppName(appName); err != nil {
		return nil, err
	}

	app := &App{
		Name:   appName,
		Module: moduleName,
		Path:   filepath.Join(s.appsDir, appName),
	}

	if _, err := os.Stat(app.Path); err == nil {
		backup := app.Path + ".bak-" + uuid.NewString()[:8]
		if err := os.Rename(app.Path, backup); err != nil {
			return nil, fmt.Errorf("failed to move aside existing app: %w", err)
		}
		app.BackupPath = backup
		s.log.Info("moved existing app aside",
			zap.String("app", appName),
			zap.String("backup", backup))
	}

	pkgDir := filepath.Join(app.Path, appName)
	if err := os.MkdirAll(pkgDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create app directory: %w", err)
	}

	data := map[string]interface{}{
		"AppName":   appName,
		"AppTitle":  capitalize(appName),
		"Module":    moduleName,
		"Publisher": s.publisher,
		"Email":     s.email,
		"Version":   appVersion,
	}

	files := map[string]string{
		filepath.Join(app.Path, "__init__.py"): "",
		filepath.Join(pkgDir, "__init__.py"):   fmt.Sprintf("__version__ = '%s'\n", appVersion),
		filepath.Join(pkgDir, "modules.txt"):   moduleName + "\n",
	}

	rendered := map[string]string{
		filepath.Join(pkgDir, "hooks.py"):         "templates/hooks.py.tmpl",
		filepath.Join(app.Path, "pyproject.toml"): "templates/pyproject.toml.tmpl",
	}
	for dest, tmplPath := range rendered {
		content, err := renderTemplate(tmplPath, data)
		if err != nil {
			return nil, err
		}
		files[dest] = content
	}

	for dest, content := range files {
		if err := os.WriteFile(dest, []byte(content), 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", dest, err)
		}
	}

	s.log.Info("created app skeleton", zap.String("app", appName), zap.String("path", app.Path))
	return app, nil
}

// WriteModuleFiles writes generated module files (paths relative to the
// module directory) into the app
func (s *Scaffolder) WriteModuleFiles(app *App, files map[string]string) error {
	moduleDir := filepath.Join(app.Path, app.Name, app.Module)

	for rel, content := range files {
		dest := filepath.Join(moduleDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", rel, err)
		}
		if err := os.WriteFile(dest, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", rel, err)
		}
	}

	return nil
}

// EnsureAppListed adds the app to the bench apps registry if missing.
// A missing registry starts from the framework app alone.
func EnsureAppListed(appsTxtPath, appName string) error {
	apps := []string{"frappe"}
	if raw, err := os.ReadFile(appsTxtPath); err == nil {
		apps = apps[:0]
		for _, line := range strings.Split(string(raw), "\n") {
			if app := strings.TrimSpace(line); app != "" {
				apps = append(apps, app)
			}
		}
		if len(apps) == 0 {
			apps = []string{"frappe"}
		}
	}

	for _, app := range apps {
		if app == appName {
			return nil
		}
	}
	apps = append(apps, appName)

	return WriteAppList(appsTxtPath, apps)
}

// WriteAppList rewrites the bench apps registry
func WriteAppList(appsTxtPath string, apps []string) error {
	content := strings.Join(apps, "\n") + "\n"
	if err := os.WriteFile(appsTxtPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write apps.txt: %w", err)
	}
	return nil
}

// ReadAppList reads the bench apps registry
func ReadAppList(appsTxtPath string) ([]string, error) {
	raw, err := os.ReadFile(appsTxtPath)
	if err != nil {
		return nil, err
	}
	var apps []string
	for _, line := range strings.Split(string(raw), "\n") {
		if app := strings.TrimSpace(line); app != "" {
			apps = append(apps, app)
		}
	}
	return apps, nil
}

func renderTemplate(path string, data interface{}) (string, error) {
	raw, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read template %s: %w", path, err)
	}

	tmpl, err := template.New(filepath.Base(path)).Parse(string(raw))
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", path, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", path, err)
	}
	return buf.String(), nil
}

// capitalize uppercases the first rune and lowercases the rest
func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	return string(unicode.ToUpper(runes[0])) + strings.ToLower(string(runes[1:]))
}
