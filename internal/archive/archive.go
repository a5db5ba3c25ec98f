// Package archive packages generated apps for distribution.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ZipApp zips a bench app directory into <bench>/<app>.zip. Entry names
// are relative to the apps directory, so the archive unpacks to
// <app>/... the way the app sits inside a bench. Returns the archive
// path.
func ZipApp(benchPath, appName string) (string, error) {
	appsDir := filepath.Join(benchPath, "apps")
	appPath := filepath.Join(appsDir, appName)

	if _, err := os.Stat(appPath); err != nil {
		return "", fmt.Errorf("app directory %s not found: %w", appPath, err)
	}

	zipPath := filepath.Join(benchPath, appName+".zip")
	out, err := os.Create(zipPath)
	if err != nil {
		return "", fmt.Errorf("failed to create archive: %w", err)
	}
	defer out.Close()

	w := zip.NewWriter(out)

	err = filepath.WalkDir(appPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		arcname, err := filepath.Rel(appsDir, path)
		if err != nil {
			return err
		}

		entry, err := w.Create(filepath.ToSlash(arcname))
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(entry, f)
		return err
	})
	if err != nil {
		os.Remove(zipPath)
		return "", fmt.Errorf("failed to archive %s: %w", appName, err)
	}

	if err := w.Close(); err != nil {
		os.Remove(zipPath)
		return "", fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to close archive: %w", err)
	}

	return zipPath, nil
}
