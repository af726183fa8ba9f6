package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Layout: <basePath>/<employeeNumber>/<yyyy-mm-dd>/<event>.jpg
type LocalArchive struct {
	basePath string
}

// NewLocalArchive creates the base directory if needed.
func NewLocalArchive(basePath string) (*LocalArchive, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &LocalArchive{basePath: basePath}, nil
}

// Save implements Archive.
func (a *LocalArchive) Save(ctx context.Context, path string, r io.Reader) (string, error) {
	// Sanitize path to prevent directory traversal
	cleanPath := filepath.Clean(path)
	fullPath := filepath.Join(a.basePath, cleanPath)
	if !strings.HasPrefix(fullPath, a.basePath) {
		return "", fmt.Errorf("invalid archive path: %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return cleanPath, nil
}

// Exists implements Archive.
func (a *LocalArchive) Exists(ctx context.Context, path string) (bool, error) {
	cleanPath := filepath.Clean(path)
	fullPath := filepath.Join(a.basePath, cleanPath)
	if !strings.HasPrefix(fullPath, a.basePath) {
		return false, fmt.Errorf("invalid archive path: %s", path)
	}

	_, err := os.Stat(fullPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Prune implements Archive. Day directories are named yyyy-mm-dd under
// each employee directory; anything older than the cutoff is removed.
func (a *LocalArchive) Prune(ctx context.Context, before time.Time) error {
	employees, err := os.ReadDir(a.basePath)
	if err != nil {
		return fmt.Errorf("failed to list archive: %w", err)
	}

	cutoff := before.Format("2006-01-02")
	for _, emp := range employees {
		if !emp.IsDir() {
			continue
		}
		empDir := filepath.Join(a.basePath, emp.Name())
		days, err := os.ReadDir(empDir)
		if err != nil {
			continue
		}
		for _, day := range days {
			if !day.IsDir() {
				continue
			}
			if _, err := time.Parse("2006-01-02", day.Name()); err != nil {
				continue
			}
			if day.Name() < cutoff {
				if err := os.RemoveAll(filepath.Join(empDir, day.Name())); err != nil {
					return fmt.Errorf("failed to prune %s/%s: %w", emp.Name(), day.Name(), err)
				}
			}
		}
	}
	return nil
}
