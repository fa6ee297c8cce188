// Package storage keeps rendered payment exports on disk so a finished
// export can be re-downloaded through a signed link instead of being
// regenerated.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Archive persists export artifacts under a base directory.
type Archive struct {
	baseDir string
}

// NewArchive ensures the base directory exists and returns a handle.
func NewArchive(baseDir string) (*Archive, error) {
	if baseDir == "" {
		baseDir = "./exports"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}
	return &Archive{baseDir: baseDir}, nil
}

// Save writes an artifact and returns the name it is retrievable under.
func (a *Archive) Save(filename string, data []byte) (string, error) {
	path, err := a.resolve(filename)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write archived export: %w", err)
	}
	return filename, nil
}

// Open returns a read handle for an archived artifact.
func (a *Archive) Open(filename string) (io.ReadCloser, error) {
	path, err := a.resolve(filename)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archived export: %w", err)
	}
	return file, nil
}

// CleanupOlderThan removes artifacts past the retention window and returns
// the deleted names.
func (a *Archive) CleanupOlderThan(retention time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-retention)
	var deleted []string
	entries, err := os.ReadDir(a.baseDir)
	if err != nil {
		return nil, fmt.Errorf("scan archive: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat archived export: %w", err)
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(a.baseDir, entry.Name())); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("remove archived export: %w", err)
		}
		deleted = append(deleted, entry.Name())
	}
	return deleted, nil
}

// resolve maps a bare artifact name onto the base directory. Names carrying
// path separators are rejected so a token can never reach outside it.
func (a *Archive) resolve(filename string) (string, error) {
	if filename == "" || strings.ContainsAny(filename, `/\`) || filename != filepath.Base(filename) {
		return "", fmt.Errorf("invalid artifact name %q", filename)
	}
	return filepath.Join(a.baseDir, filename), nil
}
