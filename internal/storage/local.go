package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage keeps files under a directory that is served at baseURL.
type LocalStorage struct {
	basePath string
	baseURL  string
}

// LocalConfig holds configuration for local storage.
type LocalConfig struct {
	BasePath string
	BaseURL  string
}

// NewLocalStorage creates a new LocalStorage instance.
func NewLocalStorage(cfg LocalConfig) (*LocalStorage, error) {
	if err := os.MkdirAll(cfg.BasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base path: %w", err)
	}

	absPath, err := filepath.Abs(cfg.BasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	return &LocalStorage{basePath: absPath, baseURL: strings.TrimRight(cfg.BaseURL, "/")}, nil
}

// Root is the directory files are written to.
func (s *LocalStorage) Root() string {
	return s.basePath
}

// fullPath returns the filesystem path for key, or "" when key escapes the base path.
func (s *LocalStorage) fullPath(key string) string {
	cleanKey := filepath.Clean("/" + key)
	p := filepath.Join(s.basePath, cleanKey)
	if p == s.basePath {
		return ""
	}
	return p
}

// Store writes into a temp file and renames it into place.
func (s *LocalStorage) Store(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	p := s.fullPath(key)
	if p == "" {
		return "", fmt.Errorf("invalid key %q", key)
	}

	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmpFile, r); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("failed to write content: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, p); err != nil {
		return "", fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return s.baseURL + "/" + filepath.ToSlash(strings.TrimPrefix(p, s.basePath+string(os.PathSeparator))), nil
}

func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	p := s.fullPath(key)
	if p == "" {
		return nil
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *LocalStorage) KeyOf(url string) (string, bool) {
	return keyOf(s.baseURL, url)
}
