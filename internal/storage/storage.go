// Package storage stores uploaded pictures on the local filesystem or S3.
package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Storage is the blob store consumed by the services.
type Storage interface {
	// Store writes r under key and returns its public URL.
	Store(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	// Delete removes key. A missing key is not an error.
	Delete(ctx context.Context, key string) error
	// KeyOf maps a URL returned by Store back to its key.
	KeyOf(url string) (string, bool)
}

// NewKey builds a unique object key under prefix keeping the extension of filename.
func NewKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join(prefix, uuid.NewString()+ext)
}

// DeleteURL removes the object behind url when it belongs to s.
func DeleteURL(ctx context.Context, s Storage, url string) error {
	key, ok := s.KeyOf(url)
	if !ok {
		return nil
	}
	return s.Delete(ctx, key)
}

func keyOf(base, url string) (string, bool) {
	prefix := strings.TrimRight(base, "/") + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	return key, key != ""
}
