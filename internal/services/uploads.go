package services

import (
	"context"
	"io"
	"strings"

	"github.com/goer-app/goer/backend/internal/errs"
	"github.com/goer-app/goer/backend/internal/storage"
	"github.com/goer-app/goer/backend/pkg/logger"
)

// MaxPictureSize bounds a single uploaded picture.
const MaxPictureSize = 10 << 20

// Upload is a file received with a request.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// storeUpload checks that u is an image within MaxPictureSize and stores it
// under prefix.
func storeUpload(ctx context.Context, store storage.Storage, prefix string, u Upload) (string, error) {
	if !strings.HasPrefix(u.ContentType, "image/") {
		return "", errs.Validation("Pictures must be images")
	}
	if u.Size > MaxPictureSize {
		return "", errs.Validation("Picture is too large")
	}
	url, err := store.Store(ctx, storage.NewKey(prefix, u.Filename), u.Reader, u.Size, u.ContentType)
	if err != nil {
		return "", errs.Upstream(err, "Failed to store picture")
	}
	return url, nil
}

// dropUploads deletes stored files, logging failures.
func dropUploads(ctx context.Context, store storage.Storage, urls []string) {
	for _, url := range urls {
		if url == "" {
			continue
		}
		if err := storage.DeleteURL(ctx, store, url); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("url", url).Msg("failed to delete upload")
		}
	}
}
