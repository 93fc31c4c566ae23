package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/journeyconnect/journeyconnect/internal/common"
	"github.com/journeyconnect/journeyconnect/internal/server/storage"
)

// MaxUploadSize bounds a single uploaded image.
const MaxUploadSize = 10 << 20

// FilesPathPrefix is the URL prefix under which uploads are served.
const FilesPathPrefix = "/api/files/"

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ObjectStore is the storage contract used for uploads.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	PresignGet(ctx context.Context, key string) (string, error)
}

// UploadService stores images and resolves their download URLs.
type UploadService struct {
	store ObjectStore
	now   func() time.Time
}

func NewUploadService(store ObjectStore) *UploadService {
	return &UploadService{store: store, now: time.Now}
}

// Upload stores an image and returns the URL to save in image_url. The
// content type is sniffed from the data; the client's claim is ignored.
func (s *UploadService) Upload(ctx context.Context, filename string, body io.Reader, size int64) (string, error) {
	if size <= 0 {
		return "", common.Invalid("file", "is empty")
	}
	if size > MaxUploadSize {
		return "", common.Invalid("file", "exceeds 10 MiB")
	}

	br := bufio.NewReaderSize(body, 512)
	head, _ := br.Peek(512)
	contentType := http.DetectContentType(head)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", common.Invalid("file", "must be a JPEG, PNG, GIF or WebP image")
	}
	if e := strings.ToLower(path.Ext(filename)); e == ".jpeg" && ext == ".jpg" {
		ext = e
	}

	key := storage.NewKey(s.now(), ext)
	if err := s.store.Put(ctx, key, contentType, br, size); err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrUpstreamUnavailable, err)
	}
	return FilesPathPrefix + key, nil
}

// DownloadURL returns a presigned URL for an uploaded object key.
func (s *UploadService) DownloadURL(ctx context.Context, key string) (string, error) {
	if !storage.ValidKey(key) {
		return "", fmt.Errorf("file %q: %w", key, common.ErrorNotFound)
	}
	url, err := s.store.PresignGet(ctx, key)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrUpstreamUnavailable, err)
	}
	return url, nil
}
