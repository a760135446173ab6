package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalProvider saves uploads into a directory served statically under
// /uploads. It is the degraded mode used when Cloudinary credentials are
// absent; the filename doubles as the storage id.
type LocalProvider struct {
	dir string
}

func NewLocalProvider(dir string) (*LocalProvider, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &LocalProvider{dir: dir}, nil
}

func (p *LocalProvider) Mode() Mode {
	return ModeLocalFallback
}

func (p *LocalProvider) Upload(ctx context.Context, file *multipart.FileHeader) (UploadResult, error) {
	src, err := file.Open()
	if err != nil {
		return UploadResult{}, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	filename := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), sanitizeFilename(file.Filename))

	dst, err := os.OpenFile(filepath.Join(p.dir, filename), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if os.IsExist(err) {
		// Same-millisecond collision; salt the name instead of overwriting.
		filename = fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), uuid.NewString()[:8], sanitizeFilename(file.Filename))
		dst, err = os.OpenFile(filepath.Join(p.dir, filename), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	}
	if err != nil {
		return UploadResult{}, fmt.Errorf("failed to create local file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return UploadResult{}, fmt.Errorf("failed to write local file: %w", err)
	}

	return UploadResult{URL: "/uploads/" + filename, PublicID: filename}, nil
}

// Delete is a no-op: local files are cheap to keep and the remote-store
// delete contract only requires that the call always succeeds locally.
func (p *LocalProvider) Delete(ctx context.Context, publicID string) error {
	return nil
}

// OptimizedURL returns the stored URL unchanged; local disk has no
// transformation capability.
func (p *LocalProvider) OptimizedURL(publicID, storedURL string) string {
	return storedURL
}

// sanitizeFilename keeps the original name recognizable while stripping
// anything that could escape the upload directory.
func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	if base == "." || base == ".." || base == "" {
		return "archivo"
	}
	return base
}
