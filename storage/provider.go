package storage

import (
	"context"
	"mime/multipart"
)

// Mode identifies how uploaded images are stored. It is selected once at
// process start and never changes afterwards.
type Mode string

const (
	// ModeRemote stores images in the remote asset store (Cloudinary).
	ModeRemote Mode = "remote"
	// ModeLocalFallback stores images on local disk when the remote store
	// is not configured.
	ModeLocalFallback Mode = "local-fallback"
)

// UploadResult is the (url, storage id) pair produced by an upload. Both
// halves are always set together; PublicID is what Delete and OptimizedURL
// key on.
type UploadResult struct {
	URL      string
	PublicID string
}

// Provider abstracts the asset storage backing an evento's images. The two
// implementations are the Cloudinary client and the local-disk fallback;
// services receive one of them at construction time.
type Provider interface {
	Mode() Mode
	Upload(ctx context.Context, file *multipart.FileHeader) (UploadResult, error)
	Delete(ctx context.Context, publicID string) error
	// OptimizedURL returns a display URL for the stored image. Remote mode
	// applies on-the-fly transformation parameters; local mode returns the
	// stored URL unchanged.
	OptimizedURL(publicID, storedURL string) string
}
