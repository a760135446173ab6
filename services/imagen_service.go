package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"

	"registro-accidentes/backend/database"
	"registro-accidentes/backend/models"
	"registro-accidentes/backend/storage"

	"gorm.io/gorm"
)

// DeleteResultado is the per-image outcome of a best-effort cleanup. The
// operation as a whole always succeeds; callers log the failures.
type DeleteResultado struct {
	PublicID string `json:"public_id"`
	Ok       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
}

// ImagenOptimizada is a read-only display reference for one stored image.
type ImagenOptimizada struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// ImagenesOptimizadas is the display view of an evento's images: the
// principal image plus the additional list, in stored order.
type ImagenesOptimizadas struct {
	ImagenPrincipal     *ImagenOptimizada  `json:"imagen_principal"`
	ImagenesAdicionales []ImagenOptimizada `json:"imagenes_adicionales"`
}

type ImagenServiceInterface interface {
	SetImagenPrincipal(ctx context.Context, evento *models.Evento, file *multipart.FileHeader) error
	AddImagenAdicional(ctx context.Context, db *database.Database, id string, file *multipart.FileHeader) (models.Evento, error)
	RemoveImagen(ctx context.Context, db *database.Database, id string, publicID string) (models.Evento, error)
	DeleteAllImagenes(ctx context.Context, evento *models.Evento) []DeleteResultado
	BuildImagenesOptimizadas(evento *models.Evento) ImagenesOptimizadas
}

// ImagenService keeps an evento's image references consistent with the
// backing asset store. The provider is injected once at construction; the
// storage mode never changes for the life of the process.
type ImagenService struct {
	storage storage.Provider
}

func NewImagenService(provider storage.Provider) *ImagenService {
	return &ImagenService{storage: provider}
}

// SetImagenPrincipal uploads the file and installs it as the evento's
// principal image, mirroring the legacy evidencia field. The previous
// principal image, if any, is deleted from the store best-effort: a failed
// delete is logged and the new image is attached regardless. The caller is
// responsible for persisting the evento.
func (s *ImagenService) SetImagenPrincipal(ctx context.Context, evento *models.Evento, file *multipart.FileHeader) error {
	if file == nil {
		return ErrInvalidInput
	}

	result, err := s.storage.Upload(ctx, file)
	if err != nil {
		return fmt.Errorf("failed to upload principal image: %w", err)
	}

	if old := evento.ImagenPrincipalPublicID; old != "" {
		if err := s.storage.Delete(ctx, old); err != nil {
			log.Printf("Warning: failed to delete previous principal image %s: %v", old, err)
		}
	}

	evento.ImagenPrincipalURL = result.URL
	evento.ImagenPrincipalPublicID = result.PublicID

	// evidencia mirrors the latest upload for pre-image-model clients: the
	// remote URL in remote mode, the bare filename in local-fallback mode.
	if s.storage.Mode() == storage.ModeRemote {
		evento.Evidencia = result.URL
	} else {
		evento.Evidencia = result.PublicID
	}

	return nil
}

// AddImagenAdicional appends one image to the end of the evento's additional
// list. Existing entries are never removed or reordered.
func (s *ImagenService) AddImagenAdicional(ctx context.Context, db *database.Database, id string, file *multipart.FileHeader) (models.Evento, error) {
	if file == nil {
		return models.Evento{}, ErrInvalidInput
	}

	var evento models.Evento
	if err := db.DB.First(&evento, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Evento{}, ErrEventoNotFound
		}
		return models.Evento{}, err
	}

	// Upload before touching the row; no transaction is held across the
	// network call.
	result, err := s.storage.Upload(ctx, file)
	if err != nil {
		return models.Evento{}, fmt.Errorf("failed to upload additional image: %w", err)
	}

	evento.ImagenesAdicionales = append(evento.ImagenesAdicionales, models.ImagenAdicional{
		URL:      result.URL,
		PublicID: result.PublicID,
	})

	if err := db.DB.Model(&evento).Update("imagenes_adicionales", evento.ImagenesAdicionales).Error; err != nil {
		return models.Evento{}, err
	}

	return evento, nil
}

// RemoveImagen deletes the image from the asset store best-effort, then
// drops the first matching entry from the additional list. A public id with
// no matching entry is a no-op, not an error, so removing an already-removed
// image is idempotent. The principal image reference is never cleared here;
// principal removal only happens as a replace.
func (s *ImagenService) RemoveImagen(ctx context.Context, db *database.Database, id string, publicID string) (models.Evento, error) {
	var evento models.Evento
	if err := db.DB.First(&evento, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Evento{}, ErrEventoNotFound
		}
		return models.Evento{}, err
	}

	if err := s.storage.Delete(ctx, publicID); err != nil {
		log.Printf("Warning: failed to delete image %s from storage: %v", publicID, err)
	}

	filtered := make(models.ListaImagenes, 0, len(evento.ImagenesAdicionales))
	removed := false
	for _, img := range evento.ImagenesAdicionales {
		if !removed && img.PublicID == publicID {
			removed = true
			continue
		}
		filtered = append(filtered, img)
	}

	if !removed {
		return evento, nil
	}

	evento.ImagenesAdicionales = filtered
	if err := db.DB.Model(&evento).Update("imagenes_adicionales", evento.ImagenesAdicionales).Error; err != nil {
		return models.Evento{}, err
	}

	return evento, nil
}

// DeleteAllImagenes issues a best-effort store delete for the principal
// image and every additional image. One failure never blocks the rest, and
// the caller always proceeds; the outcome list exists for observability.
func (s *ImagenService) DeleteAllImagenes(ctx context.Context, evento *models.Evento) []DeleteResultado {
	var publicIDs []string
	if evento.ImagenPrincipalPublicID != "" {
		publicIDs = append(publicIDs, evento.ImagenPrincipalPublicID)
	}
	for _, img := range evento.ImagenesAdicionales {
		if img.PublicID != "" {
			publicIDs = append(publicIDs, img.PublicID)
		}
	}

	resultados := make([]DeleteResultado, 0, len(publicIDs))
	for _, publicID := range publicIDs {
		if err := s.storage.Delete(ctx, publicID); err != nil {
			log.Printf("Warning: failed to delete image %s from storage: %v", publicID, err)
			resultados = append(resultados, DeleteResultado{PublicID: publicID, Ok: false, Error: err.Error()})
			continue
		}
		resultados = append(resultados, DeleteResultado{PublicID: publicID, Ok: true})
	}

	return resultados
}

// BuildImagenesOptimizadas produces the display view of an evento's images.
// Remote mode applies delivery transformations; local-fallback mode returns
// the stored URLs unchanged. Read-only, no side effects.
func (s *ImagenService) BuildImagenesOptimizadas(evento *models.Evento) ImagenesOptimizadas {
	view := ImagenesOptimizadas{ImagenesAdicionales: []ImagenOptimizada{}}

	if evento.ImagenPrincipalURL != "" {
		view.ImagenPrincipal = &ImagenOptimizada{
			URL:      s.storage.OptimizedURL(evento.ImagenPrincipalPublicID, evento.ImagenPrincipalURL),
			PublicID: evento.ImagenPrincipalPublicID,
		}
	}

	for _, img := range evento.ImagenesAdicionales {
		view.ImagenesAdicionales = append(view.ImagenesAdicionales, ImagenOptimizada{
			URL:      s.storage.OptimizedURL(img.PublicID, img.URL),
			PublicID: img.PublicID,
		})
	}

	return view
}
