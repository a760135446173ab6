package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"time"

	"registro-accidentes/backend/broker"
	"registro-accidentes/backend/database"
	"registro-accidentes/backend/models"

	"gorm.io/gorm"
)

// Estadisticas is the aggregate view over all eventos: the total count plus
// independent breakdowns by tipo, estado and prioridad.
type Estadisticas struct {
	Total        int64                `json:"total"`
	PorTipo      []ConteoPorTipo      `json:"porTipo"`
	PorEstado    []ConteoPorEstado    `json:"porEstado"`
	PorPrioridad []ConteoPorPrioridad `json:"porPrioridad"`
}

type ConteoPorTipo struct {
	Tipo     models.TipoEvento `json:"tipo"`
	Cantidad int64             `json:"cantidad"`
}

type ConteoPorEstado struct {
	Estado   models.EstadoEvento `json:"estado"`
	Cantidad int64               `json:"cantidad"`
}

type ConteoPorPrioridad struct {
	Prioridad models.PrioridadEvento `json:"prioridad"`
	Cantidad  int64                  `json:"cantidad"`
}

type EventoServiceInterface interface {
	GetAllEventos(db *database.Database) ([]models.Evento, error)
	GetEventoById(db *database.Database, id string) (models.Evento, error)
	CreateEvento(ctx context.Context, db *database.Database, eventoData map[string]string, file *multipart.FileHeader) (models.Evento, error)
	UpdateEvento(ctx context.Context, db *database.Database, id string, eventoData map[string]string, file *multipart.FileHeader) (models.Evento, error)
	DeleteEvento(ctx context.Context, db *database.Database, id string) error
	GetEstadisticas(db *database.Database) (Estadisticas, error)
}

type EventoService struct {
	imagenes ImagenServiceInterface
}

func NewEventoService(imagenes ImagenServiceInterface) *EventoService {
	return &EventoService{imagenes: imagenes}
}

func (s *EventoService) GetAllEventos(db *database.Database) ([]models.Evento, error) {
	var eventos []models.Evento
	if err := db.DB.Order("fecha DESC").Find(&eventos).Error; err != nil {
		return nil, err
	}
	return eventos, nil
}

func (s *EventoService) GetEventoById(db *database.Database, id string) (models.Evento, error) {
	var evento models.Evento
	if err := db.DB.First(&evento, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Evento{}, ErrEventoNotFound
		}
		return models.Evento{}, err
	}
	return evento, nil
}

// CreateEvento validates the payload, applies the documented defaults
// (fecha now, estado pendiente, prioridad media) and persists the evento,
// attaching the optional principal image from the same request.
func (s *EventoService) CreateEvento(ctx context.Context, db *database.Database, eventoData map[string]string, file *multipart.FileHeader) (models.Evento, error) {
	evento := models.Evento{
		Tipo:                models.TipoEvento(eventoData["tipo"]),
		Lugar:               eventoData["lugar"],
		PersonaAfectada:     eventoData["persona_afectada"],
		Descripcion:         eventoData["descripcion"],
		Estado:              models.EstadoEvento(eventoData["estado"]),
		Prioridad:           models.PrioridadEvento(eventoData["prioridad"]),
		ImagenesAdicionales: models.ListaImagenes{},
	}

	var details []string
	if raw := eventoData["fecha"]; raw != "" {
		fecha, err := parseFecha(raw)
		if err != nil {
			details = append(details, "fecha tiene un formato inválido")
		} else {
			evento.Fecha = fecha
		}
	}

	evento.ApplyDefaults()
	details = append(details, evento.Validate()...)
	if len(details) > 0 {
		return models.Evento{}, &ValidationError{Details: details}
	}

	if file != nil {
		if err := s.imagenes.SetImagenPrincipal(ctx, &evento, file); err != nil {
			return models.Evento{}, err
		}
	}

	if err := db.DB.Create(&evento).Error; err != nil {
		return models.Evento{}, err
	}

	broker.PublishEvento(broker.EventoCreatedSubject, &evento)

	return evento, nil
}

// UpdateEvento is a merge patch: a field absent from the payload keeps its
// stored value. A field provided as an empty string is treated the same as
// omitted, so an update cannot blank out a value; this mirrors the behavior
// of the first version of the API and is kept for compatibility.
func (s *EventoService) UpdateEvento(ctx context.Context, db *database.Database, id string, eventoData map[string]string, file *multipart.FileHeader) (models.Evento, error) {
	var evento models.Evento
	if err := db.DB.First(&evento, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Evento{}, ErrEventoNotFound
		}
		return models.Evento{}, err
	}

	var details []string
	if raw := eventoData["fecha"]; raw != "" {
		fecha, err := parseFecha(raw)
		if err != nil {
			details = append(details, "fecha tiene un formato inválido")
		} else {
			evento.Fecha = fecha
		}
	}
	if v := eventoData["tipo"]; v != "" {
		evento.Tipo = models.TipoEvento(v)
	}
	if v := eventoData["lugar"]; v != "" {
		evento.Lugar = v
	}
	if v := eventoData["persona_afectada"]; v != "" {
		evento.PersonaAfectada = v
	}
	if v := eventoData["descripcion"]; v != "" {
		evento.Descripcion = v
	}
	if v := eventoData["estado"]; v != "" {
		evento.Estado = models.EstadoEvento(v)
	}
	if v := eventoData["prioridad"]; v != "" {
		evento.Prioridad = models.PrioridadEvento(v)
	}

	details = append(details, evento.Validate()...)
	if len(details) > 0 {
		return models.Evento{}, &ValidationError{Details: details}
	}

	if file != nil {
		if err := s.imagenes.SetImagenPrincipal(ctx, &evento, file); err != nil {
			return models.Evento{}, err
		}
	}

	if err := db.DB.Save(&evento).Error; err != nil {
		return models.Evento{}, err
	}

	broker.PublishEvento(broker.EventoUpdatedSubject, &evento)

	return evento, nil
}

// DeleteEvento removes the evento after a best-effort cleanup of every
// image it owns. Cleanup failures are logged and never block the delete;
// an orphaned asset in the store is preferable to an undeletable evento.
func (s *EventoService) DeleteEvento(ctx context.Context, db *database.Database, id string) error {
	var evento models.Evento
	if err := db.DB.First(&evento, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventoNotFound
		}
		return err
	}

	for _, resultado := range s.imagenes.DeleteAllImagenes(ctx, &evento) {
		if !resultado.Ok {
			log.Printf("Warning: orphaned image %s left in storage: %s", resultado.PublicID, resultado.Error)
		}
	}

	if err := db.DB.Delete(&evento).Error; err != nil {
		return err
	}

	broker.PublishEvento(broker.EventoDeletedSubject, &evento)

	return nil
}

func (s *EventoService) GetEstadisticas(db *database.Database) (Estadisticas, error) {
	stats := Estadisticas{
		PorTipo:      []ConteoPorTipo{},
		PorEstado:    []ConteoPorEstado{},
		PorPrioridad: []ConteoPorPrioridad{},
	}

	if err := db.DB.Model(&models.Evento{}).Count(&stats.Total).Error; err != nil {
		return Estadisticas{}, err
	}

	if err := db.DB.Model(&models.Evento{}).
		Select("tipo, COUNT(id) AS cantidad").
		Group("tipo").
		Scan(&stats.PorTipo).Error; err != nil {
		return Estadisticas{}, err
	}

	if err := db.DB.Model(&models.Evento{}).
		Select("estado, COUNT(id) AS cantidad").
		Group("estado").
		Scan(&stats.PorEstado).Error; err != nil {
		return Estadisticas{}, err
	}

	if err := db.DB.Model(&models.Evento{}).
		Select("prioridad, COUNT(id) AS cantidad").
		Group("prioridad").
		Scan(&stats.PorPrioridad).Error; err != nil {
		return Estadisticas{}, err
	}

	return stats, nil
}

// parseFecha accepts the date formats the API has historically received.
func parseFecha(raw string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, format := range formats {
		if fecha, err := time.Parse(format, raw); err == nil {
			return fecha, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", raw)
}
