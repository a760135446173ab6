package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

type TipoEvento string

const (
	TipoAccidente     TipoEvento = "accidente"
	TipoIncidente     TipoEvento = "incidente"
	TipoCasiAccidente TipoEvento = "casi_accidente"
)

type EstadoEvento string

const (
	EstadoPendiente  EstadoEvento = "pendiente"
	EstadoEnRevision EstadoEvento = "en_revision"
	EstadoResuelto   EstadoEvento = "resuelto"
	EstadoCerrado    EstadoEvento = "cerrado"
)

type PrioridadEvento string

const (
	PrioridadBaja    PrioridadEvento = "baja"
	PrioridadMedia   PrioridadEvento = "media"
	PrioridadAlta    PrioridadEvento = "alta"
	PrioridadCritica PrioridadEvento = "critica"
)

var (
	tiposValidos       = []TipoEvento{TipoAccidente, TipoIncidente, TipoCasiAccidente}
	estadosValidos     = []EstadoEvento{EstadoPendiente, EstadoEnRevision, EstadoResuelto, EstadoCerrado}
	prioridadesValidas = []PrioridadEvento{PrioridadBaja, PrioridadMedia, PrioridadAlta, PrioridadCritica}
)

// ImagenAdicional is one secondary attached image. URL and PublicID always
// travel together; PublicID is what the asset store needs for deletion.
type ImagenAdicional struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// ListaImagenes stores the ordered list of additional images as a JSON
// column. Rows written by older versions of the system sometimes hold the
// list double-encoded as a JSON string, or plain garbage; Scan is the single
// place that deals with that.
type ListaImagenes []ImagenAdicional

// Value implements the driver.Valuer interface for JSON storage
func (l ListaImagenes) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal(ListaImagenes{})
	}
	return json.Marshal(l)
}

// Scan implements the sql.Scanner interface for JSON retrieval
func (l *ListaImagenes) Scan(value interface{}) error {
	if value == nil {
		*l = ListaImagenes{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("type assertion to []byte failed")
	}

	*l = ParseImagenes(raw)
	return nil
}

// ParseImagenes decodes an imagenes_adicionales column defensively. Legacy
// rows may hold the list double-encoded as a JSON string; anything that
// cannot be recovered yields an empty list, never an error.
func ParseImagenes(raw []byte) ListaImagenes {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ListaImagenes{}
	}

	var imagenes []ImagenAdicional
	if err := json.Unmarshal([]byte(trimmed), &imagenes); err == nil {
		return completas(imagenes)
	}

	// Double-encoded rows: a JSON string whose contents are the JSON list.
	var encoded string
	if err := json.Unmarshal([]byte(trimmed), &encoded); err == nil {
		if err := json.Unmarshal([]byte(encoded), &imagenes); err == nil {
			return completas(imagenes)
		}
	}

	return ListaImagenes{}
}

// completas drops entries missing either half of the {url, public_id} pair;
// an entry without a public_id could never be deleted from the asset store.
func completas(imagenes []ImagenAdicional) ListaImagenes {
	result := make(ListaImagenes, 0, len(imagenes))
	for _, img := range imagenes {
		if img.URL != "" && img.PublicID != "" {
			result = append(result, img)
		}
	}
	return result
}

// Evento represents one recorded workplace accident/incident report.
type Evento struct {
	ID                      uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Fecha                   time.Time       `gorm:"not null;index" json:"fecha"`
	Tipo                    TipoEvento      `gorm:"type:varchar(20);not null;index" json:"tipo"`
	Lugar                   string          `gorm:"size:255;not null" json:"lugar"`
	PersonaAfectada         string          `gorm:"size:255;not null" json:"persona_afectada"`
	Descripcion             string          `gorm:"type:text;not null" json:"descripcion"`
	Evidencia               string          `gorm:"size:255" json:"evidencia"`
	ImagenPrincipalURL      string          `gorm:"size:500;column:imagen_principal_url" json:"imagen_principal_url"`
	ImagenPrincipalPublicID string          `gorm:"size:255;column:imagen_principal_public_id" json:"imagen_principal_public_id"`
	ImagenesAdicionales     ListaImagenes   `gorm:"type:json" json:"imagenes_adicionales"`
	Estado                  EstadoEvento    `gorm:"type:varchar(20);default:pendiente;index" json:"estado"`
	Prioridad               PrioridadEvento `gorm:"type:varchar(20);default:media;index" json:"prioridad"`
	FechaCreacion           time.Time       `gorm:"autoCreateTime;column:fecha_creacion" json:"fecha_creacion"`
	FechaActualizacion      time.Time       `gorm:"autoUpdateTime;column:fecha_actualizacion" json:"fecha_actualizacion"`
}

func (Evento) TableName() string {
	return "eventos"
}

// BeforeCreate applies the documented defaults for omitted fields.
func (e *Evento) BeforeCreate(tx *gorm.DB) error {
	e.ApplyDefaults()
	return nil
}

// ApplyDefaults fills fecha/estado/prioridad when the caller omitted them.
func (e *Evento) ApplyDefaults() {
	if e.Fecha.IsZero() {
		e.Fecha = time.Now()
	}
	if e.Estado == "" {
		e.Estado = EstadoPendiente
	}
	if e.Prioridad == "" {
		e.Prioridad = PrioridadMedia
	}
	if e.ImagenesAdicionales == nil {
		e.ImagenesAdicionales = ListaImagenes{}
	}
}

// Validate collects every field violation instead of stopping at the first,
// so the API can report them all in one 400 response.
func (e *Evento) Validate() []string {
	var details []string

	if e.Tipo == "" {
		details = append(details, "tipo es obligatorio")
	} else if !TipoValido(e.Tipo) {
		details = append(details, fmt.Sprintf("tipo debe ser uno de: %s", joinTipos()))
	}

	if strings.TrimSpace(e.Lugar) == "" {
		details = append(details, "lugar es obligatorio")
	} else if len(e.Lugar) > 255 {
		details = append(details, "lugar no puede superar 255 caracteres")
	}

	if strings.TrimSpace(e.PersonaAfectada) == "" {
		details = append(details, "persona_afectada es obligatorio")
	} else if len(e.PersonaAfectada) > 255 {
		details = append(details, "persona_afectada no puede superar 255 caracteres")
	}

	if strings.TrimSpace(e.Descripcion) == "" {
		details = append(details, "descripcion es obligatoria")
	}

	if e.Estado != "" && !EstadoValido(e.Estado) {
		details = append(details, fmt.Sprintf("estado debe ser uno de: %s", joinEstados()))
	}

	if e.Prioridad != "" && !PrioridadValida(e.Prioridad) {
		details = append(details, fmt.Sprintf("prioridad debe ser una de: %s", joinPrioridades()))
	}

	return details
}

func TipoValido(t TipoEvento) bool {
	for _, v := range tiposValidos {
		if t == v {
			return true
		}
	}
	return false
}

func EstadoValido(e EstadoEvento) bool {
	for _, v := range estadosValidos {
		if e == v {
			return true
		}
	}
	return false
}

func PrioridadValida(p PrioridadEvento) bool {
	for _, v := range prioridadesValidas {
		if p == v {
			return true
		}
	}
	return false
}

func joinTipos() string {
	parts := make([]string, len(tiposValidos))
	for i, v := range tiposValidos {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

func joinEstados() string {
	parts := make([]string, len(estadosValidos))
	for i, v := range estadosValidos {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

func joinPrioridades() string {
	parts := make([]string, len(prioridadesValidas))
	for i, v := range prioridadesValidas {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
