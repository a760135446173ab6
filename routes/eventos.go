package routes

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"registro-accidentes/backend/database"
	"registro-accidentes/backend/services"
)

// eventoFields are the patchable form fields of an evento.
var eventoFields = []string{"fecha", "tipo", "lugar", "persona_afectada", "descripcion", "estado", "prioridad"}

func RegisterEventoRoutes(router *gin.Engine, db *database.Database, eventoService services.EventoServiceInterface, imagenService services.ImagenServiceInterface) {
	group := router.Group("/api/eventos")
	{
		group.GET("", func(c *gin.Context) { GetEventos(c, db, eventoService) })
		// Gin's tree cannot hold a static /estadisticas next to /:id, so the
		// :id handler dispatches the statistics path itself.
		group.GET("/:id", func(c *gin.Context) {
			if c.Param("id") == "estadisticas" {
				GetEstadisticas(c, db, eventoService)
				return
			}
			GetEventoById(c, db, eventoService)
		})
		group.GET("/:id/imagenes-optimizadas", func(c *gin.Context) { GetImagenesOptimizadas(c, db, eventoService, imagenService) })
		group.POST("", func(c *gin.Context) { CreateEvento(c, db, eventoService) })
		group.PUT("/:id", func(c *gin.Context) { UpdateEvento(c, db, eventoService) })
		group.POST("/:id/imagenes", func(c *gin.Context) { AddImagenAdicional(c, db, imagenService) })
		// Catch-all so Cloudinary public IDs containing slashes still match.
		group.DELETE("/:id/imagenes/*publicId", func(c *gin.Context) { RemoveImagen(c, db, imagenService) })
		group.DELETE("/:id", func(c *gin.Context) { DeleteEvento(c, db, eventoService) })
	}
}

func GetEventos(c *gin.Context, db *database.Database, eventoService services.EventoServiceInterface) {
	eventos, err := eventoService.GetAllEventos(db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno del servidor"})
		return
	}
	c.JSON(http.StatusOK, eventos)
}

func GetEventoById(c *gin.Context, db *database.Database, eventoService services.EventoServiceInterface) {
	evento, err := eventoService.GetEventoById(db, c.Param("id"))
	if err != nil {
		respondEventoError(c, err)
		return
	}
	c.JSON(http.StatusOK, evento)
}

func CreateEvento(c *gin.Context, db *database.Database, eventoService services.EventoServiceInterface) {
	eventoData := eventoFormData(c)
	file := optionalFile(c, "evidencia")

	evento, err := eventoService.CreateEvento(c.Request.Context(), db, eventoData, file)
	if err != nil {
		respondEventoError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":      evento.ID,
		"message": "Evento creado exitosamente",
	})
}

func UpdateEvento(c *gin.Context, db *database.Database, eventoService services.EventoServiceInterface) {
	eventoData := eventoFormData(c)
	file := optionalFile(c, "evidencia")

	evento, err := eventoService.UpdateEvento(c.Request.Context(), db, c.Param("id"), eventoData, file)
	if err != nil {
		respondEventoError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Evento actualizado exitosamente",
		"evento":  evento,
	})
}

func DeleteEvento(c *gin.Context, db *database.Database, eventoService services.EventoServiceInterface) {
	if err := eventoService.DeleteEvento(c.Request.Context(), db, c.Param("id")); err != nil {
		respondEventoError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Evento eliminado exitosamente"})
}

func GetEstadisticas(c *gin.Context, db *database.Database, eventoService services.EventoServiceInterface) {
	estadisticas, err := eventoService.GetEstadisticas(db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno del servidor"})
		return
	}
	c.JSON(http.StatusOK, estadisticas)
}

func AddImagenAdicional(c *gin.Context, db *database.Database, imagenService services.ImagenServiceInterface) {
	file := optionalFile(c, "imagen")

	evento, err := imagenService.AddImagenAdicional(c.Request.Context(), db, c.Param("id"), file)
	if err != nil {
		respondEventoError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":              "Imagen agregada exitosamente",
		"imagenes_adicionales": evento.ImagenesAdicionales,
	})
}

func RemoveImagen(c *gin.Context, db *database.Database, imagenService services.ImagenServiceInterface) {
	publicID := strings.TrimPrefix(c.Param("publicId"), "/")

	evento, err := imagenService.RemoveImagen(c.Request.Context(), db, c.Param("id"), publicID)
	if err != nil {
		respondEventoError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":              "Imagen eliminada exitosamente",
		"imagenes_adicionales": evento.ImagenesAdicionales,
	})
}

func GetImagenesOptimizadas(c *gin.Context, db *database.Database, eventoService services.EventoServiceInterface, imagenService services.ImagenServiceInterface) {
	evento, err := eventoService.GetEventoById(db, c.Param("id"))
	if err != nil {
		respondEventoError(c, err)
		return
	}
	c.JSON(http.StatusOK, imagenService.BuildImagenesOptimizadas(&evento))
}

// eventoFormData collects the evento fields from either a multipart/
// urlencoded form or a JSON body. Fields absent from the request are absent
// from the map, which is what makes the merge-patch update work.
func eventoFormData(c *gin.Context) map[string]string {
	data := make(map[string]string, len(eventoFields))

	if strings.HasPrefix(c.ContentType(), "application/json") {
		var body map[string]interface{}
		if err := c.ShouldBindJSON(&body); err != nil {
			return data
		}
		for _, field := range eventoFields {
			if value, ok := body[field].(string); ok {
				data[field] = value
			}
		}
		return data
	}

	for _, field := range eventoFields {
		if value, ok := c.GetPostForm(field); ok {
			data[field] = value
		}
	}
	return data
}

// optionalFile returns the uploaded file for the field, or nil when the
// request carried none.
func optionalFile(c *gin.Context, field string) *multipart.FileHeader {
	file, err := c.FormFile(field)
	if err != nil {
		return nil
	}
	return file
}

func respondEventoError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrEventoNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Evento no encontrado"})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos inválidos", "details": validationErr.Details})
	case errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos inválidos", "details": []string{"se requiere un archivo de imagen"}})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno del servidor"})
	}
}
