package routes

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"registro-accidentes/backend/database"
	"registro-accidentes/backend/models"
	"registro-accidentes/backend/services"
)

type MockEventoService struct{}

func (m *MockEventoService) GetAllEventos(db *database.Database) ([]models.Evento, error) {
	return []models.Evento{
		{ID: 2, Tipo: models.TipoIncidente, Lugar: "Almacén"},
		{ID: 1, Tipo: models.TipoAccidente, Lugar: "Planta 2"},
	}, nil
}

func (m *MockEventoService) GetEventoById(db *database.Database, id string) (models.Evento, error) {
	if id == "1" {
		return models.Evento{
			ID:                  1,
			Tipo:                models.TipoAccidente,
			Lugar:               "Planta 2",
			PersonaAfectada:     "Juan Pérez",
			Descripcion:         "Caída en escalera",
			ImagenesAdicionales: models.ListaImagenes{},
		}, nil
	}
	return models.Evento{}, services.ErrEventoNotFound
}

func (m *MockEventoService) CreateEvento(ctx context.Context, db *database.Database, eventoData map[string]string, file *multipart.FileHeader) (models.Evento, error) {
	if eventoData["tipo"] == "" {
		return models.Evento{}, &services.ValidationError{Details: []string{"tipo es obligatorio"}}
	}
	return models.Evento{ID: 10, Tipo: models.TipoEvento(eventoData["tipo"])}, nil
}

func (m *MockEventoService) UpdateEvento(ctx context.Context, db *database.Database, id string, eventoData map[string]string, file *multipart.FileHeader) (models.Evento, error) {
	if id != "1" {
		return models.Evento{}, services.ErrEventoNotFound
	}
	evento := models.Evento{ID: 1, Tipo: models.TipoAccidente, Lugar: "Planta 2"}
	if v := eventoData["lugar"]; v != "" {
		evento.Lugar = v
	}
	return evento, nil
}

func (m *MockEventoService) DeleteEvento(ctx context.Context, db *database.Database, id string) error {
	if id != "1" {
		return services.ErrEventoNotFound
	}
	return nil
}

func (m *MockEventoService) GetEstadisticas(db *database.Database) (services.Estadisticas, error) {
	return services.Estadisticas{
		Total: 3,
		PorTipo: []services.ConteoPorTipo{
			{Tipo: models.TipoAccidente, Cantidad: 2},
			{Tipo: models.TipoIncidente, Cantidad: 1},
		},
		PorEstado:    []services.ConteoPorEstado{{Estado: models.EstadoPendiente, Cantidad: 3}},
		PorPrioridad: []services.ConteoPorPrioridad{{Prioridad: models.PrioridadMedia, Cantidad: 3}},
	}, nil
}

type MockImagenService struct {
	RemovedPublicID string
}

func (m *MockImagenService) SetImagenPrincipal(ctx context.Context, evento *models.Evento, file *multipart.FileHeader) error {
	return nil
}

func (m *MockImagenService) AddImagenAdicional(ctx context.Context, db *database.Database, id string, file *multipart.FileHeader) (models.Evento, error) {
	if file == nil {
		return models.Evento{}, services.ErrInvalidInput
	}
	if id != "1" {
		return models.Evento{}, services.ErrEventoNotFound
	}
	return models.Evento{
		ID: 1,
		ImagenesAdicionales: models.ListaImagenes{
			{URL: "https://assets.example.com/eventos/a.jpg", PublicID: "eventos/a"},
		},
	}, nil
}

func (m *MockImagenService) RemoveImagen(ctx context.Context, db *database.Database, id string, publicID string) (models.Evento, error) {
	if id != "1" {
		return models.Evento{}, services.ErrEventoNotFound
	}
	m.RemovedPublicID = publicID
	return models.Evento{ID: 1, ImagenesAdicionales: models.ListaImagenes{}}, nil
}

func (m *MockImagenService) DeleteAllImagenes(ctx context.Context, evento *models.Evento) []services.DeleteResultado {
	return nil
}

func (m *MockImagenService) BuildImagenesOptimizadas(evento *models.Evento) services.ImagenesOptimizadas {
	return services.ImagenesOptimizadas{
		ImagenPrincipal: &services.ImagenOptimizada{
			URL:      "https://assets.example.com/t_optimizada/eventos/principal",
			PublicID: "eventos/principal",
		},
		ImagenesAdicionales: []services.ImagenOptimizada{},
	}
}

func setupRouter(imagenService services.ImagenServiceInterface) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	db := &database.Database{}
	RegisterEventoRoutes(router, db, &MockEventoService{}, imagenService)
	RegisterHealthRoutes(router)
	return router
}

func multipartBody(t *testing.T, fields map[string]string, fileField, filename string) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		assert.NoError(t, writer.WriteField(key, value))
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, filename)
		assert.NoError(t, err)
		_, err = part.Write([]byte("contenido de imagen de prueba"))
		assert.NoError(t, err)
	}
	assert.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestGetEventos(t *testing.T) {
	router := setupRouter(&MockImagenService{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/eventos", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Planta 2")
	assert.Contains(t, w.Body.String(), "Almacén")
}

func TestGetEventoById(t *testing.T) {
	router := setupRouter(&MockImagenService{})

	t.Run("Evento Found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/eventos/1", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Juan Pérez")
	})

	t.Run("Evento Not Found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/eventos/99", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Evento no encontrado")
	})
}

func TestGetEstadisticas(t *testing.T) {
	router := setupRouter(&MockImagenService{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/eventos/estadisticas", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":3`)
	assert.Contains(t, w.Body.String(), "porTipo")
	assert.Contains(t, w.Body.String(), "porEstado")
	assert.Contains(t, w.Body.String(), "porPrioridad")
}

func TestCreateEvento(t *testing.T) {
	router := setupRouter(&MockImagenService{})

	t.Run("Valid Multipart", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string]string{
			"tipo":             "accidente",
			"lugar":            "Planta 2",
			"persona_afectada": "Juan Pérez",
			"descripcion":      "Caída en escalera",
		}, "evidencia", "foto.jpg")

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/eventos", body)
		req.Header.Set("Content-Type", contentType)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "Evento creado exitosamente")
	})

	t.Run("Validation Failure", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string]string{"lugar": "Planta 2"}, "", "")

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/eventos", body)
		req.Header.Set("Content-Type", contentType)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Datos inválidos")
		assert.Contains(t, w.Body.String(), "details")
	})
}

func TestUpdateEvento(t *testing.T) {
	router := setupRouter(&MockImagenService{})

	t.Run("JSON Patch", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/api/eventos/1", bytes.NewBufferString(`{"lugar":"Taller"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Evento actualizado exitosamente")
		assert.Contains(t, w.Body.String(), "Taller")
	})

	t.Run("Multipart Patch", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string]string{"lugar": "Taller"}, "evidencia", "nueva.jpg")

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/api/eventos/1", body)
		req.Header.Set("Content-Type", contentType)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Evento Not Found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/api/eventos/99", bytes.NewBufferString(`{"lugar":"Taller"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteEvento(t *testing.T) {
	router := setupRouter(&MockImagenService{})

	t.Run("Evento Deleted", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/api/eventos/1", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Evento eliminado exitosamente")
	})

	t.Run("Evento Not Found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/api/eventos/99", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAddImagenAdicional(t *testing.T) {
	router := setupRouter(&MockImagenService{})

	t.Run("Imagen Added", func(t *testing.T) {
		body, contentType := multipartBody(t, nil, "imagen", "adicional.jpg")

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/eventos/1/imagenes", body)
		req.Header.Set("Content-Type", contentType)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "imagenes_adicionales")
	})

	t.Run("Missing File", func(t *testing.T) {
		body, contentType := multipartBody(t, nil, "", "")

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/eventos/1/imagenes", body)
		req.Header.Set("Content-Type", contentType)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Evento Not Found", func(t *testing.T) {
		body, contentType := multipartBody(t, nil, "imagen", "adicional.jpg")

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/eventos/99/imagenes", body)
		req.Header.Set("Content-Type", contentType)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRemoveImagen(t *testing.T) {
	imagenService := &MockImagenService{}
	router := setupRouter(imagenService)

	w := httptest.NewRecorder()
	// Cloudinary public ids contain slashes; the catch-all must capture them.
	req, _ := http.NewRequest("DELETE", "/api/eventos/1/imagenes/eventos/img-1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Imagen eliminada exitosamente")
	assert.Equal(t, "eventos/img-1", imagenService.RemovedPublicID)
}

func TestGetImagenesOptimizadas(t *testing.T) {
	router := setupRouter(&MockImagenService{})

	t.Run("Evento Found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/eventos/1/imagenes-optimizadas", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "t_optimizada")
	})

	t.Run("Evento Not Found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/eventos/99/imagenes-optimizadas", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHealthCheck(t *testing.T) {
	router := setupRouter(&MockImagenService{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "OK")
	assert.Contains(t, w.Body.String(), "Servidor funcionando correctamente")
}
