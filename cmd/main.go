package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"registro-accidentes/backend/broker"
	"registro-accidentes/backend/config"
	"registro-accidentes/backend/database"
	"registro-accidentes/backend/middleware"
	"registro-accidentes/backend/routes"
	"registro-accidentes/backend/services"
	"registro-accidentes/backend/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	db, err := database.Setup(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Storage mode is decided exactly once here; the services only ever see
	// the provider they were constructed with.
	var provider storage.Provider
	if cfg.CloudinaryConfigured() {
		cloudinaryProvider, err := storage.NewCloudinaryProvider(
			cfg.CloudinaryCloudName,
			cfg.CloudinaryAPIKey,
			cfg.CloudinaryAPISecret,
			cfg.CloudinaryFolder,
		)
		if err != nil {
			log.Printf("Warning: Cloudinary credentials rejected: %v", err)
		} else {
			provider = cloudinaryProvider
			log.Println("Remote asset storage configured, running in remote mode")
		}
	}
	if provider == nil {
		localProvider, err := storage.NewLocalProvider(cfg.UploadDir)
		if err != nil {
			log.Fatalf("Failed to initialize local storage: %v", err)
		}
		provider = localProvider
		log.Println("Remote asset storage not configured, running in local-fallback mode")
	}

	// The broker is optional: evento lifecycle events simply stop flowing
	// when NATS is unreachable.
	if err := broker.InitProducer(cfg.NatsURL); err != nil {
		log.Printf("Warning: Failed to initialize NATS producer: %v", err)
		log.Println("The application will continue, but evento lifecycle events will not be published")
	} else {
		defer broker.CloseProducer()
	}

	imagenService := services.NewImagenService(provider)
	eventoService := services.NewEventoService(imagenService)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		body := gin.H{"error": "Error interno del servidor"}
		if !cfg.IsProduction() {
			body["message"] = fmt.Sprintf("%v", recovered)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, body)
	}))
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	router.Static("/uploads", cfg.UploadDir)

	routes.RegisterEventoRoutes(router, db, eventoService, imagenService)
	routes.RegisterHealthRoutes(router)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ruta no encontrada"})
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-quit
		log.Println("Shutting down server...")
		broker.CloseProducer()
		os.Exit(0)
	}()

	log.Printf("API server is running on port %s", cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
