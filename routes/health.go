package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RegisterHealthRoutes exposes the liveness probe.
func RegisterHealthRoutes(router *gin.Engine) {
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",
			"message":   "Servidor funcionando correctamente",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})
}
