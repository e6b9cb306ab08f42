package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler serves GET / (§4.10): an unauthenticated liveness probe
// reporting the configured environment name.
type HealthHandler struct {
	environment string
}

func NewHealthHandler(environment string) *HealthHandler {
	return &HealthHandler{environment: environment}
}

func (h *HealthHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"environment": h.environment,
	})
}
