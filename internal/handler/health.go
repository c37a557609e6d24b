package handler

import (
	"operator-console/internal/handler/response"

	"github.com/gin-gonic/gin"
)

// Version is stamped by the build.
var Version = "dev"

// HealthCheck reports liveness.
func HealthCheck(c *gin.Context) {
	response.Success(c, gin.H{
		"status":  "UP",
		"version": Version,
		"service": "operator-console",
	})
}
