package handlers

import (
	"net/http"

	"github.com/go-authgate/accountgate/internal/version"

	"github.com/gin-gonic/gin"
)

// Health reports liveness and build version
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": version.String(),
	})
}
