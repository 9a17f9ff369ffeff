package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRootRoute registers the welcome and health routes. service names the
// process answering them.
func SetupRootRoute(router *gin.Engine, service string) {
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "MediLedger "+service)
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": service})
	})
}
