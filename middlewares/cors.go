package middlewares

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// CorsConfig holds CORS configuration settings.
type CorsConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAgeSeconds    int
}

// DefaultCorsConfig is the portal's CORS policy for the given origins.
func DefaultCorsConfig(origins []string) *CorsConfig {
	return &CorsConfig{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAgeSeconds:    600,
	}
}

// CorsMiddleware creates a CORS middleware based on the provided configuration.
// Listed origins are echoed back and may send credentials. An origin of "*"
// answers with the wildcard, which browsers never combine with credentials.
func CorsMiddleware(config *CorsConfig) gin.HandlerFunc {
	methods := strings.Join(config.AllowedMethods, ", ")
	headers := strings.Join(config.AllowedHeaders, ", ")

	return func(c *gin.Context) {
		credentials := false
		if origin := c.GetHeader("Origin"); origin != "" {
			switch {
			case originListed(config.AllowedOrigins, origin):
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
				credentials = config.AllowCredentials
			case originListed(config.AllowedOrigins, "*"):
				c.Header("Access-Control-Allow-Origin", "*")
			}
		}

		c.Header("Access-Control-Allow-Methods", methods)
		c.Header("Access-Control-Allow-Headers", headers)
		if credentials {
			c.Header("Access-Control-Allow-Credentials", "true")
		}
		if config.MaxAgeSeconds > 0 {
			c.Header("Access-Control-Max-Age", strconv.Itoa(config.MaxAgeSeconds))
		}

		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "deny")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func originListed(allowed []string, origin string) bool {
	for _, item := range allowed {
		if strings.EqualFold(item, origin) {
			return true
		}
	}
	return false
}
