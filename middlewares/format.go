package middlewares

import (
	"net/http"

	"MediLedger/apperrors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RespondJSON writes a JSON response to the client.
func RespondJSON(c *gin.Context, data interface{}, status int) {
	c.JSON(status, data)
}

// HttpError logs err and answers with the status its kind maps to. Internal
// errors are not echoed to the client.
func HttpError(c *gin.Context, logger *zap.Logger, err error) {
	status := apperrors.HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		message = "internal server error"
	} else {
		logger.Debug("request refused", zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// BadRequest answers a request whose body could not be bound.
func BadRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
}
