package handlers

import (
	"net/http"

	"MediLedger/middlewares"
	"MediLedger/models"
	"MediLedger/services"
	"MediLedger/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	service *services.AuthService
	logger  *zap.Logger
}

func NewAuthHandler(service *services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: logger}
}

// RegisterPatient handles patient registration and answers with the
// assigned patient id.
func (h *AuthHandler) RegisterPatient(c *gin.Context) {
	var form models.PatientRegistration
	if err := c.ShouldBindJSON(&form); err != nil {
		middlewares.BadRequest(c, err)
		return
	}

	id, err := h.service.RegisterPatient(c.Request.Context(), form)
	if err != nil {
		middlewares.HttpError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// RegisterDoctor handles doctor registration.
func (h *AuthHandler) RegisterDoctor(c *gin.Context) {
	var form models.DoctorRegistration
	if err := c.ShouldBindJSON(&form); err != nil {
		middlewares.BadRequest(c, err)
		return
	}

	id, err := h.service.RegisterDoctor(c.Request.Context(), form)
	if err != nil {
		middlewares.HttpError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// Login authenticates against the ledger and returns tokens along with the
// user's profile. The tokens are also set as cookies.
func (h *AuthHandler) Login(c *gin.Context) {
	var credentials struct {
		Role     models.Role `json:"role"`
		ID       string      `json:"id"`
		Password string      `json:"password"`
	}
	if err := c.ShouldBindJSON(&credentials); err != nil {
		middlewares.BadRequest(c, err)
		return
	}

	session, err := h.service.Login(c.Request.Context(), credentials.Role, credentials.ID, credentials.Password)
	if err != nil {
		middlewares.HttpError(c, h.logger, err)
		return
	}
	utils.SetAuthCookies(c, session.AccessToken, session.RefreshToken)
	c.JSON(http.StatusOK, session)
}

// RefreshToken issues a new access token from a refresh token sent in the
// body or the refresh cookie.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = c.ShouldBindJSON(&body)

	token := utils.RefreshTokenFrom(c, body.RefreshToken)
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refresh token is required"})
		return
	}

	accessToken, err := h.service.Refresh(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessToken": accessToken})
}

// Profile returns the identity of the token holder.
func (h *AuthHandler) Profile(c *gin.Context) {
	identity, ok := middlewares.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}
	c.JSON(http.StatusOK, identity)
}

// Logoff clears the auth cookies.
func (h *AuthHandler) Logoff(c *gin.Context) {
	utils.ClearAuthCookies(c)
	c.Status(http.StatusOK)
}
