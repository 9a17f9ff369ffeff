package controllers

import (
	"MediLedger/handlers"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Handler *handlers.AuthHandler
}

// NewAuthController creates a new AuthController with the given AuthHandler
func NewAuthController(authHandler *handlers.AuthHandler) *AuthController {
	return &AuthController{
		Handler: authHandler,
	}
}

// RegisterRoutes initializes the authentication routes. tokenAuth guards
// the routes that need a session.
func (ac *AuthController) RegisterRoutes(router *gin.Engine, tokenAuth gin.HandlerFunc) {
	// Public routes: No authentication required
	router.POST("/auth/patients/register", ac.Handler.RegisterPatient)
	router.POST("/auth/doctors/register", ac.Handler.RegisterDoctor)
	router.POST("/auth/login", ac.Handler.Login)
	router.POST("/auth/refresh-token", ac.Handler.RefreshToken)

	// Protected routes: Requires a valid token
	authGroup := router.Group("/auth").Use(tokenAuth)
	{
		authGroup.GET("/profile", ac.Handler.Profile)
		authGroup.POST("/logoff", ac.Handler.Logoff)
	}
}
