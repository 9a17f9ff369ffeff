package routes

import (
	"net/http"

	"MediLedger/config"
	"MediLedger/controllers"
	"MediLedger/handlers"
	"MediLedger/middlewares"
	"MediLedger/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Portal bundles the services the portal API exposes.
type Portal struct {
	Auth         *services.AuthService
	Appointments *services.AppointmentService
	Chat         *services.ChatService
}

// newRouter builds a gin engine with the middleware both servers share.
func newRouter(config *config.AppConfig, logger *zap.Logger) *gin.Engine {
	if config.Env == "development" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middlewares.LoggingMiddleware(logger))
	router.Use(middlewares.NewRateLimiterMiddleware(middlewares.RateLimiterConfig{
		RequestsPerSecond: config.RateLimit,
		Burst:             config.RateBurst,
	}))
	return router
}

// SetupPortalRoutes initializes the routes and middleware for the portal API
func SetupPortalRoutes(config *config.AppConfig, portal Portal, logger *zap.Logger) http.Handler {
	router := newRouter(config, logger)
	router.Use(middlewares.CorsMiddleware(middlewares.DefaultCorsConfig(config.AllowedOrigins)))

	tokenAuth := middlewares.TokenAuthMiddleware(portal.Auth)

	authController := controllers.NewAuthController(handlers.NewAuthHandler(portal.Auth, logger))
	authController.RegisterRoutes(router, tokenAuth)

	controllers.SetupPortalRoutes(
		router,
		tokenAuth,
		handlers.NewAppointmentHandler(portal.Appointments, logger),
		handlers.NewChatHandler(portal.Chat, portal.Appointments, logger),
	)

	controllers.SetupRootRoute(router, "portal")
	return router
}

// SetupNodeRoutes initializes the ledger node's RPC routes.
func SetupNodeRoutes(config *config.AppConfig, node handlers.Executor, logger *zap.Logger) http.Handler {
	router := newRouter(config, logger)

	controllers.SetupRPCRoutes(
		router,
		middlewares.ValidateBearerToken(config.GetBearerToken()),
		handlers.NewRPCHandler(node, logger),
	)

	controllers.SetupRootRoute(router, "node")
	return router
}
