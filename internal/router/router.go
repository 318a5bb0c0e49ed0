package router

import (
	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/tareq-s/feedcraft/backend/internal/handlers"
	"github.com/tareq-s/feedcraft/backend/internal/middleware"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
}

// SetupRoutes wires the handlers into the route tree. All /api/v1 routes
// require a verified Firebase ID token.
func SetupRoutes(
	e *echo.Echo,
	firebaseAuthClient *auth.Client,
	recommendationHandler *handlers.RecommendationHandler,
	interactionHandler *handlers.InteractionHandler,
) {
	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	api := e.Group("/api/v1")
	api.Use(middleware.FirebaseAuthMiddleware(firebaseAuthClient))

	recommendationHandler.RegisterRecommendationRoutes(api)
	interactionHandler.RegisterInteractionRoutes(api)
}
