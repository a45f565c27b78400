package router

import (
	"github.com/gin-gonic/gin"

	"github.com/mzhuravlev/supplyhub-backend/internal/config"
	"github.com/mzhuravlev/supplyhub-backend/internal/http/handlers"
	"github.com/mzhuravlev/supplyhub-backend/internal/http/middleware"
	"github.com/mzhuravlev/supplyhub-backend/internal/service"
)

// SetupRouter собирает все маршруты приложения.
func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	requestHandler *handlers.RequestHandler,
	quotationHandler *handlers.QuotationHandler,
	notificationHandler *handlers.NotificationHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	api.GET("/ws", wsHandler.Handle)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/auth/me", authHandler.Me)

		protected.POST("/requests", requestHandler.CreateRequest)
		protected.GET("/requests", requestHandler.ListRequests)
		protected.GET("/requests/:id", middleware.UUIDValidator("id"), requestHandler.GetRequest)
		protected.PATCH("/requests/:id", middleware.UUIDValidator("id"), requestHandler.UpdateRequest)
		protected.DELETE("/requests/:id", middleware.UUIDValidator("id"), requestHandler.DeleteRequest)

		protected.POST("/requests/:id/quotations",
			middleware.UUIDValidator("id"), quotationHandler.CreateQuotation)
		protected.GET("/requests/:id/quotations",
			middleware.UUIDValidator("id"), quotationHandler.ListQuotations)
		protected.POST("/requests/:id/quotations/:quotationId/resolve",
			middleware.UUIDValidator("id", "quotationId"), quotationHandler.ResolveQuotation)

		protected.GET("/notifications", notificationHandler.List)
		protected.POST("/notifications/:id/read",
			middleware.UUIDValidator("id"), notificationHandler.MarkAsRead)
	}

	return r
}
