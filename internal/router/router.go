package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prepstack/prepcore-backend/internal/config"
	"github.com/prepstack/prepcore-backend/internal/handler"
	"github.com/prepstack/prepcore-backend/internal/middleware"
	"github.com/prepstack/prepcore-backend/internal/response"
	"github.com/prepstack/prepcore-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Test        *handler.TestHandler
	Result      *handler.ResultHandler
	AdminResult *handler.AdminResultHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for submissions (30 per minute per IP).
	submitLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. User Group (JWT) ───────────────────────────────────────────
	userAPI := router.Group("/api/v1")
	userAPI.Use(middleware.RequireUserJWT(authService))
	{
		userAPI.POST("/tests/submit", submitLimiter.Middleware(), handlers.Test.SubmitTest)

		userAPI.GET("/results", handlers.Result.ListResults)
		userAPI.PUT("/results/:id", handlers.Result.UpdateResult)
		userAPI.DELETE("/results/:id", handlers.Result.DeleteResult)
	}

	// ─── 2. Admin Group (JWT) ──────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		adminAPI.POST("/results/manual", handlers.AdminResult.AddManualResult)
	}

	return router
}
