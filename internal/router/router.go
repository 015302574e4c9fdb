package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/quizora/quizora-backend/internal/config"
	"github.com/quizora/quizora-backend/internal/handler"
	"github.com/quizora/quizora-backend/internal/middleware"
	"github.com/quizora/quizora-backend/internal/response"
	"github.com/quizora/quizora-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Client   *handler.ClientHandler
	Generate *handler.GenerateHandler
	Session  *handler.SessionHandler
	Credit   *handler.CreditHandler
	WS       *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	clients *service.ClientService,
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
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", "X-Ops-Secret"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	router.MaxMultipartMemory = cfg.MaxUploadBytes

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Registration is open but throttled per IP; everything else needs a
	// client token.
	registerLimiter := middleware.NewRateLimiter(10, time.Minute)

	clientAPI := router.Group("/api/v1/client")
	{
		clientAPI.POST("/register", registerLimiter.Middleware(), handlers.Client.Register)
		clientAPI.POST("/renew", middleware.RequireClientToken(clients), handlers.Client.Renew)
	}

	// Generation sits in front of a paid API; its limiter is deliberately
	// tighter than the quota so bursts hit 429 before burning credits.
	generateLimiter := middleware.NewRateLimiter(6, time.Minute)

	api := router.Group("/api/v1")
	api.Use(middleware.RequireClientToken(clients))
	{
		api.POST("/quiz/generate", generateLimiter.Middleware(), handlers.Generate.Generate)
		api.POST("/quiz/extract", generateLimiter.Middleware(), handlers.Generate.Extract)

		api.GET("/sessions", handlers.Session.List)
		api.GET("/sessions/current", handlers.Session.Current)
		api.POST("/sessions/answer", handlers.Session.Answer)
		api.GET("/sessions/:session_id", handlers.Session.Get)
		api.POST("/sessions/:session_id/select", handlers.Session.Select)
		api.POST("/sessions/:session_id/complete", handlers.Session.Complete)
		api.POST("/sessions/:session_id/reset", handlers.Session.Reset)
		api.POST("/sessions/:session_id/analyze", generateLimiter.Middleware(), handlers.Session.Analyze)
		api.DELETE("/sessions/:session_id", handlers.Session.Delete)

		api.GET("/credits", handlers.Credit.State)
		api.PUT("/credits/override", handlers.Credit.SetOverride)
		api.DELETE("/credits/override", handlers.Credit.ClearOverride)
		api.POST("/credits/reset", handlers.Credit.Reset)
	}

	// ─── WebSocket Group (token via query param) ───────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireClientWSAuth(clients))
	{
		ws.GET("/events", handlers.WS.EventStream)
	}

	return router
}
