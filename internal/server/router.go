package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/dhruvmojila/memory-api/internal/handlers"
	"github.com/dhruvmojila/memory-api/internal/middleware"
)

type RouterConfig struct {
	AuthHandler    *handlers.AuthHandler
	MemoryHandler  *handlers.MemoryHandler
	QueryHandler   *handlers.QueryHandler
	GraphHandler   *handlers.GraphHandler
	AuthMiddleware *middleware.AuthMiddleware
	RateLimit      *middleware.RateLimitMiddleware
	AllowOrigins   []string
	ServiceName    string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware(cfg.ServiceName))

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost", "http://localhost:3000", "http://127.0.0.1:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
	}

	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	protected.Use(cfg.RateLimit.Limit())
	{
		protected.POST("/memory/text", cfg.MemoryHandler.AddText)
		protected.POST("/memory/upload", cfg.MemoryHandler.AddUpload)
		protected.POST("/query/rag", cfg.QueryHandler.QueryRAG)
		protected.GET("/graph", cfg.GraphHandler.ExportGraph)
	}

	return router
}
