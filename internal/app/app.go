package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/dhruvmojila/memory-api/internal/db"
	"github.com/dhruvmojila/memory-api/internal/graphengine"
	"github.com/dhruvmojila/memory-api/internal/handlers"
	"github.com/dhruvmojila/memory-api/internal/middleware"
	"github.com/dhruvmojila/memory-api/internal/observability"
	"github.com/dhruvmojila/memory-api/internal/platform/groq"
	"github.com/dhruvmojila/memory-api/internal/platform/logger"
	"github.com/dhruvmojila/memory-api/internal/platform/redisdb"
	"github.com/dhruvmojila/memory-api/internal/repos"
	"github.com/dhruvmojila/memory-api/internal/server"
	"github.com/dhruvmojila/memory-api/internal/services"
)

const serviceName = "memory-api"

// App holds the process-scoped collaborators: one graph engine and one LLM
// client shared by every request, injected into the services that need them.
type App struct {
	Log    *logger.Logger
	Cfg    Config
	Router *gin.Engine
	Engine graphengine.Engine

	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg := LoadConfig()
	log.Info("configuration loaded", "env", cfg.Environment)

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: cfg.Environment,
	})

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	llmClient, err := groq.NewClient(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init llm client: %w", err)
	}

	engine, err := graphengine.FromEnv(log, llmClient)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init graph engine: %w", err)
	}

	redisClient, err := redisdb.NewFromEnv(log)
	if err != nil {
		log.Warn("redis init failed, rate limiting disabled", "error", err)
	}

	userRepo := repos.NewUserRepo(theDB, log)

	authService := services.NewAuthService(theDB, log, userRepo, cfg.JWTSecretKey, cfg.AccessTokenTTL)
	memoryService := services.NewMemoryService(engine, log)
	ragService := services.NewRAGService(llmClient, log)
	graphService := services.NewGraphService(engine, log)

	router := server.NewRouter(server.RouterConfig{
		AuthHandler:    handlers.NewAuthHandler(authService),
		MemoryHandler:  handlers.NewMemoryHandler(log, memoryService),
		QueryHandler:   handlers.NewQueryHandler(log, memoryService, ragService),
		GraphHandler:   handlers.NewGraphHandler(log, graphService),
		AuthMiddleware: middleware.NewAuthMiddleware(log, authService),
		RateLimit:      middleware.NewRateLimitMiddleware(log, redisClient, cfg.RateLimit, cfg.RateLimitWindow),
		AllowOrigins:   cfg.AllowOrigins,
		ServiceName:    serviceName,
	})

	return &App{
		Log:          log,
		Cfg:          cfg,
		Router:       router,
		Engine:       engine,
		otelShutdown: otelShutdown,
	}, nil
}

func (a *App) Run() error {
	addr := ":" + a.Cfg.Port
	a.Log.Info("server listening", "addr", addr)
	return a.Router.Run(addr)
}

func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.Engine != nil {
		if err := a.Engine.Close(ctx); err != nil {
			a.Log.Warn("graph engine close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
