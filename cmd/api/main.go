package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"mentor-api/internal/config"
	"mentor-api/internal/database"
	"mentor-api/internal/gemini"
	"mentor-api/internal/handlers"
	appmetrics "mentor-api/internal/metrics"
	"mentor-api/internal/middleware/ratelimit"
	"mentor-api/internal/prompt"
	"mentor-api/internal/services"
	"mentor-api/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize the store
	var (
		st store.Store
		db *sql.DB
	)
	switch cfg.StoreBackend {
	case "memory":
		log.Warn("using in-memory store, data will not survive a restart")
		st = store.NewMemoryStore()
	default:
		db, err = database.NewConnection(cfg.DSN())
		if err != nil {
			log.Error("failed to connect to database", "host", cfg.DBHost, "error", err)
			os.Exit(1)
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := database.RunMigrations(ctx, db); err != nil {
			cancel()
			log.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		cancel()
		st = store.NewPostgresStore(db)
	}

	// Initialize Redis (optional)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisConnection(cfg.RedisURL)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
	}

	// Initialize services
	model := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiURL, cfg.GeminiModel, cfg.ModelTimeout)
	assembler := prompt.NewAssembler(prompt.Mode(cfg.PromptMode), cfg.HistoryWindow, cfg.Persona)
	userService := services.NewUserService(st)
	checkInService := services.NewCheckInService(st)
	chatService := services.NewChatService(st, model, assembler, cfg.HistoryWindow, cfg.ModelTimeout, log)
	rateLimiter := ratelimit.NewRateLimiter(cfg.RateLimit)

	// Metrics
	registry := prometheus.NewRegistry()
	appmetrics.MustRegister(registry)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Initialize handlers
	h := handlers.NewHandler(userService, checkInService, chatService, rateLimiter, db, redisClient)

	// Routes
	e.GET("/health", h.HealthCheck)
	e.POST("/user/create", h.CreateUser)
	e.POST("/chat", h.Chat)
	e.GET("/chat/history/:user_id", h.ChatHistory)
	e.GET("/stats/:user_id", h.GetStats)
	e.POST("/checkin", h.CheckIn)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Start server
	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()
	log.Info("server started", "port", cfg.ServerPort, "store", cfg.StoreBackend, "prompt_mode", cfg.PromptMode)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server exited")
}
