package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"talkseed/config"
	"talkseed/internal/cooldown"
	"talkseed/internal/handler"
	"talkseed/internal/repository"
	"talkseed/internal/session"
	"talkseed/internal/topic"
	"talkseed/traits/database"
	"talkseed/traits/logger"

	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	zapLogger, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}
	defer zapLogger.Sync()

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		zapLogger.Error("error init config", zap.Error(err))
		return
	}

	// Validate configuration
	if err := cfg.ValidateConfig(); err != nil {
		zapLogger.Error("invalid configuration", zap.Error(err))
		return
	}

	zapLogger.Info("Starting talkseed application",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port),
		zap.String("db_name", cfg.DBName),
	)

	// Initialize database
	db, err := database.InitDatabase(cfg, zapLogger)
	if err != nil {
		zapLogger.Error("failed to initialize database", zap.Error(err))
		return
	}
	defer db.Close()

	// Create database tables
	if err := database.CreateTables(db, zapLogger); err != nil {
		zapLogger.Error("failed to create tables", zap.Error(err))
		return
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, zapLogger)
	profileRepo := repository.NewProfileRepository(db, zapLogger, cfg.MaxProfileBytes)
	counterRepo := repository.NewCounterRepository(db, zapLogger)

	// Set up signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Pick the cooldown limiter: Redis when configured and reachable,
	// otherwise the single-instance in-memory map.
	var limiter cooldown.Limiter
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			zapLogger.Warn("redis unavailable, falling back to in-memory cooldown", zap.Error(err))
			client.Close()
			mem := cooldown.NewMemory(cfg.CooldownWindow)
			mem.StartPurgeLoop(ctx)
			limiter = mem
		} else {
			defer client.Close()
			limiter = cooldown.NewRedis(client, cfg.CooldownWindow)
		}
	} else {
		mem := cooldown.NewMemory(cfg.CooldownWindow)
		mem.StartPurgeLoop(ctx)
		limiter = mem
	}

	// Session tickets and topic generation
	tickets := session.NewTicketer(cfg.SessionSecret, cfg.SessionMaxAge)
	generator := topic.NewGeminiClient(cfg, zapLogger)

	// Create handler with repositories
	handl := handler.NewHandler(cfg, zapLogger, db, userRepo, profileRepo, counterRepo, tickets, limiter, generator)

	// Set up graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		<-stop
		zapLogger.Info("Shutdown signal received")
		cancel()
	}()

	// Start web server (blocks until ctx is canceled)
	handl.StartWebServer(ctx)

	zapLogger.Info("Application stopped successfully")
}
