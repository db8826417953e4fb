package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segyhp/pawn-engine/internal/config"
	"github.com/segyhp/pawn-engine/internal/handler"
	"github.com/segyhp/pawn-engine/internal/repository"
	"github.com/segyhp/pawn-engine/internal/service"
	"github.com/segyhp/pawn-engine/pkg/logger"
	"github.com/segyhp/pawn-engine/pkg/response"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()
	zap.ReplaceGlobals(zl)

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		zl.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	if err := repository.Migrate(context.Background(), db); err != nil {
		zl.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Redis backs the settings cache when enabled; otherwise it lives in process
	var (
		redisClient *redis.Client
		cache       repository.Cache
	)
	if cfg.Redis.Enabled {
		redisClient = initRedis(cfg)
		defer redisClient.Close()
		cache = repository.NewRedisCache(redisClient)
	} else {
		cache = repository.NewMemoryCache()
	}

	// Initialize repositories
	loanRepo := repository.NewLoanRepository(db)
	txnRepo := repository.NewTransactionRepository(db)
	settingsRepo := repository.NewCachedSettingsRepository(repository.NewSettingsRepository(db), cache, cfg.Redis.CacheTTL)

	// Initialize service
	loanService := service.NewLoanService(loanRepo, txnRepo, settingsRepo, cfg, zl.Named("loan_service"))
	loanHandler := handler.NewLoanHandler(loanService)
	calculatorHandler := handler.NewCalculatorHandler(service.NewSettings(settingsRepo, cfg.GetPenaltyConfig()), cfg.GetDefaultInterestRate())
	healthHandler := handler.NewHealthHandler(db, redisClient, cfg.Health.Timeout)

	// Setup routes
	router := handler.NewRouter(loanHandler, calculatorHandler, healthHandler)
	router.Use(response.LoggingMiddleware(zl.Named("http")), response.CORSMiddleware)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		zl.Info("Server starting", zap.String("addr", server.Addr), zap.String("env", cfg.Server.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		zl.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	zl.Info("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}
