package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segyhp/pawn-engine/internal/config"
	"github.com/segyhp/pawn-engine/internal/repository"
	"github.com/segyhp/pawn-engine/internal/service"
	"github.com/segyhp/pawn-engine/pkg/logger"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// jobTimeout bounds a single run of any job.
const jobTimeout = 10 * time.Minute

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

	zl.Info("Starting loan status scheduler...")

	db, err := sqlx.Connect(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		zl.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)

	if err := repository.Migrate(context.Background(), db); err != nil {
		zl.Fatal("Failed to migrate database", zap.Error(err))
	}

	var cache repository.Cache = repository.NewMemoryCache()
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		cache = repository.NewRedisCache(client)
	}

	settings := repository.NewCachedSettingsRepository(repository.NewSettingsRepository(db), cache, cfg.Redis.CacheTTL)
	loanService := service.NewLoanService(
		repository.NewLoanRepository(db),
		repository.NewTransactionRepository(db),
		settings,
		cfg,
		zl.Named("loan_service"),
	)

	// Initialize cron scheduler
	loc := cfg.GetSchedulerLocation()
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)

	// Schedule tasks
	if err := setupCronJobs(c, cfg, loanService, cache, zl, loc); err != nil {
		zl.Fatal("Failed to schedule jobs", zap.Error(err))
	}

	// Start the scheduler
	c.Start()
	zl.Info("Scheduler started successfully", zap.String("spec", cfg.Scheduler.Spec), zap.String("timezone", loc.String()))

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("Shutting down scheduler...")
	<-c.Stop().Done()
	zl.Info("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, loans *service.LoanService, cache repository.Cache, zl *zap.Logger, loc *time.Location) error {
	// Daily job that stores MATURED/EXPIRED on loans past their dates
	_, err := c.AddFunc(cfg.Scheduler.Spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		asOf := time.Now().In(loc)
		zl.Info("Running loan status refresh", zap.Time("as_of", asOf))

		updated, err := loans.RefreshStatuses(ctx, asOf)
		if err != nil {
			zl.Error("Loan status refresh finished with errors", zap.Int("updated", updated), zap.Error(err))
			return
		}
		zl.Info("Loan status refresh finished", zap.Int("updated", updated))
	})
	if err != nil {
		return err
	}

	// An in-process cache belongs to this process only, so clearing it would
	// not reach the server. Only a shared redis cache is worth invalidating.
	if !cfg.Redis.Enabled {
		return nil
	}

	// Hourly job that drops cached settings so admin edits are picked up
	_, err = c.AddFunc("0 0 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if err := repository.InvalidateSettings(ctx, cache); err != nil {
			zl.Warn("Settings cache invalidation failed", zap.Error(err))
		}
	})
	return err
}
