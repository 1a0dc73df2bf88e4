package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/creatorhub/creatorhub-api/internal/config"
	"github.com/creatorhub/creatorhub-api/internal/domain/audience"
	"github.com/creatorhub/creatorhub-api/internal/domain/subscriberlist"
	"github.com/creatorhub/creatorhub-api/internal/domain/user"
	"github.com/creatorhub/creatorhub-api/internal/pkg/database"
	"github.com/creatorhub/creatorhub-api/internal/pkg/logger"
)

var workerPool = database.PoolConfig{
	MaxOpenConns:    5,
	MaxIdleConns:    2,
	ConnMaxLifetime: 5 * time.Minute,
	ConnMaxIdleTime: time.Minute,
}

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		LogFile:     cfg.LogFile,
	})

	log.Info().Str("schedule", cfg.ReconcileSchedule).Msg("Starting list-worker")

	db, err := database.NewPostgres(cfg.DatabaseURL, workerPool)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	userRepo := user.NewRepository(db)
	audienceService := audience.NewService(audience.NewRepository(db), userRepo)
	listService := subscriberlist.NewService(subscriberlist.NewRepository(db), audienceService, userRepo, cfg.CustomListLimit)
	reconciler := subscriberlist.NewReconciler(listService)

	scheduler := cron.New()
	if _, err := reconciler.Schedule(scheduler, cfg.ReconcileSchedule); err != nil {
		log.Fatal().Err(err).Msg("Invalid reconcile schedule")
	}

	// one pass at startup so counts are fresh after a deploy
	ctx, cancel := context.WithTimeout(context.Background(), subscriberlist.DefaultReconcileTimeout)
	if _, err := reconciler.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Initial reconcile failed")
	}
	cancel()

	scheduler.Start()
	log.Info().Msg("Reconcile job scheduled")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan
	log.Info().Msg("Shutdown signal received")

	// wait for a running pass to finish
	<-scheduler.Stop().Done()
	log.Info().Msg("list-worker stopped")
}
