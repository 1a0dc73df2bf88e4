package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/creatorhub/creatorhub-api/internal/config"
	"github.com/creatorhub/creatorhub-api/internal/domain/audience"
	"github.com/creatorhub/creatorhub-api/internal/domain/message"
	"github.com/creatorhub/creatorhub-api/internal/domain/subscriberlist"
	"github.com/creatorhub/creatorhub-api/internal/domain/user"
	"github.com/creatorhub/creatorhub-api/internal/middleware"
	"github.com/creatorhub/creatorhub-api/internal/pkg/database"
	"github.com/creatorhub/creatorhub-api/internal/pkg/jwt"
	"github.com/creatorhub/creatorhub-api/internal/pkg/logger"
	"github.com/creatorhub/creatorhub-api/internal/pkg/metrics"
	pkgresponse "github.com/creatorhub/creatorhub-api/internal/pkg/response"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		LogFile:     cfg.LogFile,
	})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting CreatorHub list API")

	if cfg.AutoMigrate {
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
	}

	db, err := database.NewPostgres(cfg.DatabaseURL, database.DefaultPool)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	messageRepo := message.NewRepository(db)
	audienceRepo := audience.NewRepository(db)
	listRepo := subscriberlist.NewRepository(db)

	// ---------- Services ----------
	messageService := message.NewService(messageRepo, message.NewRedisPublisher(redis))
	audienceService := audience.NewService(audienceRepo, userRepo)
	listService := subscriberlist.NewService(listRepo, audienceService, userRepo, cfg.CustomListLimit)
	bulkLimiter := middleware.NewRateLimiter(redis, "bulk_send", cfg.BulkSendPerHour, time.Hour)
	dispatcher := subscriberlist.NewDispatcher(listService, messageService, cfg.BulkSendWorkers).
		WithSendGate(bulkLimiter)

	// ---------- Handlers ----------
	listHandler := subscriberlist.NewHandler(listService, dispatcher)

	r := newRouter(cfg, routerDeps{
		auth:  middleware.Auth(jwtService),
		lists: listHandler,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

type routerDeps struct {
	auth  func(http.Handler) http.Handler
	lists *subscriberlist.Handler
}

func newRouter(cfg *config.Config, deps routerDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(chimw.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			pkgresponse.OK(w, map[string]string{"message": "pong"})
		})

		r.Mount("/lists", deps.lists.Routes(deps.auth))
	})

	return r
}
