package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"grievancedesk/backend/internal/api/handler"
	"grievancedesk/backend/internal/blobstore"
	"grievancedesk/backend/internal/config"
	"grievancedesk/backend/internal/livefeed"
	"grievancedesk/backend/internal/localization"
	"grievancedesk/backend/internal/logging"
	"grievancedesk/backend/internal/metrics"
	"grievancedesk/backend/internal/notify"
	"grievancedesk/backend/internal/reports"
	"grievancedesk/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(ctx context.Context, cfg *config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect PostgreSQL")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect Redis")
	}

	if err := storage.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	log.Info().Msg("database and redis connections established, migrations complete")
	return db, rdb
}

func setupNotifier(ctx context.Context, cfg *config.Config) notify.Notifier {
	if cfg.TelegramBotToken == "" || cfg.TelegramChatID == 0 {
		log.Info().Msg("telegram notifier disabled")
		return notify.Nop{}
	}
	tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID)
	if err != nil {
		log.Error().Err(err).Msg("telegram notifier disabled")
		return notify.Nop{}
	}
	go tg.Run(ctx)
	return tg
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("grievancedesk", "info", "console")
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Setup("grievancedesk", cfg.LogLevel, cfg.LogFormat)
	log.Info().Str("addr", cfg.HTTPAddr).Msg("starting grievancedesk backend")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, rdb := setupDependencies(ctx, cfg)
	defer rdb.Close()
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	var recorder *metrics.Recorder
	if cfg.MetricsEnabled {
		recorder = metrics.NewRecorder()
	}

	blobs := blobstore.NewFileStore(cfg.UploadDir, config.EvidenceBucket, cfg.PublicBaseURL)
	deps := reports.Deps{
		Storage: storage.NewStorageService(db, rdb),
		Blobs:   blobs,
		Metrics: recorder,
	}

	hub := livefeed.NewManagerService(deps)
	go hub.Run(ctx)

	auth := handler.NewAuthenticator(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	h := handler.NewHandler(deps, hub, auth, localization.Default(), setupNotifier(ctx, cfg))

	r := gin.New()
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = config.MultipartMemory
	if recorder != nil {
		r.Use(recorder.Middleware())
		r.GET("/metrics", recorder.Handler())
	}
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.Static("/files/"+config.EvidenceBucket, blobs.Dir())
	h.Routes(r)

	server := &http.Server{
		Addr:           cfg.HTTPAddr,
		Handler:        r,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}
	<-hub.Done()
	log.Info().Msg("stopped")
}
