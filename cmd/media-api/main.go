package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/media-editor/internal/api/handlers/media"
	"github.com/aliskhannn/media-editor/internal/api/handlers/preset"
	"github.com/aliskhannn/media-editor/internal/api/handlers/variant"
	"github.com/aliskhannn/media-editor/internal/api/router"
	"github.com/aliskhannn/media-editor/internal/api/server"
	presetcache "github.com/aliskhannn/media-editor/internal/cache/preset"
	"github.com/aliskhannn/media-editor/internal/config"
	"github.com/aliskhannn/media-editor/internal/infra/kafka/consumer"
	"github.com/aliskhannn/media-editor/internal/infra/kafka/producer"
	mediamsg "github.com/aliskhannn/media-editor/internal/kafka/handlers/media"
	eventrepo "github.com/aliskhannn/media-editor/internal/repository/event"
	mediarepo "github.com/aliskhannn/media-editor/internal/repository/media"
	presetrepo "github.com/aliskhannn/media-editor/internal/repository/preset"
	variantrepo "github.com/aliskhannn/media-editor/internal/repository/variant"
	mediasvc "github.com/aliskhannn/media-editor/internal/service/media"
	"github.com/aliskhannn/media-editor/internal/storage/file"
)

func main() {
	configPath := pflag.String("config", "./config/config.yml", "path to the config file")
	pflag.Parse()

	// Context & signals: used for graceful shutdown on system interrupts.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize logger and load application configuration.
	zlog.Init()
	cfg := config.MustLoad(*configPath)

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || level == zerolog.NoLevel {
		zlog.Logger.Warn().Str("level", cfg.Log.Level).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Connect to PostgreSQL (master and slaves).
	opts := &dbpg.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	slaveDSNs := make([]string, 0, len(cfg.Database.Slaves))
	for _, s := range cfg.Database.Slaves {
		slaveDSNs = append(slaveDSNs, s.DSN())
	}

	db, err := dbpg.New(cfg.Database.Master.DSN(), slaveDSNs, opts)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Retry strategy for Kafka and other external calls.
	strategy := retry.Strategy{
		Attempts: cfg.Retry.Attempts,
		Delay:    cfg.Retry.Delay,
		Backoff:  cfg.Retry.Backoff,
	}

	// Physical files live in MinIO.
	storage, err := file.NewStorage(ctx, cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.BucketName, cfg.Storage.UseSSL)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to storage")
	}

	// The preset catalog is cached in Redis.
	rdb, err := presetcache.NewClient(ctx, &cfg.Redis)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	cache := presetcache.New(rdb, cfg.Redis.PresetTTL)

	// Repositories, producer and the service layer.
	repos := mediasvc.Repositories{
		Media:    mediarepo.NewRepository(db),
		Variants: variantrepo.NewRepository(db),
		Presets:  presetrepo.NewRepository(db),
		Events:   eventrepo.NewRepository(db),
	}
	p := producer.New(&cfg.Kafka, strategy)
	service := mediasvc.NewService(repos, storage, cache, p)

	// Kafka consumer that writes media events to the audit log.
	c := consumer.New(&cfg.Kafka, strategy, mediamsg.NewEventHandler(service))

	var wg sync.WaitGroup
	wg.Add(1)
	go c.Consume(ctx, &wg)

	// Start HTTP server in a separate goroutine.
	r := router.Setup(router.Handlers{
		Media:    media.NewHandler(service, cfg.Upload.MaxBytes),
		Variants: variant.NewHandler(service),
		Presets:  preset.NewHandler(service),
	}, cfg.Server.AllowedOrigins)
	s := server.New(cfg.Server, r)
	go func() {
		zlog.Logger.Info().Str("addr", cfg.Server.HTTPPort).Msg("starting server")
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Block until context is canceled (SIGINT/SIGTERM).
	<-ctx.Done()
	zlog.Logger.Info().Msg("context done")

	// Graceful shutdown with timeout for HTTP server.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	zlog.Logger.Info().Msg("shutting down server")
	if err := s.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to shutdown server")
	}
	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		zlog.Logger.Info().Msg("timeout exceeded, forcing shutdown")
	}

	// Wait for Kafka consumer goroutine to finish.
	wg.Wait()

	if err := db.Master.Close(); err != nil {
		zlog.Logger.Printf("failed to close master DB: %v", err)
	}
	for i, s := range db.Slaves {
		if err := s.Close(); err != nil {
			zlog.Logger.Printf("failed to close slave DB %d: %v", i, err)
		}
	}

	if err := rdb.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close redis client")
	}

	if err = p.Client.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close kafka producer client")
	}
	if err = c.Client.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close kafka consumer client")
	}
}
