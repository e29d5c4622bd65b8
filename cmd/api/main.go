// Command api runs the voxgate text-to-speech gateway.
//
// @title                      voxgate TTS gateway
// @version                    1.0
// @description                Quota-gated text-to-speech proxy with optional emotional SSML enrichment.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/voxgate/tts-gateway/internal/api"
	"github.com/voxgate/tts-gateway/internal/api/handler"
	"github.com/voxgate/tts-gateway/internal/core/domain"
	"github.com/voxgate/tts-gateway/internal/core/ports"
	"github.com/voxgate/tts-gateway/internal/core/service"
	"github.com/voxgate/tts-gateway/internal/infrastructure/config"
	mongodb "github.com/voxgate/tts-gateway/internal/infrastructure/db/mongo"
	redisdb "github.com/voxgate/tts-gateway/internal/infrastructure/db/redis"
	"github.com/voxgate/tts-gateway/internal/infrastructure/provider/gemini"
	"github.com/voxgate/tts-gateway/internal/infrastructure/provider/googletts"
	"github.com/voxgate/tts-gateway/internal/infrastructure/queue"
	"github.com/voxgate/tts-gateway/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "tts-gateway",
	})
	loc, _ := cfg.Location()
	clock := func() time.Time { return time.Now().In(loc) }

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect mongodb")
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect redis")
	}
	defer rdb.Close()

	userRepo := mongodb.NewUserRepository(db)
	usageRepo := mongodb.NewUsageRepository(db)
	plans := domain.DefaultPlanCatalog()

	// --- Audit trail ---
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers,
		service.NewEventService(mongodb.NewEventRepository(db), logger.Component("audit")),
		logger.Component("audit"))
	dispatcher.Start(workerCtx)

	// --- Providers ---
	var enricher ports.Enricher
	if cfg.Gemini.APIKey != "" {
		enricher = service.NewCachedEnricher(
			gemini.New(cfg.Gemini.APIKey,
				gemini.WithModel(cfg.Gemini.Model),
				gemini.WithBaseURL(cfg.Gemini.BaseURL),
				gemini.WithTimeout(cfg.Gemini.Timeout),
			),
			redisdb.NewMarkupCache(rdb, cfg.Redis.CacheTTL),
			logger.Component("enrichment"),
		)
	} else if cfg.Gemini.Enabled {
		log.Warn().Msg("GEMINI_API_KEY not set, mood-less requests use a plain <speak> envelope")
	}
	synth := googletts.New(cfg.TTS.APIKey,
		googletts.WithBaseURL(cfg.TTS.BaseURL),
		googletts.WithTimeout(cfg.TTS.Timeout),
	)

	// --- Services ---
	gate := service.NewGatekeeper(userRepo, usageRepo, plans, clock, logger.Component("gatekeeper"))
	speech := service.NewSpeechService(gate, enricher, synth, dispatcher, service.SpeechOptions{
		EnrichmentEnabled: cfg.Gemini.Enabled,
		DefaultVoice:      cfg.TTS.DefaultVoice,
	}, logger.Component("speech"))
	users := service.NewUserService(userRepo, usageRepo, plans, clock, logger.Component("users"))

	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET not set, /verify-purchase is unauthenticated")
	}

	e := api.NewRouter(api.RouterConfig{
		Users:  users,
		Speech: speech,
		Readiness: map[string]handler.Pinger{
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, readpref.Primary()) },
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		JWTSecret:  cfg.JWTSecret,
		Logger:     logger.Component("http"),
		Registerer: prometheus.DefaultRegisterer,
		Gatherer:   prometheus.DefaultGatherer,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("API listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shutdown server")
	}
	// In-flight requests are done; flush queued audit events before closing storage.
	dispatcher.Stop()
	log.Info().Msg("server stopped")
}
