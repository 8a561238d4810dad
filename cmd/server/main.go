package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/channeldash/channel-ingestion-go/internal/config"
	"github.com/channeldash/channel-ingestion-go/internal/handler"
	"github.com/channeldash/channel-ingestion-go/internal/middleware"
	"github.com/channeldash/channel-ingestion-go/internal/service"
	"github.com/channeldash/channel-ingestion-go/internal/service/cache"
	"github.com/channeldash/channel-ingestion-go/internal/service/ratelimit"
	"github.com/channeldash/channel-ingestion-go/internal/service/youtube"
	"github.com/channeldash/channel-ingestion-go/internal/storage"
	"github.com/channeldash/channel-ingestion-go/internal/validation"
	"github.com/channeldash/channel-ingestion-go/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Storage degrades to in-memory when the database cannot be opened;
	// the service keeps working without persistence.
	var kv storage.Store
	sqliteStore, err := storage.OpenSQLite(cfg.Cache.Path)
	if err != nil {
		logger.Log.Warn("persistent storage unavailable, running in-memory",
			zap.String("path", cfg.Cache.Path),
			zap.Error(err),
		)
		kv = storage.NewMemory()
	} else {
		kv = sqliteStore
		logger.Log.Info("persistent storage ready", zap.String("path", cfg.Cache.Path))
	}
	defer kv.Close()

	cacheStore := cache.New(kv, cfg.Cache.MaxAge)
	limiter := ratelimit.New(kv, cfg.RateLimit.PerFingerprintDaily, cfg.RateLimit.GlobalDaily)
	validator := validation.New(cfg.YouTube.MinKeyLength)

	// Prefer the configured key; fall back to a previously saved one.
	apiKey := cfg.YouTube.APIKey
	if apiKey == "" {
		if saved, ok := cacheStore.SavedAPIKey(); ok {
			apiKey = saved
			logger.Log.Info("using previously saved API key")
		}
	}

	var analysisService *service.AnalysisService
	if apiKey != "" {
		if err := validator.ValidateAPIKey(apiKey); err != nil {
			logger.Log.Warn("configured API key failed format validation, analysis disabled", zap.Error(err))
		} else {
			ytClient, err := youtube.NewClient(context.Background(), apiKey)
			if err != nil {
				logger.Log.Warn("failed to initialize YouTube client, analysis disabled", zap.Error(err))
			} else {
				analysisService = service.NewAnalysisService(
					service.NewChannelResolver(ytClient),
					service.NewVideoIngestor(ytClient, service.IngestOptions{
						PageSize:     cfg.YouTube.PageSize,
						MaxPagesLive: cfg.YouTube.MaxPagesLive,
						MaxPagesDemo: cfg.YouTube.MaxPagesDemo,
						DemoVideoCap: cfg.YouTube.DemoVideoCap,
						BatchSize:    cfg.YouTube.BatchSize,
					}, rate.NewLimiter(rate.Every(cfg.YouTube.BatchDelay), 1)),
					cacheStore,
					limiter,
				)
				logger.Log.Info("YouTube client initialized, analysis is available")
			}
		}
	} else {
		logger.Log.Info("no YouTube API key configured (YOUTUBE_API_KEY), analysis is disabled")
	}

	router := setupRouter(cfg, cacheStore, validator, analysisService)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Log.Info("server starting", zap.Int("port", cfg.Server.Port))
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Log.Error("server error", zap.Error(err))
		os.Exit(1)
	case sig := <-shutdown:
		logger.Log.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Log.Error("graceful shutdown failed", zap.Error(err))
			_ = server.Close()
			os.Exit(1)
		}
		logger.Log.Info("server stopped gracefully")
	}
}

func setupRouter(cfg *config.Config, cacheStore *cache.Store, validator *validation.Validator, analysisService *service.AnalysisService) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogging())

	analysisHandler := handler.NewAnalysisHandler(analysisService, validator)
	configHandler := handler.NewConfigHandler(cacheStore, validator, cfg.YouTube.APIKey != "")

	api := router.Group("/api/v1")
	{
		api.POST("/analyze", analysisHandler.HandleAnalyze)
		api.GET("/channels/cached", analysisHandler.HandleListCached)
		api.DELETE("/channels/cached/:channelId", analysisHandler.HandleDeleteCached)
		api.GET("/client-config", configHandler.HandleClientConfig)
		api.PUT("/api-key", configHandler.HandleSaveAPIKey)
	}

	router.GET("/health", handler.HandleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Dashboard assets, when a static directory is configured.
	if cfg.Server.StaticDir != "" {
		router.NoRoute(gin.WrapH(http.FileServer(http.Dir(cfg.Server.StaticDir))))
	}

	return router
}
