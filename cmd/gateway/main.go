package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"huddle/internal/core/ports"
	"huddle/internal/core/services"
	httphandlers "huddle/internal/handlers/http"
	"huddle/internal/infrastructure/feed"
	"huddle/internal/infrastructure/imaging"
	"huddle/internal/infrastructure/middleware"
	"huddle/internal/infrastructure/monitoring"
	"huddle/internal/infrastructure/stores"
	"huddle/pkg/cache"
	"huddle/pkg/config"
	"huddle/pkg/logger"
	"huddle/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	// Try multiple config paths
	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"/etc/huddle/config.yaml",
		"config.yaml",
	}

	var cfg *config.Config
	var err error

	for _, path := range configPaths {
		cfg, err = config.Load(path)
		if err == nil {
			break
		}
	}

	if err != nil {
		// Fallback to defaults if config cannot be loaded
		cfg = config.DefaultConfig()
	}

	// Initialize logger
	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()

	log := zapLogger.Sugar()

	// Initialize tracing
	tracerProvider, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		JaegerURL:   cfg.Tracing.JaegerURL,
		Environment: cfg.Tracing.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Fatalw("failed to initialize tracing", "error", err)
	}

	// Initialize store factory
	storeFactory, err := stores.NewStoreFactory(cfg, log)
	if err != nil {
		log.Fatalw("failed to create store factory", "error", err)
	}
	defer storeFactory.Close()

	channelLog := storeFactory.CreateChannelLog()
	blobStore := storeFactory.CreateBlobStore()
	identityStore := storeFactory.CreateIdentityStore()
	recordStore := storeFactory.CreateDirectoryRecordStore()

	// Initialize services
	metricsService := services.NewMetricsService()
	directoryService := services.NewDirectoryService(channelLog, services.DirectoryConfig{
		DedupByID:        cfg.Directory.DedupByID,
		OperationTimeout: cfg.Directory.OperationTimeout,
	}, log, metricsService)
	sessionService := services.NewSessionService(
		identityStore,
		recordStore,
		cfg.Auth.JWTSecret,
		cfg.Auth.TokenTTL,
		cfg.Auth.DefaultAvatarURL,
		log,
	)

	decoder := imaging.NewDecoder(cfg.Avatar.MaxPixels)
	cropper := imaging.NewCropper(cfg.Avatar.Size, cfg.Avatar.JPEGQuality)
	pipelineFactory := func() ports.ProfilePipeline {
		return services.NewAvatarPipeline(
			blobStore,
			identityStore,
			recordStore,
			decoder,
			cropper,
			services.PipelineConfig{
				ContentType:      cfg.Avatar.ContentType,
				OperationTimeout: cfg.Avatar.OperationTimeout,
			},
			log,
			metricsService,
		)
	}

	// Materialize the directory from the remote log before serving.
	if err := directoryService.Subscribe(context.Background()); err != nil {
		log.Fatalw("failed to subscribe to channel log", "error", err)
	}
	defer directoryService.Unsubscribe()

	// Initialize monitoring
	if cfg.Monitoring.PrometheusEnabled {
		prometheus.MustRegister(monitoring.NewPrometheusCollector(metricsService))
	}

	healthChecker := monitoring.NewHealthChecker()
	healthChecker.AddCheck("stores", storeFactory.HealthCheck, 2*time.Second)

	// Initialize HTTP handlers
	recordCache := cache.New(30 * time.Second)
	defer recordCache.Close()

	sessionHandler := httphandlers.NewSessionHandler(sessionService)
	directoryHandler := httphandlers.NewDirectoryHandler(directoryService, identityStore)
	profileHandler := httphandlers.NewProfileHandler(
		pipelineFactory,
		blobStore,
		identityStore,
		recordStore,
		recordCache,
		cfg.Avatar.MaxUploadBytes,
	)

	// Configure Gin
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.ErrorHandlerMiddleware(log))
	router.Use(middleware.TracingMiddleware())
	router.Use(middleware.NewHTTPRateLimitMiddleware(cfg))

	authMW := middleware.AuthMiddleware(sessionService)

	sessionHandler.SetupRoutes(router)
	directoryHandler.SetupRoutes(router, authMW)
	profileHandler.SetupRoutes(router, authMW)

	// Directory feed over WebSocket
	feedServer := feed.NewServer(directoryService, cfg.Directory.FeedBufferSize, log)
	router.GET("/ws/directory", gin.WrapF(feedServer.HandleFeed))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		status := healthChecker.CheckAll(c.Request.Context())
		code := http.StatusOK
		if status.Status != "healthy" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status": status.Status,
			"checks": status.Checks,
			"uptime": time.Since(startTime).String(),
		})
	})

	// Stats endpoint backed by the in-process metrics service
	router.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, metricsService.Snapshot())
	})

	// Prometheus metrics endpoint
	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
		log.Info("Prometheus metrics enabled")
	}

	// Create HTTP server with timeouts
	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting huddle gateway on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for shutdown signals or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatalw("Server failed", "error", err)
	case sig := <-sigChan:
		log.Infow("Received shutdown signal", "signal", sig)
	}

	log.Info("Shutting down huddle gateway...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error during server shutdown", "error", err)
		if closeErr := srv.Close(); closeErr != nil {
			log.Errorw("Error force closing server", "error", closeErr)
		}
	} else {
		log.Info("Server shutdown gracefully")
	}

	if err := directoryService.Unsubscribe(); err != nil {
		log.Errorw("Error tearing down directory", "error", err)
	}

	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error shutting down tracer", "error", err)
	}

	if err := storeFactory.Close(); err != nil {
		log.Errorw("Error closing store factory", "error", err)
	}

	log.Info("huddle gateway stopped")
}
