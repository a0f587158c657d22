package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carpool/internal/archive"
	"carpool/internal/board"
	"carpool/internal/config"
	"carpool/internal/directory"
	"carpool/internal/handler"
	"carpool/internal/logger"
	"carpool/internal/metrics"
	"carpool/internal/queue"
	"carpool/internal/router"
	"carpool/internal/service"
	"carpool/internal/storage"
	"carpool/internal/store"
	"carpool/internal/validator"
	"carpool/pkg/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @title           Carpool Ride Board API
// @version         1.0
// @description     Employee carpool board: sign up, offer today's ride, match and book seats.

// @contact.name    API Support
// @contact.email   support@example.com

// @host            localhost:8080
// @BasePath        /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter your bearer token in the format: Bearer {token}

func main() {
	// Load configuration
	cfg := config.Load()

	zlog, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Environment,
		ServiceName: "carpool",
	})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	// Register custom validators
	validator.RegisterCustomValidators()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Key-value store
	kv, closeStore, err := store.Open(store.Options{
		Backend:       cfg.StoreBackend,
		RedisURI:      cfg.RedisURI,
		MongoURI:      cfg.MongoURI,
		MongoDatabase: cfg.MongoDatabase,
	}, zlog)
	if err != nil {
		zlog.Fatal("failed to open store", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer closeStore()

	loc := cfg.Location()
	m := metrics.New(metrics.DefaultPrefix)

	// Directory and board
	dir := directory.New(kv, zlog)
	dir.Subscribe(m.Observe)

	rides := board.New(kv, zlog, board.WithLocation(loc), board.WithWindow(cfg.MatchWindow))
	rides.Subscribe(m.Observe)
	m.ActiveRides(func() int { return len(rides.AllRides()) })

	// Archive pipeline for expired day boards
	var processor *queue.Processor
	if cfg.ArchiveEnabled {
		s3Client, err := storage.NewS3Client(ctx, storage.Options{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			UseSSL:    cfg.S3UseSSL,
		}, zlog)
		if err != nil {
			zlog.Fatal("failed to create S3 client", zap.Error(err))
		}

		archiveQueue := queue.NewMemoryQueue(100)
		processor = queue.NewProcessor(archiveQueue, archive.NewUploader(s3Client, time.Now), zlog, cfg.ArchiveWorkers,
			queue.WithCompletionHook(m.ArchiveDone))
		rides.Subscribe(archive.NewEnqueuer(archiveQueue, loc, zlog).Handle)
		processor.Start(ctx)
	}

	// Load persisted state after subscribers are in place so the startup
	// rollover is archived and counted.
	if err := dir.Load(ctx); err != nil {
		zlog.Fatal("failed to load users", zap.Error(err))
	}
	if err := rides.Load(ctx); err != nil {
		zlog.Fatal("failed to load rides", zap.Error(err))
	}

	// JWT Manager
	jwtManager := auth.NewJWTManager(cfg.AccessTokenSecret, cfg.AccessTokenExpiry)

	// Service layer
	authService := service.NewAuthService(service.AuthServiceConfig{
		Directory:      dir,
		Tokens:         jwtManager,
		AccessTokenTTL: cfg.AccessTokenExpiry,
	})
	rideService := service.NewRideService(rides, time.Now)

	// Router
	r := router.Setup(&router.Config{
		AuthHandler: handler.NewAuthHandler(authService),
		RideHandler: handler.NewRideHandler(rideService),
		Tokens:      jwtManager,
		Lookup:      dir,
		Metrics:     m,
		Logger:      zlog,
	})

	// Create HTTP server for graceful shutdown support
	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// Start server in goroutine
	go func() {
		zlog.Info("server starting",
			zap.String("addr", addr),
			zap.String("store", cfg.StoreBackend),
			zap.String("timezone", loc.String()),
			zap.Bool("archive", cfg.ArchiveEnabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	zlog.Info("shutdown signal received")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Shutdown HTTP server first (drain connections)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("HTTP server shutdown error", zap.Error(err))
	}

	// Drain archive jobs before cancelling the worker context
	if processor != nil {
		zlog.Info("stopping archive processor")
		processor.Stop()
	}
	cancel()

	zlog.Info("server shutdown complete")
}
