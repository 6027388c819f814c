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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"evisa/internal/config"
	"evisa/internal/database"
	"evisa/internal/middleware"
	"evisa/internal/modules/application"
	"evisa/internal/modules/auth"
	"evisa/internal/modules/notification"
	"evisa/internal/modules/payment"
	"evisa/internal/modules/upload"
	jwtsvc "evisa/internal/pkg/jwt"
	"evisa/internal/pkg/logger"
	"evisa/internal/pkg/metrics"
	"evisa/internal/pkg/response"
	"evisa/internal/pkg/storage"
	"evisa/internal/repository"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	appLogger, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Dev:        cfg.AppEnv == "dev",
	})
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = appLogger.Sync() }()

	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL, appLogger)
	if err != nil {
		appLogger.Fatal("database connect failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		appLogger.Fatal("database migrate failed", zap.Error(err))
	}

	store, err := newStorage(context.Background(), cfg.Storage)
	if err != nil {
		appLogger.Fatal("storage init failed", zap.Error(err))
	}

	m := metrics.New()
	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	userRepo := repository.NewUserRepository(db)
	appRepo := repository.NewApplicationRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// Notifications
	transport, closeTransport, err := notification.NewTransport(cfg.Mail, appLogger)
	if err != nil {
		appLogger.Fatal("mail transport init failed", zap.Error(err))
	}
	hub := notification.NewHub(appLogger)
	dispatcher := notification.NewDispatcher(transport, cfg.Mail.From, cfg.Mail.ClientURL)
	notifier := notification.NewNotifier(dispatcher, hub, m, cfg.Mail.Timeout, appLogger)
	wsHandler := notification.NewHandler(hub, cfg.CORSOrigins, appLogger)

	authService := auth.NewService(userRepo, j, notifier, appLogger)
	authHandler := auth.NewHandler(authService)

	appService := application.NewService(appRepo, userRepo, store, notifier, m, appLogger)
	appHandler := application.NewHandler(appService)

	stager := upload.NewStager(store, cfg.Storage.MaxFileSize)
	uploadService := upload.NewService(appRepo, userRepo, store, stager, m, appLogger)
	uploadHandler := upload.NewHandler(uploadService)

	paymentService := payment.NewService(paymentRepo, appRepo, userRepo, notifier, appLogger)
	paymentHandler := payment.NewHandler(paymentService)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, appLogger)
	stopCleanup := make(chan struct{})
	limiter.StartCleanup(time.Minute, stopCleanup)

	r := gin.New()
	r.Use(middleware.ErrorLogger(appLogger))
	r.Use(middleware.RequestLogger(appLogger))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.Metrics(m))

	if cfg.Storage.Driver == "disk" {
		r.Static(cfg.Storage.PublicURL, cfg.Storage.UploadDir)
	}
	r.GET("/metrics", gin.WrapH(m.Handler()))

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"ws_online": hub.OnlineCount(),
		})
	})

	authHandler.RegisterPublicRoutes(api, limiter.Handler())
	appHandler.RegisterPublicRoutes(api, limiter.Handler())

	protected := api.Group("")
	protected.Use(middleware.JWTAuth(j))
	{
		authHandler.RegisterProtectedRoutes(protected)
		appHandler.RegisterProtectedRoutes(protected)
		uploadHandler.RegisterProtectedRoutes(protected)
		paymentHandler.RegisterProtectedRoutes(protected)
		wsHandler.RegisterProtectedRoutes(protected)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		appLogger.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	hub.Close()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("server shutdown failed", zap.Error(err))
	}
	close(stopCleanup)

	notifier.Wait()
	if err := closeTransport(); err != nil {
		appLogger.Warn("mail transport close failed", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	appLogger.Info("server stopped")
}

func newStorage(ctx context.Context, cfg config.StorageConfig) (storage.Storage, error) {
	if cfg.Driver == "s3" {
		return storage.NewS3Storage(ctx, storage.S3Options{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
			Prefix:   cfg.S3Prefix,
		})
	}
	return storage.NewDiskStorage(cfg.UploadDir, cfg.PublicURL)
}
