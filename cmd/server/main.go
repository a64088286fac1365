package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/warawul/backend/internal/application/invoicing"
	appsync "github.com/warawul/backend/internal/application/sync"
	"github.com/warawul/backend/internal/infrastructure/config"
	"github.com/warawul/backend/internal/infrastructure/event"
	"github.com/warawul/backend/internal/infrastructure/host"
	"github.com/warawul/backend/internal/infrastructure/lexoffice"
	"github.com/warawul/backend/internal/infrastructure/logger"
	"github.com/warawul/backend/internal/infrastructure/registry"
	"github.com/warawul/backend/internal/infrastructure/storage"
	"github.com/warawul/backend/internal/interfaces/http/handler"
	"github.com/warawul/backend/internal/interfaces/http/middleware"
	"github.com/warawul/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Warawul Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Remote accounting client
	lexofficeClient, err := lexoffice.NewClient(&lexoffice.Config{
		APIKey:         cfg.Lexoffice.APIKey,
		APIBaseURL:     cfg.Lexoffice.APIBaseURL,
		TimeoutSeconds: cfg.Lexoffice.TimeoutSeconds,
		MaxRetries:     cfg.Lexoffice.MaxRetries,
		RetryBaseDelay: cfg.Lexoffice.RetryBaseDelay,
	}, lexoffice.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to create lexoffice client", zap.Error(err))
	}

	// Host platform client (catalog, orders, notifications)
	hostClient, err := host.NewClient(&host.Config{
		BaseURL:        cfg.Host.BaseURL,
		APIToken:       cfg.Host.APIToken,
		TimeoutSeconds: cfg.Host.TimeoutSeconds,
	}, host.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to create host client", zap.Error(err))
	}
	notifier := host.NewNotifier(hostClient)

	// Object storage for archived invoice PDFs
	objectStorage, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to create object storage", zap.Error(err))
	}
	{
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := objectStorage.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to ensure storage bucket", zap.Error(err))
		}
		cancel()
	}
	log.Info("Object storage ready", zap.String("bucket", objectStorage.Bucket()))

	// Mapping registry and application services
	store := registry.NewInMemoryStore()
	engine := appsync.NewEngine(lexofficeClient, store, hostClient,
		appsync.WithLogger(log),
		appsync.WithPacer(appsync.NewIntervalPacer(cfg.Sync.WriteInterval)))
	generator := invoicing.NewGenerator(lexofficeClient, objectStorage, store, cfg.Invoice.BrandName,
		invoicing.WithGeneratorLogger(log))

	// Restore mappings from the remote article list so restarts do not lose
	// the registry.
	{
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		restored, err := engine.RebuildMappings(ctx)
		cancel()
		if err != nil {
			log.Warn("Could not restore mappings from remote articles", zap.Error(err))
		} else {
			log.Info("Mappings restored", zap.Int("count", restored))
		}
	}

	// Event bus with catalog and order handlers
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(appsync.NewCatalogEventHandler(engine, hostClient, log))
	eventBus.Subscribe(invoicing.NewOrderPlacedHandler(generator, hostClient, notifier, log))
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// HTTP server
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	ginEngine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := ginEngine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}
	ginEngine.Use(middleware.RequestID())
	ginEngine.Use(middleware.Recovery(log))
	ginEngine.Use(middleware.RequestLogger(log))
	ginEngine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	router.NewRouter(ginEngine).
		Register(handler.NewSyncHandler(engine, hostClient, cfg.Storage.Bucket)).
		Register(handler.NewInvoiceHandler(generator, hostClient, objectStorage)).
		Register(handler.NewWebhookHandler(eventBus)).
		Register(handler.NewSystemHandler(cfg.App.Name, version)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        ginEngine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
