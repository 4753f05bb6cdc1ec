package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"canteen-order-backend/config"
	"canteen-order-backend/internal/api"
	"canteen-order-backend/internal/db"
	"canteen-order-backend/internal/event"
	"canteen-order-backend/internal/notification"
	"canteen-order-backend/internal/photo"
	"canteen-order-backend/internal/service"
	"canteen-order-backend/internal/store"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration from %s: %v\n", configPath, err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Server.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Info("configuration loaded", zap.String("path", configPath))

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	logger.Info("database initialized")

	appStore := store.NewGormStore(gormDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Domain events fan out to every configured channel. Each channel is
	// optional; with none configured events are discarded.
	var notifiers event.Multi

	var publisher *event.AMQPPublisher
	if cfg.Events.AMQPURL != "" {
		publisher, err = event.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange, logger)
		if err != nil {
			logger.Fatal("failed to connect to amqp broker", zap.Error(err))
		}
		defer publisher.Close()
		notifiers = append(notifiers, publisher)
		logger.Info("amqp event publishing enabled", zap.String("exchange", cfg.Events.Exchange))
	}

	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions := webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, &webpushOptions, logger)
		pool.Start(ctx)
		notifiers = append(notifiers, pool)
		logger.Info("push notifications enabled", zap.Int("workers", cfg.WorkerPool.Size))
	}

	var notifier event.Notifier = notifiers
	if len(notifiers) == 0 {
		notifier = event.Noop{}
	}

	photos, err := photo.NewDiskStore(cfg.Photos.Dir)
	if err != nil {
		logger.Fatal("failed to initialize photo storage", zap.Error(err))
	}

	svc := service.New(
		appStore,
		notifier,
		photos,
		service.URLRenderer{BaseURL: cfg.Checkin.QRBaseURL},
		logger,
		cfg.Checkin.Location,
	)

	handler := api.NewHandler(svc, appStore, logger, cfg.Push.PublicKey)
	router := api.NewRouter(
		handler,
		rate.Limit(cfg.Server.RateLimitPerSec),
		cfg.Server.RateLimitBurst,
		time.Duration(cfg.Server.CacheTTLSeconds)*time.Second,
	)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("http server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info("shutdown signal received, stopping services")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("http server shutdown", zap.Error(err))
	}

	logger.Info("server gracefully stopped")
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
