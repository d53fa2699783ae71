package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/furnistudio/lead-inbox/internal/dialog"
	"github.com/furnistudio/lead-inbox/internal/inbox"
	"github.com/furnistudio/lead-inbox/internal/server"
	"github.com/furnistudio/lead-inbox/internal/storage"
	"github.com/furnistudio/lead-inbox/internal/telegram"
	"github.com/furnistudio/lead-inbox/internal/uploads"
	"github.com/furnistudio/lead-inbox/internal/webhook"
	"github.com/furnistudio/lead-inbox/pkg/config"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	// Initialize storage
	var store storage.Storage
	switch cfg.Storage.Driver {
	case "postgres":
		logger.Info("Using PostgreSQL storage")
		store, err = storage.NewPostgresStorage(storage.DatabaseConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	case "memory":
		logger.Info("Using in-memory storage")
		store = storage.NewMemoryStorage()
	default:
		logger.Info("Using flat-file storage", zap.String("dir", cfg.Storage.DataDir))
		store, err = storage.NewFileStorage(cfg.Storage.DataDir)
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	// Telegram client and dialog state machine
	tg, err := telegram.New(cfg.Telegram.Token, logger)
	if err != nil {
		logger.Fatal("Failed to create telegram client", zap.Error(err))
	}
	machine := dialog.NewMachine(tg, logger)

	// Handlers
	webhookHandler := webhook.NewHandler(store, machine, tg, cfg.Telegram.SecretToken, logger)
	inboxHandler := inbox.NewHandler(store, tg, logger)

	var uploadsHandler *uploads.Handler
	r2 := uploads.Config{
		AccountID:       cfg.R2.AccountID,
		AccessKeyID:     cfg.R2.AccessKeyID,
		SecretAccessKey: cfg.R2.SecretAccessKey,
		Bucket:          cfg.R2.Bucket,
		PublicURL:       cfg.R2.PublicURL,
		PresignTTL:      time.Duration(cfg.R2.PresignTTL) * time.Second,
	}
	if r2.Configured() {
		client, err := uploads.NewClient(context.Background(), r2)
		if err != nil {
			logger.Fatal("Failed to create R2 client", zap.Error(err))
		}
		uploadsHandler = uploads.NewHandler(s3.NewPresignClient(client), client, r2, logger)
	} else {
		logger.Info("Uploads disabled: R2 is not configured")
	}

	router := server.New(&server.Config{
		Webhook:            webhookHandler,
		Inbox:              inboxHandler,
		Uploads:            uploadsHandler,
		CORSAllowedOrigins: cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Forced shutdown", zap.Error(err))
	}
}
