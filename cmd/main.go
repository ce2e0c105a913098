/*
Package main is the entry point for the chat server.

It is responsible for loading configuration, initializing the global logging system,
opening the configured store, setting up the HTTP server and the presence registry,
and gracefully handling operating system interrupt signals (SIGINT, SIGTERM)
to ensure a smooth server shutdown.
*/
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

	"chatterbox/internal/app/avatar"
	"chatterbox/internal/app/chat"
	"chatterbox/internal/app/db"
	"chatterbox/internal/app/memstore"
	"chatterbox/internal/app/message"
	"chatterbox/internal/app/mongodb"
	"chatterbox/internal/app/storage"
	"chatterbox/internal/app/user"
	"chatterbox/internal/configs"
	"chatterbox/internal/handler"
	"chatterbox/internal/pkg/logx"
)

const shutdownTimeout = 5 * time.Second

// appStore is satisfied by every store backend.
type appStore interface {
	user.Store
	message.Store
	Close(ctx context.Context) error
}

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("store", cfg.StoreDriver).
		Str("object_storage", cfg.StorageDriver).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		logx.Fatal(err, "Failed to open store", "store", cfg.StoreDriver)
	}

	registry := chat.NewRegistry()
	deps := &handler.AppDeps{
		Config:   cfg,
		Users:    user.NewService(store, cfg.BcryptCost),
		Avatars:  avatar.NewService(store, openObjectStore(ctx, cfg)),
		Messages: message.NewService(store),
		Registry: registry,
		Relay:    chat.NewRelay(registry),
	}

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler.Router(ctx, deps),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Chat server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	socketCtx, cancelSockets := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelSockets()

	if err := registry.Shutdown(socketCtx); err != nil {
		logx.Error(err, "Socket connections did not close in time")
	}

	storeCtx, cancelStore := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelStore()

	if err := store.Close(storeCtx); err != nil {
		logx.Error(err, "Failed to close store")
	}

	logx.Info("Server gracefully stopped.")
}

// openStore connects the backend selected by the DATABASE_URL scheme.
func openStore(ctx context.Context, cfg *configs.AppConfig) (appStore, error) {
	switch cfg.StoreDriver {
	case configs.StoreMemory:
		logx.Warn("Using the in-memory store. Data is lost on restart.")
		return memstore.New(), nil

	case configs.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return db.New(pool), nil

	case configs.StoreMongo:
		return mongodb.Connect(ctx, cfg.DatabaseURL, cfg.MongoDB)
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}

// openObjectStore returns the avatar mirror, or nil when it is disabled or unreachable.
func openObjectStore(ctx context.Context, cfg *configs.AppConfig) storage.ObjectStore {
	if cfg.StorageDriver == configs.StorageNone {
		return nil
	}

	objects, err := storage.NewObjectStore(ctx, storage.ServiceConfig{
		Driver:            cfg.StorageDriver,
		S3BucketName:      cfg.S3BucketName,
		S3Endpoint:        cfg.S3Endpoint,
		S3AccessKeyID:     cfg.S3AccessKeyID,
		S3SecretAccessKey: cfg.S3SecretAccessKey,
		S3UseSSL:          cfg.S3UseSSL,
	})
	if err != nil {
		logx.Error(err, "Avatar mirroring disabled: object storage unavailable", "driver", cfg.StorageDriver)
		return nil
	}
	return objects
}
