// ragstore server — multi-tenant document store for RAG chat platforms:
// projects, chat sessions, documents and embeddings behind an HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/codeready-toolchain/ragstore/pkg/api"
	"github.com/codeready-toolchain/ragstore/pkg/config"
	"github.com/codeready-toolchain/ragstore/pkg/database"
	"github.com/codeready-toolchain/ragstore/pkg/store"
	"github.com/codeready-toolchain/ragstore/pkg/store/memory"
	"github.com/codeready-toolchain/ragstore/pkg/store/mongodb"
	"github.com/codeready-toolchain/ragstore/pkg/store/postgres"
	"github.com/codeready-toolchain/ragstore/pkg/version"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configPath := flag.String("config",
		getEnv("RAGSTORE_CONFIG", ""),
		"Path to ragstore.yaml (empty for built-in defaults)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file, continuing with existing environment", "error", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	config.SetupLogging(cfg.Logging)

	slog.Info("Starting ragstore",
		"version", version.Full(),
		"backend", cfg.Store.Backend,
		"listen_addr", cfg.Server.ListenAddr)

	ctx := context.Background()

	backend, err := buildBackend(ctx, cfg)
	if err != nil {
		slog.Error("Failed to connect to store backend", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}

	client, err := database.NewClient(cfg.DatabaseConfig(), backend)
	if err != nil {
		slog.Error("Failed to create store client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := client.Close(context.Background()); err != nil {
			slog.Error("Error closing store client", "error", err)
		}
	}()
	slog.Info("Connected to store", "backend", cfg.Store.Backend)

	server := api.NewServer(client)
	httpServer := &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", cfg.Server.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
	case err := <-errCh:
		slog.Error("Server error triggered shutdown", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}

// buildBackend constructs the configured store backend. Credentials come
// from the environment variable named by store.token_env; for postgres and
// mongodb the endpoint carries host and user, never the password.
func buildBackend(ctx context.Context, cfg *config.Config) (store.Store, error) {
	var tokens store.TokenProvider
	if cfg.Store.TokenEnv != "" && os.Getenv(cfg.Store.TokenEnv) != "" {
		tokens = store.EnvTokenProvider(cfg.Store.TokenEnv)
	}

	switch cfg.Store.Backend {
	case config.BackendMemory:
		return memory.New(database.KnownContainers...), nil

	case config.BackendPostgres:
		u, err := url.Parse(cfg.Store.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("invalid postgres endpoint: %w", err)
		}
		port := 5432
		if p := u.Port(); p != "" {
			if port, err = strconv.Atoi(p); err != nil {
				return nil, fmt.Errorf("invalid postgres port: %w", err)
			}
		}
		password, _ := u.User.Password()
		return postgres.New(ctx, postgres.Config{
			Host:     u.Hostname(),
			Port:     port,
			User:     u.User.Username(),
			Password: password,
			Database: cfg.Store.DatabaseID,
			SSLMode:  u.Query().Get("sslmode"),
			Tokens:   tokens,
		})

	case config.BackendMongoDB:
		u, err := url.Parse(cfg.Store.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("invalid mongodb endpoint: %w", err)
		}
		return mongodb.New(ctx, mongodb.Config{
			URI:        cfg.Store.Endpoint,
			Database:   cfg.Store.DatabaseID,
			Username:   u.User.Username(),
			Tokens:     tokens,
			Containers: database.KnownContainers,
		})

	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Store.Backend)
	}
}
