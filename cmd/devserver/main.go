package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/mcoot/sovereign-client/internal/fakeserver"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	backend := fakeserver.New(fakeserver.Options{
		Logger:  logger,
		Version: envOrDefault("DEVSERVER_VERSION", "dev"),
	})

	// DEVSERVER_ADMIN=user:password seeds an administrator account
	if admin := os.Getenv("DEVSERVER_ADMIN"); admin != "" {
		user, pass, ok := strings.Cut(admin, ":")
		if !ok {
			logger.Error("DEVSERVER_ADMIN must be user:password")
			os.Exit(1)
		}
		if _, err := backend.CreateAccount(user, pass); err != nil {
			logger.Error("failed to seed admin", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := backend.SetAdmin(user, true); err != nil {
			logger.Error("failed to grant admin", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("admin account ready", slog.String("username", user))
	}

	// Create server
	serverConfig := fakeserver.DefaultServerConfig()
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			logger.Error("invalid PORT", slog.String("port", port))
			os.Exit(1)
		}
		serverConfig.Port = p
	}
	server := fakeserver.NewServer(backend.Handler(), serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	if err := server.Listen(); err != nil {
		logger.Error("listen failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve()
	}()

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
