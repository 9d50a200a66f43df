package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redmonkez12/auth-api/internal/auth"
	"github.com/redmonkez12/auth-api/internal/config"
	"github.com/redmonkez12/auth-api/internal/database"
	"github.com/redmonkez12/auth-api/internal/email"
	httpServer "github.com/redmonkez12/auth-api/internal/http"
	"github.com/redmonkez12/auth-api/internal/logging"
	"github.com/redmonkez12/auth-api/internal/user"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	// Initialize MongoDB connection
	ctx := context.Background()
	mongoClient, err := database.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		return fmt.Errorf("failed to initialize MongoDB: %w", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Warn("failed to disconnect MongoDB", "error", err)
		}
	}()

	// Initialize user repository and its indexes
	userRepo := user.NewRepository(database.Collection(mongoClient, cfg.Mongo.DBName, "users"))
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to ensure indexes: %w", err)
	}

	// Initialize JWT service
	jwtService, err := auth.NewJWTService(cfg.Auth.JWTSecret)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	// Initialize email service
	emailService := email.NewService(
		cfg.Email.ResendAPIKey,
		cfg.Email.FromEmail,
		logger,
		cfg.Server.IsDevelopment(),
	)

	// Initialize auth service
	authService := auth.NewService(userRepo, emailService, logger, cfg.Email.ClientURL)

	// Initialize HTTP handlers
	authHandler := auth.NewHandler(
		authService,
		jwtService,
		logger,
		!cfg.Server.IsDevelopment(), // isProduction
		cfg.Auth.TokenDuration,
	)
	authMiddleware := auth.NewMiddleware(jwtService)

	// Initialize router
	router := httpServer.NewRouter(cfg, authHandler, authMiddleware, logger)

	// Initialize HTTP server
	serverAddr := ":" + cfg.Server.Port
	server := httpServer.NewServer(
		serverAddr,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Printf("Received signal: %v", sig)

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}
