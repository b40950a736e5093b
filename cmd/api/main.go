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

	"github.com/rs/zerolog"

	"github.com/Tomlord1122/user-todo-api/internal/config"
	"github.com/Tomlord1122/user-todo-api/internal/database"
	"github.com/Tomlord1122/user-todo-api/internal/logging"
	"github.com/Tomlord1122/user-todo-api/internal/repository"
	"github.com/Tomlord1122/user-todo-api/internal/server"
	"github.com/Tomlord1122/user-todo-api/internal/service"
)

func gracefulShutdown(apiServer *http.Server, dbService database.Service, timeout time.Duration, logger zerolog.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info().Msg("shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The context is used to inform the server it has a bounded time to
	// finish the requests it is currently handling.
	ctxTimeout, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	if err := dbService.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close database connection pool")
	} else {
		logger.Info().Msg("database connection pool closed")
	}

	logger.Info().Msg("server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Env, os.Stdout)
	if err != nil {
		return err
	}
	logger.Info().Str("env", cfg.Env).Msg("loaded config")

	dbService, err := database.New(cfg.Database, logger)
	if err != nil {
		return err
	}

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(cfg.Database); err != nil {
			_ = dbService.Close()
			return err
		}
		logger.Info().Msg("database migrations applied")
	}

	gormDB := dbService.GetDB()
	userRepo := repository.NewGormUserRepository(gormDB)
	todoRepo := repository.NewGormTodoRepository(gormDB)

	todoService := service.NewTodoService(userRepo, todoRepo, logger)

	apiServer := server.NewServer(cfg.HTTP, logger, todoService, dbService)

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, dbService, cfg.HTTP.ShutdownTimeout, logger, done)

	logger.Info().Str("addr", apiServer.Addr).Msg("starting server")
	err = apiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server ListenAndServe: %w", err)
	}

	// Wait for the graceful shutdown to complete
	<-done
	logger.Info().Msg("graceful shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "todo api: %v\n", err)
		os.Exit(1)
	}
}
