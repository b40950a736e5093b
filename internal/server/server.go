package server

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Tomlord1122/user-todo-api/internal/config"
	"github.com/Tomlord1122/user-todo-api/internal/database"
	"github.com/Tomlord1122/user-todo-api/internal/service"
)

// healthChecker is the part of database.Service the server needs.
type healthChecker interface {
	Health() map[string]string
}

// Server holds the dependencies shared by the HTTP handlers.
type Server struct {
	cfg         config.HTTPConfig
	logger      zerolog.Logger
	todoService service.TodoService
	db          healthChecker
}

// NewServer returns an http.Server serving the API on the configured port.
func NewServer(cfg config.HTTPConfig, logger zerolog.Logger, todoService service.TodoService, dbService database.Service) *http.Server {
	appServer := &Server{
		cfg:         cfg,
		logger:      logger.With().Str("component", "http").Logger(),
		todoService: todoService,
		db:          dbService,
	}

	return &http.Server{
		Addr:         cfg.Addr(),
		Handler:      appServer.RegisterRoutes(),
		IdleTimeout:  cfg.IdleTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}
