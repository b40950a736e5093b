package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RegisterRoutes builds the chi router with the middleware chain and the
// health and per-user todo routes.
func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.healthHandler)

	r.Route("/users/{userID:[0-9]+}/todos", func(r chi.Router) {
		r.Get("/", s.listTodosHandler)
		r.Post("/", s.createTodoHandler)

		r.Route("/{todoID:[0-9]+}", func(r chi.Router) {
			r.Get("/", s.getTodoHandler)
			r.Patch("/", s.updateTodoHandler)
			r.Delete("/", s.deleteTodoHandler)

			r.Get("/check", s.getTodoHandler)
			r.Patch("/check", s.checkTodoHandler)

			r.Get("/review", s.getTodoHandler)
			r.Patch("/review", s.setReviewHandler)
			r.Delete("/review", s.clearReviewHandler)
		})
	})

	return r
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	healthStats := s.db.Health()
	if status, ok := healthStats["status"]; ok && status == "down" {
		respondWithJSON(w, http.StatusServiceUnavailable, healthStats)
		return
	}
	respondWithJSON(w, http.StatusOK, healthStats)
}
