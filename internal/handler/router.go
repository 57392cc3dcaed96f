package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mkuznetsov/todo-api/internal/auth"
	"github.com/mkuznetsov/todo-api/pkg/respond"
)

const Version = "2.0"

// NewRouter собирает все маршруты. Задачи закрыты bearer-аутентификацией,
// health и корень открыты.
func NewRouter(h *TaskHandler, verifier auth.TokenVerifier, corsOrigins []string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, r, http.StatusOK, map[string]string{
			"message": "Todo API v" + Version,
			"health":  "/health",
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, r, http.StatusOK, map[string]string{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   Version,
		})
	})

	r.Route("/api/{owner_id}/tasks", func(r chi.Router) {
		r.Use(auth.Middleware(verifier))
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Patch("/{id}/complete", h.ToggleComplete)
		r.Delete("/{id}", h.Delete)
	})

	return r
}
