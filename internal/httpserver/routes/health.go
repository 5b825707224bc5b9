package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/scanvault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/scanvault/internal/httpserver/handlers"
)

func init() {
	Register(Public, func(r chi.Router, d deps.Deps) {
		r.Get("/healthz", handlers.Healthz(d))
	})
	Register(Internal, func(r chi.Router, d deps.Deps) {
		r.Get("/readyz", handlers.Readyz(d))
		r.Get("/infra", handlers.Infra(d))
	})
}
