package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/scanvault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/scanvault/internal/httpserver/handlers"
)

func init() {
	Register(Admin, func(r chi.Router, d deps.Deps) {
		r.Post("/reload", handlers.Reload(d))
	})
}
