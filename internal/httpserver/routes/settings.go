package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/scanvault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/scanvault/internal/httpserver/handlers"
)

func init() { Register(API, registerSettings) }

func registerSettings(r chi.Router, d deps.Deps) {
	r.Get("/settings/token", handlers.GetToken(d))
	r.Put("/settings/token", handlers.SetToken(d))
	r.Delete("/settings/token", handlers.ClearToken(d))
}
