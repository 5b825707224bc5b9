package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/scanvault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/scanvault/internal/httpserver/handlers"
)

func init() { Register(API, registerCollection) }

func registerCollection(r chi.Router, d deps.Deps) {
	r.Route("/cards", func(r chi.Router) {
		r.Get("/", handlers.ListCards(d))
		r.Post("/", handlers.CreateCard(d))
		r.Delete("/", handlers.ClearCards(d))
		r.Get("/{id}", handlers.GetCard(d))
		r.Patch("/{id}", handlers.UpdateCard(d))
		r.Delete("/{id}", handlers.DeleteCard(d))
		r.Put("/{id}/folder", handlers.MoveCard(d))
	})

	r.Route("/folders", func(r chi.Router) {
		r.Get("/", handlers.ListFolders(d))
		r.Post("/", handlers.CreateFolder(d))
		r.Delete("/{id}", handlers.DeleteFolder(d))
	})

	r.Get("/export.csv", handlers.ExportCSV(d))
}
