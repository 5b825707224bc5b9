package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/scanvault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/scanvault/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/scanvault/internal/httpserver/mw"
)

func init() { Register(API, registerRecognition) }

// identify and grade share one limiter: both spend remote recognition calls.
func registerRecognition(r chi.Router, d deps.Deps) {
	limited := r.With(mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.IdentifyBurst,
		RefillPerIPPerMin: d.IdentifyPerMin,
		MaxEntries:        10000,
		TrustProxy:        d.TrustProxy,
		Logger:            d.Logger,
		Now:               d.TimeNow,
	}))
	limited.Post("/identify", handlers.Identify(d))
	limited.Post("/grade", handlers.Grade(d))
}
