package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/scanvault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/scanvault/internal/httpserver/mw"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

// Group decides which access guards wrap a registrar.
type Group int

const (
	// Public routes have no restriction (liveness).
	Public Group = iota
	// Internal routes are limited to the allowed CIDRs (probes, infra).
	Internal
	// API routes are mounted under /api behind the CIDR and Host checks.
	API
	// Admin routes sit at the root behind the CIDR and Host checks.
	Admin
)

type entry struct {
	group Group
	reg   Registrar
	mws   []Middleware
}

var registry []entry

// Register a registrar in a group, with optional extra middlewares.
func Register(group Group, reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{group: group, reg: reg, mws: mws})
}

// RegisterAll mounts every registrar. Called once from NewRouter.
func RegisterAll(r chi.Router, d deps.Deps) {
	cidr := mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)
	host := mw.EnforceHost(d.AllowedHosts, d.Logger)
	guards := map[Group][]Middleware{
		Internal: {cidr},
		API:      {cidr, host},
		Admin:    {cidr, host},
	}

	var api []entry
	for _, e := range registry {
		switch e.group {
		case API:
			api = append(api, e)
		case Public:
			mount(r, e, d)
		default:
			mount(r.With(guards[e.group]...), e, d)
		}
	}

	if len(api) > 0 {
		r.Route("/api", func(sub chi.Router) {
			sub.Use(guards[API]...)
			for _, e := range api {
				mount(sub, e, d)
			}
		})
	}
}

func mount(r chi.Router, e entry, d deps.Deps) {
	if len(e.mws) > 0 {
		r = r.With(e.mws...)
	}
	e.reg(r, d)
}
