package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/scanvault/internal/httpserver/deps"
)

type componentStatus struct {
	OK      bool   `json:"ok"`
	Backend string `json:"backend,omitempty"`
	Cards   *int64 `json:"cards,omitempty"`
	Folders *int64 `json:"folders,omitempty"`
	Mode    string `json:"mode,omitempty"`
	Impact  string `json:"impact,omitempty"`
	Error   string `json:"error,omitempty"`
}

type tuningStatus struct {
	Source         string   `json:"source"`
	Weights        any      `json:"weights"`
	TCGKeywords    int      `json:"tcg_keywords"`
	CategoryLabels []string `json:"category_labels"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
	Tuning     tuningStatus               `json:"tuning"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"store":       checkStore(r.Context(), d),
			"recognition": checkRecognition(r.Context(), d),
		}

		t := d.Resolver.Tuning()
		source := "builtin"
		if d.TuningFile != "" {
			source = d.TuningFile
		}

		writeJSON(w, d, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
			Tuning: tuningStatus{
				Source:         source,
				Weights:        t.Weights,
				TCGKeywords:    len(t.TCGKeywords),
				CategoryLabels: t.CategoryLabels,
			},
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	if store, exists := components["store"]; exists && !store.OK {
		return "critical" // no collection
	}
	if rec, exists := components["recognition"]; exists && !rec.OK {
		return "degraded" // collection works, identification does not
	}
	return "operational"
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.Store.Ping(ctx); err != nil {
		return componentStatus{OK: false, Backend: d.StoreKind, Error: "unreachable"}
	}
	cards, folders, err := d.Store.Stats(ctx)
	if err != nil {
		return componentStatus{OK: false, Backend: d.StoreKind, Error: "stats unavailable"}
	}
	return componentStatus{OK: true, Backend: d.StoreKind, Cards: &cards, Folders: &folders}
}

// checkRecognition only reports whether a token is available; it makes no
// remote call.
func checkRecognition(ctx context.Context, d deps.Deps) componentStatus {
	token, err := d.Store.GetRecognitionToken(ctx)
	switch {
	case err == nil && token != "":
		return componentStatus{OK: true, Mode: TokenSourceRuntime}
	case d.FallbackToken:
		return componentStatus{OK: true, Mode: TokenSourceEnvironment}
	default:
		return componentStatus{OK: false, Mode: TokenSourceNone, Impact: "identification-disabled", Error: "no recognition token"}
	}
}
