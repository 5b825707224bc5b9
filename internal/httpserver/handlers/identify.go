package handlers

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/scanvault/internal/domain"
	"github.com/MrSnakeDoc/scanvault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/scanvault/internal/recognition"
	"github.com/MrSnakeDoc/scanvault/internal/resolver"
)

type identifyRequest struct {
	ImageBase64 string `json:"image_base64"`
	ImageURL    string `json:"image_url"`
}

type identifyResponse struct {
	Identified bool                 `json:"identified"`
	Card       *domain.Card         `json:"card,omitempty"`
	Strategy   string               `json:"strategy,omitempty"`
	Steps      []resolver.StepTrace `json:"steps"`
}

// Identify runs the identification sequence on one image. Not finding a
// card is a normal 200 answer with identified=false.
func Identify(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req identifyRequest
		if err := decodeJSON(w, r, d, &req); err != nil {
			writeError(w, r, d, err)
			return
		}

		img := recognition.Image{
			Base64: stripDataURI(req.ImageBase64),
			URL:    strings.TrimSpace(req.ImageURL),
		}
		outcome, err := d.Resolver.Identify(r.Context(), img)
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		resp := identifyResponse{
			Identified: outcome.Identified(),
			Card:       outcome.Card,
			Steps:      outcome.Steps,
		}
		if outcome.Identified() {
			resp.Strategy = outcome.Strategy.String()
		}
		writeJSON(w, d, http.StatusOK, resp)
	}
}

// stripDataURI accepts both raw base64 and "data:image/...;base64,..." values.
func stripDataURI(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			return s[i+1:]
		}
	}
	return s
}
