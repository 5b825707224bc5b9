package handlers

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/scanvault/internal/domain"
	"github.com/MrSnakeDoc/scanvault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/scanvault/internal/recognition"
)

type gradeRequest struct {
	FrontBase64 string `json:"front_base64"`
	FrontURL    string `json:"front_url"`
	BackBase64  string `json:"back_base64"`
	BackURL     string `json:"back_url"`
	Mode        string `json:"mode"`
}

// Grade runs grade, condition and centering together. Partial results are
// returned with the failed sections listed in errors.
func Grade(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req gradeRequest
		if err := decodeJSON(w, r, d, &req); err != nil {
			writeError(w, r, d, err)
			return
		}

		front := recognition.Image{
			Base64: stripDataURI(req.FrontBase64),
			URL:    strings.TrimSpace(req.FrontURL),
		}
		var back *recognition.Image
		if b := (recognition.Image{Base64: stripDataURI(req.BackBase64), URL: strings.TrimSpace(req.BackURL)}); !b.Empty() {
			back = &b
		}
		mode := domain.ConditionMode(strings.ToLower(strings.TrimSpace(req.Mode)))

		report, err := d.Resolver.Grade(r.Context(), front, back, mode)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, d, http.StatusOK, report)
	}
}
