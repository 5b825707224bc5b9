package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/scanvault/internal/domain"
	"github.com/MrSnakeDoc/scanvault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/scanvault/internal/logger"
	"github.com/MrSnakeDoc/scanvault/internal/recognition"
)

// Token sources reported by GET /api/settings/token.
const (
	TokenSourceRuntime     = "runtime"
	TokenSourceEnvironment = "environment"
	TokenSourceNone        = "none"
)

type tokenRequest struct {
	Token string `json:"token"`
}

type tokenResponse struct {
	Configured bool   `json:"configured"`
	Source     string `json:"source"`
	Masked     string `json:"masked,omitempty"`
}

// GetToken reports which recognition token is active. The value itself is
// never returned, only its last characters.
func GetToken(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := d.Store.GetRecognitionToken(r.Context())
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		resp := tokenResponse{Source: TokenSourceNone}
		switch {
		case token != "":
			resp = tokenResponse{Configured: true, Source: TokenSourceRuntime, Masked: recognition.MaskToken(token)}
		case d.FallbackToken:
			resp = tokenResponse{Configured: true, Source: TokenSourceEnvironment}
		}
		writeJSON(w, d, http.StatusOK, resp)
	}
}

// SetToken stores a runtime token that overrides the configured one.
func SetToken(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tokenRequest
		if err := decodeJSON(w, r, d, &req); err != nil {
			writeError(w, r, d, err)
			return
		}
		token := strings.TrimSpace(req.Token)
		if token == "" {
			writeError(w, r, d, fmt.Errorf("%w: token must not be empty", domain.ErrInvalidInput))
			return
		}
		if err := d.Store.SetRecognitionToken(r.Context(), token); err != nil {
			writeError(w, r, d, err)
			return
		}
		d.Logger.Info("recognition token updated",
			logger.String("token", recognition.MaskToken(token)),
			logger.String("remote_ip", r.RemoteAddr))
		writeJSON(w, d, http.StatusOK, tokenResponse{Configured: true, Source: TokenSourceRuntime, Masked: recognition.MaskToken(token)})
	}
}

// ClearToken removes the runtime token; the configured fallback applies again.
func ClearToken(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Store.ClearRecognitionToken(r.Context()); err != nil {
			writeError(w, r, d, err)
			return
		}
		d.Logger.Info("recognition token cleared", logger.String("remote_ip", r.RemoteAddr))
		w.WriteHeader(http.StatusNoContent)
	}
}
