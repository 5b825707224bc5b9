package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/MrSnakeDoc/scanvault/internal/export"
	"github.com/MrSnakeDoc/scanvault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/scanvault/internal/logger"
)

// ExportCSV streams the whole collection as a CSV attachment.
func ExportCSV(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cards, err := d.Store.ListCards(r.Context())
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		// Rendered up front so a failure can still produce an error status.
		var buf bytes.Buffer
		if err := export.WriteCSV(&buf, cards); err != nil {
			writeError(w, r, d, err)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName(d.Now())))
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(buf.Bytes()); err != nil {
			d.Logger.Debug("failed to write export", logger.Error(err))
		}
	}
}
