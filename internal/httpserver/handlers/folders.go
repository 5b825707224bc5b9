package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/scanvault/internal/domain"
	"github.com/MrSnakeDoc/scanvault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/scanvault/internal/logger"
)

type folderRequest struct {
	Name string `json:"name"`
}

type foldersResponse struct {
	Folders []*domain.Folder `json:"folders"`
}

func ListFolders(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		folders, err := d.Store.ListFolders(r.Context())
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		if folders == nil {
			folders = []*domain.Folder{}
		}
		writeJSON(w, d, http.StatusOK, foldersResponse{Folders: folders})
	}
}

func CreateFolder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req folderRequest
		if err := decodeJSON(w, r, d, &req); err != nil {
			writeError(w, r, d, err)
			return
		}
		folder, err := d.Store.CreateFolder(r.Context(), req.Name)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, d, http.StatusCreated, folder)
	}
}

// DeleteFolder removes the folder. Its cards stay in the collection.
func DeleteFolder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := d.Store.DeleteFolder(r.Context(), id); err != nil {
			writeError(w, r, d, err)
			return
		}
		d.Logger.Info("folder deleted", logger.String("folder_id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}
