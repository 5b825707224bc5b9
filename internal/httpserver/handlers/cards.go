package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/scanvault/internal/domain"
	"github.com/MrSnakeDoc/scanvault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/scanvault/internal/logger"
	"github.com/MrSnakeDoc/scanvault/internal/store"
)

type cardsResponse struct {
	Cards []*domain.Card `json:"cards"`
	Total int            `json:"total"`
}

type moveRequest struct {
	FolderID *string `json:"folder_id"`
}

// ListCards returns the collection in DateAdded order, filtered by ?q=.
// ?folder= restricts the listing to one folder.
func ListCards(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cards, err := d.Store.ListCards(r.Context())
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		cards = store.Filter(cards, r.URL.Query().Get("q"))
		if folder := r.URL.Query().Get("folder"); folder != "" {
			inFolder := cards[:0:0]
			for _, c := range cards {
				if c.InFolder(folder) {
					inFolder = append(inFolder, c)
				}
			}
			cards = inFolder
		}
		if cards == nil {
			cards = []*domain.Card{}
		}
		writeJSON(w, d, http.StatusOK, cardsResponse{Cards: cards, Total: len(cards)})
	}
}

// CreateCard saves a card, typically one returned by identify.
func CreateCard(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var card domain.Card
		if err := decodeJSON(w, r, d, &card); err != nil {
			writeError(w, r, d, err)
			return
		}
		if err := d.Store.AddCard(r.Context(), &card); err != nil {
			writeError(w, r, d, err)
			return
		}
		d.Logger.Info("card saved",
			logger.String("card_id", card.ID),
			logger.String("name", card.Name))
		writeJSON(w, d, http.StatusCreated, &card)
	}
}

func GetCard(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		card, err := d.Store.GetCard(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, d, http.StatusOK, card)
	}
}

// UpdateCard applies a partial update, including the back image reference.
func UpdateCard(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch domain.CardPatch
		if err := decodeJSON(w, r, d, &patch); err != nil {
			writeError(w, r, d, err)
			return
		}
		card, err := d.Store.UpdateCard(r.Context(), chi.URLParam(r, "id"), patch)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, d, http.StatusOK, card)
	}
}

func DeleteCard(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := d.Store.DeleteCard(r.Context(), id); err != nil {
			writeError(w, r, d, err)
			return
		}
		d.Logger.Info("card deleted", logger.String("card_id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}

// ClearCards removes every card; folders are kept.
func ClearCards(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Store.ClearCards(r.Context()); err != nil {
			writeError(w, r, d, err)
			return
		}
		d.Logger.Warn("collection cleared", logger.String("remote_ip", r.RemoteAddr))
		w.WriteHeader(http.StatusNoContent)
	}
}

// MoveCard assigns a card to a folder, or to none with folder_id null.
func MoveCard(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req moveRequest
		if err := decodeJSON(w, r, d, &req); err != nil {
			writeError(w, r, d, err)
			return
		}
		id := chi.URLParam(r, "id")
		if err := d.Store.MoveCardToFolder(r.Context(), id, req.FolderID); err != nil {
			writeError(w, r, d, err)
			return
		}
		card, err := d.Store.GetCard(r.Context(), id)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, d, http.StatusOK, card)
	}
}
