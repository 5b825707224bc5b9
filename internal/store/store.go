// Package store defines the collection store contract shared by the memory
// and Redis backends, plus the backend independent helpers.
package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/MrSnakeDoc/scanvault/internal/domain"
)

// Collection persists cards and folders. Writes are durable before they
// return and reads reflect the latest write. Unknown ids yield domain.ErrNotFound.
type Collection interface {
	// AddCard assigns ID and DateAdded when they are unset.
	AddCard(ctx context.Context, card *domain.Card) error
	GetCard(ctx context.Context, id string) (*domain.Card, error)
	UpdateCard(ctx context.Context, id string, patch domain.CardPatch) (*domain.Card, error)
	DeleteCard(ctx context.Context, id string) error
	// ListCards is ordered by DateAdded, then ID.
	ListCards(ctx context.Context) ([]*domain.Card, error)
	ClearCards(ctx context.Context) error

	CreateFolder(ctx context.Context, name string) (*domain.Folder, error)
	ListFolders(ctx context.Context) ([]*domain.Folder, error)
	// DeleteFolder clears the folder reference of every card in it. Cards are kept.
	DeleteFolder(ctx context.Context, id string) error
	// MoveCardToFolder assigns a card to folderID, or to no folder when nil.
	MoveCardToFolder(ctx context.Context, cardID string, folderID *string) error
}

// Settings holds the runtime recognition token.
type Settings interface {
	GetRecognitionToken(ctx context.Context) (string, error)
	SetRecognitionToken(ctx context.Context, token string) error
	ClearRecognitionToken(ctx context.Context) error
}

// Backend is what the application wires: collection, settings, counters and
// a health probe.
type Backend interface {
	Collection
	Settings
	Stats(ctx context.Context) (cards, folders int64, err error)
	Ping(ctx context.Context) error
}

// NewID returns a fresh opaque identifier.
func NewID() string {
	return uuid.NewString()
}

// PrepareCard validates a card before its first write and fills in identity.
func PrepareCard(card *domain.Card, now time.Time) error {
	if card == nil {
		return fmt.Errorf("%w: card is nil", domain.ErrInvalidInput)
	}
	card.Name = strings.TrimSpace(card.Name)
	if card.Name == "" {
		card.Name = domain.UnknownCardName
	}
	if card.ID == "" {
		card.ID = NewID()
	}
	if card.DateAdded.IsZero() {
		card.DateAdded = now.UTC()
	}
	if card.FolderID != nil && *card.FolderID == "" {
		card.FolderID = nil
	}
	return nil
}

// NewFolder validates name and builds a folder with a fresh id.
func NewFolder(name string, now time.Time) (*domain.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: folder name must not be empty", domain.ErrInvalidInput)
	}
	return &domain.Folder{ID: NewID(), Name: name, CreatedAt: now.UTC()}, nil
}

// SortCards orders cards by DateAdded, then ID.
func SortCards(cards []*domain.Card) {
	slices.SortFunc(cards, func(a, b *domain.Card) int {
		if c := a.DateAdded.Compare(b.DateAdded); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// SortFolders orders folders by CreatedAt, then ID.
func SortFolders(folders []*domain.Folder) {
	slices.SortFunc(folders, func(a, b *domain.Folder) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// Matches is the card search predicate: a substring over name, set, team,
// subcategory and card number that ignores case and accents ("pokemon"
// finds "Pokémon"). An empty query matches all.
func Matches(card *domain.Card, query string) bool {
	query = foldText(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for _, field := range []string{card.Name, card.Set, card.Team, card.Subcategory, card.CardNumber} {
		if strings.Contains(foldText(field), query) {
			return true
		}
	}
	return false
}

// foldText case-folds s and drops combining marks. Casers and transformers
// keep state, so a fresh chain is built per call.
func foldText(s string) string {
	if s == "" {
		return ""
	}
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(stripped)
}

// Filter returns the cards matching query, keeping their order.
func Filter(cards []*domain.Card, query string) []*domain.Card {
	if strings.TrimSpace(query) == "" {
		return cards
	}
	out := make([]*domain.Card, 0, len(cards))
	for _, c := range cards {
		if Matches(c, query) {
			out = append(out, c)
		}
	}
	return out
}

// SweepDanglingFolders clears folder references that point to folders which
// no longer exist and returns how many cards were repaired.
func SweepDanglingFolders(ctx context.Context, c Collection) (int, error) {
	folders, err := c.ListFolders(ctx)
	if err != nil {
		return 0, fmt.Errorf("list folders: %w", err)
	}
	known := make(map[string]struct{}, len(folders))
	for _, f := range folders {
		known[f.ID] = struct{}{}
	}

	cards, err := c.ListCards(ctx)
	if err != nil {
		return 0, fmt.Errorf("list cards: %w", err)
	}

	repaired := 0
	for _, card := range cards {
		if card.FolderID == nil {
			continue
		}
		if _, ok := known[*card.FolderID]; ok {
			continue
		}
		if err := c.MoveCardToFolder(ctx, card.ID, nil); err != nil {
			return repaired, fmt.Errorf("clear folder of card %s: %w", card.ID, err)
		}
		repaired++
	}
	return repaired, nil
}
