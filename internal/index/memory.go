package index

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/scanvault/internal/domain"
	"github.com/MrSnakeDoc/scanvault/internal/store"
)

// MemoryIndex is the in-memory collection backend. It is used when no Redis
// is configured and in tests. Contents are lost on restart.
type MemoryIndex struct {
	mu      sync.RWMutex
	cards   map[string]*domain.Card   // ID -> Card
	folders map[string]*domain.Folder // ID -> Folder
	token   string                    // runtime recognition token
	now     func() time.Time
}

var _ store.Backend = (*MemoryIndex)(nil)

// NewMemoryIndex creates an empty memory index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		cards:   make(map[string]*domain.Card),
		folders: make(map[string]*domain.Folder),
		now:     time.Now,
	}
}

// Ping always succeeds.
func (idx *MemoryIndex) Ping(context.Context) error { return nil }

// AddCard stores a copy of card, assigning ID and DateAdded when unset.
func (idx *MemoryIndex) AddCard(_ context.Context, card *domain.Card) error {
	if err := store.PrepareCard(card, idx.now()); err != nil {
		return err
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if card.FolderID != nil {
		if _, ok := idx.folders[*card.FolderID]; !ok {
			return fmt.Errorf("folder %s: %w", *card.FolderID, domain.ErrNotFound)
		}
	}
	idx.cards[card.ID] = card.Clone()
	return nil
}

// GetCard retrieves a card by ID
func (idx *MemoryIndex) GetCard(_ context.Context, id string) (*domain.Card, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	card, ok := idx.cards[id]
	if !ok {
		return nil, fmt.Errorf("card %s: %w", id, domain.ErrNotFound)
	}
	return card.Clone(), nil
}

// UpdateCard applies patch to the stored card and returns the result.
func (idx *MemoryIndex) UpdateCard(_ context.Context, id string, patch domain.CardPatch) (*domain.Card, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	card, ok := idx.cards[id]
	if !ok {
		return nil, fmt.Errorf("card %s: %w", id, domain.ErrNotFound)
	}
	patch.Apply(card)
	return card.Clone(), nil
}

// DeleteCard removes a card from the index
func (idx *MemoryIndex) DeleteCard(_ context.Context, id string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, ok := idx.cards[id]; !ok {
		return fmt.Errorf("card %s: %w", id, domain.ErrNotFound)
	}
	delete(idx.cards, id)
	return nil
}

// ListCards returns copies of all cards, oldest first
func (idx *MemoryIndex) ListCards(context.Context) ([]*domain.Card, error) {
	idx.mu.RLock()
	cards := make([]*domain.Card, 0, len(idx.cards))
	for _, card := range idx.cards {
		cards = append(cards, card.Clone())
	}
	idx.mu.RUnlock()

	store.SortCards(cards)
	return cards, nil
}

// ClearCards removes every card. Folders are kept.
func (idx *MemoryIndex) ClearCards(context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.cards = make(map[string]*domain.Card)
	return nil
}

// CardCount returns the number of cards in the index
func (idx *MemoryIndex) CardCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.cards)
}

// ─────────────────────────────────────────────────────────────────
// Folder methods
// ─────────────────────────────────────────────────────────────────

// CreateFolder adds a new folder
func (idx *MemoryIndex) CreateFolder(_ context.Context, name string) (*domain.Folder, error) {
	folder, err := store.NewFolder(name, idx.now())
	if err != nil {
		return nil, err
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.folders[folder.ID] = folder
	cp := *folder
	return &cp, nil
}

// ListFolders returns all folders, oldest first
func (idx *MemoryIndex) ListFolders(context.Context) ([]*domain.Folder, error) {
	idx.mu.RLock()
	folders := make([]*domain.Folder, 0, len(idx.folders))
	for _, f := range idx.folders {
		cp := *f
		folders = append(folders, &cp)
	}
	idx.mu.RUnlock()

	store.SortFolders(folders)
	return folders, nil
}

// DeleteFolder removes the folder and detaches its cards under one lock.
func (idx *MemoryIndex) DeleteFolder(_ context.Context, id string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, ok := idx.folders[id]; !ok {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	for _, card := range idx.cards {
		if card.InFolder(id) {
			card.FolderID = nil
		}
	}
	delete(idx.folders, id)
	return nil
}

// MoveCardToFolder assigns a card to a folder, or detaches it when folderID is nil.
func (idx *MemoryIndex) MoveCardToFolder(_ context.Context, cardID string, folderID *string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	card, ok := idx.cards[cardID]
	if !ok {
		return fmt.Errorf("card %s: %w", cardID, domain.ErrNotFound)
	}
	if folderID == nil || *folderID == "" {
		card.FolderID = nil
		return nil
	}
	if _, ok := idx.folders[*folderID]; !ok {
		return fmt.Errorf("folder %s: %w", *folderID, domain.ErrNotFound)
	}
	f := *folderID
	card.FolderID = &f
	return nil
}

// FolderCount returns the number of folders in the index
func (idx *MemoryIndex) FolderCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.folders)
}

// Stats returns the number of cards and folders.
func (idx *MemoryIndex) Stats(context.Context) (cards, folders int64, err error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return int64(len(idx.cards)), int64(len(idx.folders)), nil
}

// ─────────────────────────────────────────────────────────────────
// Settings
// ─────────────────────────────────────────────────────────────────

func (idx *MemoryIndex) GetRecognitionToken(context.Context) (string, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.token, nil
}

func (idx *MemoryIndex) SetRecognitionToken(_ context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: token must not be empty", domain.ErrInvalidInput)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.token = token
	return nil
}

func (idx *MemoryIndex) ClearRecognitionToken(context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.token = ""
	return nil
}
