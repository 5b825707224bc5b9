package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/scanvault/internal/domain"
	"github.com/MrSnakeDoc/scanvault/internal/store"
)

// CreateFolder stores a new folder
func (s *Store) CreateFolder(ctx context.Context, name string) (*domain.Folder, error) {
	folder, err := store.NewFolder(name, s.now())
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal folder: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, FolderKey(folder.ID), data, 0)
	pipe.SAdd(ctx, AllFoldersKey(), folder.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to save folder: %w", err)
	}
	return folder, nil
}

// ListFolders retrieves all folders, oldest first
func (s *Store) ListFolders(ctx context.Context) ([]*domain.Folder, error) {
	ids, err := s.client.SMembers(ctx, AllFoldersKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get folder IDs: %w", err)
	}
	if len(ids) == 0 {
		return []*domain.Folder{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = FolderKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get folders: %w", err)
	}

	folders := make([]*domain.Folder, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var folder domain.Folder
		if err := json.Unmarshal([]byte(raw), &folder); err != nil {
			continue
		}
		folders = append(folders, &folder)
	}

	store.SortFolders(folders)
	return folders, nil
}

// DeleteFolder removes a folder and clears the reference of every card in it
// in one MULTI/EXEC. Cards are never deleted.
func (s *Store) DeleteFolder(ctx context.Context, id string) error {
	write := func(tx *redis.Tx) error {
		if err := requireFolder(ctx, tx, id); err != nil {
			return err
		}
		cardIDs, err := tx.SMembers(ctx, FolderCardsKey(id)).Result()
		if err != nil {
			return fmt.Errorf("failed to get folder cards: %w", err)
		}

		cardKeys := make([]string, len(cardIDs))
		for i, cid := range cardIDs {
			cardKeys[i] = CardKey(cid)
		}
		if len(cardKeys) > 0 {
			if err := tx.Watch(ctx, cardKeys...).Err(); err != nil {
				return err
			}
		}

		detached := make(map[string][]byte, len(cardIDs))
		for _, cid := range cardIDs {
			card, err := getCard(ctx, tx, cid)
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if !card.InFolder(id) {
				continue
			}
			card.FolderID = nil
			data, err := json.Marshal(card)
			if err != nil {
				return fmt.Errorf("failed to marshal card: %w", err)
			}
			detached[cid] = data
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for cid, data := range detached {
				pipe.Set(ctx, CardKey(cid), data, 0)
			}
			pipe.Del(ctx, FolderKey(id), FolderCardsKey(id))
			pipe.SRem(ctx, AllFoldersKey(), id)
			return nil
		})
		return err
	}

	if err := s.watch(ctx, write, FolderKey(id), FolderCardsKey(id)); err != nil {
		return wrapUnlessDomain("failed to delete folder", err)
	}
	return nil
}

// MoveCardToFolder assigns a card to a folder, or detaches it when folderID is nil.
func (s *Store) MoveCardToFolder(ctx context.Context, cardID string, folderID *string) error {
	if folderID != nil && *folderID == "" {
		folderID = nil
	}

	write := func(tx *redis.Tx) error {
		card, err := getCard(ctx, tx, cardID)
		if err != nil {
			return err
		}
		if folderID != nil {
			if err := requireFolder(ctx, tx, *folderID); err != nil {
				return err
			}
		}

		previous := card.FolderID
		if folderID != nil {
			f := *folderID
			card.FolderID = &f
		} else {
			card.FolderID = nil
		}
		data, err := json.Marshal(card)
		if err != nil {
			return fmt.Errorf("failed to marshal card: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, CardKey(cardID), data, 0)
			if previous != nil {
				pipe.SRem(ctx, FolderCardsKey(*previous), cardID)
			}
			if folderID != nil {
				pipe.SAdd(ctx, FolderCardsKey(*folderID), cardID)
			}
			return nil
		})
		return err
	}

	keys := []string{CardKey(cardID)}
	if folderID != nil {
		keys = append(keys, FolderKey(*folderID))
	}
	if err := s.watch(ctx, write, keys...); err != nil {
		return wrapUnlessDomain("failed to move card", err)
	}
	return nil
}

func requireFolder(ctx context.Context, c reader, id string) error {
	n, err := c.Exists(ctx, FolderKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to check folder: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
