package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/scanvault/internal/domain"
	"github.com/MrSnakeDoc/scanvault/internal/store"
)

// maxTxRetries bounds optimistic transaction retries when a watched key changes.
const maxTxRetries = 10

// Store is the durable collection backend. Cards and folders are JSON
// values; sets index all ids and the card ids of every folder.
type Store struct {
	client *redis.Client
	now    func() time.Time
}

var _ store.Backend = (*Store)(nil)

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		now:    time.Now,
	}
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// AddCard stores a card, assigning ID and DateAdded when unset.
func (s *Store) AddCard(ctx context.Context, card *domain.Card) error {
	if err := store.PrepareCard(card, s.now()); err != nil {
		return err
	}
	data, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("failed to marshal card: %w", err)
	}

	write := func(tx *redis.Tx) error {
		if card.FolderID != nil {
			if err := requireFolder(ctx, tx, *card.FolderID); err != nil {
				return err
			}
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, CardKey(card.ID), data, 0)
			pipe.SAdd(ctx, AllCardsKey(), card.ID)
			if card.FolderID != nil {
				pipe.SAdd(ctx, FolderCardsKey(*card.FolderID), card.ID)
			}
			return nil
		})
		return err
	}

	keys := []string{CardKey(card.ID)}
	if card.FolderID != nil {
		keys = append(keys, FolderKey(*card.FolderID))
	}
	if err := s.watch(ctx, write, keys...); err != nil {
		return fmt.Errorf("failed to save card: %w", err)
	}
	return nil
}

// GetCard retrieves a card from Redis by ID
func (s *Store) GetCard(ctx context.Context, id string) (*domain.Card, error) {
	return getCard(ctx, s.client, id)
}

// UpdateCard applies patch under an optimistic lock on the card key.
func (s *Store) UpdateCard(ctx context.Context, id string, patch domain.CardPatch) (*domain.Card, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	var updated *domain.Card
	write := func(tx *redis.Tx) error {
		card, err := getCard(ctx, tx, id)
		if err != nil {
			return err
		}
		patch.Apply(card)
		data, err := json.Marshal(card)
		if err != nil {
			return fmt.Errorf("failed to marshal card: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, CardKey(id), data, 0)
			return nil
		})
		updated = card
		return err
	}

	if err := s.watch(ctx, write, CardKey(id)); err != nil {
		return nil, wrapUnlessDomain("failed to update card", err)
	}
	return updated, nil
}

// DeleteCard removes a card and its index entries
func (s *Store) DeleteCard(ctx context.Context, id string) error {
	write := func(tx *redis.Tx) error {
		card, err := getCard(ctx, tx, id)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, CardKey(id))
			pipe.SRem(ctx, AllCardsKey(), id)
			if card.FolderID != nil {
				pipe.SRem(ctx, FolderCardsKey(*card.FolderID), id)
			}
			return nil
		})
		return err
	}

	if err := s.watch(ctx, write, CardKey(id)); err != nil {
		return wrapUnlessDomain("failed to delete card", err)
	}
	return nil
}

// ListCards retrieves all cards, oldest first
func (s *Store) ListCards(ctx context.Context) ([]*domain.Card, error) {
	ids, err := s.client.SMembers(ctx, AllCardsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get card IDs: %w", err)
	}
	if len(ids) == 0 {
		return []*domain.Card{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = CardKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get cards: %w", err)
	}

	cards := make([]*domain.Card, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Skip ids whose value vanished between SMEMBERS and MGET
			continue
		}
		var card domain.Card
		if err := json.Unmarshal([]byte(raw), &card); err != nil {
			continue
		}
		cards = append(cards, &card)
	}

	store.SortCards(cards)
	return cards, nil
}

// ClearCards removes every card and empties every folder. Folders are kept.
// Cards are deleted by the ids in the card index inside one watched
// transaction, so a card added concurrently is either cleared or kept whole.
func (s *Store) ClearCards(ctx context.Context) error {
	wipe := func(tx *redis.Tx) error {
		cardIDs, err := tx.SMembers(ctx, AllCardsKey()).Result()
		if err != nil {
			return fmt.Errorf("failed to get card IDs: %w", err)
		}
		folderIDs, err := tx.SMembers(ctx, AllFoldersKey()).Result()
		if err != nil {
			return fmt.Errorf("failed to get folder IDs: %w", err)
		}

		keys := make([]string, 0, len(cardIDs)+len(folderIDs)+1)
		keys = append(keys, AllCardsKey())
		for _, id := range cardIDs {
			keys = append(keys, CardKey(id))
		}
		for _, id := range folderIDs {
			keys = append(keys, FolderCardsKey(id))
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, keys...)
			return nil
		})
		return err
	}

	if err := s.watch(ctx, wipe, AllCardsKey(), AllFoldersKey()); err != nil {
		return fmt.Errorf("failed to clear cards: %w", err)
	}
	return nil
}

// Stats returns the number of cards and folders.
func (s *Store) Stats(ctx context.Context) (cards, folders int64, err error) {
	pipe := s.client.Pipeline()
	cardCount := pipe.SCard(ctx, AllCardsKey())
	folderCount := pipe.SCard(ctx, AllFoldersKey())
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to count collection: %w", err)
	}
	return cardCount.Val(), folderCount.Val(), nil
}

// watch runs fn in an optimistic transaction over keys, retrying when a
// watched key changed underneath.
func (s *Store) watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error {
	for range maxTxRetries {
		err := s.client.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("transaction on %v kept conflicting after %d attempts", keys, maxTxRetries)
}

// reader is the subset of commands shared by *redis.Client and *redis.Tx.
type reader interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

// getCard works on both the client and a transaction.
func getCard(ctx context.Context, c reader, id string) (*domain.Card, error) {
	data, err := c.Get(ctx, CardKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("card %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}

	var card domain.Card
	if err := json.Unmarshal(data, &card); err != nil {
		return nil, fmt.Errorf("failed to unmarshal card: %w", err)
	}
	return &card, nil
}

// wrapUnlessDomain keeps domain sentinels readable at the top of the chain.
func wrapUnlessDomain(msg string, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}
