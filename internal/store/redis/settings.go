package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/scanvault/internal/domain"
)

// GetRecognitionToken returns the runtime token, or "" when none is set.
func (s *Store) GetRecognitionToken(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, KeyRecognitionToken).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil // Not set
		}
		return "", fmt.Errorf("failed to get recognition token: %w", err)
	}
	return token, nil
}

// SetRecognitionToken stores the runtime token without expiry.
func (s *Store) SetRecognitionToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: token must not be empty", domain.ErrInvalidInput)
	}
	if err := s.client.Set(ctx, KeyRecognitionToken, token, 0).Err(); err != nil {
		return fmt.Errorf("failed to set recognition token: %w", err)
	}
	return nil
}

// ClearRecognitionToken removes the runtime token; the configured one applies again.
func (s *Store) ClearRecognitionToken(ctx context.Context) error {
	if err := s.client.Del(ctx, KeyRecognitionToken).Err(); err != nil {
		return fmt.Errorf("failed to clear recognition token: %w", err)
	}
	return nil
}
