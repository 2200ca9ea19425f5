package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"storefront/catnav/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	snapshotKey = "catnav:snapshot:latest"
	importedKey = "catnav:progress:imported"
)

// StateManager caches the latest category snapshot and tracks which rail
// categories an import run has completed.
type StateManager interface {
	GetSnapshot(ctx context.Context) ([]*domain.Category, error)
	SetSnapshot(ctx context.Context, categories []*domain.Category) error
	MarkImported(ctx context.Context, name string) error
	ImportedCategories(ctx context.Context) ([]string, error)
	ResetProgress(ctx context.Context) error
}

type redisStateManager struct {
	redisClient *redis.Client
	snapshotTTL time.Duration
}

func NewRedisStateManager(redisClient *redis.Client, snapshotTTL time.Duration) StateManager {
	return &redisStateManager{
		redisClient: redisClient,
		snapshotTTL: snapshotTTL,
	}
}

// GetSnapshot returns nil without error on a cache miss.
func (s *redisStateManager) GetSnapshot(ctx context.Context) ([]*domain.Category, error) {
	val, err := s.redisClient.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached snapshot: %w", err)
	}

	var categories []*domain.Category
	if err := json.Unmarshal(val, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode cached snapshot: %w", err)
	}
	return categories, nil
}

func (s *redisStateManager) SetSnapshot(ctx context.Context, categories []*domain.Category) error {
	data, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if err := s.redisClient.Set(ctx, snapshotKey, data, s.snapshotTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache snapshot: %w", err)
	}
	return nil
}

func (s *redisStateManager) MarkImported(ctx context.Context, name string) error {
	if err := s.redisClient.SAdd(ctx, importedKey, name).Err(); err != nil {
		return fmt.Errorf("failed to mark category %s as imported: %w", name, err)
	}
	return nil
}

func (s *redisStateManager) ImportedCategories(ctx context.Context) ([]string, error) {
	names, err := s.redisClient.SMembers(ctx, importedKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list imported categories: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

func (s *redisStateManager) ResetProgress(ctx context.Context) error {
	if err := s.redisClient.Del(ctx, importedKey).Err(); err != nil {
		return fmt.Errorf("failed to reset import progress: %w", err)
	}
	return nil
}
