package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore guarda usuarios cuyas sesiones ya no deben aceptarse.
type RevocationStore interface {
	Revoke(userID string, ttl time.Duration) error
	IsRevoked(userID string) (bool, error)
}

type memoryRevocationStore struct {
	mu    sync.Mutex
	items map[string]time.Time
}

func NewMemoryRevocationStore() RevocationStore {
	return &memoryRevocationStore{
		items: make(map[string]time.Time),
	}
}

func (s *memoryRevocationStore) Revoke(userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(userID) == "" {
		return nil
	}
	s.items[userID] = time.Now().UTC().Add(ttl)
	return nil
}

func (s *memoryRevocationStore) IsRevoked(userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.items[userID]
	if !ok {
		return false, nil
	}
	if time.Now().UTC().After(exp) {
		delete(s.items, userID)
		return false, nil
	}
	return true, nil
}

type redisKVClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisRevocationStore struct {
	client redisKVClient
	prefix string
}

func NewRedisRevocationStore(client *redis.Client) RevocationStore {
	if client == nil {
		return nil
	}
	return &redisRevocationStore{
		client: client,
		prefix: "auth:revoked:",
	}
}

func (s *redisRevocationStore) Revoke(userID string, ttl time.Duration) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return s.client.Set(ctx, s.prefix+userID, "1", ttl).Err()
}

func (s *redisRevocationStore) IsRevoked(userID string) (bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	n, err := s.client.Exists(ctx, s.prefix+userID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
