package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisAlertStateStore persists the SLA monitor's last emitted
// classification per ticket in Redis, keeping alerts idempotent across
// process restarts.
type redisAlertStateStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisAlertStateStore builds the redis-backed store. Keys expire after
// ttl so closed tickets do not accumulate forever.
func NewRedisAlertStateStore(client *redis.Client, ttl time.Duration) *redisAlertStateStore {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &redisAlertStateStore{client: client, ttl: ttl}
}

func alertStateKey(ticketID string) string {
	return "sla:last_classification:" + ticketID
}

func (s *redisAlertStateStore) LastClassification(ctx context.Context, ticketID string) (string, error) {
	value, err := s.client.Get(ctx, alertStateKey(ticketID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *redisAlertStateStore) SetClassification(ctx context.Context, ticketID, classification string) error {
	return s.client.Set(ctx, alertStateKey(ticketID), classification, s.ttl).Err()
}

// memoryAlertStateStore is the fallback when Redis is not configured.
type memoryAlertStateStore struct {
	mu    sync.RWMutex
	state map[string]string
}

// NewMemoryAlertStateStore builds the in-memory store.
func NewMemoryAlertStateStore() *memoryAlertStateStore {
	return &memoryAlertStateStore{state: make(map[string]string)}
}

func (s *memoryAlertStateStore) LastClassification(_ context.Context, ticketID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state[ticketID], nil
}

func (s *memoryAlertStateStore) SetClassification(_ context.Context, ticketID, classification string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state[ticketID] = classification
	return nil
}
