package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"borderlink/internal/manifest/models"
	"borderlink/internal/platform/redis"
)

// DraftStore checkpoints in-progress drafts so a review survives a process
// restart. Implementations return (nil, nil) when no draft is saved.
type DraftStore interface {
	Save(ctx context.Context, ownerID string, draft *models.Bundle) error
	Load(ctx context.Context, ownerID string) (*models.Bundle, error)
	Delete(ctx context.Context, ownerID string) error
}

// MemoryDraftStore keeps checkpoints in-process. Default when Redis is not
// configured; restart recovery is then best-effort only.
type MemoryDraftStore struct {
	mu     sync.RWMutex
	drafts map[string][]byte
}

func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{drafts: make(map[string][]byte)}
}

func (s *MemoryDraftStore) Save(_ context.Context, ownerID string, draft *models.Bundle) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[ownerID] = raw
	return nil
}

func (s *MemoryDraftStore) Load(_ context.Context, ownerID string) (*models.Bundle, error) {
	s.mu.RLock()
	raw, ok := s.drafts[ownerID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	var draft models.Bundle
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

func (s *MemoryDraftStore) Delete(_ context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, ownerID)
	return nil
}

// RedisDraftStore checkpoints drafts in Redis with a TTL so abandoned drafts
// expire on their own.
type RedisDraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDraftStore(client *redis.Client, ttl time.Duration) *RedisDraftStore {
	return &RedisDraftStore{client: client, ttl: ttl}
}

func draftKey(ownerID string) string {
	return "borderlink:draft:" + ownerID
}

func (s *RedisDraftStore) Save(ctx context.Context, ownerID string, draft *models.Bundle) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, draftKey(ownerID), raw, s.ttl).Err()
}

func (s *RedisDraftStore) Load(ctx context.Context, ownerID string) (*models.Bundle, error) {
	raw, err := s.client.Get(ctx, draftKey(ownerID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var draft models.Bundle
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

func (s *RedisDraftStore) Delete(ctx context.Context, ownerID string) error {
	return s.client.Del(ctx, draftKey(ownerID)).Err()
}
