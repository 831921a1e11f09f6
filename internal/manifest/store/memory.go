// Package store persists manifests. Implementations assign IDs on create and
// enforce the forward-only status lifecycle; services translate the sentinel
// errors returned here into domain errors.
package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/google/uuid"

	"borderlink/internal/manifest/models"
	"borderlink/pkg/platform/sentinel"
	"borderlink/pkg/requestcontext"
)

// Memory is an in-memory manifest store for tests and local development.
type Memory struct {
	mu        sync.RWMutex
	manifests map[uuid.UUID]*models.Manifest
}

func NewMemory() *Memory {
	return &Memory{manifests: make(map[uuid.UUID]*models.Manifest)}
}

// Create assigns an ID and persists the manifest. The ID is immutable after
// this call; passing a manifest that already has one is a conflict.
func (s *Memory) Create(_ context.Context, m *models.Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID != uuid.Nil {
		return sentinel.ErrConflict
	}
	m.ID = uuid.New()

	clone := *m
	s.manifests[m.ID] = &clone
	return nil
}

func (s *Memory) Get(_ context.Context, id uuid.UUID) (*models.Manifest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.manifests[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *m
	return &clone, nil
}

// ListByOwner returns all manifests for an owner, newest first.
func (s *Memory) ListByOwner(_ context.Context, ownerID string) ([]*models.Manifest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Manifest
	for _, m := range s.manifests {
		if m.OwnerID == ownerID {
			clone := *m
			out = append(out, &clone)
		}
	}
	sortByCreatedDesc(out)
	return out, nil
}

// UpdateDraft overwrites the mutable fields of a stored draft. Records past
// draft return ErrInvalidState untouched.
func (s *Memory) UpdateDraft(ctx context.Context, m *models.Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.manifests[m.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if cur.Status != models.StatusDraft {
		return sentinel.ErrInvalidState
	}
	cur.ManifestType = m.ManifestType
	cur.TripNumber = m.TripNumber
	cur.PortOfEntry = m.PortOfEntry
	cur.EstimatedArrival = m.EstimatedArrival
	cur.UpdatedAt = requestcontext.Now(ctx)
	return nil
}

// UpdateStatus applies a lifecycle transition. Illegal transitions return
// ErrInvalidState and leave the record untouched.
func (s *Memory) UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status, gatewayResponse json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.manifests[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	if !m.Status.CanTransitionTo(status) {
		return sentinel.ErrInvalidState
	}
	m.Status = status
	if gatewayResponse != nil {
		m.GatewayResponse = gatewayResponse
	}
	m.UpdatedAt = requestcontext.Now(ctx)
	return nil
}

func sortByCreatedDesc(manifests []*models.Manifest) {
	sort.Slice(manifests, func(i, j int) bool {
		return manifests[i].CreatedAt.After(manifests[j].CreatedAt)
	})
}
