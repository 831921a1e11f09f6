package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"borderlink/internal/manifest/models"
	"borderlink/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *Memory
	ctx   context.Context
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemory()
	s.ctx = context.Background()
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) newManifest(owner string) *models.Manifest {
	now := time.Now()
	return &models.Manifest{
		OwnerID:          owner,
		ManifestType:     models.TypeACE,
		TripNumber:       "TR100",
		PortOfEntry:      "0901",
		EstimatedArrival: now.Add(12 * time.Hour),
		Status:           models.StatusDraft,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func (s *MemoryStoreSuite) TestCreateAssignsID() {
	m := s.newManifest("owner-1")
	s.Require().NoError(s.store.Create(s.ctx, m))
	s.NotEqual(uuid.Nil, m.ID)

	found, err := s.store.Get(s.ctx, m.ID)
	s.Require().NoError(err)
	s.Equal("TR100", found.TripNumber)
	s.Equal(models.StatusDraft, found.Status)
}

func (s *MemoryStoreSuite) TestCreateRejectsPresetID() {
	m := s.newManifest("owner-1")
	m.ID = uuid.New()
	s.Require().ErrorIs(s.store.Create(s.ctx, m), sentinel.ErrConflict)
}

func (s *MemoryStoreSuite) TestGetUnknownID() {
	_, err := s.store.Get(s.ctx, uuid.New())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestListByOwnerNewestFirst() {
	first := s.newManifest("owner-1")
	s.Require().NoError(s.store.Create(s.ctx, first))
	second := s.newManifest("owner-1")
	second.CreatedAt = first.CreatedAt.Add(time.Minute)
	s.Require().NoError(s.store.Create(s.ctx, second))
	other := s.newManifest("owner-2")
	s.Require().NoError(s.store.Create(s.ctx, other))

	list, err := s.store.ListByOwner(s.ctx, "owner-1")
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(second.ID, list[0].ID)
	s.Equal(first.ID, list[1].ID)
}

func (s *MemoryStoreSuite) TestStatusTransitions() {
	m := s.newManifest("owner-1")
	s.Require().NoError(s.store.Create(s.ctx, m))

	s.Run("draft to submitted records gateway response", func() {
		ack := []byte(`{"status":"queued"}`)
		s.Require().NoError(s.store.UpdateStatus(s.ctx, m.ID, models.StatusSubmitted, ack))

		found, err := s.store.Get(s.ctx, m.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusSubmitted, found.Status)
		s.JSONEq(`{"status":"queued"}`, string(found.GatewayResponse))
	})

	s.Run("submitted to approved", func() {
		s.Require().NoError(s.store.UpdateStatus(s.ctx, m.ID, models.StatusApproved, nil))
	})

	s.Run("terminal status is frozen", func() {
		err := s.store.UpdateStatus(s.ctx, m.ID, models.StatusRejected, nil)
		s.Require().ErrorIs(err, sentinel.ErrInvalidState)
	})
}

func (s *MemoryStoreSuite) TestBackwardTransitionRejected() {
	m := s.newManifest("owner-1")
	s.Require().NoError(s.store.Create(s.ctx, m))
	s.Require().NoError(s.store.UpdateStatus(s.ctx, m.ID, models.StatusSubmitted, nil))

	err := s.store.UpdateStatus(s.ctx, m.ID, models.StatusDraft, nil)
	s.Require().ErrorIs(err, sentinel.ErrInvalidState)
}

func (s *MemoryStoreSuite) TestUpdateDraft() {
	m := s.newManifest("owner-1")
	s.Require().NoError(s.store.Create(s.ctx, m))

	m.TripNumber = "TR200"
	m.PortOfEntry = "0712"
	s.Require().NoError(s.store.UpdateDraft(s.ctx, m))

	found, err := s.store.Get(s.ctx, m.ID)
	s.Require().NoError(err)
	s.Equal("TR200", found.TripNumber)
	s.Equal("0712", found.PortOfEntry)
}

func (s *MemoryStoreSuite) TestUpdateDraftRejectsSubmitted() {
	m := s.newManifest("owner-1")
	s.Require().NoError(s.store.Create(s.ctx, m))
	s.Require().NoError(s.store.UpdateStatus(s.ctx, m.ID, models.StatusSubmitted, nil))

	m.TripNumber = "TR200"
	s.Require().ErrorIs(s.store.UpdateDraft(s.ctx, m), sentinel.ErrInvalidState)

	found, err := s.store.Get(s.ctx, m.ID)
	s.Require().NoError(err)
	s.Equal("TR100", found.TripNumber)
}

func (s *MemoryStoreSuite) TestUpdateDraftUnknownID() {
	m := s.newManifest("owner-1")
	m.ID = uuid.New()
	s.Require().ErrorIs(s.store.UpdateDraft(s.ctx, m), sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestGetReturnsCopy() {
	m := s.newManifest("owner-1")
	s.Require().NoError(s.store.Create(s.ctx, m))

	found, err := s.store.Get(s.ctx, m.ID)
	s.Require().NoError(err)
	found.TripNumber = "mutated"

	again, err := s.store.Get(s.ctx, m.ID)
	s.Require().NoError(err)
	s.Equal("TR100", again.TripNumber)
}
