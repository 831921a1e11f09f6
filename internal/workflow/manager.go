package workflow

import (
	"context"
	"log/slog"
	"sync"
)

// Manager hands out one session per owner. Sessions are created lazily and
// resume any checkpointed draft on first access.
type Manager struct {
	intake      IntakeClient
	submitter   Submitter
	checkpoints DraftStore
	logger      *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(intakeClient IntakeClient, submitter Submitter, checkpoints DraftStore, logger *slog.Logger) *Manager {
	return &Manager{
		intake:      intakeClient,
		submitter:   submitter,
		checkpoints: checkpoints,
		logger:      logger,
		sessions:    make(map[string]*Session),
	}
}

// Session returns the owner's workflow session, creating it if needed.
func (m *Manager) Session(ctx context.Context, ownerID string) *Session {
	m.mu.Lock()
	s, ok := m.sessions[ownerID]
	if !ok {
		s = NewSession(ownerID, m.intake, m.submitter, m.checkpoints, m.logger)
		m.sessions[ownerID] = s
	}
	m.mu.Unlock()

	if !ok {
		if err := s.Resume(ctx); err != nil {
			m.logger.WarnContext(ctx, "failed to resume checkpointed draft",
				"owner_id", ownerID,
				"error", err,
			)
		}
	}
	return s
}
