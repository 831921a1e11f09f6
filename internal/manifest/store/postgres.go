package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"borderlink/internal/manifest/models"
	"borderlink/pkg/platform/sentinel"
	"borderlink/pkg/requestcontext"
)

// Postgres persists manifests in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed manifest store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate creates the manifests table if it does not exist. Kept here rather
// than in a migration tool so the integration tests stay self-contained.
func (s *Postgres) Migrate(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS manifests (
	id UUID PRIMARY KEY,
	owner_id TEXT NOT NULL,
	manifest_type TEXT NOT NULL,
	trip_number TEXT NOT NULL,
	port_of_entry TEXT NOT NULL,
	estimated_arrival TIMESTAMPTZ NOT NULL,
	status TEXT NOT NULL,
	gateway_response JSONB,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS manifests_owner_idx ON manifests (owner_id, created_at DESC);`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("migrate manifests: %w", err)
	}
	return nil
}

func (s *Postgres) Create(ctx context.Context, m *models.Manifest) error {
	if m.ID != uuid.Nil {
		return sentinel.ErrConflict
	}
	m.ID = uuid.New()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO manifests (id, owner_id, manifest_type, trip_number, port_of_entry,
			estimated_arrival, status, gateway_response, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		m.ID, m.OwnerID, string(m.ManifestType), m.TripNumber, m.PortOfEntry,
		m.EstimatedArrival, string(m.Status), nullRaw(m.GatewayResponse), m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create manifest: %w", err)
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, id uuid.UUID) (*models.Manifest, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, manifest_type, trip_number, port_of_entry,
			estimated_arrival, status, gateway_response, created_at, updated_at
		FROM manifests WHERE id = $1`, id)
	return scanManifest(row)
}

func (s *Postgres) ListByOwner(ctx context.Context, ownerID string) ([]*models.Manifest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, manifest_type, trip_number, port_of_entry,
			estimated_arrival, status, gateway_response, created_at, updated_at
		FROM manifests WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list manifests: %w", err)
	}
	defer rows.Close()

	var out []*models.Manifest
	for rows.Next() {
		m, err := scanManifest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// UpdateDraft overwrites the mutable fields of a stored draft. The status
// predicate keeps records past draft untouched.
func (s *Postgres) UpdateDraft(ctx context.Context, m *models.Manifest) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE manifests
		SET manifest_type = $2, trip_number = $3, port_of_entry = $4,
			estimated_arrival = $5, updated_at = $6
		WHERE id = $1 AND status = $7`,
		m.ID, string(m.ManifestType), m.TripNumber, m.PortOfEntry,
		m.EstimatedArrival, requestcontext.Now(ctx), string(models.StatusDraft))
	if err != nil {
		return fmt.Errorf("update manifest draft: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update manifest draft: %w", err)
	}
	if n == 0 {
		var status string
		err := s.db.QueryRowContext(ctx, `SELECT status FROM manifests WHERE id = $1`, m.ID).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load manifest status: %w", err)
		}
		return sentinel.ErrInvalidState
	}
	return nil
}

// UpdateStatus applies a lifecycle transition inside a transaction so the
// forward-only check and the write are atomic under concurrent updates.
func (s *Postgres) UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status, gatewayResponse json.RawMessage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin status update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM manifests WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load manifest status: %w", err)
	}
	if !models.Status(current).CanTransitionTo(status) {
		return sentinel.ErrInvalidState
	}

	if gatewayResponse != nil {
		_, err = tx.ExecContext(ctx,
			`UPDATE manifests SET status = $2, gateway_response = $3, updated_at = $4 WHERE id = $1`,
			id, string(status), []byte(gatewayResponse), requestcontext.Now(ctx))
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE manifests SET status = $2, updated_at = $3 WHERE id = $1`,
			id, string(status), requestcontext.Now(ctx))
	}
	if err != nil {
		return fmt.Errorf("update manifest status: %w", err)
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanManifest(row rowScanner) (*models.Manifest, error) {
	var (
		m            models.Manifest
		manifestType string
		status       string
		response     []byte
	)
	err := row.Scan(&m.ID, &m.OwnerID, &manifestType, &m.TripNumber, &m.PortOfEntry,
		&m.EstimatedArrival, &status, &response, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan manifest: %w", err)
	}
	m.ManifestType = models.ManifestType(manifestType)
	m.Status = models.Status(status)
	if len(response) > 0 {
		m.GatewayResponse = json.RawMessage(response)
	}
	return &m, nil
}

func nullRaw(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
