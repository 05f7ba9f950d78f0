// Package postgres stores workflow definitions in PostgreSQL, one JSONB
// document per workflow. Queryable columns (name, active, owner) are kept
// alongside the document; the document itself is the source of truth.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq" // postgres driver

	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/store"
)

// Store is the PostgreSQL-backed workflow store.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore connects, pings, and migrates the schema.
func NewStore(ctx context.Context, logger *slog.Logger, databaseURL string) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{
		db:     db,
		logger: logger.With("module", "store.postgres"),
	}

	if err := runMigrations(ctx, s.logger, db, migrations()); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// Workflows returns every live workflow, newest first.
func (s *Store) Workflows(ctx context.Context) ([]*models.Workflow, error) {
	query := `
		SELECT document
		FROM workflows
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		var document []byte
		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		workflow, err := unmarshalDocument(document)
		if err != nil {
			return nil, err
		}

		workflows = append(workflows, workflow)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workflows: %w", err)
	}

	return workflows, nil
}

// WorkflowByID loads one workflow document.
func (s *Store) WorkflowByID(ctx context.Context, id string) (*models.Workflow, error) {
	query := `
		SELECT document
		FROM workflows
		WHERE id = $1 AND deleted_at IS NULL
	`

	var document []byte

	err := s.db.QueryRowContext(ctx, query, id).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("workflow %s: %w", id, store.ErrWorkflowNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load workflow %s: %w", id, err)
	}

	return unmarshalDocument(document)
}

// SaveWorkflow upserts the workflow document. Saving an ID that was soft
// deleted brings it back.
func (s *Store) SaveWorkflow(ctx context.Context, workflow *models.Workflow) error {
	if workflow == nil || workflow.ID == "" {
		return errors.New("workflow must have an id")
	}

	now := time.Now().UTC()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	document, err := json.Marshal(workflow)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow %s: %w", workflow.ID, err)
	}

	query := `
		INSERT INTO workflows (id, name, active, owner, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			active = EXCLUDED.active,
			owner = EXCLUDED.owner,
			document = EXCLUDED.document,
			updated_at = EXCLUDED.updated_at,
			deleted_at = NULL
	`

	_, err = s.db.ExecContext(ctx, query,
		workflow.ID, workflow.Name, workflow.Active, workflow.Owner,
		document, workflow.CreatedAt, workflow.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save workflow %s: %w", workflow.ID, err)
	}

	return nil
}

// DeleteWorkflow soft deletes by stamping deleted_at.
func (s *Store) DeleteWorkflow(ctx context.Context, id string) error {
	query := `
		UPDATE workflows
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete of workflow %s: %w", id, err)
	}

	if affected == 0 {
		return fmt.Errorf("workflow %s: %w", id, store.ErrWorkflowNotFound)
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *Store) Close(_ context.Context) error {
	if s.db == nil {
		return nil
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

func unmarshalDocument(document []byte) (*models.Workflow, error) {
	var workflow models.Workflow
	if err := json.Unmarshal(document, &workflow); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow document: %w", err)
	}

	return &workflow, nil
}
