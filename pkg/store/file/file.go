// Package file stores workflow definitions as one JSON document per
// workflow under a root directory. It suits development and single-node
// deployments; use the postgres store when several processes share state.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/store"
)

// Store keeps workflows under <root>/workflows/<id>.json.
type Store struct {
	root   string
	logger *slog.Logger
}

func NewStore(root string, logger *slog.Logger) *Store {
	return &Store{
		root:   root,
		logger: logger.With("module", "store.file"),
	}
}

func (s *Store) workflowsDir() string {
	return filepath.Join(s.root, "workflows")
}

func (s *Store) workflowPath(id string) string {
	return filepath.Clean(filepath.Join(s.workflowsDir(), id+".json"))
}

// Workflows returns every stored workflow, newest first.
func (s *Store) Workflows(ctx context.Context) ([]*models.Workflow, error) {
	dir := s.workflowsDir()
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return []*models.Workflow{}, nil
	}

	files, err := fs.Glob(os.DirFS(dir), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow files: %w", err)
	}

	workflows := make([]*models.Workflow, 0, len(files))

	for _, file := range files {
		id := strings.TrimSuffix(file, ".json")

		workflow, err := s.WorkflowByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load workflow %s: %w", id, err)
		}

		workflows = append(workflows, workflow)
	}

	sort.Slice(workflows, func(i, j int) bool {
		return workflows[i].CreatedAt.After(workflows[j].CreatedAt)
	})

	return workflows, nil
}

// WorkflowByID loads one workflow document.
func (s *Store) WorkflowByID(_ context.Context, id string) (*models.Workflow, error) {
	body, err := os.ReadFile(s.workflowPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("workflow %s: %w", id, store.ErrWorkflowNotFound)
		}

		return nil, fmt.Errorf("failed to read workflow %s: %w", id, err)
	}

	var workflow models.Workflow
	if err := json.Unmarshal(body, &workflow); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow %s: %w", id, err)
	}

	return &workflow, nil
}

// SaveWorkflow writes the workflow document, stamping CreatedAt on first
// save and UpdatedAt on every save.
func (s *Store) SaveWorkflow(_ context.Context, workflow *models.Workflow) error {
	if workflow == nil || workflow.ID == "" {
		return errors.New("workflow must have an id")
	}

	if err := os.MkdirAll(s.workflowsDir(), 0750); err != nil {
		return fmt.Errorf("failed to create workflows directory: %w", err)
	}

	now := time.Now().UTC()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	data, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal workflow %s: %w", workflow.ID, err)
	}

	return os.WriteFile(s.workflowPath(workflow.ID), data, 0600)
}

// DeleteWorkflow removes the workflow document.
func (s *Store) DeleteWorkflow(_ context.Context, id string) error {
	err := os.Remove(s.workflowPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("workflow %s: %w", id, store.ErrWorkflowNotFound)
	}

	if err != nil {
		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}

	return nil
}

// HealthCheck verifies the root directory is usable.
func (s *Store) HealthCheck(_ context.Context) error {
	if err := os.MkdirAll(s.workflowsDir(), 0750); err != nil {
		return fmt.Errorf("store root is not writable: %w", err)
	}

	return nil
}

// Close is a no-op; file handles never outlive a call.
func (s *Store) Close(_ context.Context) error {
	return nil
}
