package store

import "errors"

// ErrWorkflowNotFound is returned by lookups and deletes when no workflow
// carries the requested ID. Callers map it to their own not-found shapes.
var ErrWorkflowNotFound = errors.New("workflow not found")
