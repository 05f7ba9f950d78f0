// Package cmd provides common initialization helpers for the command-line
// entrypoints.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jalleo/nodion/pkg/store"
	"github.com/jalleo/nodion/pkg/store/file"
	"github.com/jalleo/nodion/pkg/store/postgres"
)

var supportedStoreSchemes = []string{"file", "postgres", "postgresql"}

// NewStore builds the workflow store the URL scheme selects. Postgres URLs
// pass through whole; anything else is treated as a file root, with an
// optional file:// prefix.
func NewStore(ctx context.Context, logger *slog.Logger, storeURL string) (store.Store, error) {
	scheme, rest := splitStoreURL(storeURL)

	switch scheme {
	case "postgres", "postgresql":
		return postgres.NewStore(ctx, logger, storeURL)
	default:
		return file.NewStore(rest, logger), nil
	}
}

func splitStoreURL(storeURL string) (scheme, rest string) {
	parts := strings.SplitN(storeURL, "://", 2)
	if len(parts) != 2 {
		return "file", storeURL
	}

	for _, supported := range supportedStoreSchemes {
		if parts[0] == supported {
			return parts[0], parts[1]
		}
	}

	return "file", storeURL
}
