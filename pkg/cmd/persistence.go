// Package cmd provides the shared wiring helpers used by the binaries.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hireflowhq/hireflow/pkg/persistence"
	"github.com/hireflowhq/hireflow/pkg/persistence/file"
	"github.com/hireflowhq/hireflow/pkg/persistence/postgresql"
)

// NewPersistence selects the persistence backend from the database URL
// scheme: postgres:// and postgresql:// use PostgreSQL, anything else is
// treated as a file root.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch parsePersistenceProvider(databaseURL) {
	case "postgres", "postgresql":
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	default:
		return file.NewPersistence(databaseURL), nil
	}
}

func parsePersistenceProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return provider
}
