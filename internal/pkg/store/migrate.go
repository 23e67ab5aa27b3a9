package store

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/ougirez/certzone/internal/pkg/logger"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies every embedded migration in name order inside one transaction.
// The statements are idempotent, so running it again is harmless.
func Migrate(ctx context.Context, pool Pool) error {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, name := range names {
		body, err := migrations.ReadFile(name)
		if err != nil {
			return err
		}
		// без аргументов pgx идет через simple protocol, несколько statement'ов в одном Exec ок
		if _, err = tx.Exec(ctx, string(body)); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
		logger.Infof(ctx, "migration %s applied", name)
	}

	return tx.Commit(ctx)
}
