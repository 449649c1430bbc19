package dbmigrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
)

// EnsureCurrent fails when chunk store migrations are pending, unless
// autoMigrate is set, in which case they are applied. An empty dir uses
// the embedded migrations.
func EnsureCurrent(ctx context.Context, bunDB *bun.DB, dir string, autoMigrate bool) error {
	manager, err := Open(bunDB, dir)
	if err != nil {
		return err
	}
	if err := manager.Init(ctx); err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	pending, err := manager.Pending(ctx)
	if err != nil {
		return fmt.Errorf("fetch migration status: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}
	if !autoMigrate {
		return fmt.Errorf("schema is behind by %d migration(s) (%s); run 'dbctl migrate up' or set AUTO_MIGRATE=true",
			len(pending), strings.Join(pending, ", "))
	}
	if _, err := manager.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
