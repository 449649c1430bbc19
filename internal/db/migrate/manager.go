package dbmigrate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"github.com/roivaz/commitforge/internal/db"
)

// Manager applies the chunk store schema migrations.
type Manager struct {
	migrator *migrate.Migrator
}

// State describes one migration as recorded in the bookkeeping table.
type State struct {
	Name      string // "<version>_<comment>"
	Applied   bool
	AppliedAt time.Time
	Group     int64
}

func NewManagerWithFS(bunDB *bun.DB, fsys fs.FS) (*Manager, error) {
	if bunDB == nil {
		return nil, errors.New("database is required")
	}
	if fsys == nil {
		return nil, errors.New("migrations filesystem is required")
	}
	migrations := migrate.NewMigrations()
	if err := migrations.Discover(fsys); err != nil {
		return nil, fmt.Errorf("discover migrations: %w", err)
	}
	return &Manager{migrator: migrate.NewMigrator(bunDB, migrations)}, nil
}

// Open reads migrations from dir, or from the set embedded in the binary
// when dir is empty.
func Open(bunDB *bun.DB, dir string) (*Manager, error) {
	if dir == "" {
		return NewManagerWithFS(bunDB, db.MigrationsFS())
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve migrations dir: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("migrations dir: %w", err)
	}
	return NewManagerWithFS(bunDB, os.DirFS(abs))
}

func (m *Manager) Init(ctx context.Context) error {
	return m.migrator.Init(ctx)
}

// Up creates the bookkeeping tables if needed and applies every pending
// migration as one group. It returns the names applied.
func (m *Manager) Up(ctx context.Context) ([]string, error) {
	if err := m.Init(ctx); err != nil {
		return nil, fmt.Errorf("init migrations: %w", err)
	}
	group, err := m.migrator.Migrate(ctx)
	if err != nil {
		return nil, err
	}
	return groupNames(group), nil
}

// Down rolls back the last steps groups, or all of them when steps is 0.
func (m *Manager) Down(ctx context.Context, steps int) ([]string, error) {
	if steps < 0 {
		return nil, errors.New("steps must be >= 0")
	}
	var undone []string
	for i := 0; steps == 0 || i < steps; i++ {
		group, err := m.migrator.Rollback(ctx)
		if err != nil {
			return undone, err
		}
		if group == nil || group.IsZero() {
			break
		}
		undone = append(undone, groupNames(group)...)
	}
	return undone, nil
}

// Report lists every known migration with its applied state, oldest first.
func (m *Manager) Report(ctx context.Context) ([]State, error) {
	status, err := m.migrator.MigrationsWithStatus(ctx)
	if err != nil {
		return nil, err
	}
	return states(status), nil
}

// Pending lists the names of migrations not yet applied.
func (m *Manager) Pending(ctx context.Context) ([]string, error) {
	report, err := m.Report(ctx)
	if err != nil {
		return nil, err
	}
	return pendingNames(report), nil
}

func states(status migrate.MigrationSlice) []State {
	out := make([]State, 0, len(status))
	for _, mig := range status {
		out = append(out, State{
			Name:      migrationName(mig),
			Applied:   mig.IsApplied(),
			AppliedAt: mig.MigratedAt,
			Group:     mig.GroupID,
		})
	}
	return out
}

func pendingNames(report []State) []string {
	var pending []string
	for _, s := range report {
		if !s.Applied {
			pending = append(pending, s.Name)
		}
	}
	return pending
}

func groupNames(group *migrate.MigrationGroup) []string {
	if group == nil || group.IsZero() {
		return nil
	}
	names := make([]string, 0, len(group.Migrations))
	for _, mig := range group.Migrations {
		names = append(names, migrationName(mig))
	}
	return names
}

func migrationName(mig migrate.Migration) string {
	if mig.Comment == "" {
		return mig.Name
	}
	return mig.Name + "_" + mig.Comment
}
