package database

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Migrations holds the schema shipped with the binary
//
//go:embed migrations/*.sql
var Migrations embed.FS

// Migration is one numbered schema step, e.g. "002_generation_runs.sql"
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// SchemaVersion reads the version recorded in the file header (PRAGMA user_version)
func (db *DB) SchemaVersion() (int, error) {
	var v int
	if err := db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

// Migrate applies every step of fsys above the current schema version. Each
// step runs in its own transaction together with the version bump, so a
// failed step leaves the log at the previous version.
func (db *DB) Migrate(fsys fs.FS) error {
	steps, err := LoadMigrations(fsys)
	if err != nil {
		return err
	}

	current, err := db.SchemaVersion()
	if err != nil {
		return err
	}
	if latest := len(steps); current > latest {
		return fmt.Errorf("database %s is at schema %d, this build knows %d", db.path, current, latest)
	}

	for _, step := range steps[current:] {
		if err := db.apply(step); err != nil {
			return fmt.Errorf("migration %03d_%s: %w", step.Version, step.Name, err)
		}
		db.logger.Info("Schema migrated",
			zap.Int("version", step.Version),
			zap.String("name", step.Name))
	}
	return nil
}

func (db *DB) apply(step Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(step.SQL); err != nil {
		_ = tx.Rollback()
		return err
	}
	// user_version takes no bound parameters
	if _, err := tx.Exec("PRAGMA user_version = " + strconv.Itoa(step.Version)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// LoadMigrations reads the .sql files of fsys, ordered by version. Versions
// must run 1..N without gaps or repeats.
func LoadMigrations(fsys fs.FS) ([]Migration, error) {
	var steps []Migration
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(p, ".sql") {
			return err
		}

		prefix, name, ok := strings.Cut(strings.TrimSuffix(path.Base(p), ".sql"), "_")
		version, convErr := strconv.Atoi(prefix)
		if !ok || convErr != nil || version < 1 {
			return fmt.Errorf("migration file %s is not named NNN_name.sql", p)
		}

		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", p, err)
		}
		steps = append(steps, Migration{Version: version, Name: name, SQL: string(content)})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(steps, func(i, j int) bool { return steps[i].Version < steps[j].Version })
	for i, step := range steps {
		if step.Version != i+1 {
			return nil, fmt.Errorf("migration %03d_%s out of sequence, expected version %d", step.Version, step.Name, i+1)
		}
	}
	return steps, nil
}
