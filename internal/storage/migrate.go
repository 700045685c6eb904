package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// MigrateUp applies every up migration in name order.
func MigrateUp(db *sql.DB) error {
	return applyMigrations(db, ".up.sql", false)
}

// MigrateDown reverts in reverse name order.
func MigrateDown(db *sql.DB) error {
	return applyMigrations(db, ".down.sql", true)
}

func migrationNames(suffix string, reverse bool) ([]string, error) {
	entries, err := fs.Glob(migrationFiles, "migrations/*"+suffix)
	if err != nil {
		return nil, fmt.Errorf("glob migrations: %w", err)
	}
	if reverse {
		sort.Sort(sort.Reverse(sort.StringSlice(entries)))
	} else {
		sort.Strings(entries)
	}
	return entries, nil
}

func applyMigrations(db *sql.DB, suffix string, reverse bool) error {
	names, err := migrationNames(suffix, reverse)
	if err != nil {
		return err
	}
	for _, name := range names {
		sqlBytes, readErr := migrationFiles.ReadFile(name)
		if readErr != nil {
			return fmt.Errorf("read migration %s: %w", name, readErr)
		}
		if execErr := execInTx(db, string(sqlBytes)); execErr != nil {
			return fmt.Errorf("apply migration %s: %w", name, execErr)
		}
	}
	return nil
}

func execInTx(db *sql.DB, stmt string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(stmt); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
