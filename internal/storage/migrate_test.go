package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func TestMigrateRoundTripCompatibility(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate-roundtrip.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("first migrate up failed: %v", err)
	}

	if err := MigrateUp(db); err != nil {
		t.Fatalf("repeated migrate up failed: %v", err)
	}

	if err := MigrateDown(db); err != nil {
		t.Fatalf("migrate down failed: %v", err)
	}

	if err := MigrateUp(db); err != nil {
		t.Fatalf("second migrate up failed: %v", err)
	}

	repo, err := NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}

	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	if err := repo.CreateTask(context.Background(), Task{
		ID:          "task-rt-1",
		Title:       "Roundtrip task",
		Description: "migration compatibility",
		DueAt:       now.Add(time.Hour),
		CreatedAt:   now,
	}); err != nil {
		t.Fatalf("insert after roundtrip failed: %v", err)
	}

	got, err := repo.GetTask(context.Background(), "task-rt-1")
	if err != nil {
		t.Fatalf("get after roundtrip failed: %v", err)
	}
	if got.Title != "Roundtrip task" {
		t.Fatalf("unexpected title after roundtrip: %q", got.Title)
	}
}

func TestOpenSQLiteCreatesDirectoryAndSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "tasks.db")
	repo, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer repo.Close()

	list, err := repo.ListTasks(context.Background(), TaskListFilter{})
	if err != nil {
		t.Fatalf("list on fresh db: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}
}

func TestMigrationNamesOrder(t *testing.T) {
	up, err := migrationNames(".up.sql", false)
	if err != nil {
		t.Fatalf("list up migrations: %v", err)
	}
	if len(up) == 0 || up[0] != "migrations/0001_tasks.up.sql" {
		t.Fatalf("unexpected up migrations: %v", up)
	}
	down, err := migrationNames(".down.sql", true)
	if err != nil {
		t.Fatalf("list down migrations: %v", err)
	}
	if len(down) != len(up) || down[len(down)-1] != "migrations/0001_tasks.down.sql" {
		t.Fatalf("down migrations should end with the first one: %v", down)
	}
}
