package db

import (
	"testing"
)

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	database := openTestDB(t, "migrations.db")
	defer database.Close()

	if err := ApplyMigrations(database); err != nil {
		t.Fatalf("second migration run: %v", err)
	}

	var version int
	if err := database.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&version); err != nil {
		t.Fatalf("read schema version: %v", err)
	}
	if version != len(migrations) {
		t.Fatalf("schema version = %d, want %d", version, len(migrations))
	}

	var count int
	if err := database.QueryRow(`SELECT COUNT(1) FROM schema_version`).Scan(&count); err != nil {
		t.Fatalf("count schema rows: %v", err)
	}
	if count != len(migrations) {
		t.Fatalf("expected one row per migration, got %d", count)
	}
}
