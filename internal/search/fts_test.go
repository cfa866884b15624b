package search

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"colloq/internal/db"
	"colloq/internal/models"
)

func openIndexedDB(t *testing.T) (*sql.DB, *FTS) {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "fts.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := db.ApplyMigrations(database); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return database, NewFTS(database)
}

func indexThread(t *testing.T, database *sql.DB, fts *FTS, id, commentableID, title, body string, tags []string) {
	t.Helper()
	ctx := context.Background()
	thread := &models.Thread{
		ID:            id,
		CommentableID: commentableID,
		Title:         title,
		Body:          body,
		Tags:          tags,
		CreatedAt:     "2026-01-01T00:00:00Z",
		UpdatedAt:     "2026-01-01T00:00:00Z",
	}
	if err := db.CreateThread(ctx, database, thread); err != nil {
		t.Fatalf("create thread %s: %v", id, err)
	}
	if err := fts.Index(ctx, thread); err != nil {
		t.Fatalf("index thread %s: %v", id, err)
	}
}

func TestSearchMatchesTitleBodyAndTags(t *testing.T) {
	database, fts := openIndexedDB(t)
	ctx := context.Background()

	indexThread(t, database, fts, "t1", "c1", "Gradient descent", "optimizer question", []string{"calculus"})
	indexThread(t, database, fts, "t2", "c1", "Office hours", "when are they", nil)

	for _, term := range []string{"gradient", "optimizer", "calculus"} {
		ids, err := fts.Search(ctx, Params{Query: term})
		if err != nil {
			t.Fatalf("search %q: %v", term, err)
		}
		if len(ids) != 1 || ids[0] != "t1" {
			t.Fatalf("search %q = %v, want [t1]", term, ids)
		}
	}
}

func TestSearchFiltersByCommentable(t *testing.T) {
	database, fts := openIndexedDB(t)
	ctx := context.Background()

	indexThread(t, database, fts, "t1", "c1", "shared topic", "body", nil)
	indexThread(t, database, fts, "t2", "c2", "shared topic", "body", nil)

	ids, err := fts.Search(ctx, Params{Query: "shared", CommentableID: "c2"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(ids) != 1 || ids[0] != "t2" {
		t.Fatalf("expected only the c2 thread, got %v", ids)
	}
}

func TestSearchQuotesUserInput(t *testing.T) {
	database, fts := openIndexedDB(t)
	ctx := context.Background()

	indexThread(t, database, fts, "t1", "c1", "plain title", "body", nil)

	// fts5 operators in user input must not be interpreted.
	if _, err := fts.Search(ctx, Params{Query: `title AND NOT ("`}); err != nil {
		t.Fatalf("expected quoted query to be safe, got %v", err)
	}
}

func TestRemoveDropsDocument(t *testing.T) {
	database, fts := openIndexedDB(t)
	ctx := context.Background()

	indexThread(t, database, fts, "t1", "c1", "disposable", "body", nil)
	if err := fts.Remove(ctx, "t1"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	ids, err := fts.Search(ctx, Params{Query: "disposable"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected removed document to be gone, got %v", ids)
	}
}
