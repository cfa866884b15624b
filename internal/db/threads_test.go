package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"colloq/internal/models"
)

func TestDeleteThreadCascades(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t, "threads-cascade.db")
	defer database.Close()

	mustCreateUser(t, database, "u1", "alice")
	mustCreateUser(t, database, "u2", "bob")

	thread := testThread("t1", "phys-101")
	thread.Tags = []string{"homework", "week1"}
	if err := CreateThread(ctx, database, thread); err != nil {
		t.Fatalf("create thread: %v", err)
	}

	comment := testComment("c1", "t1", nil, 0)
	if err := CreateComment(ctx, database, comment); err != nil {
		t.Fatalf("create comment: %v", err)
	}

	if _, err := CastVote(ctx, database, "u1", models.Target{Type: models.TargetThread, ID: "t1"}); err != nil {
		t.Fatalf("vote thread: %v", err)
	}
	if _, err := CastVote(ctx, database, "u2", models.Target{Type: models.TargetComment, ID: "c1"}); err != nil {
		t.Fatalf("vote comment: %v", err)
	}
	if _, err := Subscribe(ctx, database, "u2", models.Target{Type: models.TargetThread, ID: "t1"}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := CreateNotifications(ctx, database, []models.Notification{{
		ID: "n1", RecipientID: "u2", SourceType: models.TargetThread,
		SourceID: "t1", Kind: models.NotificationNewComment, Preview: "hi", CreatedAt: nowRFC3339(),
	}}); err != nil {
		t.Fatalf("create notification: %v", err)
	}

	if err := DeleteThread(ctx, database, "t1"); err != nil {
		t.Fatalf("delete thread: %v", err)
	}

	for _, q := range []struct {
		name  string
		query string
	}{
		{"threads", `SELECT COUNT(1) FROM threads`},
		{"comments", `SELECT COUNT(1) FROM comments`},
		{"votes", `SELECT COUNT(1) FROM votes`},
		{"subscriptions", `SELECT COUNT(1) FROM subscriptions`},
		{"notifications", `SELECT COUNT(1) FROM notifications`},
		{"thread_tags", `SELECT COUNT(1) FROM thread_tags`},
	} {
		var count int
		if err := database.QueryRowContext(ctx, q.query).Scan(&count); err != nil {
			t.Fatalf("count %s: %v", q.name, err)
		}
		if count != 0 {
			t.Fatalf("expected %s to be empty after thread delete, got %d rows", q.name, count)
		}
	}
}

func TestDeleteThreadMissing(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t, "threads-missing.db")
	defer database.Close()

	err := DeleteThread(ctx, database, "nope")
	if err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestListThreadsForPreservesCreationOrder(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t, "threads-order.db")
	defer database.Close()

	for _, id := range []string{"t1", "t2", "t3"} {
		if err := CreateThread(ctx, database, testThread(id, "course-a")); err != nil {
			t.Fatalf("create thread %s: %v", id, err)
		}
	}
	if err := CreateThread(ctx, database, testThread("other", "course-b")); err != nil {
		t.Fatalf("create unrelated thread: %v", err)
	}

	threads, err := ListThreadsFor(ctx, database, "course-a")
	if err != nil {
		t.Fatalf("list threads: %v", err)
	}
	if len(threads) != 3 {
		t.Fatalf("expected 3 threads, got %d", len(threads))
	}
	for i, want := range []string{"t1", "t2", "t3"} {
		if threads[i].ID != want {
			t.Fatalf("unexpected thread at %d: got %s want %s", i, threads[i].ID, want)
		}
	}
}

func TestDeleteThreadsForReturnsDeletedIDs(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t, "threads-bulk-delete.db")
	defer database.Close()

	for _, id := range []string{"t1", "t2"} {
		if err := CreateThread(ctx, database, testThread(id, "course-a")); err != nil {
			t.Fatalf("create thread %s: %v", id, err)
		}
	}
	if err := CreateThread(ctx, database, testThread("keep", "course-b")); err != nil {
		t.Fatalf("create unrelated thread: %v", err)
	}

	ids, err := DeleteThreadsFor(ctx, database, "course-a")
	if err != nil {
		t.Fatalf("delete threads: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 deleted ids, got %v", ids)
	}

	var remaining int
	if err := database.QueryRowContext(ctx, `SELECT COUNT(1) FROM threads`).Scan(&remaining); err != nil {
		t.Fatalf("count threads: %v", err)
	}
	if remaining != 1 {
		t.Fatalf("expected 1 surviving thread, got %d", remaining)
	}
}

func TestCreateThreadTouchesAuthorLastActive(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t, "threads-last-active.db")
	defer database.Close()

	mustCreateUser(t, database, "u1", "alice")

	var before sql.NullString
	if err := database.QueryRowContext(ctx, `SELECT last_active FROM users WHERE id = 'u1'`).Scan(&before); err != nil {
		t.Fatalf("query last_active: %v", err)
	}
	if before.Valid {
		t.Fatalf("expected last_active to be NULL before posting, got %q", before.String)
	}

	thread := testThread("t1", "course-a")
	author := "u1"
	thread.AuthorID = &author
	if err := CreateThread(ctx, database, thread); err != nil {
		t.Fatalf("create thread: %v", err)
	}

	var after sql.NullString
	if err := database.QueryRowContext(ctx, `SELECT last_active FROM users WHERE id = 'u1'`).Scan(&after); err != nil {
		t.Fatalf("query last_active: %v", err)
	}
	if !after.Valid || after.String != thread.CreatedAt {
		t.Fatalf("unexpected last_active after posting: got %v want %q", after, thread.CreatedAt)
	}
}

func openTestDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), name))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := ApplyMigrations(database); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return database
}

func mustCreateUser(t *testing.T, database *sql.DB, id, name string) {
	t.Helper()
	if err := CreateUser(context.Background(), database, id, name, "user", "hash-"+id); err != nil {
		t.Fatalf("create user %s: %v", id, err)
	}
}

func testThread(id, commentableID string) *models.Thread {
	now := nowRFC3339()
	return &models.Thread{
		ID:            id,
		CommentableID: commentableID,
		Title:         "title " + id,
		Body:          "body " + id,
		Tags:          []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func testComment(id, threadID string, parentID *string, depth int) *models.Comment {
	now := nowRFC3339()
	return &models.Comment{
		ID:        id,
		ThreadID:  threadID,
		ParentID:  parentID,
		Body:      "comment " + id,
		Depth:     depth,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func strPtr(v string) *string { return &v }
