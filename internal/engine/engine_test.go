package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"colloq/internal/db"
	"colloq/internal/models"
	"colloq/internal/search"
)

func newTestEngine(t *testing.T, name string) *Engine {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), name))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := db.ApplyMigrations(database); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// Authors referenced throughout the engine tests.
	for _, name := range []string{"alice", "bob", "carol", "dave"} {
		if err := db.CreateUser(context.Background(), database, name, name, "user", "hash-"+name); err != nil {
			t.Fatalf("create user %s: %v", name, err)
		}
	}
	return New(database, DefaultConfig(), search.NewFTS(database))
}

func mustThread(t *testing.T, eng *Engine, commentableID, title string, author string) *models.ThreadRecord {
	t.Helper()
	thread, err := eng.CreateThread(context.Background(), NewThread{
		CommentableID: commentableID,
		Title:         title,
		Body:          "body of " + title,
		AuthorID:      &author,
	})
	if err != nil {
		t.Fatalf("create thread %q: %v", title, err)
	}
	return thread
}

func mustComment(t *testing.T, eng *Engine, parentType models.TargetType, parentID, body, author string) *models.CommentRecord {
	t.Helper()
	comment, err := eng.CreateComment(context.Background(), NewComment{
		ParentType: parentType,
		ParentID:   parentID,
		Body:       body,
		AuthorID:   &author,
	})
	if err != nil {
		t.Fatalf("create comment %q: %v", body, err)
	}
	return comment
}

func TestCreateThreadCollectsAllValidationMessages(t *testing.T) {
	eng := newTestEngine(t, "thread-validation.db")

	_, err := eng.CreateThread(context.Background(), NewThread{
		CommentableID: "course-a",
		Tags:          []string{"ok", "!bad!"},
	})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Messages) != 3 {
		t.Fatalf("expected 3 messages (title, body, tag), got %v", ve.Messages)
	}
}

func TestMalformedIDBehavesLikeMissing(t *testing.T) {
	eng := newTestEngine(t, "thread-bad-id.db")

	if _, err := eng.GetThread(context.Background(), "not-a-uuid", false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for malformed id, got %v", err)
	}
	if _, err := eng.GetThread(context.Background(), "00000000-0000-0000-0000-000000000000", false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for absent id, got %v", err)
	}
}

func TestReplyDepthAndThreadInheritance(t *testing.T) {
	eng := newTestEngine(t, "reply-depth.db")

	thread := mustThread(t, eng, "course-a", "depth check", "alice")
	top := mustComment(t, eng, models.TargetThread, thread.ID, "top level", "alice")
	if top.Depth != 0 {
		t.Fatalf("expected top-level depth 0, got %d", top.Depth)
	}
	reply := mustComment(t, eng, models.TargetComment, top.ID, "first reply", "bob")
	if reply.Depth != 1 {
		t.Fatalf("expected reply depth 1, got %d", reply.Depth)
	}
	nested := mustComment(t, eng, models.TargetComment, reply.ID, "nested reply", "carol")
	if nested.Depth != 2 {
		t.Fatalf("expected nested depth 2, got %d", nested.Depth)
	}
	if nested.ThreadID != thread.ID {
		t.Fatalf("expected nested reply to inherit thread %s, got %s", thread.ID, nested.ThreadID)
	}
}

func TestThreadSerializationFlatVersusRecursive(t *testing.T) {
	eng := newTestEngine(t, "serialize-modes.db")
	ctx := context.Background()

	thread := mustThread(t, eng, "course-a", "modes", "alice")
	top := mustComment(t, eng, models.TargetThread, thread.ID, "top", "alice")
	child := mustComment(t, eng, models.TargetComment, top.ID, "child", "bob")

	flat, err := eng.GetThread(ctx, thread.ID, false)
	if err != nil {
		t.Fatalf("get flat: %v", err)
	}
	if flat.CommentCount != 2 {
		t.Fatalf("expected comment_count 2, got %d", flat.CommentCount)
	}
	if len(flat.CommentIDs) != 1 || flat.CommentIDs[0] != top.ID {
		t.Fatalf("expected flat form to list only top-level ids, got %v", flat.CommentIDs)
	}
	if flat.Comments != nil {
		t.Fatalf("expected flat form to omit nested comments")
	}

	recursive, err := eng.GetThread(ctx, thread.ID, true)
	if err != nil {
		t.Fatalf("get recursive: %v", err)
	}
	if len(recursive.Comments) != 1 {
		t.Fatalf("expected one root comment, got %d", len(recursive.Comments))
	}
	root := recursive.Comments[0]
	if root.ID != top.ID || len(root.Children) != 1 || root.Children[0].ID != child.ID {
		t.Fatalf("unexpected recursive structure: %+v", recursive.Comments)
	}
}

func TestVoteTallyNeverDrifts(t *testing.T) {
	eng := newTestEngine(t, "vote-tally.db")
	ctx := context.Background()

	thread := mustThread(t, eng, "course-a", "votes", "alice")
	target := models.Target{Type: models.TargetThread, ID: thread.ID}

	for _, voter := range []string{"u1", "u2", "u1"} {
		if _, err := eng.Vote(ctx, voter, target); err != nil {
			t.Fatalf("vote by %s: %v", voter, err)
		}
	}
	tally, err := eng.Unvote(ctx, "u1", target)
	if err != nil {
		t.Fatalf("unvote: %v", err)
	}
	if tally.UpCount != 1 {
		t.Fatalf("expected tally 1 after u1 retracts, got %d", tally.UpCount)
	}

	record, err := eng.GetThread(ctx, thread.ID, false)
	if err != nil {
		t.Fatalf("get thread: %v", err)
	}
	if record.UpCount != 1 {
		t.Fatalf("expected serialized up_count 1, got %d", record.UpCount)
	}
}

func TestVoteOnMissingTarget(t *testing.T) {
	eng := newTestEngine(t, "vote-missing.db")

	_, err := eng.Vote(context.Background(), "u1", models.Target{
		Type: models.TargetComment,
		ID:   "1f0e8c5a-58b9-4f0c-92f3-0123456789ab",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound voting on missing comment, got %v", err)
	}
}

func TestVoteAfterDeleteLeavesNoOrphans(t *testing.T) {
	eng := newTestEngine(t, "vote-after-delete.db")
	ctx := context.Background()

	thread := mustThread(t, eng, "course-a", "short lived", "alice")
	target := models.Target{Type: models.TargetThread, ID: thread.ID}
	if _, err := eng.Vote(ctx, "u1", target); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if err := eng.DeleteThread(ctx, thread.ID); err != nil {
		t.Fatalf("delete thread: %v", err)
	}

	if _, err := eng.Vote(ctx, "u2", target); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound voting after delete, got %v", err)
	}
	if _, err := eng.Subscribe(ctx, "u2", thread.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound subscribing after delete, got %v", err)
	}

	var count int
	if err := eng.db.QueryRow(`SELECT COUNT(1) FROM votes`).Scan(&count); err != nil {
		t.Fatalf("count votes: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected the vote set to be empty after the cascade, got %d rows", count)
	}
}

func TestDeleteCommentSubtreeLeavesSiblings(t *testing.T) {
	eng := newTestEngine(t, "delete-subtree.db")
	ctx := context.Background()

	thread := mustThread(t, eng, "course-a", "pruning", "alice")
	top := mustComment(t, eng, models.TargetThread, thread.ID, "top", "alice")
	doomed := mustComment(t, eng, models.TargetComment, top.ID, "doomed", "bob")
	mustComment(t, eng, models.TargetComment, doomed.ID, "doomed child", "carol")
	sibling := mustComment(t, eng, models.TargetComment, top.ID, "sibling", "dave")

	if err := eng.DeleteComment(ctx, doomed.ID); err != nil {
		t.Fatalf("delete comment: %v", err)
	}

	record, err := eng.GetThread(ctx, thread.ID, true)
	if err != nil {
		t.Fatalf("get thread: %v", err)
	}
	if record.CommentCount != 2 {
		t.Fatalf("expected 2 surviving comments, got %d", record.CommentCount)
	}
	children := record.Comments[0].Children
	if len(children) != 1 || children[0].ID != sibling.ID {
		t.Fatalf("expected only the sibling to survive under top, got %+v", children)
	}
}

func TestUpdateThreadPartial(t *testing.T) {
	eng := newTestEngine(t, "thread-update.db")
	ctx := context.Background()

	thread := mustThread(t, eng, "course-a", "before", "alice")
	newTitle := "after"
	updated, err := eng.UpdateThread(ctx, thread.ID, ThreadUpdate{Title: &newTitle})
	if err != nil {
		t.Fatalf("update thread: %v", err)
	}
	if updated.Title != "after" {
		t.Fatalf("expected title to change, got %q", updated.Title)
	}
	if updated.Body != thread.Body {
		t.Fatalf("expected body to be untouched, got %q", updated.Body)
	}
}

func TestSearchThreads(t *testing.T) {
	eng := newTestEngine(t, "search.db")
	ctx := context.Background()

	author := "alice"
	quantum, err := eng.CreateThread(ctx, NewThread{
		CommentableID: "phys-101",
		Title:         "Quantum tunneling question",
		Body:          "How does the barrier width matter?",
		AuthorID:      &author,
		Tags:          []string{"quantum", "homework"},
	})
	if err != nil {
		t.Fatalf("create quantum thread: %v", err)
	}
	if _, err := eng.CreateThread(ctx, NewThread{
		CommentableID: "phys-101",
		Title:         "Lab report formatting",
		Body:          "Margins and fonts",
		AuthorID:      &author,
	}); err != nil {
		t.Fatalf("create lab thread: %v", err)
	}

	results, err := eng.SearchThreads(ctx, "tunneling", "", nil, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].ID != quantum.ID {
		t.Fatalf("expected only the quantum thread, got %d results", len(results))
	}

	results, err = eng.SearchThreads(ctx, "question", "", []string{"homework"}, 10)
	if err != nil {
		t.Fatalf("search with tag: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected tag filter to match, got %d results", len(results))
	}

	results, err = eng.SearchThreads(ctx, "question", "", []string{"exam"}, 10)
	if err != nil {
		t.Fatalf("search with wrong tag: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected tag filter to exclude, got %d results", len(results))
	}
}

func TestDeleteThreadRemovesFromSearch(t *testing.T) {
	eng := newTestEngine(t, "search-delete.db")
	ctx := context.Background()

	thread := mustThread(t, eng, "course-a", "ephemeral topic", "alice")
	if err := eng.DeleteThread(ctx, thread.ID); err != nil {
		t.Fatalf("delete thread: %v", err)
	}

	results, err := eng.SearchThreads(ctx, "ephemeral", "", nil, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected deleted thread to leave the index, got %d results", len(results))
	}
}
