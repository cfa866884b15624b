package db

import (
	"context"
	"database/sql"
	"testing"

	"colloq/internal/models"
)

func TestDeleteCommentRemovesSubtreeOnly(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t, "comments-subtree.db")
	defer database.Close()

	if err := CreateThread(ctx, database, testThread("t1", "course-a")); err != nil {
		t.Fatalf("create thread: %v", err)
	}

	// c1 has children c2 and c3; c2 has child c4. c5 is a sibling root.
	comments := []struct {
		id     string
		parent *string
		depth  int
	}{
		{"c1", nil, 0},
		{"c2", strPtr("c1"), 1},
		{"c3", strPtr("c1"), 1},
		{"c4", strPtr("c2"), 2},
		{"c5", nil, 0},
	}
	for _, c := range comments {
		if err := CreateComment(ctx, database, testComment(c.id, "t1", c.parent, c.depth)); err != nil {
			t.Fatalf("create comment %s: %v", c.id, err)
		}
	}

	if _, err := CastVote(ctx, database, "u1", models.Target{Type: models.TargetComment, ID: "c4"}); err != nil {
		t.Fatalf("vote c4: %v", err)
	}
	if _, err := CastVote(ctx, database, "u1", models.Target{Type: models.TargetComment, ID: "c5"}); err != nil {
		t.Fatalf("vote c5: %v", err)
	}

	if err := DeleteComment(ctx, database, "c2"); err != nil {
		t.Fatalf("delete comment: %v", err)
	}

	remaining, err := ListThreadComments(ctx, database, "t1")
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	ids := make([]string, 0, len(remaining))
	for _, c := range remaining {
		ids = append(ids, c.ID)
	}
	if len(ids) != 3 || ids[0] != "c1" || ids[1] != "c3" || ids[2] != "c5" {
		t.Fatalf("expected c1, c3, c5 to survive, got %v", ids)
	}

	// Votes on the deleted subtree go with it; the sibling's vote stays.
	tally, err := VoteTally(ctx, database, models.Target{Type: models.TargetComment, ID: "c4"})
	if err != nil {
		t.Fatalf("tally c4: %v", err)
	}
	if tally.UpCount != 0 {
		t.Fatalf("expected deleted comment's votes to be gone, got %d", tally.UpCount)
	}
	tally, err = VoteTally(ctx, database, models.Target{Type: models.TargetComment, ID: "c5"})
	if err != nil {
		t.Fatalf("tally c5: %v", err)
	}
	if tally.UpCount != 1 {
		t.Fatalf("expected sibling's vote to survive, got %d", tally.UpCount)
	}
}

func TestDeleteCommentMissing(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t, "comments-missing.db")
	defer database.Close()

	if err := DeleteComment(ctx, database, "nope"); err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestUpdateCommentEndorsement(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t, "comments-endorse.db")
	defer database.Close()

	if err := CreateThread(ctx, database, testThread("t1", "course-a")); err != nil {
		t.Fatalf("create thread: %v", err)
	}
	comment := testComment("c1", "t1", nil, 0)
	if err := CreateComment(ctx, database, comment); err != nil {
		t.Fatalf("create comment: %v", err)
	}

	comment.Endorsed = true
	comment.Body = "revised"
	if err := UpdateComment(ctx, database, comment); err != nil {
		t.Fatalf("update comment: %v", err)
	}

	got, err := GetComment(ctx, database, "c1")
	if err != nil {
		t.Fatalf("get comment: %v", err)
	}
	if !got.Endorsed || got.Body != "revised" {
		t.Fatalf("unexpected comment after update: %+v", got)
	}
}
