package db

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"

	"colloq/internal/models"
)

func TestSubscribeIdempotent(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t, "subs-idempotent.db")
	defer database.Close()

	if err := CreateThread(ctx, database, testThread("t1", "course-a")); err != nil {
		t.Fatalf("create thread: %v", err)
	}

	source := models.Target{Type: models.TargetThread, ID: "t1"}
	first, err := Subscribe(ctx, database, "u1", source)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	second, err := Subscribe(ctx, database, "u1", source)
	if err != nil {
		t.Fatalf("repeat subscribe: %v", err)
	}
	if second.CreatedAt != first.CreatedAt {
		t.Fatalf("expected repeat subscribe to return the original row: got %q want %q",
			second.CreatedAt, first.CreatedAt)
	}

	subscribers, err := Subscribers(ctx, database, source)
	if err != nil {
		t.Fatalf("subscribers: %v", err)
	}
	if !reflect.DeepEqual(subscribers, []string{"u1"}) {
		t.Fatalf("expected a single subscription row, got %v", subscribers)
	}
}

func TestSubscribeRejectsDeletedThread(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t, "subs-deleted.db")
	defer database.Close()

	if err := CreateThread(ctx, database, testThread("t1", "course-a")); err != nil {
		t.Fatalf("create thread: %v", err)
	}
	if err := DeleteThread(ctx, database, "t1"); err != nil {
		t.Fatalf("delete thread: %v", err)
	}

	source := models.Target{Type: models.TargetThread, ID: "t1"}
	if _, err := Subscribe(ctx, database, "u1", source); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows subscribing to a deleted thread, got %v", err)
	}

	var count int
	if err := database.QueryRow(`SELECT COUNT(1) FROM subscriptions`).Scan(&count); err != nil {
		t.Fatalf("count subscriptions: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no subscription rows for the deleted thread, got %d", count)
	}
}

func TestUnsubscribeIsNoOpWhenAbsent(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t, "subs-absent.db")
	defer database.Close()

	if err := Unsubscribe(ctx, database, "u1", models.Target{Type: models.TargetThread, ID: "t1"}); err != nil {
		t.Fatalf("unsubscribe absent: %v", err)
	}
}

func TestSubscribersOrderedByCreation(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t, "subs-order.db")
	defer database.Close()

	if err := CreateThread(ctx, database, testThread("t1", "course-a")); err != nil {
		t.Fatalf("create thread: %v", err)
	}
	source := models.Target{Type: models.TargetThread, ID: "t1"}
	for _, u := range []string{"u3", "u1", "u2"} {
		if _, err := Subscribe(ctx, database, u, source); err != nil {
			t.Fatalf("subscribe %s: %v", u, err)
		}
	}

	subscribers, err := Subscribers(ctx, database, source)
	if err != nil {
		t.Fatalf("subscribers: %v", err)
	}
	if len(subscribers) != 3 || subscribers[0] != "u3" {
		t.Fatalf("expected subscription order to be preserved, got %v", subscribers)
	}
}
