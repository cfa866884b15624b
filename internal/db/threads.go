package db

import (
	"context"
	"database/sql"

	"colloq/internal/models"
)

func CreateThread(ctx context.Context, database *sql.DB, t *models.Thread) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO threads (id, commentable_id, course_id, title, body, author_id, anonymous, created, updated)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.CommentableID, nullableString(t.CourseID), t.Title, t.Body,
		t.AuthorID, boolToInt(t.Anonymous), t.CreatedAt, t.UpdatedAt); err != nil {
		return err
	}
	if err := replaceThreadTagsTx(ctx, tx, t.ID, t.Tags); err != nil {
		return err
	}
	if err := touchUserTx(ctx, tx, t.AuthorID, t.CreatedAt); err != nil {
		return err
	}
	return tx.Commit()
}

func GetThread(ctx context.Context, database *sql.DB, id string) (*models.Thread, error) {
	row := database.QueryRowContext(ctx, `
SELECT id, commentable_id, COALESCE(course_id, ''), title, body, author_id, anonymous, created, updated
FROM threads
WHERE id = ?`, id)

	t := &models.Thread{}
	var anonymous int
	if err := row.Scan(
		&t.ID, &t.CommentableID, &t.CourseID, &t.Title, &t.Body,
		&t.AuthorID, &anonymous, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.Anonymous = anonymous == 1
	tags, err := ListThreadTags(ctx, database, t.ID)
	if err != nil {
		return nil, err
	}
	t.Tags = tags
	return t, nil
}

func ListThreadsFor(ctx context.Context, database *sql.DB, commentableID string) ([]models.Thread, error) {
	rows, err := database.QueryContext(ctx, `
SELECT id, commentable_id, COALESCE(course_id, ''), title, body, author_id, anonymous, created, updated
FROM threads
WHERE commentable_id = ?
ORDER BY created ASC, rowid ASC`, commentableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Thread, 0)
	for rows.Next() {
		var (
			t         models.Thread
			anonymous int
		)
		if err := rows.Scan(
			&t.ID, &t.CommentableID, &t.CourseID, &t.Title, &t.Body,
			&t.AuthorID, &anonymous, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		t.Anonymous = anonymous == 1
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		tags, err := ListThreadTags(ctx, database, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Tags = tags
	}
	return out, nil
}

// UpdateThread rewrites title, body and the tag set; the caller supplies the
// fully merged thread.
func UpdateThread(ctx context.Context, database *sql.DB, t *models.Thread) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
UPDATE threads
SET title = ?, body = ?, updated = ?
WHERE id = ?`, t.Title, t.Body, t.UpdatedAt, t.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	if err := replaceThreadTagsTx(ctx, tx, t.ID, t.Tags); err != nil {
		return err
	}
	return tx.Commit()
}

func DeleteThread(ctx context.Context, database *sql.DB, id string) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := deleteThreadTx(ctx, tx, id); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteThreadsFor removes every thread attached to a commentable in a
// single transaction and returns the ids that were deleted.
func DeleteThreadsFor(ctx context.Context, database *sql.DB, commentableID string) ([]string, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM threads WHERE commentable_id = ?`, commentableID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for _, id := range ids {
		if err := deleteThreadTx(ctx, tx, id); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

// deleteThreadTx cascades over the whole thread: comments, votes on the
// thread and on every comment, subscriptions and notifications pointing at
// the thread, and the tag rows. Runs inside the caller's transaction so a
// reader never observes a half-deleted tree.
func deleteThreadTx(ctx context.Context, tx *sql.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, `
DELETE FROM votes
WHERE target_type = 'comment' AND target_id IN (SELECT id FROM comments WHERE thread_id = ?)`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM votes WHERE target_type = 'thread' AND target_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE source_type = 'thread' AND source_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM notifications WHERE source_type = 'thread' AND source_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM thread_tags WHERE thread_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM comments WHERE thread_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM threads WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func touchUserTx(ctx context.Context, tx *sql.Tx, userID *string, when string) error {
	if userID == nil {
		return nil
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE users SET last_active = ? WHERE id = ?`, when, *userID)
	return err
}

func nullableString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
