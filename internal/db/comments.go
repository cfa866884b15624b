package db

import (
	"context"
	"database/sql"

	"colloq/internal/models"
)

func CreateComment(ctx context.Context, database *sql.DB, c *models.Comment) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO comments (id, thread_id, parent_id, author_id, anonymous, body, endorsed, depth, created, updated)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.ThreadID, c.ParentID, c.AuthorID, boolToInt(c.Anonymous),
		c.Body, boolToInt(c.Endorsed), c.Depth, c.CreatedAt, c.UpdatedAt); err != nil {
		return err
	}
	if err := touchUserTx(ctx, tx, c.AuthorID, c.CreatedAt); err != nil {
		return err
	}
	return tx.Commit()
}

func GetComment(ctx context.Context, database *sql.DB, id string) (*models.Comment, error) {
	row := database.QueryRowContext(ctx, `
SELECT id, thread_id, parent_id, author_id, anonymous, body, endorsed, depth, created, updated
FROM comments
WHERE id = ?`, id)

	c := &models.Comment{}
	var anonymous, endorsed int
	if err := row.Scan(
		&c.ID, &c.ThreadID, &c.ParentID, &c.AuthorID, &anonymous,
		&c.Body, &endorsed, &c.Depth, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.Anonymous = anonymous == 1
	c.Endorsed = endorsed == 1
	return c, nil
}

// ListThreadComments returns every comment of a thread in creation order,
// which is the order both serialization forms preserve.
func ListThreadComments(ctx context.Context, database *sql.DB, threadID string) ([]models.Comment, error) {
	rows, err := database.QueryContext(ctx, `
SELECT id, thread_id, parent_id, author_id, anonymous, body, endorsed, depth, created, updated
FROM comments
WHERE thread_id = ?
ORDER BY created ASC, rowid ASC`, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Comment, 0)
	for rows.Next() {
		var (
			c                   models.Comment
			anonymous, endorsed int
		)
		if err := rows.Scan(
			&c.ID, &c.ThreadID, &c.ParentID, &c.AuthorID, &anonymous,
			&c.Body, &endorsed, &c.Depth, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		c.Anonymous = anonymous == 1
		c.Endorsed = endorsed == 1
		out = append(out, c)
	}
	return out, rows.Err()
}

func UpdateComment(ctx context.Context, database *sql.DB, c *models.Comment) error {
	res, err := database.ExecContext(ctx, `
UPDATE comments
SET body = ?, endorsed = ?, updated = ?
WHERE id = ?`, c.Body, boolToInt(c.Endorsed), c.UpdatedAt, c.ID)
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

// DeleteComment removes the comment and its entire subtree together with the
// votes cast on any of those comments, atomically.
func DeleteComment(ctx context.Context, database *sql.DB, id string) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM comments WHERE id = ?`, id).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return sql.ErrNoRows
	}

	if _, err := tx.ExecContext(ctx, `
WITH RECURSIVE subtree(id) AS (
	SELECT id FROM comments WHERE id = ?
	UNION ALL
	SELECT c.id
	FROM comments c
	INNER JOIN subtree s ON c.parent_id = s.id
)
DELETE FROM votes
WHERE target_type = 'comment' AND target_id IN (SELECT id FROM subtree)`, id); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
WITH RECURSIVE subtree(id) AS (
	SELECT id FROM comments WHERE id = ?
	UNION ALL
	SELECT c.id
	FROM comments c
	INNER JOIN subtree s ON c.parent_id = s.id
)
DELETE FROM comments
WHERE id IN (SELECT id FROM subtree)`, id); err != nil {
		return err
	}

	return tx.Commit()
}
