package search

import (
	"context"
	"database/sql"
	"strings"

	"colloq/internal/models"
)

// FTS implements Indexer on the threads_fts virtual table that ships with
// the schema. Documents are upserted explicitly rather than through
// triggers so the index can be swapped for an external service without a
// schema change.
type FTS struct {
	db *sql.DB
}

func NewFTS(database *sql.DB) *FTS {
	return &FTS{db: database}
}

func (f *FTS) Index(ctx context.Context, thread *models.Thread) error {
	tx, err := f.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM threads_fts WHERE id = ?`, thread.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO threads_fts (id, title, body, tags)
VALUES (?, ?, ?, ?)`,
		thread.ID, thread.Title, thread.Body, strings.Join(thread.Tags, " ")); err != nil {
		return err
	}
	return tx.Commit()
}

func (f *FTS) Remove(ctx context.Context, threadID string) error {
	_, err := f.db.ExecContext(ctx,
		`DELETE FROM threads_fts WHERE id = ?`, threadID)
	return err
}

func (f *FTS) Search(ctx context.Context, params Params) ([]string, error) {
	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `
SELECT f.id
FROM threads_fts f
INNER JOIN threads t ON t.id = f.id
WHERE threads_fts MATCH ?`
	args := []any{ftsQuery(params.Query)}

	if strings.TrimSpace(params.CommentableID) != "" {
		query += " AND t.commentable_id = ?"
		args = append(args, strings.TrimSpace(params.CommentableID))
	}
	for _, tag := range params.Tags {
		query += " AND EXISTS (SELECT 1 FROM thread_tags tt WHERE tt.thread_id = t.id AND tt.tag = ?)"
		args = append(args, tag)
	}
	query += " ORDER BY rank LIMIT ?"
	args = append(args, limit)

	rows, err := f.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0, limit)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// ftsQuery quotes each term so user input cannot inject fts5 query syntax.
func ftsQuery(raw string) string {
	terms := strings.Fields(raw)
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		quoted = append(quoted, `"`+strings.ReplaceAll(t, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " ")
}
