package db

import (
	"context"
	"database/sql"
	"strings"
)

type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// AllTags lists every tag with the number of threads carrying it. The count
// is derived from the inverted mapping itself, so it cannot drift.
func AllTags(ctx context.Context, database *sql.DB) ([]TagCount, error) {
	rows, err := database.QueryContext(ctx, `
SELECT tag, COUNT(1)
FROM thread_tags
GROUP BY tag
ORDER BY tag ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]TagCount, 0)
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

// AutocompleteTags matches tags by prefix. With sortByCount the order is
// frequency descending with alphabetical tie-break; otherwise alphabetical.
// The prefix is expected already trimmed and lower-cased.
func AutocompleteTags(ctx context.Context, database *sql.DB, prefix string, max int, sortByCount bool) ([]string, error) {
	order := "tag ASC"
	if sortByCount {
		order = "COUNT(1) DESC, tag ASC"
	}
	rows, err := database.QueryContext(ctx, `
SELECT tag
FROM thread_tags
WHERE tag LIKE ? ESCAPE '\'
GROUP BY tag
ORDER BY `+order+`
LIMIT ?`, escapeLike(prefix)+"%", max)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0, max)
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		out = append(out, tag)
	}
	return out, rows.Err()
}

func ListThreadTags(ctx context.Context, database *sql.DB, threadID string) ([]string, error) {
	rows, err := database.QueryContext(ctx, `
SELECT tag FROM thread_tags
WHERE thread_id = ?
ORDER BY tag ASC`, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func replaceThreadTagsTx(ctx context.Context, tx *sql.Tx, threadID string, tags []string) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM thread_tags WHERE thread_id = ?`, threadID); err != nil {
		return err
	}
	for _, tag := range tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO thread_tags (thread_id, tag) VALUES (?, ?)`,
			threadID, tag,
		); err != nil {
			return err
		}
	}
	return nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
