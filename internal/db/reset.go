package db

import (
	"context"
	"database/sql"
)

// ResetContent wipes every discussion collection. Exposed only through the
// development-mode clean endpoint; users and API keys survive.
func ResetContent(ctx context.Context, database *sql.DB) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM notifications`,
		`DELETE FROM subscriptions`,
		`DELETE FROM votes`,
		`DELETE FROM thread_tags`,
		`DELETE FROM comments`,
		`DELETE FROM threads`,
		`DELETE FROM threads_fts`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return tx.Commit()
}
