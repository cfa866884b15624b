package db

import (
	"context"
	"database/sql"

	"colloq/internal/models"
)

// Subscribe is idempotent: following a source twice returns the existing
// subscription unchanged. Returns sql.ErrNoRows when the source no longer
// exists; the check shares the insert's transaction so a concurrent cascade
// delete cannot leave a subscription behind.
func Subscribe(ctx context.Context, database *sql.DB, subscriberID string, source models.Target) (*models.Subscription, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := targetRowExistsTx(ctx, tx, source); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO subscriptions (subscriber_id, source_type, source_id, created)
VALUES (?, ?, ?, ?)`, subscriberID, string(source.Type), source.ID, nowRFC3339()); err != nil {
		return nil, err
	}

	s := &models.Subscription{}
	var sourceType string
	if err := tx.QueryRowContext(ctx, `
SELECT subscriber_id, source_type, source_id, created
FROM subscriptions
WHERE subscriber_id = ? AND source_type = ? AND source_id = ?`,
		subscriberID, string(source.Type), source.ID).
		Scan(&s.SubscriberID, &sourceType, &s.SourceID, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.SourceType = models.TargetType(sourceType)
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s, nil
}

// Unsubscribe is idempotent: removing an absent subscription is a no-op.
func Unsubscribe(ctx context.Context, database *sql.DB, subscriberID string, source models.Target) error {
	_, err := database.ExecContext(ctx, `
DELETE FROM subscriptions
WHERE subscriber_id = ? AND source_type = ? AND source_id = ?`,
		subscriberID, string(source.Type), source.ID)
	return err
}

func Subscribers(ctx context.Context, database *sql.DB, source models.Target) ([]string, error) {
	rows, err := database.QueryContext(ctx, `
SELECT subscriber_id
FROM subscriptions
WHERE source_type = ? AND source_id = ?
ORDER BY created ASC, rowid ASC`, string(source.Type), source.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
