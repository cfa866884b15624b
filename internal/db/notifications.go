package db

import (
	"context"
	"database/sql"
	"strings"
	"unicode/utf8"

	"colloq/internal/models"
)

const previewMaxBytes = 200

// truncatePreview caps the preview at previewMaxBytes without ever cutting
// through a multi-byte rune.
func truncatePreview(s string) string {
	if len(s) <= previewMaxBytes {
		return s
	}
	cut := previewMaxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// CreateNotifications inserts a batch of fan-out records in one transaction.
// Duplicate ids are ignored so redelivery of the same event stays harmless.
func CreateNotifications(ctx context.Context, database *sql.DB, batch []models.Notification) error {
	if len(batch) == 0 {
		return nil
	}
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, n := range batch {
		preview := truncatePreview(strings.TrimSpace(n.Preview))
		if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO notifications (id, recipient_id, source_type, source_id, kind, actor_id, preview, created)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			n.ID, n.RecipientID, string(n.SourceType), n.SourceID, n.Kind,
			n.ActorID, nullableString(preview), n.CreatedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func ListNotifications(ctx context.Context, database *sql.DB, recipientID string, limit, offset int) ([]models.Notification, error) {
	rows, err := database.QueryContext(ctx, `
SELECT id, recipient_id, source_type, source_id, kind, actor_id, COALESCE(preview, ''), created
FROM notifications
WHERE recipient_id = ?
ORDER BY created DESC, rowid DESC
LIMIT ? OFFSET ?`, recipientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Notification, 0)
	for rows.Next() {
		var (
			n          models.Notification
			sourceType string
		)
		if err := rows.Scan(
			&n.ID, &n.RecipientID, &sourceType, &n.SourceID,
			&n.Kind, &n.ActorID, &n.Preview, &n.CreatedAt,
		); err != nil {
			return nil, err
		}
		n.SourceType = models.TargetType(sourceType)
		out = append(out, n)
	}
	return out, rows.Err()
}
