package db

import (
	"context"
	"database/sql"
	"fmt"

	"colloq/internal/models"
)

// targetRowExistsTx confirms the referenced thread or comment row is still
// present, read inside the caller's transaction. Running the check inside
// the write transaction is what keeps a concurrent cascade delete from
// slipping in between the lookup and the insert. Returns sql.ErrNoRows when
// the row is gone.
func targetRowExistsTx(ctx context.Context, tx *sql.Tx, target models.Target) error {
	var table string
	switch target.Type {
	case models.TargetThread:
		table = "threads"
	case models.TargetComment:
		table = "comments"
	default:
		return fmt.Errorf("unknown target type %q", target.Type)
	}
	var id string
	return tx.QueryRowContext(ctx, `SELECT id FROM `+table+` WHERE id = ?`, target.ID).Scan(&id)
}

// CastVote records a support vote. Voting twice is a no-op; the returned
// tally is always the size of the current vote set for the target, counted
// inside the same transaction as the insert. Returns sql.ErrNoRows when the
// target no longer exists.
func CastVote(ctx context.Context, database *sql.DB, voterID string, target models.Target) (models.Tally, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return models.Tally{}, err
	}
	defer tx.Rollback()

	if err := targetRowExistsTx(ctx, tx, target); err != nil {
		return models.Tally{}, err
	}
	if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO votes (voter_id, target_type, target_id, created)
VALUES (?, ?, ?, ?)`, voterID, string(target.Type), target.ID, nowRFC3339()); err != nil {
		return models.Tally{}, err
	}
	tally, err := voteTallyTx(ctx, tx, target)
	if err != nil {
		return models.Tally{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Tally{}, err
	}
	return tally, nil
}

// RetractVote removes a voter's support. Retracting an absent vote is a
// no-op. Returns sql.ErrNoRows when the target no longer exists.
func RetractVote(ctx context.Context, database *sql.DB, voterID string, target models.Target) (models.Tally, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return models.Tally{}, err
	}
	defer tx.Rollback()

	if err := targetRowExistsTx(ctx, tx, target); err != nil {
		return models.Tally{}, err
	}
	if _, err := tx.ExecContext(ctx, `
DELETE FROM votes
WHERE voter_id = ? AND target_type = ? AND target_id = ?`,
		voterID, string(target.Type), target.ID); err != nil {
		return models.Tally{}, err
	}
	tally, err := voteTallyTx(ctx, tx, target)
	if err != nil {
		return models.Tally{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Tally{}, err
	}
	return tally, nil
}

func VoteTally(ctx context.Context, database *sql.DB, target models.Target) (models.Tally, error) {
	var count int
	if err := database.QueryRowContext(ctx, `
SELECT COUNT(1) FROM votes
WHERE target_type = ? AND target_id = ?`, string(target.Type), target.ID).Scan(&count); err != nil {
		return models.Tally{}, err
	}
	return models.Tally{UpCount: count}, nil
}

func voteTallyTx(ctx context.Context, tx *sql.Tx, target models.Target) (models.Tally, error) {
	var count int
	if err := tx.QueryRowContext(ctx, `
SELECT COUNT(1) FROM votes
WHERE target_type = ? AND target_id = ?`, string(target.Type), target.ID).Scan(&count); err != nil {
		return models.Tally{}, err
	}
	return models.Tally{UpCount: count}, nil
}

// CommentTalliesForThread returns the per-comment vote counts of a whole
// thread in one query, keyed by comment id. Comments without votes are
// absent from the map.
func CommentTalliesForThread(ctx context.Context, database *sql.DB, threadID string) (map[string]int, error) {
	rows, err := database.QueryContext(ctx, `
SELECT v.target_id, COUNT(1)
FROM votes v
INNER JOIN comments c ON c.id = v.target_id
WHERE v.target_type = 'comment' AND c.thread_id = ?
GROUP BY v.target_id`, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			id    string
			count int
		)
		if err := rows.Scan(&id, &count); err != nil {
			return nil, err
		}
		out[id] = count
	}
	return out, rows.Err()
}
