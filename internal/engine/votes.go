package engine

import (
	"context"
	"database/sql"

	"colloq/internal/db"
	"colloq/internal/models"
)

// Vote records that voter backs the target. Voting twice is a no-op; the
// returned tally is always the live count of distinct voters. The target's
// existence is verified inside the vote transaction, so a cascade delete
// committing concurrently cannot leave an orphan vote behind.
func (e *Engine) Vote(ctx context.Context, voterID string, target models.Target) (models.Tally, error) {
	if err := validateTarget(target); err != nil {
		return models.Tally{}, err
	}
	tally, err := db.CastVote(ctx, e.db, voterID, target)
	if err != nil {
		return models.Tally{}, mapNotFound(err)
	}
	return tally, nil
}

// Unvote withdraws the voter's vote if one exists; retracting an absent
// vote is a no-op.
func (e *Engine) Unvote(ctx context.Context, voterID string, target models.Target) (models.Tally, error) {
	if err := validateTarget(target); err != nil {
		return models.Tally{}, err
	}
	tally, err := db.RetractVote(ctx, e.db, voterID, target)
	if err != nil {
		return models.Tally{}, mapNotFound(err)
	}
	return tally, nil
}

func (e *Engine) Tally(ctx context.Context, target models.Target) (models.Tally, error) {
	if err := e.checkTarget(ctx, target); err != nil {
		return models.Tally{}, err
	}
	return db.VoteTally(ctx, e.db, target)
}

// validateTarget rejects malformed references before storage is touched.
// Whether the target still exists is the storage layer's business.
func validateTarget(target models.Target) error {
	if err := checkID(target.ID); err != nil {
		return err
	}
	if target.Type != models.TargetThread && target.Type != models.TargetComment {
		return validationError("target type must be thread or comment")
	}
	return nil
}

// checkTarget additionally confirms the target exists. Only the read path
// uses it; mutations check existence inside their own transaction.
func (e *Engine) checkTarget(ctx context.Context, target models.Target) error {
	if err := validateTarget(target); err != nil {
		return err
	}
	var table string
	switch target.Type {
	case models.TargetThread:
		table = "threads"
	case models.TargetComment:
		table = "comments"
	}
	var row string
	err := e.db.QueryRowContext(ctx,
		`SELECT id FROM `+table+` WHERE id = ?`, target.ID).Scan(&row)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	return err
}
