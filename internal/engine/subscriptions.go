package engine

import (
	"context"

	"colloq/internal/db"
	"colloq/internal/models"
)

// Subscribe registers subscriberID for updates on a thread. Subscribing
// again returns the original subscription unchanged. The thread's existence
// is checked inside the subscription transaction.
func (e *Engine) Subscribe(ctx context.Context, subscriberID, threadID string) (*models.Subscription, error) {
	if err := checkID(threadID); err != nil {
		return nil, err
	}
	sub, err := db.Subscribe(ctx, e.db, subscriberID, models.Target{Type: models.TargetThread, ID: threadID})
	if err != nil {
		return nil, mapNotFound(err)
	}
	return sub, nil
}

// Unsubscribe removes the subscription if present; there is nothing to
// report when it was already gone.
func (e *Engine) Unsubscribe(ctx context.Context, subscriberID, threadID string) error {
	if err := checkID(threadID); err != nil {
		return err
	}
	return db.Unsubscribe(ctx, e.db, subscriberID, models.Target{Type: models.TargetThread, ID: threadID})
}

func (e *Engine) Subscribers(ctx context.Context, threadID string) ([]string, error) {
	if err := checkID(threadID); err != nil {
		return nil, err
	}
	return db.Subscribers(ctx, e.db, models.Target{Type: models.TargetThread, ID: threadID})
}

func (e *Engine) Notifications(ctx context.Context, recipientID string, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return db.ListNotifications(ctx, e.db, recipientID, limit, offset)
}
