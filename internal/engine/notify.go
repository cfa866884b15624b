package engine

import (
	"context"
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"colloq/internal/db"
	"colloq/internal/models"
)

// Dispatcher delivers notifications to thread subscribers without blocking
// the write that triggered them. Delivery is at-least-once; the storage
// layer drops duplicates.
type Dispatcher struct {
	db     *sql.DB
	logger *log.Logger
	wg     sync.WaitGroup
}

func NewDispatcher(database *sql.DB, logger *log.Logger) *Dispatcher {
	return &Dispatcher{db: database, logger: logger}
}

// NotifyNewComment fans a new-comment notification out to every subscriber
// of the comment's thread except the comment's own author. It returns
// immediately; callers that need delivery to finish use Drain.
func (d *Dispatcher) NotifyNewComment(threadID string, comment *models.Comment) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		subscribers, err := db.Subscribers(ctx, d.db, models.Target{Type: models.TargetThread, ID: threadID})
		if err != nil {
			d.logger.Printf("notify: list subscribers for thread %s: %v", threadID, err)
			return
		}

		now := time.Now().UTC().Format(time.RFC3339)
		batch := make([]models.Notification, 0, len(subscribers))
		for _, recipient := range subscribers {
			if comment.AuthorID != nil && recipient == *comment.AuthorID {
				continue
			}
			batch = append(batch, models.Notification{
				ID:          uuid.NewString(),
				RecipientID: recipient,
				SourceType:  models.TargetThread,
				SourceID:    threadID,
				Kind:        models.NotificationNewComment,
				ActorID:     comment.AuthorID,
				Preview:     comment.Body,
				CreatedAt:   now,
			})
		}
		if len(batch) == 0 {
			return
		}
		if err := db.CreateNotifications(ctx, d.db, batch); err != nil {
			d.logger.Printf("notify: store %d notifications for thread %s: %v", len(batch), threadID, err)
		}
	}()
}

// Drain blocks until every in-flight fan-out has completed.
func (d *Dispatcher) Drain() {
	d.wg.Wait()
}
