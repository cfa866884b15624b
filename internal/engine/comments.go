package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"colloq/internal/db"
	"colloq/internal/models"
)

type NewComment struct {
	ParentType    models.TargetType
	ParentID      string
	Body          string
	AuthorID      *string
	Anonymous     bool
	AutoSubscribe bool
}

// CommentUpdate is a partial update; nil fields keep their current value.
type CommentUpdate struct {
	Body     *string
	Endorsed *bool
}

// CreateComment attaches a comment either directly to a thread (depth 0) or
// under an existing comment (parent depth plus one). The fan-out to thread
// subscribers happens off the calling path.
func (e *Engine) CreateComment(ctx context.Context, req NewComment) (*models.CommentRecord, error) {
	msgs := make([]string, 0)
	if strings.TrimSpace(req.Body) == "" {
		msgs = append(msgs, "body is required")
	}
	if req.ParentType != models.TargetThread && req.ParentType != models.TargetComment {
		msgs = append(msgs, "parent type must be thread or comment")
	}
	if len(msgs) > 0 {
		return nil, validationError(msgs...)
	}
	if err := checkID(req.ParentID); err != nil {
		return nil, err
	}

	var threadID string
	var parentID *string
	depth := 0
	switch req.ParentType {
	case models.TargetThread:
		thread, err := db.GetThread(ctx, e.db, req.ParentID)
		if err != nil {
			return nil, mapNotFound(err)
		}
		threadID = thread.ID
	case models.TargetComment:
		parent, err := db.GetComment(ctx, e.db, req.ParentID)
		if err != nil {
			return nil, mapNotFound(err)
		}
		threadID = parent.ThreadID
		parentID = &parent.ID
		depth = parent.Depth + 1
	}

	now := time.Now().UTC().Format(time.RFC3339)
	comment := &models.Comment{
		ID:        uuid.NewString(),
		ThreadID:  threadID,
		ParentID:  parentID,
		AuthorID:  req.AuthorID,
		Anonymous: req.Anonymous,
		Body:      req.Body,
		Depth:     depth,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.CreateComment(ctx, e.db, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	if req.AutoSubscribe && req.AuthorID != nil {
		if _, err := e.Subscribe(ctx, *req.AuthorID, threadID); err != nil {
			return nil, err
		}
	}
	if e.cfg.NotifyOnNewComment {
		e.dispatcher.NotifyNewComment(threadID, comment)
	}
	return e.serializeComment(ctx, comment, false)
}

func (e *Engine) GetComment(ctx context.Context, id string, recursive bool) (*models.CommentRecord, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	comment, err := db.GetComment(ctx, e.db, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return e.serializeComment(ctx, comment, recursive)
}

func (e *Engine) UpdateComment(ctx context.Context, id string, update CommentUpdate) (*models.CommentRecord, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	comment, err := db.GetComment(ctx, e.db, id)
	if err != nil {
		return nil, mapNotFound(err)
	}

	if update.Body != nil {
		if strings.TrimSpace(*update.Body) == "" {
			return nil, validationError("body is required")
		}
		comment.Body = *update.Body
	}
	if update.Endorsed != nil {
		comment.Endorsed = *update.Endorsed
	}

	comment.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if err := db.UpdateComment(ctx, e.db, comment); err != nil {
		return nil, mapNotFound(err)
	}
	return e.serializeComment(ctx, comment, false)
}

// DeleteComment removes the comment and everything beneath it in one shot;
// siblings and ancestors are untouched.
func (e *Engine) DeleteComment(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return mapNotFound(db.DeleteComment(ctx, e.db, id))
}
