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

type NewThread struct {
	CommentableID string
	CourseID      string
	Title         string
	Body          string
	AuthorID      *string
	Anonymous     bool
	Tags          []string
	AutoSubscribe bool
}

// ThreadUpdate is a partial update; nil fields keep their current value.
type ThreadUpdate struct {
	Title *string
	Body  *string
	Tags  []string
}

func (e *Engine) CreateThread(ctx context.Context, req NewThread) (*models.ThreadRecord, error) {
	msgs := make([]string, 0)
	if strings.TrimSpace(req.CommentableID) == "" {
		msgs = append(msgs, "commentable_id is required")
	}
	if strings.TrimSpace(req.Title) == "" {
		msgs = append(msgs, "title is required")
	}
	if strings.TrimSpace(req.Body) == "" {
		msgs = append(msgs, "body is required")
	}
	tags := NormalizeTags(req.Tags)
	msgs = append(msgs, validateTags(tags)...)
	if len(msgs) > 0 {
		return nil, validationError(msgs...)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	thread := &models.Thread{
		ID:            uuid.NewString(),
		CommentableID: strings.TrimSpace(req.CommentableID),
		CourseID:      strings.TrimSpace(req.CourseID),
		Title:         req.Title,
		Body:          req.Body,
		AuthorID:      req.AuthorID,
		Anonymous:     req.Anonymous,
		Tags:          tags,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := db.CreateThread(ctx, e.db, thread); err != nil {
		return nil, fmt.Errorf("create thread: %w", err)
	}
	if err := e.search.Index(ctx, thread); err != nil {
		return nil, fmt.Errorf("index thread: %w", err)
	}
	if req.AutoSubscribe && req.AuthorID != nil {
		if _, err := e.Subscribe(ctx, *req.AuthorID, thread.ID); err != nil {
			return nil, err
		}
	}
	return e.serializeThread(ctx, thread, false)
}

func (e *Engine) GetThread(ctx context.Context, id string, recursive bool) (*models.ThreadRecord, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	thread, err := db.GetThread(ctx, e.db, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return e.serializeThread(ctx, thread, recursive)
}

func (e *Engine) UpdateThread(ctx context.Context, id string, update ThreadUpdate) (*models.ThreadRecord, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	thread, err := db.GetThread(ctx, e.db, id)
	if err != nil {
		return nil, mapNotFound(err)
	}

	msgs := make([]string, 0)
	if update.Title != nil {
		if strings.TrimSpace(*update.Title) == "" {
			msgs = append(msgs, "title is required")
		} else {
			thread.Title = *update.Title
		}
	}
	if update.Body != nil {
		if strings.TrimSpace(*update.Body) == "" {
			msgs = append(msgs, "body is required")
		} else {
			thread.Body = *update.Body
		}
	}
	if update.Tags != nil {
		tags := NormalizeTags(update.Tags)
		if tagMsgs := validateTags(tags); len(tagMsgs) > 0 {
			msgs = append(msgs, tagMsgs...)
		} else {
			thread.Tags = tags
		}
	}
	if len(msgs) > 0 {
		return nil, validationError(msgs...)
	}

	thread.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if err := db.UpdateThread(ctx, e.db, thread); err != nil {
		return nil, mapNotFound(err)
	}
	if err := e.search.Index(ctx, thread); err != nil {
		return nil, fmt.Errorf("reindex thread: %w", err)
	}
	return e.serializeThread(ctx, thread, false)
}

func (e *Engine) DeleteThread(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := db.DeleteThread(ctx, e.db, id); err != nil {
		return mapNotFound(err)
	}
	if err := e.search.Remove(ctx, id); err != nil {
		return fmt.Errorf("deindex thread: %w", err)
	}
	return nil
}

func (e *Engine) ListThreadsFor(ctx context.Context, commentableID string, recursive bool) ([]models.ThreadRecord, error) {
	threads, err := db.ListThreadsFor(ctx, e.db, commentableID)
	if err != nil {
		return nil, err
	}
	out := make([]models.ThreadRecord, 0, len(threads))
	for i := range threads {
		record, err := e.serializeThread(ctx, &threads[i], recursive)
		if err != nil {
			return nil, err
		}
		out = append(out, *record)
	}
	return out, nil
}

func (e *Engine) DeleteThreadsFor(ctx context.Context, commentableID string) error {
	ids, err := db.DeleteThreadsFor(ctx, e.db, commentableID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := e.search.Remove(ctx, id); err != nil {
			return fmt.Errorf("deindex thread: %w", err)
		}
	}
	return nil
}

// SearchThreads delegates ranking to the search collaborator and loads the
// matching threads in the order it returned them.
func (e *Engine) SearchThreads(ctx context.Context, query, commentableID string, tags []string, limit int) ([]models.ThreadRecord, error) {
	ids, err := e.search.Search(ctx, searchParams(query, commentableID, NormalizeTags(tags), limit))
	if err != nil {
		return nil, err
	}
	out := make([]models.ThreadRecord, 0, len(ids))
	for _, id := range ids {
		thread, err := db.GetThread(ctx, e.db, id)
		if err != nil {
			// The index may briefly trail a concurrent delete.
			if mapNotFound(err) == ErrNotFound {
				continue
			}
			return nil, err
		}
		record, err := e.serializeThread(ctx, thread, false)
		if err != nil {
			return nil, err
		}
		out = append(out, *record)
	}
	return out, nil
}
