package engine

import (
	"context"

	"colloq/internal/db"
	"colloq/internal/models"
	"colloq/internal/search"
)

// serializeThread builds the wire form of a thread. Both modes load the
// whole comment set and the vote tallies up front; recursive mode then
// nests children inline while flat mode keeps only the top-level ids.
func (e *Engine) serializeThread(ctx context.Context, thread *models.Thread, recursive bool) (*models.ThreadRecord, error) {
	tally, err := db.VoteTally(ctx, e.db, models.Target{Type: models.TargetThread, ID: thread.ID})
	if err != nil {
		return nil, err
	}
	comments, err := db.ListThreadComments(ctx, e.db, thread.ID)
	if err != nil {
		return nil, err
	}
	tallies, err := db.CommentTalliesForThread(ctx, e.db, thread.ID)
	if err != nil {
		return nil, err
	}

	record := &models.ThreadRecord{
		ID:            thread.ID,
		CommentableID: thread.CommentableID,
		CourseID:      thread.CourseID,
		Title:         thread.Title,
		Body:          thread.Body,
		AuthorID:      thread.AuthorID,
		Anonymous:     thread.Anonymous,
		Tags:          thread.Tags,
		CreatedAt:     thread.CreatedAt,
		UpdatedAt:     thread.UpdatedAt,
		UpCount:       tally.UpCount,
		CommentCount:  len(comments),
	}
	if recursive {
		record.Comments = buildForest(comments, tallies)
	} else {
		for i := range comments {
			if comments[i].ParentID == nil {
				record.CommentIDs = append(record.CommentIDs, comments[i].ID)
			}
		}
	}
	return record, nil
}

// serializeComment builds the wire form of a single comment. Recursive mode
// inlines the comment's descendants; flat mode lists direct child ids only.
func (e *Engine) serializeComment(ctx context.Context, comment *models.Comment, recursive bool) (*models.CommentRecord, error) {
	tally, err := db.VoteTally(ctx, e.db, models.Target{Type: models.TargetComment, ID: comment.ID})
	if err != nil {
		return nil, err
	}
	record := commentRecord(comment, tally.UpCount)

	siblings, err := db.ListThreadComments(ctx, e.db, comment.ThreadID)
	if err != nil {
		return nil, err
	}
	if recursive {
		tallies, err := db.CommentTalliesForThread(ctx, e.db, comment.ThreadID)
		if err != nil {
			return nil, err
		}
		record.Children = buildChildren(comment.ID, siblings, tallies)
	} else {
		for i := range siblings {
			if siblings[i].ParentID != nil && *siblings[i].ParentID == comment.ID {
				record.ChildIDs = append(record.ChildIDs, siblings[i].ID)
			}
		}
	}
	return record, nil
}

// buildForest nests a thread's comments under their parents, preserving the
// creation order of the input at every level.
func buildForest(comments []models.Comment, tallies map[string]int) []models.CommentRecord {
	roots := make([]models.CommentRecord, 0)
	for i := range comments {
		if comments[i].ParentID != nil {
			continue
		}
		record := commentRecord(&comments[i], tallies[comments[i].ID])
		record.Children = buildChildren(comments[i].ID, comments, tallies)
		roots = append(roots, *record)
	}
	return roots
}

func buildChildren(parentID string, comments []models.Comment, tallies map[string]int) []models.CommentRecord {
	var out []models.CommentRecord
	for i := range comments {
		if comments[i].ParentID == nil || *comments[i].ParentID != parentID {
			continue
		}
		record := commentRecord(&comments[i], tallies[comments[i].ID])
		record.Children = buildChildren(comments[i].ID, comments, tallies)
		out = append(out, *record)
	}
	return out
}

func commentRecord(c *models.Comment, upCount int) *models.CommentRecord {
	return &models.CommentRecord{
		ID:        c.ID,
		ThreadID:  c.ThreadID,
		ParentID:  c.ParentID,
		AuthorID:  c.AuthorID,
		Anonymous: c.Anonymous,
		Body:      c.Body,
		Endorsed:  c.Endorsed,
		Depth:     c.Depth,
		CreatedAt: c.CreatedAt,
		UpCount:   upCount,
	}
}

func searchParams(query, commentableID string, tags []string, limit int) search.Params {
	return search.Params{
		Query:         query,
		CommentableID: commentableID,
		Tags:          tags,
		Limit:         limit,
	}
}
