// Package search is the full-text collaborator consumed by the engine. The
// engine only ever talks to the Indexer interface; relevance ranking lives
// entirely behind it.
package search

import (
	"context"

	"colloq/internal/models"
)

type Params struct {
	Query         string
	CommentableID string
	Tags          []string
	Limit         int
}

type Indexer interface {
	Index(ctx context.Context, thread *models.Thread) error
	Remove(ctx context.Context, threadID string) error
	// Search returns ranked thread ids.
	Search(ctx context.Context, params Params) ([]string, error)
}
