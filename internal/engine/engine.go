// Package engine is the composition root of the discussion service. It owns
// thread and comment lifecycle, the vote ledger, the tag index, subscriptions
// and notification fan-out, and is the only layer that touches storage. The
// API layer above resolves identities and parameters and translates the
// engine's outcomes onto the wire.
package engine

import (
	"context"
	"database/sql"
	"log"

	"colloq/internal/db"
	"colloq/internal/search"
)

// Config carries the recognized engine options explicitly; there is no
// process-wide settings accessor.
type Config struct {
	MaxAutocompleteResults int
	NotifyOnNewComment     bool
}

func DefaultConfig() Config {
	return Config{
		MaxAutocompleteResults: 5,
		NotifyOnNewComment:     true,
	}
}

type Engine struct {
	db         *sql.DB
	cfg        Config
	search     search.Indexer
	dispatcher *Dispatcher
}

func New(database *sql.DB, cfg Config, indexer search.Indexer) *Engine {
	if cfg.MaxAutocompleteResults <= 0 {
		cfg.MaxAutocompleteResults = DefaultConfig().MaxAutocompleteResults
	}
	return &Engine{
		db:         database,
		cfg:        cfg,
		search:     indexer,
		dispatcher: NewDispatcher(database, log.Default()),
	}
}

func (e *Engine) Config() Config {
	return e.cfg
}

// DrainNotifications blocks until every queued fan-out has been delivered.
func (e *Engine) DrainNotifications() {
	e.dispatcher.Drain()
}

// Reset wipes all discussion content while keeping user accounts. Meant for
// development databases only; the API exposes it behind a dev flag.
func (e *Engine) Reset(ctx context.Context) error {
	return db.ResetContent(ctx, e.db)
}
