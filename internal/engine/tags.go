package engine

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"colloq/internal/db"
)

// tagPattern is the shape a normalized tag must have: it starts with a
// letter or digit and continues with word characters, dots, dashes, hashes
// or spaces.
var tagPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9 ._#+-]*$`)

// NormalizeTags flattens raw tag input (elements may themselves be
// comma-joined lists) into a trimmed, lower-cased, de-duplicated set,
// preserving first-seen order.
func NormalizeTags(raw []string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(raw))
	for _, chunk := range raw {
		for _, tag := range strings.Split(chunk, ",") {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" {
				continue
			}
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	return out
}

func validateTags(tags []string) []string {
	msgs := make([]string, 0)
	for _, tag := range tags {
		if !tagPattern.MatchString(tag) {
			msgs = append(msgs, "tag "+strconv.Quote(tag)+" is invalid")
		}
	}
	return msgs
}

func (e *Engine) AllTags(ctx context.Context) ([]db.TagCount, error) {
	return db.AllTags(ctx, e.db)
}

// Autocomplete matches tags by prefix, bounded by max (callers passing
// max <= 0 get the configured default). A blank prefix yields nothing.
func (e *Engine) Autocomplete(ctx context.Context, prefix string, max int, sortByCount bool) ([]string, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return []string{}, nil
	}
	if max <= 0 {
		max = e.cfg.MaxAutocompleteResults
	}
	return db.AutocompleteTags(ctx, e.db, prefix, max, sortByCount)
}
