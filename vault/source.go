package vault

import (
	"context"
	"iter"

	"github.com/poiesic/noteseek/core"
)

// Source yields a point-in-time snapshot of a note collection. The indexer
// consumes the sequence once per reindex pass.
//
// A non-nil error in the sequence reports a note that could not be read;
// the accompanying Note carries at least the ID when it is known, so the
// caller can account for the failure without aborting the pass. Yielding
// stops early if the consumer breaks or the context is cancelled.
type Source interface {
	Notes(ctx context.Context) iter.Seq2[core.Note, error]
}

// StaticSource is an in-memory Source backed by a fixed slice of notes.
// Useful in tests and for seeding.
type StaticSource struct {
	notes []core.Note
}

var _ Source = (*StaticSource)(nil)

// NewStaticSource creates a source over the given notes. The slice is not
// copied; callers must not mutate it while a reindex pass is running.
func NewStaticSource(notes []core.Note) *StaticSource {
	return &StaticSource{notes: notes}
}

func (s *StaticSource) Notes(ctx context.Context) iter.Seq2[core.Note, error] {
	return func(yield func(core.Note, error) bool) {
		for _, note := range s.notes {
			if ctx.Err() != nil {
				return
			}
			if !yield(note, nil) {
				return
			}
		}
	}
}
