// Package resolve expands {ID} citation expressions into reference segments.
package resolve

import (
	"regexp"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ppiankov/jyutdb/internal/logging"
	"github.com/ppiankov/jyutdb/internal/model"
	"github.com/ppiankov/jyutdb/internal/store"
)

// citation matches an opening brace, one or more non-closing-brace characters and a closing brace
var citation = regexp.MustCompile(`\{([^}]+)\}`)

// Stats counts what the resolver has produced so far
type Stats struct {
	References int64 // reference segments emitted
	Unresolved int64 // references whose target entry does not exist
}

// Resolver turns citation expressions into references against a store.
// It only reads the store and is safe for concurrent use.
type Resolver struct {
	store      *store.Store
	logger     *zap.Logger
	references atomic.Int64
	unresolved atomic.Int64
}

// New creates a resolver over s
func New(s *store.Store, logger *zap.Logger) *Resolver {
	return &Resolver{
		store:  s,
		logger: logging.OrNop(logger),
	}
}

// Resolve splits text into literal and reference segments in one left-to-right,
// non-recursive pass. A citation whose target is missing, or whose target has no
// characters, shows the identifier itself. Text without citations comes back as a
// single literal segment; empty text yields an empty sequence.
func (r *Resolver) Resolve(text string, fields ...zap.Field) []model.Segment {
	matches := citation.FindAllStringSubmatchIndex(text, -1)
	segments := make([]model.Segment, 0, 2*len(matches)+1)

	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if last < start {
			segments = append(segments, model.LiteralSegment(text[last:start]))
		}
		id := text[m[2]:m[3]]
		char, found := r.store.Display(id)
		if !found {
			r.unresolved.Add(1)
			r.logger.With(fields...).Warn("unresolved citation", zap.String("target", id))
		}
		r.references.Add(1)
		segments = append(segments, model.RefSegment(id, char))
		last = end
	}
	if last < len(text) {
		segments = append(segments, model.LiteralSegment(text[last:]))
	}
	return segments
}

// ResolveText resolves t in place when it is still a plain string and reports
// whether it did. Already resolved text is left exactly as it is.
func (r *Resolver) ResolveText(t *model.Text, fields ...zap.Field) bool {
	plain, ok := t.Plain()
	if !ok {
		return false
	}
	*t = model.ResolvedText(r.Resolve(plain, fields...)...)
	return true
}

// Stats returns the counters accumulated since the resolver was created
func (r *Resolver) Stats() Stats {
	return Stats{
		References: r.references.Load(),
		Unresolved: r.unresolved.Load(),
	}
}
