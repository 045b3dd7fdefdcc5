// Package walk applies placeholder substitution and citation resolution to
// every text field of every entry.
package walk

import (
	"context"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ppiankov/jyutdb/internal/logging"
	"github.com/ppiankov/jyutdb/internal/model"
	"github.com/ppiankov/jyutdb/internal/resolve"
	"github.com/ppiankov/jyutdb/internal/store"
	"github.com/ppiankov/jyutdb/internal/worker"
)

// Stats counts the fields a walk touched
type Stats struct {
	Entries  int64
	Resolved int64 // text fields converted to segments
	Skipped  int64 // text fields that were already resolved
}

// Walker visits the text leaves of entries in a fixed order
type Walker struct {
	store     *store.Store
	resolver  *resolve.Resolver
	selfToken string
	wordToken string
	workers   int
	logger    *zap.Logger

	entries  atomic.Int64
	resolved atomic.Int64
	skipped  atomic.Int64
}

// New creates a walker. Empty tokens fall back to the defaults.
func New(s *store.Store, r *resolve.Resolver, cfg model.WalkConfig, logger *zap.Logger) *Walker {
	def := model.DefaultConfig().Walk
	if cfg.SelfToken == "" {
		cfg.SelfToken = def.SelfToken
	}
	if cfg.WordToken == "" {
		cfg.WordToken = def.WordToken
	}
	return &Walker{
		store:     s,
		resolver:  r,
		selfToken: cfg.SelfToken,
		wordToken: cfg.WordToken,
		workers:   cfg.Workers,
		logger:    logging.OrNop(logger),
	}
}

// Walk processes every entry in the store. With more than one worker the
// entries are processed concurrently; each job only writes its own entry.
func (w *Walker) Walk(ctx context.Context) error {
	if w.workers <= 1 {
		var err error
		w.store.ForEach(func(id string, e *model.Entry) {
			if err != nil {
				return
			}
			if err = ctx.Err(); err != nil {
				return
			}
			w.Entry(id, e)
		})
		return err
	}

	jobs := make([]worker.Job, 0, w.store.Len())
	w.store.ForEach(func(id string, e *model.Entry) {
		jobs = append(jobs, &entryJob{walker: w, id: id, entry: e})
	})
	return worker.Run(ctx, w.workers, jobs)
}

// Entry processes one entry: for each meaning, its descriptions, then for each
// word its format and descriptions, then for each sentence its format and
// descriptions.
func (w *Walker) Entry(id string, e *model.Entry) {
	w.entries.Add(1)
	char := id
	if c, ok := e.DisplayForm(); ok {
		char = c
	}

	for mi := range e.Meanings {
		m := &e.Meanings[mi]
		w.resolve(&m.Descriptions.Zh, id, "meaning.zh")
		w.resolve(&m.Descriptions.En, id, "meaning.en")

		for wi := range m.Words {
			word := &m.Words[wi]
			var wordFormat string
			if plain, ok := word.Format.Plain(); ok {
				wordFormat = strings.ReplaceAll(plain, w.selfToken, char)
				word.Format = model.PlainText(wordFormat)
			} else {
				wordFormat = word.Format.Source()
			}
			w.resolve(&word.Format, id, "word.format")
			w.resolve(&word.Descriptions.Zh, id, "word.zh")
			w.resolve(&word.Descriptions.En, id, "word.en")

			for si := range word.Sentences {
				s := &word.Sentences[si]
				if plain, ok := s.Format.Plain(); ok {
					s.Format = model.PlainText(strings.ReplaceAll(plain, w.wordToken, wordFormat))
				}
				w.resolve(&s.Format, id, "sentence.format")
				w.resolve(&s.Descriptions.Zh, id, "sentence.zh")
				w.resolve(&s.Descriptions.En, id, "sentence.en")
			}
		}
	}
}

func (w *Walker) resolve(t *model.Text, id, field string) {
	if w.resolver.ResolveText(t, zap.String("entry", id), zap.String("field", field)) {
		w.resolved.Add(1)
	} else {
		w.skipped.Add(1)
	}
}

// Stats returns the counters accumulated so far
func (w *Walker) Stats() Stats {
	return Stats{
		Entries:  w.entries.Load(),
		Resolved: w.resolved.Load(),
		Skipped:  w.skipped.Load(),
	}
}

// entryJob walks one entry on the worker pool
type entryJob struct {
	walker *Walker
	id     string
	entry  *model.Entry
}

func (j *entryJob) Execute(ctx context.Context) worker.Result {
	if err := ctx.Err(); err != nil {
		return entryResult{err: err}
	}
	j.walker.Entry(j.id, j.entry)
	return entryResult{}
}

type entryResult struct {
	err error
}

func (r entryResult) GetError() error {
	return r.err
}
