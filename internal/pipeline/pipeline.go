// Package pipeline runs a full export: load, walk, propagate, write.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/jyutdb/internal/cache"
	"github.com/ppiankov/jyutdb/internal/db"
	"github.com/ppiankov/jyutdb/internal/loader"
	"github.com/ppiankov/jyutdb/internal/logging"
	"github.com/ppiankov/jyutdb/internal/model"
	"github.com/ppiankov/jyutdb/internal/relation"
	"github.com/ppiankov/jyutdb/internal/resolve"
	"github.com/ppiankov/jyutdb/internal/store"
	"github.com/ppiankov/jyutdb/internal/walk"
)

// Pipeline orchestrates the complete export process
type Pipeline struct {
	config   *model.Config
	cache    cache.Cache
	renderer *Renderer
	logger   *zap.Logger
	now      func() time.Time
}

// NewPipeline creates a pipeline. c may be nil; watch mode passes a cache that
// outlives a single run.
func NewPipeline(cfg *model.Config, c cache.Cache, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		config:   cfg,
		cache:    c,
		renderer: NewRenderer(cfg.Output.Indent),
		logger:   logging.OrNop(logger),
		now:      time.Now,
	}
}

// Report summarises one export run
type Report struct {
	RunID      string
	Partitions []string
	Creators   []model.Creator
	Entries    int
	Collisions []loader.Collision
	Walk       walk.Stats
	Citations  resolve.Stats
	Relations  relation.Stats
	Output     string
	SQLite     string
	Cached     int // partitions held by the decode cache after loading
	Took       time.Duration
}

// Build loads paths and runs the walk and propagation passes. The returned
// store is fully resolved; nothing is written.
func (p *Pipeline) Build(ctx context.Context, paths []string) (*store.Store, *Report, error) {
	logger, runID := logging.WithRun(p.logger)
	start := p.now()
	report := &Report{RunID: runID}

	// 1. Load and merge partitions
	l := loader.New(p.config.Merge, p.cache, logger)
	st, res, err := l.Load(ctx, paths)
	if res != nil {
		report.Partitions = res.Partitions
		report.Creators = res.Creators
		report.Collisions = res.Collisions
	}
	if err != nil {
		return nil, report, fmt.Errorf("load: %w", err)
	}
	report.Entries = res.Entries

	// 2. Placeholders and citations
	r := resolve.New(st, logger)
	w := walk.New(st, r, p.config.Walk, logger)
	if err := w.Walk(ctx); err != nil {
		return nil, report, fmt.Errorf("walk: %w", err)
	}
	report.Walk = w.Stats()
	report.Citations = r.Stats()

	// 3. Relation groups, always single-threaded
	report.Relations = relation.New(st, p.config.Propagate, logger).Propagate()

	if p.cache != nil {
		report.Cached = p.cache.Len()
	}
	report.Took = p.now().Sub(start)
	logger.Info("database built",
		zap.Int("partitions", len(report.Partitions)),
		zap.Int("entries", report.Entries),
		zap.Int64("references", report.Citations.References),
		zap.Int64("unresolved", report.Citations.Unresolved),
		zap.Duration("took", report.Took))

	return st, report, nil
}

// Run builds the database and writes the JSON artifact, plus the SQLite mirror when configured
func (p *Pipeline) Run(ctx context.Context, paths []string) (*Report, error) {
	st, report, err := p.Build(ctx, paths)
	if err != nil {
		return report, err
	}

	doc := p.Document(st, report)

	out := p.OutputPath()
	if err := p.renderer.RenderJSON(doc, out); err != nil {
		return report, fmt.Errorf("render JSON: %w", err)
	}
	report.Output = out

	if p.config.Output.SQLite != "" {
		if err := writeSQLite(p.config.Output.SQLite, doc); err != nil {
			return report, fmt.Errorf("write sqlite: %w", err)
		}
		report.SQLite = p.config.Output.SQLite
	}

	p.logger.Info("export written",
		zap.String("run", report.RunID),
		zap.String("output", report.Output),
		zap.String("sqlite", report.SQLite))
	return report, nil
}

// Document assembles the output document from a built store
func (p *Pipeline) Document(st *store.Store, report *Report) *model.Database {
	doc := model.NewDatabase(p.config.Output.Name, p.now())
	if p.config.Output.Version != "" {
		doc.Version = p.config.Output.Version
	}
	for _, c := range report.Creators {
		doc.AddCreator(c)
	}
	doc.Data = st.Records()
	return doc
}

// OutputPath returns <output.dir>/<output.name>.json
func (p *Pipeline) OutputPath() string {
	name := p.config.Output.Name
	if name == "" {
		name = model.DefaultConfig().Output.Name
	}
	return filepath.Join(p.config.Output.Dir, name+".json")
}

func writeSQLite(path string, doc *model.Database) error {
	conn, err := db.Open(path)
	if err != nil {
		return err
	}
	defer conn.Close()
	return db.Write(conn, doc)
}
