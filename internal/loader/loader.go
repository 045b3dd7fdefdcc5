// Package loader reads source partitions and merges them into one entry store.
package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/jyutdb/internal/cache"
	"github.com/ppiankov/jyutdb/internal/logging"
	"github.com/ppiankov/jyutdb/internal/model"
	"github.com/ppiankov/jyutdb/internal/store"
	"github.com/ppiankov/jyutdb/internal/validate"
)

var (
	// ErrCollision is returned when two partitions define the same identifier
	// and the collision policy is fail.
	ErrCollision = errors.New("identifier collision")
	// ErrMalformed wraps JSON decoding failures
	ErrMalformed = errors.New("malformed partition")
	// ErrInvalid wraps structural validation failures
	ErrInvalid = errors.New("invalid partition")
	// ErrNoPartitions is returned when there is nothing to load
	ErrNoPartitions = errors.New("no partitions to load")
)

// LoadError is a fatal failure to read one partition file
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Partition is one decoded source file
type Partition struct {
	Path string
	DB   *model.Database
}

// Name returns the partition's declared name, or its file name without extension
func (p *Partition) Name() string {
	if p.DB != nil && p.DB.Name != "" {
		return p.DB.Name
	}
	return strings.TrimSuffix(filepath.Base(p.Path), filepath.Ext(p.Path))
}

// Collision records an identifier defined more than once
type Collision struct {
	ID       string
	Previous string // partition whose entry was dropped
	Current  string // partition whose entry was kept
}

// Result summarises a merge
type Result struct {
	Partitions []string
	Creators   []model.Creator
	Entries    int
	Collisions []Collision
}

// Loader reads and merges partitions
type Loader struct {
	onCollision string
	validate    bool
	parallel    int
	cache       cache.Cache
	logger      *zap.Logger
}

// New creates a loader. c may be nil to disable partition caching.
func New(cfg model.MergeConfig, c cache.Cache, logger *zap.Logger) *Loader {
	parallel := cfg.Parallel
	if parallel <= 0 {
		parallel = 1
	}
	onCollision := cfg.OnCollision
	if onCollision == "" {
		onCollision = model.CollisionWarn
	}
	return &Loader{
		onCollision: onCollision,
		validate:    cfg.Validate,
		parallel:    parallel,
		cache:       c,
		logger:      logging.OrNop(logger),
	}
}

// ReadPartition reads, validates and decodes one partition file
func (l *Loader) ReadPartition(path string) (*model.Database, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	var key string
	if l.cache != nil {
		key = cache.CacheKey(path, info.Size(), info.ModTime())
		if db, ok := l.cache.Get(key); ok {
			l.logger.Debug("partition cache hit", zap.String("path", path))
			return db, nil
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	if l.validate {
		if err := validate.Partition(raw); err != nil {
			var ve *validate.Error
			if !errors.As(err, &ve) {
				return nil, &LoadError{Path: path, Err: fmt.Errorf("%w: %w", ErrMalformed, err)}
			}
			return nil, &LoadError{Path: path, Err: fmt.Errorf("%w: %w", ErrInvalid, err)}
		}
	}

	db := &model.Database{}
	if err := json.Unmarshal(raw, db); err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("%w: %w", ErrMalformed, err)}
	}

	if l.cache != nil {
		l.cache.Set(key, db, 0)
	}
	return db, nil
}

// ReadAll decodes every path concurrently and returns the partitions in input order.
// The first failure cancels the rest.
func (l *Loader) ReadAll(ctx context.Context, paths []string) ([]*Partition, error) {
	if len(paths) == 0 {
		return nil, ErrNoPartitions
	}

	parts := make([]*Partition, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.parallel)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			db, err := l.ReadPartition(path)
			if err != nil {
				return err
			}
			parts[i] = &Partition{Path: path, DB: db}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return parts, nil
}

// Merge copies every entry of parts into st, partition by partition and entry by
// entry. A later definition of an identifier replaces the earlier one; the
// collision is logged, or returned as ErrCollision under the fail policy.
func (l *Loader) Merge(parts []*Partition, st *store.Store) (*Result, error) {
	res := &Result{}
	owner := make(map[string]string, st.Len())
	seenCreator := make(map[model.Creator]bool)

	for _, p := range parts {
		name := p.Name()
		res.Partitions = append(res.Partitions, name)

		for _, c := range p.DB.Creators {
			key := model.Creator{Name: c.Name, Email: c.Email}
			if !seenCreator[key] {
				seenCreator[key] = true
				res.Creators = append(res.Creators, c)
			}
		}

		for _, rec := range p.DB.Data {
			if prev, ok := owner[rec.ID]; ok || st.Has(rec.ID, true) {
				if !ok {
					prev = "(store)"
				}
				col := Collision{ID: rec.ID, Previous: prev, Current: name}
				res.Collisions = append(res.Collisions, col)
				if l.onCollision == model.CollisionFail {
					return res, fmt.Errorf("%w: %s defined by %s and %s", ErrCollision, rec.ID, prev, name)
				}
				l.logger.Warn("identifier collision, keeping later definition",
					zap.String("id", rec.ID),
					zap.String("dropped", prev),
					zap.String("kept", name))
			}
			owner[rec.ID] = name
			st.Set(rec.ID, rec.Entry)
		}
	}

	res.Entries = st.Len()
	return res, nil
}

// Load reads paths and merges them into a new store
func (l *Loader) Load(ctx context.Context, paths []string) (*store.Store, *Result, error) {
	start := time.Now()
	parts, err := l.ReadAll(ctx, paths)
	if err != nil {
		return nil, nil, err
	}

	st := store.New()
	res, err := l.Merge(parts, st)
	if err != nil {
		return nil, res, err
	}

	l.logger.Debug("partitions merged",
		zap.Int("partitions", len(parts)),
		zap.Int("entries", res.Entries),
		zap.Int("collisions", len(res.Collisions)),
		zap.Duration("took", time.Since(start)))
	return st, res, nil
}
