// Package relation turns raw related/refBy identifier lists into resolved,
// symmetric groups shared by every member.
package relation

import (
	"sort"

	"go.uber.org/zap"

	"github.com/ppiankov/jyutdb/internal/logging"
	"github.com/ppiankov/jyutdb/internal/model"
	"github.com/ppiankov/jyutdb/internal/store"
)

// Kind names one of the two relation fields
type Kind string

const (
	Related Kind = "related"
	RefBy   Kind = "refBy"
)

// Stats summarises one propagation run
type Stats struct {
	RelatedGroups int // non-empty related groups written
	RefByGroups   int // non-empty refBy groups written
	Dangling      int // listed identifiers with no entry
	FannedOut     int // variants that received content from a canonical entry
}

// Propagator computes relation groups over a store. It is not safe for
// concurrent use and must not run alongside the walker.
type Propagator struct {
	store  *store.Store
	fanOut bool
	logger *zap.Logger
	stats  Stats
}

// New creates a propagator over s
func New(s *store.Store, cfg model.PropagateConfig, logger *zap.Logger) *Propagator {
	return &Propagator{
		store:  s,
		fanOut: cfg.FanOut,
		logger: logging.OrNop(logger),
	}
}

// snapshot is the read-only view of one entry taken before anything is mutated
type snapshot struct {
	id      string
	display string
	ref     string

	related         []string
	relatedResolved bool
	refBy           []string
	refByResolved   bool

	unicode       string
	characters    []string
	controversial model.Controversy
	meanings      []model.Meaning
}

func (s *snapshot) list(k Kind) ([]string, bool) {
	if k == Related {
		return s.related, s.relatedResolved
	}
	return s.refBy, s.refByResolved
}

// Propagate resolves both relation kinds on every entry. refBy goes first so the
// members of a refBy group can share one related declaration before related
// groups are built.
func (p *Propagator) Propagate() Stats {
	p.stats = Stats{}
	snaps, byID := p.snapshot()

	refGroups := p.components(snaps, byID, RefBy)
	if p.fanOut {
		p.fan(refGroups, byID)
	}
	relGroups := p.components(snaps, byID, Related)

	p.write(snaps, byID, refGroups, RefBy)
	p.write(snaps, byID, relGroups, Related)

	p.logger.Info("relations propagated",
		zap.Int("related_groups", p.stats.RelatedGroups),
		zap.Int("refby_groups", p.stats.RefByGroups),
		zap.Int("dangling", p.stats.Dangling),
		zap.Int("fanned_out", p.stats.FannedOut),
	)
	return p.stats
}

func (p *Propagator) snapshot() ([]*snapshot, map[string]*snapshot) {
	snaps := make([]*snapshot, 0, p.store.Len())
	byID := make(map[string]*snapshot, p.store.Len())
	p.store.ForEach(func(id string, e *model.Entry) {
		display, _ := p.store.Display(id)
		s := &snapshot{
			id:              id,
			display:         display,
			ref:             e.Ref,
			related:         append([]string(nil), e.Related.IDs()...),
			relatedResolved: e.Related.IsResolved(),
			refBy:           append([]string(nil), e.RefBy.IDs()...),
			refByResolved:   e.RefBy.IsResolved(),
			unicode:         e.Unicode,
			characters:      append([]string(nil), e.Characters...),
			controversial:   e.Controversial,
			meanings:        model.CloneMeanings(e.Meanings),
		}
		snaps = append(snaps, s)
		byID[id] = s
	})
	return snaps, byID
}

// group is one connected component of a relation kind
type group struct {
	members   []string // output order
	declarers []string // store order
}

// components builds the groups of kind k over the snapshot. An entry with a
// non-empty raw list is linked to itself and every listed identifier that
// exists. Entries whose relation is already resolved do not declare.
func (p *Propagator) components(snaps []*snapshot, byID map[string]*snapshot, k Kind) map[string]*group {
	uf := newUnionFind()
	var declarers []*snapshot
	for _, s := range snaps {
		ids, resolved := s.list(k)
		if resolved || len(ids) == 0 {
			continue
		}
		declarers = append(declarers, s)
		uf.add(s.id)
		for _, id := range ids {
			if _, ok := byID[id]; !ok {
				continue
			}
			uf.union(s.id, id)
		}
	}

	groups := make(map[string]*group)
	seen := make(map[string]bool)
	for _, d := range declarers {
		root := uf.find(d.id)
		g, ok := groups[root]
		if !ok {
			g = &group{}
			groups[root] = g
		}
		g.declarers = append(g.declarers, d.id)

		ids, _ := d.list(k)
		for _, id := range append([]string{d.id}, ids...) {
			if _, ok := byID[id]; !ok {
				p.stats.Dangling++
				p.logger.Debug("dangling relation",
					zap.String("kind", string(k)),
					zap.String("entry", d.id),
					zap.String("target", id),
				)
				continue
			}
			if seen[id] {
				continue
			}
			seen[id] = true
			g.members = append(g.members, id)
		}
	}

	byMember := make(map[string]*group, len(seen))
	for _, g := range groups {
		for _, id := range g.members {
			byMember[id] = g
		}
	}
	return byMember
}

// fan copies content from each refBy group's canonical entry onto the other
// members. Every member then declares the union of the members' raw related
// lists, so the group lands in one related group whatever the store order.
func (p *Propagator) fan(groups map[string]*group, byID map[string]*snapshot) {
	done := make(map[*group]bool)
	for _, g := range groups {
		if done[g] {
			continue
		}
		done[g] = true

		canon := byID[canonical(g, byID)]
		for _, id := range g.members {
			if id == canon.id || byID[id].refByResolved {
				continue
			}
			e, _ := p.store.Get(id)
			e.Unicode = canon.unicode
			e.Characters = append([]string(nil), canon.characters...)
			e.Controversial = canon.controversial
			e.Meanings = model.CloneMeanings(canon.meanings)

			p.stats.FannedOut++
			p.logger.Debug("fanned out variant",
				zap.String("canonical", canon.id),
				zap.String("variant", id),
			)
		}

		related := unionRelated(g, byID)
		for _, id := range g.members {
			if v := byID[id]; !v.relatedResolved {
				v.related = append([]string(nil), related...)
			}
		}
	}
}

// unionRelated merges the raw related lists of a group's members, visiting
// members by id so the result does not depend on store order.
func unionRelated(g *group, byID map[string]*snapshot) []string {
	ids := append([]string(nil), g.members...)
	sort.Strings(ids)

	var out []string
	seen := make(map[string]bool)
	for _, id := range ids {
		s := byID[id]
		if s.relatedResolved {
			continue
		}
		for _, r := range s.related {
			if !seen[r] {
				seen[r] = true
				out = append(out, r)
			}
		}
	}
	return out
}

// canonical picks the member named most often by the other members' ref
// pointers. Without such a member it picks the smallest declarer id without a
// ref, then the smallest declarer id. Ties go to the smaller id.
func canonical(g *group, byID map[string]*snapshot) string {
	inGroup := make(map[string]bool, len(g.members))
	for _, id := range g.members {
		inGroup[id] = true
	}
	named := make(map[string]int)
	for _, id := range g.members {
		if ref := byID[id].ref; ref != "" && ref != id && inGroup[ref] {
			named[ref]++
		}
	}

	best := ""
	for id, n := range named {
		if best == "" || n > named[best] || (n == named[best] && id < best) {
			best = id
		}
	}
	if best != "" {
		return best
	}

	for _, id := range g.declarers {
		if byID[id].ref == "" && (best == "" || id < best) {
			best = id
		}
	}
	if best != "" {
		return best
	}
	best = g.declarers[0]
	for _, id := range g.declarers[1:] {
		if id < best {
			best = id
		}
	}
	return best
}

// write stores the resolved group of kind k on every entry that still holds a raw list
func (p *Propagator) write(snaps []*snapshot, byID map[string]*snapshot, groups map[string]*group, k Kind) {
	written := make(map[*group]bool)
	for _, s := range snaps {
		if _, resolved := s.list(k); resolved {
			continue
		}
		e, _ := p.store.Get(s.id)

		rel := model.RelationGroup()
		if g, ok := groups[s.id]; ok {
			members := make([]model.Member, len(g.members))
			for i, id := range g.members {
				members[i] = model.Member{ID: id, Char: byID[id].display}
			}
			rel = model.RelationGroup(members...)
			if !written[g] {
				written[g] = true
				if k == Related {
					p.stats.RelatedGroups++
				} else {
					p.stats.RefByGroups++
				}
			}
		}

		if k == Related {
			e.Related = rel
		} else {
			e.RefBy = rel
		}
	}
}

// Stats returns the counters of the last Propagate call
func (p *Propagator) Stats() Stats {
	return p.stats
}
