// Package inspect answers diagnostic questions about a merged store.
package inspect

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/jyutdb/internal/model"
	"github.com/ppiankov/jyutdb/internal/store"
)

// ErrUnknownProperty is returned for a key that is not an entry field
var ErrUnknownProperty = errors.New("unknown entry property")

// Property lists the distinct values one entry field takes across a store
type Property struct {
	Key    string `json:"key" yaml:"key"`
	Values []any  `json:"values" yaml:"values"`
}

// Props collects the distinct values of each key over every entry, in first-seen order
func Props(s *store.Store, keys ...string) ([]Property, error) {
	props := make([]Property, 0, len(keys))
	seen := make([]map[string]bool, 0, len(keys))
	for _, k := range keys {
		if !isEntryField(k) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProperty, k)
		}
		props = append(props, Property{Key: k, Values: []any{}})
		seen = append(seen, make(map[string]bool))
	}

	var err error
	s.ForEach(func(id string, e *model.Entry) {
		if err != nil {
			return
		}
		var fields map[string]json.RawMessage
		fields, err = entryFields(e)
		if err != nil {
			err = fmt.Errorf("entry %s: %w", id, err)
			return
		}
		for i, p := range props {
			raw, ok := fields[p.Key]
			if !ok {
				raw = json.RawMessage("null")
			}
			if seen[i][string(raw)] {
				continue
			}
			seen[i][string(raw)] = true
			var v any
			if err = json.Unmarshal(raw, &v); err != nil {
				return
			}
			props[i].Values = append(props[i].Values, v)
		}
	})
	if err != nil {
		return nil, err
	}
	return props, nil
}

func entryFields(e *model.Entry) (map[string]json.RawMessage, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

var entryFieldNames = map[string]bool{
	"unicode": true, "characters": true, "controversial": true, "related": true,
	"pinyin": true, "jyutping": true, "bbakLau": true, "head": true, "tail": true,
	"refBy": true, "ref": true, "meanings": true,
}

func isEntryField(k string) bool {
	return entryFieldNames[k]
}

// Hit is one lookup result
type Hit struct {
	ID       string `json:"id"`
	Char     string `json:"char"`
	Jyutping string `json:"jyutping"`
	Pinyin   string `json:"pinyin"`
}

// Lookup finds entries by identifier or jyutping reading. In fuzzy mode the
// query only has to be a substring of the identifier or the reading.
func Lookup(s *store.Store, query string, fuzzy bool) []Hit {
	idMatch := make(map[string]bool)
	if fuzzy {
		for _, id := range s.Match(query) {
			idMatch[id] = true
		}
	} else if s.Has(query, true) {
		idMatch[query] = true
	}

	var hits []Hit
	s.ForEach(func(id string, e *model.Entry) {
		match := idMatch[id]
		if !match && e.Jyutping != "" {
			if fuzzy {
				match = strings.Contains(e.Jyutping, query)
			} else {
				match = e.Jyutping == query
			}
		}
		if !match {
			return
		}
		char, _ := s.Display(id)
		hits = append(hits, Hit{ID: id, Char: char, Jyutping: e.Jyutping, Pinyin: e.Pinyin})
	})
	return hits
}
