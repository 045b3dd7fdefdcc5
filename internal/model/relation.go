package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Member is one entry of a resolved relation group
type Member struct {
	ID   string
	Char string
}

// Relation holds an entry's related or refBy set. Before propagation it is an
// ordered list of raw entry IDs (a JSON array); afterwards it is the resolved
// group of id -> display character (a JSON object, member order preserved).
type Relation struct {
	ids      []string
	group    []Member
	resolved bool
}

// RelationList returns an unresolved relation over the given IDs
func RelationList(ids ...string) Relation {
	if ids == nil {
		ids = []string{}
	}
	return Relation{ids: ids}
}

// RelationGroup returns a resolved relation holding the given members
func RelationGroup(members ...Member) Relation {
	if members == nil {
		members = []Member{}
	}
	return Relation{group: members, resolved: true}
}

// IsResolved reports whether the relation holds a resolved group
func (r Relation) IsResolved() bool {
	return r.resolved
}

// IDs returns the raw identifiers of an unresolved relation, or the member IDs of a group
func (r Relation) IDs() []string {
	if !r.resolved {
		return r.ids
	}
	ids := make([]string, len(r.group))
	for i, m := range r.group {
		ids[i] = m.ID
	}
	return ids
}

// Group returns the resolved members, or nil for an unresolved relation
func (r Relation) Group() []Member {
	if !r.resolved {
		return nil
	}
	return r.group
}

// Equal compares representation, order and content
func (r Relation) Equal(o Relation) bool {
	if r.resolved != o.resolved {
		return false
	}
	if r.resolved {
		if len(r.group) != len(o.group) {
			return false
		}
		for i := range r.group {
			if r.group[i] != o.group[i] {
				return false
			}
		}
		return true
	}
	if len(r.ids) != len(o.ids) {
		return false
	}
	for i := range r.ids {
		if r.ids[i] != o.ids[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy that shares no memory with r
func (r Relation) Clone() Relation {
	if r.resolved {
		return RelationGroup(append([]Member(nil), r.group...)...)
	}
	return RelationList(append([]string(nil), r.ids...)...)
}

// MarshalJSON writes an array for a raw list and an ordered object for a group
func (r Relation) MarshalJSON() ([]byte, error) {
	if !r.resolved {
		ids := r.ids
		if ids == nil {
			ids = []string{}
		}
		return json.Marshal(ids)
	}
	return encodeObject(len(r.group), func(i int) (string, any) {
		return r.group[i].ID, r.group[i].Char
	})
}

// UnmarshalJSON accepts an array of IDs, an id -> char object, or null
func (r *Relation) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = RelationList()
		return nil
	}
	switch data[0] {
	case '[':
		var ids []string
		if err := json.Unmarshal(data, &ids); err != nil {
			return fmt.Errorf("decode relation list: %w", err)
		}
		*r = RelationList(ids...)
		return nil
	case '{':
		members := []Member{}
		err := decodeObject(data, func(key string, raw json.RawMessage) error {
			var char string
			if err := json.Unmarshal(raw, &char); err != nil {
				return err
			}
			members = append(members, Member{ID: key, Char: char})
			return nil
		})
		if err != nil {
			return fmt.Errorf("decode relation group: %w", err)
		}
		*r = RelationGroup(members...)
		return nil
	default:
		return fmt.Errorf("relation must be an array or an object, got %s", data)
	}
}
