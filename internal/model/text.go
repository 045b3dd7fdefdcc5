package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Reference is a resolved citation: the cited entry ID and the character shown for it
type Reference struct {
	ID   string `json:"id"`
	Char string `json:"char"`
}

// Segment is one piece of a resolved text, either literal text or a reference
type Segment struct {
	Literal string
	Ref     *Reference
}

// LiteralSegment returns a literal segment
func LiteralSegment(s string) Segment {
	return Segment{Literal: s}
}

// RefSegment returns a reference segment
func RefSegment(id, char string) Segment {
	return Segment{Ref: &Reference{ID: id, Char: char}}
}

// IsRef reports whether the segment is a reference
func (s Segment) IsRef() bool {
	return s.Ref != nil
}

// Equal reports whether two segments carry the same content
func (s Segment) Equal(o Segment) bool {
	if s.IsRef() != o.IsRef() {
		return false
	}
	if s.IsRef() {
		return *s.Ref == *o.Ref
	}
	return s.Literal == o.Literal
}

// MarshalJSON encodes a literal as a JSON string and a reference as {"id","char"}
func (s Segment) MarshalJSON() ([]byte, error) {
	if s.Ref != nil {
		return json.Marshal(s.Ref)
	}
	return json.Marshal(s.Literal)
}

// UnmarshalJSON decodes either form written by MarshalJSON
func (s *Segment) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty segment")
	}
	switch data[0] {
	case '"':
		*s = Segment{}
		return json.Unmarshal(data, &s.Literal)
	case '{':
		var ref Reference
		if err := json.Unmarshal(data, &ref); err != nil {
			return fmt.Errorf("decode reference: %w", err)
		}
		*s = Segment{Ref: &ref}
		return nil
	default:
		return fmt.Errorf("segment must be a string or an object, got %s", data)
	}
}

// Text is a text-bearing field. It is either unresolved (a plain template string
// that may hold placeholders and {ID} citations) or resolved (a segment sequence).
// A resolved Text is never resolved again.
type Text struct {
	plain    string
	segments []Segment
	resolved bool
}

// PlainText returns an unresolved Text
func PlainText(s string) Text {
	return Text{plain: s}
}

// ResolvedText returns a resolved Text holding the given segments
func ResolvedText(segments ...Segment) Text {
	if segments == nil {
		segments = []Segment{}
	}
	return Text{segments: segments, resolved: true}
}

// IsResolved reports whether the text is already in segment form
func (t Text) IsResolved() bool {
	return t.resolved
}

// Plain returns the template string; ok is false once the text is resolved
func (t Text) Plain() (s string, ok bool) {
	return t.plain, !t.resolved
}

// Segments returns the resolved segments, or nil for an unresolved text
func (t Text) Segments() []Segment {
	if !t.resolved {
		return nil
	}
	return t.segments
}

// Source renders the text back to template form, writing references as {ID}
func (t Text) Source() string {
	if !t.resolved {
		return t.plain
	}
	var b strings.Builder
	for _, seg := range t.segments {
		if seg.IsRef() {
			b.WriteString("{" + seg.Ref.ID + "}")
		} else {
			b.WriteString(seg.Literal)
		}
	}
	return b.String()
}

// Display renders the text as a reader would see it, references shown by their character
func (t Text) Display() string {
	if !t.resolved {
		return t.plain
	}
	var b strings.Builder
	for _, seg := range t.segments {
		if seg.IsRef() {
			b.WriteString(seg.Ref.Char)
		} else {
			b.WriteString(seg.Literal)
		}
	}
	return b.String()
}

// Equal reports structural equality, including the representation
func (t Text) Equal(o Text) bool {
	if t.resolved != o.resolved {
		return false
	}
	if !t.resolved {
		return t.plain == o.plain
	}
	if len(t.segments) != len(o.segments) {
		return false
	}
	for i := range t.segments {
		if !t.segments[i].Equal(o.segments[i]) {
			return false
		}
	}
	return true
}

// Clone returns a copy that shares no memory with t
func (t Text) Clone() Text {
	if !t.resolved {
		return t
	}
	segs := make([]Segment, len(t.segments))
	for i, seg := range t.segments {
		if seg.Ref != nil {
			ref := *seg.Ref
			seg.Ref = &ref
		}
		segs[i] = seg
	}
	return Text{segments: segs, resolved: true}
}

// MarshalJSON writes a string for unresolved text and an array for resolved text
func (t Text) MarshalJSON() ([]byte, error) {
	if t.resolved {
		return json.Marshal(t.segments)
	}
	return json.Marshal(t.plain)
}

// UnmarshalJSON accepts a string, an array of segments, or null
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = Text{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = PlainText(s)
		return nil
	case '[':
		var segs []Segment
		if err := json.Unmarshal(data, &segs); err != nil {
			return fmt.Errorf("decode text segments: %w", err)
		}
		*t = ResolvedText(segs...)
		return nil
	default:
		return fmt.Errorf("text must be a string or an array, got %s", data)
	}
}
