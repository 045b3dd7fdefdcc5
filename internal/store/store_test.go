package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ppiankov/jyutdb/internal/model"
)

func TestStore_Basics(t *testing.T) {
	s := New()
	a := &model.Entry{Characters: []string{"甲"}}
	s.Set("A", a)
	s.Set("B", &model.Entry{})
	s.Set("AB", &model.Entry{Characters: []string{"丙"}})

	got, ok := s.Get("A")
	assert.True(t, ok)
	assert.Same(t, a, got)

	many := s.GetMany([]string{"B", "nope", "A"})
	assert.Len(t, many, 3)
	assert.Nil(t, many[1])
	assert.Same(t, a, many[2])

	assert.True(t, s.Has("A", true))
	assert.False(t, s.Has("C", true))
	assert.True(t, s.Has("B", false))
	assert.False(t, s.Has("ABC", false))
	assert.Equal(t, []string{"A", "AB"}, s.Match("A"))
}

func TestStore_SetKeepsPosition(t *testing.T) {
	s := New()
	s.Set("A", &model.Entry{})
	s.Set("B", &model.Entry{})
	replacement := &model.Entry{Characters: []string{"新"}}
	s.Set("A", replacement)

	assert.Equal(t, []string{"A", "B"}, s.IDs())
	assert.Equal(t, 2, s.Len())

	var visited []string
	s.ForEach(func(id string, e *model.Entry) { visited = append(visited, id) })
	assert.Equal(t, []string{"A", "B"}, visited)

	recs := s.Records()
	assert.Same(t, replacement, recs[0].Entry)
}

func TestStore_Display(t *testing.T) {
	s := New()
	s.Set("A", &model.Entry{Characters: []string{"甲", "乙"}})
	s.Set("E", &model.Entry{Characters: []string{}})

	tests := []struct {
		id        string
		wantChar  string
		wantFound bool
	}{
		{"A", "甲", true},
		{"E", "E", true},
		{"MISSING", "MISSING", false},
	}
	for _, tt := range tests {
		char, found := s.Display(tt.id)
		assert.Equal(t, tt.wantChar, char, tt.id)
		assert.Equal(t, tt.wantFound, found, tt.id)
	}
}
