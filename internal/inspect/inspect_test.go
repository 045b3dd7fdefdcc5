package inspect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/jyutdb/internal/model"
	"github.com/ppiankov/jyutdb/internal/store"
)

func sampleStore() *store.Store {
	s := store.New()
	s.Set("A01", &model.Entry{Characters: []string{"木"}, Head: "m", Tail: "uk", Jyutping: "muk6", Pinyin: "mu4"})
	s.Set("A02", &model.Entry{Characters: []string{"目"}, Head: "m", Tail: "uk", Jyutping: "muk6"})
	s.Set("B01", &model.Entry{Characters: []string{}, Head: "s", Tail: "i", Jyutping: "si1", Ref: "A01"})
	return s
}

func TestProps(t *testing.T) {
	props, err := Props(sampleStore(), "head", "tail", "ref", "controversial")
	require.NoError(t, err)
	require.Len(t, props, 4)

	assert.Equal(t, Property{Key: "head", Values: []any{"m", "s"}}, props[0])
	assert.Equal(t, Property{Key: "tail", Values: []any{"uk", "i"}}, props[1])
	// ref is omitted when empty
	assert.Equal(t, Property{Key: "ref", Values: []any{nil, "A01"}}, props[2])
	assert.Equal(t, Property{Key: "controversial", Values: []any{float64(0)}}, props[3])
}

func TestProps_UnknownKey(t *testing.T) {
	_, err := Props(sampleStore(), "head", "colour")
	assert.ErrorIs(t, err, ErrUnknownProperty)
}

func TestLookup(t *testing.T) {
	s := sampleStore()

	tests := []struct {
		name  string
		query string
		fuzzy bool
		want  []string
	}{
		{name: "exact id", query: "A01", want: []string{"A01"}},
		{name: "exact reading", query: "muk6", want: []string{"A01", "A02"}},
		{name: "partial id needs fuzzy", query: "A0", want: nil},
		{name: "fuzzy id", query: "A0", fuzzy: true, want: []string{"A01", "A02"}},
		{name: "fuzzy reading", query: "si", fuzzy: true, want: []string{"B01"}},
		{name: "fuzzy id and reading", query: "1", fuzzy: true, want: []string{"A01", "B01"}},
		{name: "no match", query: "zzz", fuzzy: true, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, h := range Lookup(s, tt.query, tt.fuzzy) {
				got = append(got, h.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	// fuzzy identifier hits are exactly the store's substring matches
	var fuzzyIDs []string
	for _, h := range Lookup(s, "A", true) {
		fuzzyIDs = append(fuzzyIDs, h.ID)
	}
	assert.Equal(t, s.Match("A"), fuzzyIDs)

	hits := Lookup(s, "B01", false)
	require.Len(t, hits, 1)
	assert.Equal(t, "B01", hits[0].Char)
}
