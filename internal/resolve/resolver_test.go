package resolve

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ppiankov/jyutdb/internal/model"
	"github.com/ppiankov/jyutdb/internal/store"
)

func newStore() *store.Store {
	s := store.New()
	s.Set("X", &model.Entry{Characters: []string{"字", "孖"}})
	s.Set("W", &model.Entry{Characters: []string{"木"}})
	s.Set("EMPTY", &model.Entry{Characters: []string{}})
	return s
}

func TestResolve(t *testing.T) {
	r := New(newStore(), nil)

	tests := []struct {
		name string
		text string
		want []model.Segment
	}{
		{
			name: "citation between literals",
			text: "a{X}b",
			want: []model.Segment{model.LiteralSegment("a"), model.RefSegment("X", "字"), model.LiteralSegment("b")},
		},
		{
			name: "missing target falls back to id",
			text: "{Y}",
			want: []model.Segment{model.RefSegment("Y", "Y")},
		},
		{
			name: "target without characters falls back to id",
			text: "{EMPTY}",
			want: []model.Segment{model.RefSegment("EMPTY", "EMPTY")},
		},
		{
			name: "no citation",
			text: "plain text",
			want: []model.Segment{model.LiteralSegment("plain text")},
		},
		{
			name: "empty",
			text: "",
			want: []model.Segment{},
		},
		{
			name: "adjacent citations",
			text: "{X}{W}",
			want: []model.Segment{model.RefSegment("X", "字"), model.RefSegment("W", "木")},
		},
		{
			name: "empty braces stay literal",
			text: "{}{X}",
			want: []model.Segment{model.LiteralSegment("{}"), model.RefSegment("X", "字")},
		},
		{
			name: "unclosed brace stays literal",
			text: "見{X",
			want: []model.Segment{model.LiteralSegment("見{X")},
		},
		{
			name: "nested opening brace belongs to the id",
			text: "{{X}}",
			want: []model.Segment{model.RefSegment("{X", "{X"), model.LiteralSegment("}")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Resolve(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestResolve_SelfCitationDoesNotRecurse(t *testing.T) {
	s := store.New()
	s.Set("SELF", &model.Entry{
		Characters: []string{"自"},
		Meanings: []model.Meaning{{
			Descriptions: model.Descriptions{Zh: model.PlainText("見{SELF}"), En: model.PlainText("")},
		}},
	})
	r := New(s, nil)

	got := r.Resolve("見{SELF}")
	assert.True(t, cmp.Equal([]model.Segment{model.LiteralSegment("見"), model.RefSegment("SELF", "自")}, got))
}

func TestResolveText_Idempotent(t *testing.T) {
	r := New(newStore(), nil)

	text := model.PlainText("a{X}b")
	require.True(t, r.ResolveText(&text))
	first := text.Clone()

	assert.False(t, r.ResolveText(&text))
	assert.True(t, first.Equal(text), "second resolution changed the text")

	data, err := text.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `["a",{"id":"X","char":"字"},"b"]`, string(data))
}

func TestResolve_LogsAndCountsUnresolved(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	r := New(newStore(), zap.New(core))

	r.Resolve("{X}{NOPE}{ALSO_NOPE}", zap.String("entry", "E1"))

	stats := r.Stats()
	assert.Equal(t, int64(3), stats.References)
	assert.Equal(t, int64(2), stats.Unresolved)

	warnings := logs.FilterMessage("unresolved citation").All()
	require.Len(t, warnings, 2)
	assert.Equal(t, "NOPE", warnings[0].ContextMap()["target"])
	assert.Equal(t, "E1", warnings[0].ContextMap()["entry"])
}
