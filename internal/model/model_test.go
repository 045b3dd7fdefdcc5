package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText_JSONForms(t *testing.T) {
	var plain Text
	require.NoError(t, json.Unmarshal([]byte(`"__SELF__頭"`), &plain))
	s, ok := plain.Plain()
	assert.True(t, ok)
	assert.Equal(t, "__SELF__頭", s)

	var resolved Text
	require.NoError(t, json.Unmarshal([]byte(`["見",{"id":"X","char":"字"},"."]`), &resolved))
	require.True(t, resolved.IsResolved())
	assert.Equal(t, "見字.", resolved.Display())
	assert.Equal(t, "見{X}.", resolved.Source())

	out, err := json.Marshal(resolved)
	require.NoError(t, err)
	assert.JSONEq(t, `["見",{"id":"X","char":"字"},"."]`, string(out))

	var empty Text
	require.NoError(t, json.Unmarshal([]byte(`null`), &empty))
	assert.False(t, empty.IsResolved())

	assert.Error(t, json.Unmarshal([]byte(`42`), &empty))
	assert.Error(t, json.Unmarshal([]byte(`[42]`), &empty))
}

func TestText_EmptyResolvedEncodesAsArray(t *testing.T) {
	out, err := json.Marshal(ResolvedText())
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(out))
}

func TestText_CloneIsIndependent(t *testing.T) {
	orig := ResolvedText(RefSegment("X", "字"))
	c := orig.Clone()
	c.Segments()[0].Ref.Char = "改"
	assert.Equal(t, "字", orig.Segments()[0].Ref.Char)
	assert.False(t, orig.Equal(c))
}

func TestRelation_JSONForms(t *testing.T) {
	var list Relation
	require.NoError(t, json.Unmarshal([]byte(`["B","A"]`), &list))
	assert.False(t, list.IsResolved())
	assert.Equal(t, []string{"B", "A"}, list.IDs())

	var group Relation
	require.NoError(t, json.Unmarshal([]byte(`{"B":"乙","A":"甲"}`), &group))
	require.True(t, group.IsResolved())
	want := []Member{{ID: "B", Char: "乙"}, {ID: "A", Char: "甲"}}
	assert.True(t, cmp.Equal(want, group.Group()), cmp.Diff(want, group.Group()))


	// member order survives encoding
	out, err := json.Marshal(group)
	require.NoError(t, err)
	assert.Equal(t, `{"B":"乙","A":"甲"}`, string(out))

	var null Relation
	require.NoError(t, json.Unmarshal([]byte(`null`), &null))
	out, err = json.Marshal(null)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(out))

	out, err = json.Marshal(RelationGroup())
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(out))
}

func TestRecords_PreserveOrderAndDuplicates(t *testing.T) {
	raw := `{"Z":{"characters":["z"]},"A":{"characters":["a"]},"Z":{"characters":["zz"]}}`
	var recs Records
	require.NoError(t, json.Unmarshal([]byte(raw), &recs))
	require.Len(t, recs, 3)
	assert.Equal(t, "Z", recs[0].ID)
	assert.Equal(t, "A", recs[1].ID)
	assert.Equal(t, []string{"zz"}, recs[2].Entry.Characters)
}

func TestEntry_RefOmittedWhenEmpty(t *testing.T) {
	out, err := json.Marshal(&Entry{})
	require.NoError(t, err)
	assert.NotContains(t, string(out), `"ref"`)

	out, err = json.Marshal(&Entry{Ref: "A"})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"ref":"A"`)
}

func TestEntry_CloneIsDeep(t *testing.T) {
	e := &Entry{
		Characters: []string{"木"},
		Related:    RelationList("A"),
		Meanings: []Meaning{{
			Words: []Word{{Format: PlainText("x"), Sentences: []Sentence{{Format: PlainText("y")}}}},
		}},
	}
	c := e.Clone()
	c.Characters[0] = "林"
	c.Meanings[0].Words[0].Sentences[0].Format = PlainText("changed")

	assert.Equal(t, "木", e.Characters[0])
	s, _ := e.Meanings[0].Words[0].Sentences[0].Format.Plain()
	assert.Equal(t, "y", s)
	assert.True(t, cmp.Equal(e.Related, c.Related))
}

func TestDatabase_Defaults(t *testing.T) {
	d := NewDatabase("", time.Date(2024, 1, 2, 3, 4, 5, 6e6, time.FixedZone("HKT", 8*3600)))
	assert.Equal(t, "newDatabase", d.Name)
	assert.Equal(t, DefaultVersion, d.Version)
	assert.Equal(t, "2024-01-01T19:04:05.006Z", d.CreateTime)
	assert.Equal(t, d.CreateTime, d.UpdateTime)

	assert.True(t, d.AddCreator(Creator{Name: "a", Email: "x"}))
	assert.False(t, d.AddCreator(Creator{Name: "a", Email: "x", URL: "u"}))
	assert.True(t, d.AddCreator(Creator{Name: "a"}))
	assert.Len(t, d.Creators, 2)
}

func TestControversy(t *testing.T) {
	assert.True(t, ContestedOpen.Valid())
	assert.False(t, Controversy(3).Valid())
	assert.Equal(t, "contested-conventional", ContestedConventional.String())
}
