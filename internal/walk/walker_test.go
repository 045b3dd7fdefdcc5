package walk

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/jyutdb/internal/model"
	"github.com/ppiankov/jyutdb/internal/resolve"
	"github.com/ppiankov/jyutdb/internal/store"
)

func desc(zh, en string) model.Descriptions {
	return model.Descriptions{Zh: model.PlainText(zh), En: model.PlainText(en)}
}

func newWalker(s *store.Store, workers int) *Walker {
	cfg := model.DefaultConfig().Walk
	cfg.Workers = workers
	return New(s, resolve.New(s, nil), cfg, nil)
}

func woodStore() *store.Store {
	s := store.New()
	s.Set("W", &model.Entry{
		Characters: []string{"木"},
		Meanings: []model.Meaning{{
			Descriptions: desc("樹", "tree"),
			Words: []model.Word{{
				Format:       model.PlainText("__SELF__把{X}"),
				Descriptions: desc("木把", "handle"),
				Sentences: []model.Sentence{{
					Format:       model.PlainText("呢個__WORD__"),
					Descriptions: desc("", "this {X}"),
				}},
			}},
		}},
	})
	s.Set("X", &model.Entry{Characters: []string{"字"}})
	return s
}

func TestWalk_SubstitutesThenResolves(t *testing.T) {
	s := woodStore()
	w := newWalker(s, 1)
	require.NoError(t, w.Walk(context.Background()))

	e, _ := s.Get("W")
	word := e.Meanings[0].Words[0]

	want := []model.Segment{
		model.LiteralSegment("木把"),
		model.RefSegment("X", "字"),
	}
	assert.True(t, cmp.Equal(want, word.Format.Segments()), cmp.Diff(want, word.Format.Segments()))

	sentence := word.Sentences[0]
	want = []model.Segment{
		model.LiteralSegment("呢個木把"),
		model.RefSegment("X", "字"),
	}
	assert.True(t, cmp.Equal(want, sentence.Format.Segments()), cmp.Diff(want, sentence.Format.Segments()))

	assert.Equal(t, "this 字", sentence.Descriptions.En.Display())
	assert.True(t, sentence.Descriptions.Zh.IsResolved())
	assert.Empty(t, sentence.Descriptions.Zh.Segments())
	assert.True(t, e.Meanings[0].Descriptions.Zh.IsResolved())
}

func TestWalk_SelfFallsBackToID(t *testing.T) {
	s := store.New()
	s.Set("NOCHAR", &model.Entry{
		Characters: []string{},
		Meanings: []model.Meaning{{
			Words: []model.Word{{Format: model.PlainText("__SELF__仔")}},
		}},
	})
	require.NoError(t, newWalker(s, 1).Walk(context.Background()))

	e, _ := s.Get("NOCHAR")
	assert.Equal(t, "NOCHAR仔", e.Meanings[0].Words[0].Format.Display())
}

func TestWalk_ResolvedWordFormatFeedsSentence(t *testing.T) {
	s := store.New()
	s.Set("X", &model.Entry{Characters: []string{"字"}})
	s.Set("W", &model.Entry{
		Characters: []string{"木"},
		Meanings: []model.Meaning{{
			Words: []model.Word{{
				Format: model.ResolvedText(model.LiteralSegment("木"), model.RefSegment("X", "字")),
				Sentences: []model.Sentence{{
					Format: model.PlainText("__WORD__!"),
				}},
			}},
		}},
	})
	require.NoError(t, newWalker(s, 1).Walk(context.Background()))

	e, _ := s.Get("W")
	got := e.Meanings[0].Words[0].Sentences[0].Format.Segments()
	want := []model.Segment{
		model.LiteralSegment("木"),
		model.RefSegment("X", "字"),
		model.LiteralSegment("!"),
	}
	assert.True(t, cmp.Equal(want, got), cmp.Diff(want, got))
}

func TestWalk_CustomTokens(t *testing.T) {
	s := store.New()
	s.Set("W", &model.Entry{
		Characters: []string{"木"},
		Meanings: []model.Meaning{{
			Words: []model.Word{{
				Format:    model.PlainText("@頭"),
				Sentences: []model.Sentence{{Format: model.PlainText("一嚿%")}},
			}},
		}},
	})
	w := New(s, resolve.New(s, nil), model.WalkConfig{SelfToken: "@", WordToken: "%"}, nil)
	require.NoError(t, w.Walk(context.Background()))

	e, _ := s.Get("W")
	assert.Equal(t, "木頭", e.Meanings[0].Words[0].Format.Display())
	assert.Equal(t, "一嚿木頭", e.Meanings[0].Words[0].Sentences[0].Format.Display())
}

func TestWalk_Idempotent(t *testing.T) {
	s := woodStore()
	w := newWalker(s, 1)
	require.NoError(t, w.Walk(context.Background()))

	first, err := json.Marshal(s.Records())
	require.NoError(t, err)

	require.NoError(t, w.Walk(context.Background()))
	second, err := json.Marshal(s.Records())
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))

	stats := w.Stats()
	assert.Equal(t, int64(4), stats.Entries)
	assert.Equal(t, int64(8), stats.Resolved)
	assert.Equal(t, int64(8), stats.Skipped)
}

func TestWalk_ParallelMatchesSequential(t *testing.T) {
	build := func() *store.Store {
		s := store.New()
		for i := 0; i < 50; i++ {
			id := fmt.Sprintf("E%02d", i)
			s.Set(id, &model.Entry{
				Characters: []string{fmt.Sprintf("字%d", i)},
				Meanings: []model.Meaning{{
					Descriptions: desc(fmt.Sprintf("見{E%02d}", (i+1)%50), "x"),
					Words: []model.Word{{
						Format:    model.PlainText("__SELF__{E00}"),
						Sentences: []model.Sentence{{Format: model.PlainText("__WORD__。")}},
					}},
				}},
			})
		}
		return s
	}

	seq := build()
	require.NoError(t, newWalker(seq, 1).Walk(context.Background()))
	par := build()
	require.NoError(t, newWalker(par, 8).Walk(context.Background()))

	a, err := json.Marshal(seq.Records())
	require.NoError(t, err)
	b, err := json.Marshal(par.Records())
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestWalk_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, newWalker(woodStore(), 1).Walk(ctx), context.Canceled)
}
