package model

import "fmt"

// Controversy grades how settled an entry's primary character is
type Controversy int

const (
	Trusted               Controversy = iota // fully trusted
	ContestedConventional                    // disputed, but a conventional writing exists
	ContestedOpen                            // disputed, no consensus
)

// String returns the tier name
func (c Controversy) String() string {
	switch c {
	case Trusted:
		return "trusted"
	case ContestedConventional:
		return "contested-conventional"
	case ContestedOpen:
		return "contested-open"
	default:
		return fmt.Sprintf("controversy(%d)", int(c))
	}
}

// Valid reports whether c is one of the three defined tiers
func (c Controversy) Valid() bool {
	return c >= Trusted && c <= ContestedOpen
}

// Entry is one character record. Its identifier is the key it is stored under.
type Entry struct {
	Unicode       string      `json:"unicode"`
	Characters    []string    `json:"characters"`    // most trusted first, may be empty
	Controversial Controversy `json:"controversial"` // 0, 1 or 2
	Related       Relation    `json:"related"`
	Pinyin        string      `json:"pinyin"`
	Jyutping      string      `json:"jyutping"`
	BbakLau       string      `json:"bbakLau"`
	Head          string      `json:"head"`
	Tail          string      `json:"tail"` // final
	RefBy         Relation    `json:"refBy"`
	Ref           string      `json:"ref,omitempty"`
	Meanings      []Meaning   `json:"meanings"`
}

// Meaning is one sense of an entry with the words illustrating it
type Meaning struct {
	Descriptions Descriptions `json:"descriptions"`
	Words        []Word       `json:"words"`
}

// Word is a word built on the entry's character
type Word struct {
	Format       Text         `json:"format"`
	Descriptions Descriptions `json:"descriptions"`
	Sentences    []Sentence   `json:"sentences"`
}

// Sentence is an example sentence for a word
type Sentence struct {
	Format       Text         `json:"format"`
	Descriptions Descriptions `json:"descriptions"`
}

// Descriptions is a bilingual description pair
type Descriptions struct {
	Zh Text `json:"zh"`
	En Text `json:"en"`
}

// PhonologicalFields lists the JSON fields a variant keeps when content is
// copied onto it from its canonical entry.
var PhonologicalFields = []string{"pinyin", "jyutping", "head", "tail", "bbakLau", "ref"}

// DisplayForm returns the first candidate character, or "" when there is none
func (e *Entry) DisplayForm() (string, bool) {
	if e == nil || len(e.Characters) == 0 {
		return "", false
	}
	return e.Characters[0], true
}

// Clone returns a deep copy of the entry
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	c := *e
	c.Characters = cloneStrings(e.Characters)
	c.Related = e.Related.Clone()
	c.RefBy = e.RefBy.Clone()
	c.Meanings = CloneMeanings(e.Meanings)
	return &c
}

// CloneMeanings deep-copies a meaning list
func CloneMeanings(ms []Meaning) []Meaning {
	if ms == nil {
		return nil
	}
	out := make([]Meaning, len(ms))
	for i, m := range ms {
		out[i] = Meaning{Descriptions: m.Descriptions.clone()}
		if m.Words != nil {
			out[i].Words = make([]Word, len(m.Words))
		}
		for j, w := range m.Words {
			cw := Word{Format: w.Format.Clone(), Descriptions: w.Descriptions.clone()}
			if w.Sentences != nil {
				cw.Sentences = make([]Sentence, len(w.Sentences))
			}
			for k, s := range w.Sentences {
				cw.Sentences[k] = Sentence{Format: s.Format.Clone(), Descriptions: s.Descriptions.clone()}
			}
			out[i].Words[j] = cw
		}
	}
	return out
}

func (d Descriptions) clone() Descriptions {
	return Descriptions{Zh: d.Zh.Clone(), En: d.En.Clone()}
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append(make([]string, 0, len(s)), s...)
}
