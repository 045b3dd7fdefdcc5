package validate

import (
	"fmt"
	"sort"
)

// Templates for source partitions. Text fields are plain strings in a partition;
// resolved forms only appear in the merged output.
var (
	DescriptionsTemplate = Template{
		"zh": {Kind: KindString},
		"en": {Kind: KindString},
	}

	SentenceTemplate = Template{
		"format":       {Kind: KindString},
		"descriptions": {Kind: KindObject, Check: Object(DescriptionsTemplate)},
	}

	WordTemplate = Template{
		"format":       {Kind: KindString},
		"descriptions": {Kind: KindObject, Check: Object(DescriptionsTemplate)},
		"sentences":    {Kind: KindArray, Check: ArrayOf(Object(SentenceTemplate))},
	}

	MeaningTemplate = Template{
		"descriptions": {Kind: KindObject, Check: Object(DescriptionsTemplate)},
		"words":        {Kind: KindArray, Check: ArrayOf(Object(WordTemplate))},
	}

	EntryTemplate = Template{
		"unicode":       {Kind: KindString},
		"characters":    {Kind: KindArray, Check: ArrayOf(OfKind(KindString))},
		"controversial": {Kind: KindNumber, Check: OneOf(0, 1, 2)},
		"related":       {Kind: KindArray, Check: ArrayOf(OfKind(KindString))},
		"pinyin":        {Kind: KindString},
		"jyutping":      {Kind: KindString},
		"bbakLau":       {Kind: KindString},
		"head":          {Kind: KindString},
		"tail":          {Kind: KindString},
		"refBy":         {Kind: KindArray, Check: ArrayOf(OfKind(KindString))},
		"ref":           {Kind: KindString, Optional: true},
		"meanings":      {Kind: KindArray, Check: ArrayOf(Object(MeaningTemplate))},
	}

	CreatorTemplate = Template{
		"name":  {Kind: KindString},
		"email": {Kind: KindString, Optional: true},
		"url":   {Kind: KindString, Optional: true},
	}

	DatabaseTemplate = Template{
		"name":       {Kind: KindString},
		"version":    {Kind: KindString},
		"createTime": {Kind: KindString},
		"updateTime": {Kind: KindString},
		"creators":   {Kind: KindArray, Check: ArrayOf(Object(CreatorTemplate))},
		"data":       {Kind: KindObject, Check: entries},
	}
)

// entries checks every value of the data object against EntryTemplate
func entries(v any) error {
	obj := v.(map[string]any)
	ids := make([]string, 0, len(obj))
	for id := range obj {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		raw := obj[id]
		e, ok := raw.(map[string]any)
		if !ok {
			return &Error{Path: id, Err: fmt.Errorf("%w: want object, got %s", ErrWrongKind, kindOf(raw))}
		}
		if err := CheckObject(e, EntryTemplate); err != nil {
			return nest(id, err)
		}
	}
	return nil
}

// Partition validates a raw partition document
func Partition(raw []byte) error {
	obj, err := Decode(raw)
	if err != nil {
		return err
	}
	return CheckObject(obj, DatabaseTemplate)
}
