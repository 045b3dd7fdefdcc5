package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Validation failures. Errors returned by CheckObject wrap one of these.
var (
	ErrUnexpectedKey = errors.New("unexpected key")
	ErrMissingKey    = errors.New("missing key")
	ErrWrongKind     = errors.New("wrong kind")
	ErrRejected      = errors.New("rejected")
)

// Kind is the primitive kind a field value must have
type Kind string

const (
	KindAny     Kind = ""
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindObject  Kind = "object"
	KindArray   Kind = "array"
)

// Predicate checks a nested value; it returns nil when the value is acceptable
type Predicate func(v any) error

// Field is the rule for one key of an object. Kind is checked first, then Check if set.
type Field struct {
	Kind     Kind
	Check    Predicate
	Optional bool
}

// Template maps every allowed key of an object to its rule
type Template map[string]Field

// Error locates a validation failure inside a document
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return e.Path + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CheckObject reports the first way obj deviates from tmpl: a key tmpl does not
// know, a required key that is absent, or a value failing its kind or predicate.
// Keys are visited in sorted order so the reported failure is stable.
func CheckObject(obj map[string]any, tmpl Template) error {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := tmpl[k]; !ok {
			return &Error{Path: k, Err: ErrUnexpectedKey}
		}
	}

	names := make([]string, 0, len(tmpl))
	for k := range tmpl {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		rule := tmpl[k]
		v, ok := obj[k]
		if !ok {
			if rule.Optional {
				continue
			}
			return &Error{Path: k, Err: ErrMissingKey}
		}
		if err := checkKind(v, rule.Kind); err != nil {
			return &Error{Path: k, Err: err}
		}
		if rule.Check != nil {
			if err := rule.Check(v); err != nil {
				return nest(k, err)
			}
		}
	}
	return nil
}

// Valid is CheckObject reduced to a boolean
func Valid(obj map[string]any, tmpl Template) bool {
	return CheckObject(obj, tmpl) == nil
}

// Object returns a predicate requiring an object that satisfies tmpl
func Object(tmpl Template) Predicate {
	return func(v any) error {
		obj, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: want object, got %s", ErrWrongKind, kindOf(v))
		}
		return CheckObject(obj, tmpl)
	}
}

// ArrayOf returns a predicate requiring an array whose every item passes item
func ArrayOf(item Predicate) Predicate {
	return func(v any) error {
		arr, ok := v.([]any)
		if !ok {
			return fmt.Errorf("%w: want array, got %s", ErrWrongKind, kindOf(v))
		}
		for i, el := range arr {
			if err := item(el); err != nil {
				return nest(fmt.Sprintf("[%d]", i), err)
			}
		}
		return nil
	}
}

// OfKind returns a predicate requiring the given primitive kind
func OfKind(k Kind) Predicate {
	return func(v any) error {
		return checkKind(v, k)
	}
}

// OneOf returns a predicate requiring a number equal to one of allowed
func OneOf(allowed ...int64) Predicate {
	return func(v any) error {
		n, ok := v.(json.Number)
		if !ok {
			if f, isFloat := v.(float64); isFloat {
				n = json.Number(fmt.Sprint(f))
			} else {
				return fmt.Errorf("%w: want number, got %s", ErrWrongKind, kindOf(v))
			}
		}
		i, err := n.Int64()
		if err != nil {
			return fmt.Errorf("%w: %s is not an integer", ErrRejected, n)
		}
		for _, a := range allowed {
			if i == a {
				return nil
			}
		}
		return fmt.Errorf("%w: %d not in %v", ErrRejected, i, allowed)
	}
}

// Decode parses raw JSON into the generic form CheckObject expects.
// Numbers are kept as json.Number.
func Decode(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: document is not an object", ErrWrongKind)
	}
	return obj, nil
}

func checkKind(v any, k Kind) error {
	if k == KindAny {
		return nil
	}
	if got := kindOf(v); got != k {
		return fmt.Errorf("%w: want %s, got %s", ErrWrongKind, k, got)
	}
	return nil
}

func kindOf(v any) Kind {
	switch v.(type) {
	case string:
		return KindString
	case json.Number, float64, int, int64:
		return KindNumber
	case bool:
		return KindBoolean
	case map[string]any:
		return KindObject
	case []any:
		return KindArray
	case nil:
		return "null"
	default:
		return Kind(fmt.Sprintf("%T", v))
	}
}

// nest prefixes the path of a nested failure with key
func nest(key string, err error) error {
	var ve *Error
	if errors.As(err, &ve) {
		sep := "."
		if strings.HasPrefix(ve.Path, "[") || ve.Path == "" {
			sep = ""
		}
		return &Error{Path: key + sep + ve.Path, Err: ve.Err}
	}
	return &Error{Path: key, Err: err}
}
