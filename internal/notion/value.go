package notion

import (
	"encoding/json"
	"strconv"
)

// Kind identifies which arm of a Value is populated
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindBool
	KindNumber
	KindList
)

// Value is a plain value extracted from a property. The zero Value is null.
type Value struct {
	kind Kind
	str  string
	b    bool
	num  float64
	list []string
}

// Null returns the absent value
func Null() Value { return Value{} }

// String wraps a string
func String(s string) Value { return Value{kind: KindString, str: s} }

// Bool wraps a boolean
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number wraps a number
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// List wraps an ordered list of labels. A nil list is kept as an empty list.
func List(items []string) Value {
	if items == nil {
		items = []string{}
	}
	return Value{kind: KindList, list: items}
}

// Kind reports the populated arm
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is absent
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsEmpty reports whether the value should be skipped by a fallback chain:
// null, the empty string and the empty list. false and 0 are present values.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == ""
	case KindList:
		return len(v.list) == 0
	default:
		return false
	}
}

// Str returns the string arm and whether it was populated
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Items returns the list arm and whether it was populated
func (v Value) Items() ([]string, bool) { return v.list, v.kind == KindList }

// MarshalJSON encodes the value in its natural JSON form
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindBool:
		return json.Marshal(v.b)
	case KindNumber:
		return json.Marshal(v.num)
	case KindList:
		return json.Marshal(v.list)
	default:
		return []byte("null"), nil
	}
}

// String renders the value for log lines
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindList:
		b, _ := json.Marshal(v.list)
		return string(b)
	default:
		return "null"
	}
}
