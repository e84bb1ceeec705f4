package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AnswerKind tags the runtime kind of a captured answer. It is persisted
// next to the answer so the value can be decoded without guessing.
type AnswerKind string

const (
	AnswerBoolean AnswerKind = "boolean"
	AnswerInteger AnswerKind = "integer"
	AnswerDouble  AnswerKind = "double"
	AnswerString  AnswerKind = "string"
	AnswerList    AnswerKind = "list"
)

// Valid reports whether k is one of the closed set of answer kinds.
func (k AnswerKind) Valid() bool {
	switch k {
	case AnswerBoolean, AnswerInteger, AnswerDouble, AnswerString, AnswerList:
		return true
	}
	return false
}

// AnswerValue is a closed tagged union of boolean, integer, float, string and
// string-list. The zero value has no kind and is not a valid answer.
type AnswerValue struct {
	kind AnswerKind
	b    bool
	i    int64
	f    float64
	s    string
	l    []string
}

func BoolAnswer(v bool) AnswerValue { return AnswerValue{kind: AnswerBoolean, b: v} }

func IntAnswer(v int64) AnswerValue { return AnswerValue{kind: AnswerInteger, i: v} }

func DoubleAnswer(v float64) AnswerValue { return AnswerValue{kind: AnswerDouble, f: v} }

func StringAnswer(v string) AnswerValue { return AnswerValue{kind: AnswerString, s: v} }

// ListAnswer copies items so later mutation of the caller's slice does not leak in.
func ListAnswer(items []string) AnswerValue {
	cp := make([]string, len(items))
	copy(cp, items)
	return AnswerValue{kind: AnswerList, l: cp}
}

func (v AnswerValue) Kind() AnswerKind { return v.kind }

func (v AnswerValue) IsZero() bool { return v.kind == "" }

func (v AnswerValue) Bool() bool { return v.b }

func (v AnswerValue) Int() int64 { return v.i }

func (v AnswerValue) Double() float64 { return v.f }

func (v AnswerValue) Text() string { return v.s }

// List returns a copy of the list items.
func (v AnswerValue) List() []string {
	cp := make([]string, len(v.l))
	copy(cp, v.l)
	return cp
}

// Interface returns the value as a plain Go value.
func (v AnswerValue) Interface() any {
	switch v.kind {
	case AnswerBoolean:
		return v.b
	case AnswerInteger:
		return v.i
	case AnswerDouble:
		return v.f
	case AnswerString:
		return v.s
	case AnswerList:
		return v.List()
	}
	return nil
}

// String renders the value for ticket summaries.
func (v AnswerValue) String() string {
	switch v.kind {
	case AnswerBoolean:
		return strconv.FormatBool(v.b)
	case AnswerInteger:
		return strconv.FormatInt(v.i, 10)
	case AnswerDouble:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case AnswerString:
		return v.s
	case AnswerList:
		return "[" + strings.Join(v.l, ", ") + "]"
	}
	return ""
}

// Equal compares kind and payload.
func (v AnswerValue) Equal(o AnswerValue) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case AnswerBoolean:
		return v.b == o.b
	case AnswerInteger:
		return v.i == o.i
	case AnswerDouble:
		return v.f == o.f
	case AnswerString:
		return v.s == o.s
	case AnswerList:
		if len(v.l) != len(o.l) {
			return false
		}
		for i := range v.l {
			if v.l[i] != o.l[i] {
				return false
			}
		}
		return true
	}
	return true
}

// MarshalJSON writes the bare value; the kind travels separately as answerType.
func (v AnswerValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case AnswerBoolean:
		return json.Marshal(v.b)
	case AnswerInteger:
		return json.Marshal(v.i)
	case AnswerDouble:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return nil, fmt.Errorf("answer: unsupported double value %v", v.f)
		}
		return json.Marshal(v.f)
	case AnswerString:
		return json.Marshal(v.s)
	case AnswerList:
		if v.l == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.l)
	}
	return nil, fmt.Errorf("answer: value has no kind")
}

// DecodeAnswer decodes a wire value using its declared kind.
func DecodeAnswer(kind AnswerKind, raw json.RawMessage) (AnswerValue, error) {
	switch kind {
	case AnswerBoolean:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return AnswerValue{}, fmt.Errorf("answer: decode boolean: %w", err)
		}
		return BoolAnswer(b), nil
	case AnswerInteger:
		var i int64
		if err := json.Unmarshal(raw, &i); err != nil {
			return AnswerValue{}, fmt.Errorf("answer: decode integer: %w", err)
		}
		return IntAnswer(i), nil
	case AnswerDouble:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return AnswerValue{}, fmt.Errorf("answer: decode double: %w", err)
		}
		return DoubleAnswer(f), nil
	case AnswerString:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return AnswerValue{}, fmt.Errorf("answer: decode string: %w", err)
		}
		return StringAnswer(s), nil
	case AnswerList:
		var l []string
		if err := json.Unmarshal(raw, &l); err != nil {
			return AnswerValue{}, fmt.Errorf("answer: decode list: %w", err)
		}
		return ListAnswer(l), nil
	}
	return AnswerValue{}, fmt.Errorf("answer: unknown answerType %q", kind)
}
