package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// TicketType is a reusable template: a named, ordered list of questions. The
// catalog keys types by Emoji, which must be unique.
type TicketType struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Emoji       string           `json:"emoji"`
	Steps       []StepDefinition `json:"steps"`
}

// StepDefinition is one templated question of a TicketType. Type names the
// step type that collects the answer; Options is that step type's private
// configuration.
type StepDefinition struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Type        string  `json:"type"`
	Options     Options `json:"options"`
}

// Validate checks the fields that do not depend on the step-type registry.
func (t *TicketType) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("ticket type name is required")
	}
	if strings.TrimSpace(t.Emoji) == "" {
		return fmt.Errorf("ticket type %q: emoji is required", t.Name)
	}
	for i, step := range t.Steps {
		if strings.TrimSpace(step.Title) == "" {
			return fmt.Errorf("ticket type %q: step %d: title is required", t.Name, i+1)
		}
		if strings.TrimSpace(step.Type) == "" {
			return fmt.Errorf("ticket type %q: step %d: type is required", t.Name, i+1)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (t *TicketType) Clone() *TicketType {
	if t == nil {
		return nil
	}
	cp := *t
	cp.Steps = make([]StepDefinition, len(t.Steps))
	for i, s := range t.Steps {
		cp.Steps[i] = s
		cp.Steps[i].Options = s.Options.Clone()
	}
	return &cp
}

func (t TicketType) MarshalJSON() ([]byte, error) {
	type alias TicketType
	out := alias(t)
	if out.Steps == nil {
		out.Steps = []StepDefinition{}
	}
	return json.Marshal(out)
}

// Options is the opaque, step-type specific configuration bag of a step
// definition. Values stay raw JSON until a step type reads them.
type Options map[string]json.RawMessage

// OptionPair is one entry of an ordered JSON object option.
type OptionPair struct {
	Key   string
	Value string
}

// OptionsFrom builds Options from plain Go values.
func OptionsFrom(values map[string]any) (Options, error) {
	opts := make(Options, len(values))
	for k, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("option %s: %w", k, err)
		}
		opts[k] = raw
	}
	return opts, nil
}

func (o Options) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]json.RawMessage(o))
}

// Has reports whether key is set to a non-null value.
func (o Options) Has(key string) bool {
	raw, ok := o[key]
	return ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Bool reads a boolean option, returning def when unset.
func (o Options) Bool(key string, def bool) (bool, error) {
	if !o.Has(key) {
		return def, nil
	}
	var v bool
	if err := json.Unmarshal(o[key], &v); err != nil {
		return def, fmt.Errorf("option %s: expected boolean", key)
	}
	return v, nil
}

// Int reads an integral option. Whole-valued floats such as 5.0 are accepted.
func (o Options) Int(key string, def int64) (int64, error) {
	if !o.Has(key) {
		return def, nil
	}
	var n json.Number
	if err := json.Unmarshal(o[key], &n); err != nil {
		return def, fmt.Errorf("option %s: expected number", key)
	}
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return def, fmt.Errorf("option %s: expected integer", key)
	}
	return int64(f), nil
}

// Float reads a numeric option.
func (o Options) Float(key string, def float64) (float64, error) {
	if !o.Has(key) {
		return def, nil
	}
	var f float64
	if err := json.Unmarshal(o[key], &f); err != nil {
		return def, fmt.Errorf("option %s: expected number", key)
	}
	return f, nil
}

// Pairs reads a JSON object of string values keeping document order, which
// decoding into a map would lose.
func (o Options) Pairs(key string) ([]OptionPair, error) {
	if !o.Has(key) {
		return nil, fmt.Errorf("option %s: required", key)
	}
	dec := json.NewDecoder(bytes.NewReader(o[key]))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("option %s: %w", key, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("option %s: expected object", key)
	}
	var pairs []OptionPair
	seen := map[string]struct{}{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("option %s: %w", key, err)
		}
		name, _ := tok.(string)
		var value string
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("option %s.%s: expected string", key, name)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("option %s: duplicate key %s", key, name)
		}
		seen[name] = struct{}{}
		pairs = append(pairs, OptionPair{Key: name, Value: value})
	}
	return pairs, nil
}

// PairsValue encodes pairs as a JSON object in the given order, the inverse of Pairs.
func PairsValue(pairs []OptionPair) (json.RawMessage, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range pairs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Merge returns a copy of o with defaults filled in for keys o does not set.
func (o Options) Merge(defaults Options) Options {
	out := make(Options, len(o)+len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Clone copies the bag.
func (o Options) Clone() Options {
	if o == nil {
		return nil
	}
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}
