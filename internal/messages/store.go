package messages

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/tidwall/jsonc"
)

//go:embed defaults.jsonc
var defaultTemplates []byte

// Store resolves dotted template keys such as "stepTypes.integer.minMsg".
// Unknown keys resolve to the key itself so a missing template is visible in
// the channel instead of rendering as an empty message.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

// Defaults returns a store holding only the embedded templates.
func Defaults() *Store {
	values, err := Parse(defaultTemplates)
	if err != nil {
		panic(fmt.Sprintf("messages: embedded defaults: %v", err))
	}
	return &Store{values: values}
}

// Load returns the defaults overlaid with the JSONC file at path. An empty
// path or a missing file yields the defaults alone.
func Load(path string) (*Store, error) {
	store := Defaults()
	if path == "" {
		return store, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return store, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read messages file: %w", err)
	}
	overrides, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse messages file %s: %w", path, err)
	}
	for k, v := range overrides {
		store.values[k] = v
	}
	return store, nil
}

// Parse reads a JSONC document and flattens nested objects into dotted keys.
func Parse(data []byte) (map[string]string, error) {
	stripped := jsonc.ToJSON(data)
	var root map[string]any
	if err := json.Unmarshal(stripped, &root); err != nil {
		return nil, err
	}
	out := make(map[string]string)
	if err := flatten("", root, out); err != nil {
		return nil, err
	}
	return out, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) error {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			if err := flatten(key, val, out); err != nil {
				return err
			}
		case string:
			out[key] = val
		case bool, float64:
			out[key] = fmt.Sprint(val)
		case nil:
			delete(out, key)
		default:
			return fmt.Errorf("%s: unsupported template value %T", key, v)
		}
	}
	return nil
}

// Get returns the raw template for key.
func (s *Store) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[key]; ok {
		return v
	}
	return key
}

// Has reports whether key has a template.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[key]
	return ok
}

// Bool reads a template as a boolean flag.
func (s *Store) Bool(key string, def bool) bool {
	s.mu.RLock()
	v, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "1":
		return true
	case "false", "no", "0":
		return false
	}
	return def
}

// Format renders key with placeholder/value pairs: Format(k, "MIN", "1").
// Placeholders are written {MIN} in the template.
func (s *Store) Format(key string, pairs ...string) string {
	return Render(s.Get(key), pairs...)
}

// Set overrides a single template.
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Keys lists every known key in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Render substitutes {NAME} placeholders in tmpl. A trailing unpaired name is ignored.
func Render(tmpl string, pairs ...string) string {
	if len(pairs) < 2 {
		return tmpl
	}
	args := make([]string, 0, len(pairs))
	for i := 0; i+1 < len(pairs); i += 2 {
		args = append(args, "{"+pairs[i]+"}", pairs[i+1])
	}
	return strings.NewReplacer(args...).Replace(tmpl)
}
