// Package extension loads step types declared outside the binary. Each
// definition specializes a registered base step type with default options.
package extension

import (
	"fmt"
	"strings"
)

// Definition is one extension step type as written on disk.
type Definition struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Emoji       string         `json:"emoji" yaml:"emoji"`
	Base        string         `json:"base" yaml:"base"`
	Defaults    map[string]any `json:"defaults,omitempty" yaml:"defaults,omitempty"`
	Version     string         `json:"version,omitempty" yaml:"version,omitempty"`
	Authors     []string       `json:"authors,omitempty" yaml:"authors,omitempty"`
}

// Normalized returns a trimmed copy.
func (def Definition) Normalized() Definition {
	clone := Definition{
		ID:          strings.TrimSpace(def.ID),
		Name:        strings.TrimSpace(def.Name),
		Description: strings.TrimSpace(def.Description),
		Emoji:       strings.TrimSpace(def.Emoji),
		Base:        strings.TrimSpace(def.Base),
		Version:     strings.TrimSpace(def.Version),
	}
	for _, a := range def.Authors {
		if a = strings.TrimSpace(a); a != "" {
			clone.Authors = append(clone.Authors, a)
		}
	}
	if len(def.Defaults) > 0 {
		clone.Defaults = make(map[string]any, len(def.Defaults))
		for key, value := range def.Defaults {
			if trimmed := strings.TrimSpace(key); trimmed != "" {
				clone.Defaults[trimmed] = value
			}
		}
	}
	return clone
}

// Validate ensures the required metadata is present.
func (def Definition) Validate() error {
	switch {
	case strings.TrimSpace(def.ID) == "":
		return fmt.Errorf("extension: id is required")
	case strings.ContainsAny(strings.TrimSpace(def.ID), " \t\n"):
		return fmt.Errorf("extension: id %q must not contain whitespace", def.ID)
	case strings.TrimSpace(def.Name) == "":
		return fmt.Errorf("extension %s: name is required", def.ID)
	case strings.TrimSpace(def.Emoji) == "":
		return fmt.Errorf("extension %s: emoji is required", def.ID)
	case strings.TrimSpace(def.Base) == "":
		return fmt.Errorf("extension %s: base step type is required", def.ID)
	}
	return nil
}
