package extension

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"gopkg.in/yaml.v3"
)

const goDefinitionFuncName = "StepTypeDefinitions"

// LoadGoDefinitionDir interprets every .go file of dir and collects the
// definitions returned by its StepTypeDefinitions function.
func LoadGoDefinitionDir(dir string) ([]DefinitionFile, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("extension: read %s: %w", trimmed, err)
	}
	var defs []DefinitionFile
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".go" {
			continue
		}
		fileDefs, err := loadGoDefinitionFile(filepath.Join(trimmed, entry.Name()))
		if err != nil {
			return nil, err
		}
		defs = append(defs, fileDefs...)
	}
	sort.SliceStable(defs, func(i, j int) bool { return defs[i].Path < defs[j].Path })
	return defs, nil
}

func loadGoDefinitionFile(path string) ([]DefinitionFile, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("extension: read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(code))) == 0 {
		return nil, fmt.Errorf("extension: %s is empty", path)
	}
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("extension: load stdlib symbols: %w", err)
	}
	if _, err := i.EvalPath(path); err != nil {
		return nil, fmt.Errorf("extension: interpret %s: %w", path, err)
	}
	fnValue, err := i.Eval(goDefinitionFuncName)
	if err != nil {
		return nil, fmt.Errorf("extension: %s must define %s() []map[string]any: %w", path, goDefinitionFuncName, err)
	}
	raws, err := invokeDefinitionFunc(fnValue)
	if err != nil {
		return nil, fmt.Errorf("extension: %s: %w", path, err)
	}
	files := make([]DefinitionFile, 0, len(raws))
	for idx, raw := range raws {
		payload, err := yaml.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("extension: %s definition[%d]: %w", path, idx, err)
		}
		def, err := ParseDefinitionYAML(payload)
		if err != nil {
			return nil, fmt.Errorf("extension: %s definition[%d]: %w", path, idx, err)
		}
		files = append(files, DefinitionFile{Definition: def, Path: fmt.Sprintf("%s#%d", path, idx+1)})
	}
	return files, nil
}

func invokeDefinitionFunc(fn reflect.Value) ([]map[string]any, error) {
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is not a function", goDefinitionFuncName)
	}
	results := fn.Call(nil)
	if len(results) == 0 || len(results) > 2 {
		return nil, fmt.Errorf("%s must return ([]map[string]any[, error])", goDefinitionFuncName)
	}
	if len(results) == 2 && !results[1].IsNil() {
		if e, ok := results[1].Interface().(error); ok {
			return nil, e
		}
		return nil, fmt.Errorf("%s returned non-error second value", goDefinitionFuncName)
	}
	out := results[0]
	if defs, ok := out.Interface().([]map[string]any); ok {
		return defs, nil
	}
	if out.Kind() != reflect.Slice {
		return nil, fmt.Errorf("%s must return []map[string]any", goDefinitionFuncName)
	}
	defs := make([]map[string]any, out.Len())
	for i := 0; i < out.Len(); i++ {
		m, ok := out.Index(i).Interface().(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s[%d] is not map[string]any", goDefinitionFuncName, i)
		}
		defs[i] = m
	}
	return defs, nil
}
