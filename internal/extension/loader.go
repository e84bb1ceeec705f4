package extension

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/steptype"
)

// SourceExtension marks step types loaded from an extension definition.
const SourceExtension = "extension"

// Options control which definitions are loaded.
type Options struct {
	Dir      string
	Disabled []string
	Logger   *zap.Logger
}

// LoadAll reads the YAML and Go definitions of dir, YAML first.
func LoadAll(dir string) ([]DefinitionFile, error) {
	yamlDefs, err := LoadDefinitionDir(dir)
	if err != nil {
		return nil, err
	}
	goDefs, err := LoadGoDefinitionDir(dir)
	if err != nil {
		return nil, err
	}
	return append(yamlDefs, goDefs...), nil
}

// Install loads the definitions of opts.Dir and merges them into reg after
// the step types it already holds. Disabled ids are skipped and a duplicate
// id fails the whole load.
func Install(reg *steptype.Registry, opts Options) ([]Definition, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	files, err := LoadAll(opts.Dir)
	if err != nil {
		return nil, err
	}
	loaded, err := Build(reg, files, opts.Disabled, logger)
	if err != nil {
		return nil, err
	}
	if err := reg.Merge(loaded.registry); err != nil {
		return nil, fmt.Errorf("extension: %w", err)
	}
	return loaded.definitions, nil
}

// Loaded is the result of Build.
type Loaded struct {
	registry    *steptype.Registry
	definitions []Definition
}

// Registry returns the extension-only registry.
func (l *Loaded) Registry() *steptype.Registry { return l.registry }

// Definitions returns the enabled definitions in load order.
func (l *Loaded) Definitions() []Definition { return l.definitions }

// Build turns definition files into a registry of extension step types whose
// factories delegate to their base step type in base.
func Build(base *steptype.Registry, files []DefinitionFile, disabled []string, logger *zap.Logger) (*Loaded, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	skip := make(map[string]struct{}, len(disabled))
	for _, id := range disabled {
		skip[id] = struct{}{}
	}
	out := &Loaded{registry: steptype.NewRegistry()}
	seen := make(map[string]string, len(files))
	for _, file := range files {
		def := file.Definition
		if existing, ok := seen[def.ID]; ok {
			return nil, fmt.Errorf("extension: duplicate id %s (%s and %s)", def.ID, existing, file.Path)
		}
		seen[def.ID] = file.Path
		if _, off := skip[def.ID]; off {
			logger.Info("extension disabled", zap.String("step_type", def.ID), zap.String("path", file.Path))
			continue
		}
		baseReg, err := base.Resolve(def.Base)
		if err != nil {
			return nil, fmt.Errorf("extension %s from %s: %w", def.ID, file.Path, err)
		}
		defaults, err := domain.OptionsFrom(def.Defaults)
		if err != nil {
			return nil, fmt.Errorf("extension %s from %s: %w", def.ID, file.Path, err)
		}
		factory := baseReg.Factory
		info := steptype.Info{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Emoji:       def.Emoji,
			Source:      SourceExtension,
			AnswerKind:  baseReg.Info.AnswerKind,
		}
		err = out.registry.Register(info, func(env steptype.Env, opts domain.Options) (steptype.StepType, error) {
			return factory(env, opts.Merge(defaults))
		})
		if err != nil {
			return nil, fmt.Errorf("extension %s from %s: %w", def.ID, file.Path, err)
		}
		out.definitions = append(out.definitions, def)
		logger.Info("extension loaded",
			zap.String("step_type", def.ID),
			zap.String("base", def.Base),
			zap.String("version", def.Version),
			zap.Strings("authors", def.Authors))
	}
	return out, nil
}
