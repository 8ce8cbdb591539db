package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileSchema is the on-disk shape of a schema override file.
type fileSchema struct {
	Places map[string]Field `yaml:"places"`
	Events map[string]Field `yaml:"events"`
}

// LoadFile reads a YAML schema override file and returns the place and
// event schemas with the overrides merged over the built-ins. An empty
// path or a missing file yields the built-ins unchanged; a present but
// malformed file is an error, since silently ignoring a deployment's
// schema would mis-map every field.
func LoadFile(path string) (Schema, Schema, error) {
	places, events := Places(), Events()
	if path == "" {
		return places, events, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return places, events, nil
		}
		return nil, nil, fmt.Errorf("reading schema file: %w", err)
	}

	var f fileSchema
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, nil, fmt.Errorf("parsing schema file %s: %w", path, err)
	}

	places.merge(f.Places)
	events.merge(f.Events)
	return places, events, nil
}

// merge replaces fields named in the override map. A field named in the
// file replaces the built-in spec wholesale.
func (s Schema) merge(overrides map[string]Field) {
	for name, spec := range overrides {
		if len(spec.Keys) == 0 {
			spec.Keys = []string{name}
		}
		s[name] = spec
	}
}
