package sources

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// file is the on-disk shape of the sources configuration.
type file struct {
	Sources []Source `yaml:"sources"`
}

// Load reads and validates the sources file at path.
func Load(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	return Parse(data)
}

// Parse unmarshals and validates sources from YAML bytes.
func Parse(data []byte) ([]Source, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}

	seen := make(map[string]struct{}, len(f.Sources))

	for i := range f.Sources {
		src := &f.Sources[i]
		if err := src.Validate(); err != nil {
			return nil, fmt.Errorf("source %d (%s): %w", i, src.ID, err)
		}
		if _, dup := seen[src.ID]; dup {
			return nil, fmt.Errorf("duplicate source id %q", src.ID)
		}
		seen[src.ID] = struct{}{}
	}

	return f.Sources, nil
}
