package mentor

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidCatalog reports a catalog file that fails validation.
var ErrInvalidCatalog = errors.New("invalid mentor catalog")

type catalogFile struct {
	Mentors []Mentor `yaml:"mentors"`
}

// LoadCatalog reads a YAML mentor catalog. An empty path yields the seed catalog.
func LoadCatalog(path string) ([]Mentor, error) {
	if strings.TrimSpace(path) == "" {
		return Seed(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mentor catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates catalog YAML.
func ParseCatalog(data []byte) ([]Mentor, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if len(file.Mentors) == 0 {
		return nil, fmt.Errorf("%w: no mentors defined", ErrInvalidCatalog)
	}

	seen := make(map[string]struct{}, len(file.Mentors))
	for i, m := range file.Mentors {
		id := strings.TrimSpace(m.ID)
		if id == "" {
			return nil, fmt.Errorf("%w: entry %d has no id", ErrInvalidCatalog, i)
		}
		if strings.TrimSpace(m.Name) == "" {
			return nil, fmt.Errorf("%w: mentor %q has no name", ErrInvalidCatalog, id)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate mentor id %q", ErrInvalidCatalog, id)
		}
		seen[id] = struct{}{}
		file.Mentors[i].ID = id
	}
	return file.Mentors, nil
}
