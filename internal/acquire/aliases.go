package acquire

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default venue alias table. Listing sites label the same venue several
// ways (city, hall, sponsor naming); the table folds them onto one name.
//
//go:embed aliases.yaml
var defaultAliasesYAML []byte

// Aliases maps raw venue labels to their canonical names.
type Aliases map[string]string

// aliasFile is the on-disk shape of an alias table.
type aliasFile struct {
	Aliases map[string]string `yaml:"aliases"`
}

// DefaultAliases returns the built-in alias table.
func DefaultAliases() Aliases {
	a, err := parseAliases(defaultAliasesYAML)
	if err != nil {
		// The embedded table is part of the build; a decode failure is a
		// programming error, not a runtime condition.
		panic(fmt.Sprintf("embedded alias table: %v", err))
	}
	return a
}

// LoadAliases merges an override file on top of the built-in table.
// Overrides win on conflicting keys.
func LoadAliases(path string) (Aliases, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read alias table: %w", err)
	}
	overrides, err := parseAliases(data)
	if err != nil {
		return nil, err
	}
	merged := DefaultAliases()
	for raw, canonical := range overrides {
		merged[raw] = canonical
	}
	return merged, nil
}

// Canonical resolves a raw venue label. Unknown labels pass through
// trimmed but otherwise untouched.
func (a Aliases) Canonical(venue string) string {
	venue = strings.TrimSpace(venue)
	if canonical, ok := a[venue]; ok {
		return canonical
	}
	return venue
}

func parseAliases(data []byte) (Aliases, error) {
	var file aliasFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode alias table: %w", err)
	}
	return Aliases(file.Aliases), nil
}
