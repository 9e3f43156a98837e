package engine

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed schema.yaml
var defaultSchema []byte

// Column types understood by the loader and the prompt.
const (
	TypeString   = "string"
	TypeInteger  = "integer"
	TypeFloat    = "float"
	TypeBoolean  = "boolean"
	TypeDatetime = "datetime"
)

// Column describes one dataset column.
type Column struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
}

// Schema describes the listings table the engine queries.
type Schema struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Columns     []Column `yaml:"columns"`
}

// LoadSchema reads a schema file, or the built-in listing schema when path
// is empty.
func LoadSchema(path string) (*Schema, error) {
	raw := defaultSchema
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "engine: read schema %s", path)
		}
		raw = b
	}
	return ParseSchema(raw)
}

// ParseSchema decodes and validates a YAML schema.
func ParseSchema(raw []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, eris.Wrap(err, "engine: parse schema")
	}
	if len(s.Columns) == 0 {
		return nil, eris.New("engine: schema has no columns")
	}
	seen := make(map[string]bool, len(s.Columns))
	for _, c := range s.Columns {
		if c.Name == "" {
			return nil, eris.New("engine: schema column without name")
		}
		if seen[strings.ToLower(c.Name)] {
			return nil, eris.Errorf("engine: duplicate column %q", c.Name)
		}
		seen[strings.ToLower(c.Name)] = true
		switch c.Type {
		case TypeString, TypeInteger, TypeFloat, TypeBoolean, TypeDatetime:
		default:
			return nil, eris.Errorf("engine: column %q has unknown type %q", c.Name, c.Type)
		}
	}
	return &s, nil
}

// ColumnNames returns the column names in schema order.
func (s *Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Describe renders the columns for a prompt, one per line.
func (s *Schema) Describe() string {
	var b strings.Builder
	for _, c := range s.Columns {
		fmt.Fprintf(&b, "- %q (%s): %s\n", c.Name, c.Type, c.Description)
	}
	return b.String()
}
