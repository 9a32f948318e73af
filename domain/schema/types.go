package schema

import (
	"fmt"
	"strings"
)

// Name identifies one registered schema
type Name string

// String returns the string representation
func (n Name) String() string {
	return string(n)
}

// ColumnType is the semantic type a column is expected to hold
type ColumnType string

const (
	TypeString ColumnType = "string"
	TypeNumber ColumnType = "number"
	TypeDate   ColumnType = "date"
)

// ParseColumnType maps the spellings used in schema catalogs onto a ColumnType.
// "str" is the spelling of the first schema tables this tool checked against.
func ParseColumnType(s string) (ColumnType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "str", "string", "text":
		return TypeString, nil
	case "number", "numeric", "num", "float", "int", "integer":
		return TypeNumber, nil
	case "date", "datetime", "timestamp":
		return TypeDate, nil
	default:
		return "", fmt.Errorf("unknown column type: %q", s)
	}
}

// IsValid reports whether the type is one of the supported column types
func (t ColumnType) IsValid() bool {
	switch t {
	case TypeString, TypeNumber, TypeDate:
		return true
	}
	return false
}

// Label returns the short label used in report lines
func (t ColumnType) Label() string {
	switch t {
	case TypeString:
		return "string"
	case TypeNumber:
		return "numeric"
	case TypeDate:
		return "date"
	default:
		return string(t)
	}
}

// ColumnSpec is one expected column and its expected type
type ColumnSpec struct {
	Name string     `json:"name" yaml:"name"`
	Type ColumnType `json:"type" yaml:"type"`
}

// Schema is a named, ordered set of expected columns
type Schema struct {
	Name        Name         `json:"name"`
	Description string       `json:"description,omitempty"`
	Columns     []ColumnSpec `json:"columns"`
}

// Clone returns a copy that shares no memory with s
func (s Schema) Clone() Schema {
	out := s
	out.Columns = make([]ColumnSpec, len(s.Columns))
	copy(out.Columns, s.Columns)
	return out
}

// ColumnNames returns the column names in declaration order
func (s Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		names[i] = col.Name
	}
	return names
}

// Check verifies the schema is well formed: a name, at least one column,
// unique column names and known types.
func (s Schema) Check() error {
	if strings.TrimSpace(string(s.Name)) == "" {
		return fmt.Errorf("schema name cannot be empty")
	}
	if len(s.Columns) == 0 {
		return fmt.Errorf("schema %s has no columns", s.Name)
	}
	seen := make(map[string]bool, len(s.Columns))
	for _, col := range s.Columns {
		if col.Name == "" {
			return fmt.Errorf("schema %s has a column with an empty name", s.Name)
		}
		if seen[col.Name] {
			return fmt.Errorf("schema %s declares column %q twice", s.Name, col.Name)
		}
		seen[col.Name] = true
		if !col.Type.IsValid() {
			return fmt.Errorf("schema %s column %q has unknown type %q", s.Name, col.Name, col.Type)
		}
	}
	return nil
}
