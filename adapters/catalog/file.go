package catalog

import (
	"context"
	"fmt"
	"os"

	"sheetcheck/domain/schema"
	"sheetcheck/internal/errors"

	"gopkg.in/yaml.v3"
)

// FileSource reads schema definitions from a YAML document.
//
// Two layouts are accepted under the top-level "schemas" key. A list:
//
//	schemas:
//	  - name: Option_C
//	    description: Parts returned for credit
//	    columns:
//	      - {name: partnumber, type: str}
//	      - {name: returned_on, type: date}
//
// or a mapping from schema name to an ordered column mapping:
//
//	schemas:
//	  Option_C:
//	    partnumber: str
//	    returned_on: date
//
// The mapping may also be the whole document, without the "schemas" key.
type FileSource struct {
	path string
}

// NewFileSource creates a schema source over a YAML file
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Load reads and parses the file
func (s *FileSource) Load(ctx context.Context) ([]schema.Schema, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Wrapf(errors.WithCode(errors.CodeConfigInvalid, err), "failed to read schema file %s", s.path)
	}
	schemas, err := ParseSchemas(data)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid schema file %s", s.path)
	}
	return schemas, nil
}

type schemaEntry struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Columns     yaml.Node `yaml:"columns"`
}

type columnEntry struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// ParseSchemas decodes a YAML schema document
func ParseSchemas(data []byte) ([]schema.Schema, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, configError("document is empty")
	}

	node := root.Content[0]
	if value := lookupKey(node, "schemas"); value != nil {
		node = value
	} else if node.Kind != yaml.MappingNode {
		return nil, configError("line %d: document must map schema names to columns", node.Line)
	}

	var schemas []schema.Schema
	switch node.Kind {
	case yaml.SequenceNode:
		for _, item := range node.Content {
			var entry schemaEntry
			if err := item.Decode(&entry); err != nil {
				return nil, configError("line %d: %v", item.Line, err)
			}
			sc, err := buildSchema(entry.Name, entry.Description, &entry.Columns)
			if err != nil {
				return nil, err
			}
			schemas = append(schemas, sc)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			name, value := node.Content[i].Value, node.Content[i+1]
			var sc schema.Schema
			var err error
			if hasKey(value, "columns") {
				var entry schemaEntry
				if err := value.Decode(&entry); err != nil {
					return nil, configError("line %d: %v", value.Line, err)
				}
				sc, err = buildSchema(name, entry.Description, &entry.Columns)
			} else {
				sc, err = buildSchema(name, "", value)
			}
			if err != nil {
				return nil, err
			}
			schemas = append(schemas, sc)
		}
	default:
		return nil, configError("line %d: schemas must be a list or a mapping", node.Line)
	}
	return schemas, nil
}

func buildSchema(name, description string, columns *yaml.Node) (schema.Schema, error) {
	sc := schema.Schema{Name: schema.Name(name), Description: description}

	switch columns.Kind {
	case yaml.SequenceNode:
		for _, item := range columns.Content {
			var col columnEntry
			if err := item.Decode(&col); err != nil {
				return sc, configError("schema %s line %d: %v", name, item.Line, err)
			}
			if err := addColumn(&sc, col.Name, col.Type); err != nil {
				return sc, configError("schema %s line %d: %v", name, item.Line, err)
			}
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(columns.Content); i += 2 {
			key, value := columns.Content[i], columns.Content[i+1]
			if err := addColumn(&sc, key.Value, value.Value); err != nil {
				return sc, configError("schema %s line %d: %v", name, key.Line, err)
			}
		}
	default:
		return sc, configError("schema %s has no columns", name)
	}

	if err := sc.Check(); err != nil {
		return sc, errors.WithCode(errors.CodeConfigInvalid, err)
	}
	return sc, nil
}

func addColumn(sc *schema.Schema, name, typ string) error {
	colType, err := schema.ParseColumnType(typ)
	if err != nil {
		return err
	}
	sc.Columns = append(sc.Columns, schema.ColumnSpec{Name: name, Type: colType})
	return nil
}

func hasKey(node *yaml.Node, key string) bool {
	return lookupKey(node, key) != nil
}

// lookupKey returns the value stored under key in a mapping node
func lookupKey(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func configError(format string, args ...interface{}) error {
	return errors.ConfigInvalid(fmt.Sprintf(format, args...))
}
