package jsontable

import (
	"context"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"sheetcheck/adapters/datareadiness/coercer"
	"sheetcheck/domain/table"
	"sheetcheck/internal"
	"sheetcheck/internal/errors"

	"github.com/tidwall/gjson"
)

// Config holds configuration for JSON table decoding
type Config struct {
	// DataPath is a gjson path to the row array. Empty means the document
	// itself, or its "rows" member when the document is an object.
	DataPath       string                 `json:"data_path"`
	CoercionConfig coercer.CoercionConfig `json:"coercion_config"`
}

// DefaultConfig returns sensible defaults for JSON decoding
func DefaultConfig() Config {
	return Config{CoercionConfig: coercer.DefaultCoercionConfig()}
}

// Reader decodes an array of JSON objects into a table. Object keys, in
// first-seen order, become the columns.
type Reader struct {
	config  Config
	coercer *coercer.TypeCoercer
	logger  *internal.Logger
}

// NewReader creates a JSON table reader
func NewReader(config Config, logger *internal.Logger) *Reader {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Reader{
		config:  config,
		coercer: coercer.NewTypeCoercer(config.CoercionConfig),
		logger:  logger.WithComponent("JSONReader"),
	}
}

// Supports reports whether the file is a .json document
func (r *Reader) Supports(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".json")
}

// Decode reads the whole document and builds the table
func (r *Reader) Decode(ctx context.Context, filename string, rd io.Reader) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, err := io.ReadAll(rd)
	if err != nil {
		return nil, errors.MalformedTable("failed to read JSON input", err)
	}
	return r.DecodeBytes(body)
}

// DecodeBytes builds a table from an in-memory JSON document
func (r *Reader) DecodeBytes(body []byte) (*table.Table, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.MalformedTable("file is not valid JSON", nil)
	}

	data := gjson.ParseBytes(body)
	if r.config.DataPath != "" {
		data = gjson.GetBytes(body, r.config.DataPath)
		if !data.Exists() {
			return nil, errors.MalformedTable(fmt.Sprintf("data path '%s' not found in document", r.config.DataPath), nil)
		}
	} else if data.IsObject() {
		if rows := data.Get("rows"); rows.IsArray() {
			data = rows
		}
	}
	return r.FromResult(data)
}

// FromResult builds a table from an already parsed array of row objects
func (r *Reader) FromResult(data gjson.Result) (*table.Table, error) {
	if !data.IsArray() {
		return nil, errors.MalformedTable("expected an array of row objects", nil)
	}

	var columns []string
	seen := make(map[string]bool)
	var rows []table.Row
	var decodeErr error

	data.ForEach(func(idx, value gjson.Result) bool {
		if !value.IsObject() {
			decodeErr = errors.MalformedTable(fmt.Sprintf("row %d is not an object", len(rows)+1), nil)
			return false
		}
		row := make(table.Row)
		value.ForEach(func(key, cell gjson.Result) bool {
			name := key.String()
			if strings.TrimSpace(name) == "" {
				decodeErr = errors.MalformedTable(fmt.Sprintf("row %d has an empty key", len(rows)+1), nil)
				return false
			}
			if !seen[name] {
				seen[name] = true
				columns = append(columns, name)
			}
			row[name] = r.cell(cell)
			return true
		})
		if decodeErr != nil {
			return false
		}
		rows = append(rows, row)
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}

	t := table.New(columns...)
	for _, row := range rows {
		for _, c := range columns {
			if _, ok := row[c]; !ok {
				row[c] = table.Null()
			}
		}
		t.Append(row)
	}
	r.logger.Debug("JSON document processed (%d columns, %d rows)", len(columns), t.Len())
	return t, nil
}

func (r *Reader) cell(v gjson.Result) table.Cell {
	switch v.Type {
	case gjson.Null:
		return table.Null()
	case gjson.True, gjson.False:
		return table.Bool(v.Bool())
	case gjson.Number:
		// out of range literals such as 1e400 stay raw so the check can name them
		if f := v.Float(); !math.IsInf(f, 0) {
			return table.Number(f)
		}
		return table.Raw(v.Raw)
	case gjson.String:
		return r.coercer.CellFromString(v.String(), table.KindText)
	default:
		return table.Text(v.Raw)
	}
}
