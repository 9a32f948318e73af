package adapters

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"sheetcheck/adapters/excel"
	"sheetcheck/adapters/jsontable"
	"sheetcheck/domain/table"
	"sheetcheck/internal"
	"sheetcheck/internal/errors"
	"sheetcheck/ports"
)

// Dispatcher routes a file to the first decoder that supports its format
type Dispatcher struct {
	decoders []ports.TableDecoder
}

// NewDispatcher creates a dispatcher over the given decoders, tried in order
func NewDispatcher(decoders ...ports.TableDecoder) *Dispatcher {
	return &Dispatcher{decoders: decoders}
}

// NewDefaultDispatcher wires the spreadsheet and JSON decoders
func NewDefaultDispatcher(excelConfig excel.ReaderConfig, logger *internal.Logger) *Dispatcher {
	jsonConfig := jsontable.DefaultConfig()
	jsonConfig.CoercionConfig = excelConfig.CoercionConfig
	return NewDispatcher(
		excel.NewDataReader(excelConfig, logger),
		jsontable.NewReader(jsonConfig, logger),
	)
}

// Dispatch picks the decoder for a file name
func Dispatch(decoders []ports.TableDecoder, filename string) (ports.TableDecoder, error) {
	for _, d := range decoders {
		if d.Supports(filename) {
			return d, nil
		}
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".xls" {
		return nil, errors.MalformedTable("legacy .xls workbooks are unsupported: save the file as .xlsx", nil)
	}
	if ext == "" {
		return nil, errors.MalformedTable(fmt.Sprintf("cannot tell the format of %q: file has no extension", filename), nil)
	}
	return nil, errors.MalformedTable(fmt.Sprintf("unsupported file type %q", ext), nil)
}

// Supports reports whether any decoder handles the file
func (d *Dispatcher) Supports(filename string) bool {
	_, err := Dispatch(d.decoders, filename)
	return err == nil
}

// Decode hands the input to the matching decoder
func (d *Dispatcher) Decode(ctx context.Context, filename string, r io.Reader) (*table.Table, error) {
	decoder, err := Dispatch(d.decoders, filename)
	if err != nil {
		return nil, err
	}
	return decoder.Decode(ctx, filename, r)
}

// Extensions lists the file extensions the default decoders accept
func Extensions() []string {
	return []string{".xlsx", ".xlsm", ".csv", ".json"}
}
