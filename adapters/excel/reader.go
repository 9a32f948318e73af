package excel

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"sheetcheck/adapters/datareadiness/coercer"
	"sheetcheck/domain/table"
	"sheetcheck/internal"
	"sheetcheck/internal/errors"

	"github.com/xuri/excelize/v2"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DataReader decodes Excel workbooks and CSV files into tables
type DataReader struct {
	config  ReaderConfig
	coercer *coercer.TypeCoercer
	logger  *internal.Logger
}

// NewDataReader creates a reader that handles both Excel and CSV files
func NewDataReader(config ReaderConfig, logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &DataReader{
		config:  config,
		coercer: coercer.NewTypeCoercer(config.CoercionConfig),
		logger:  logger.WithComponent("DataReader"),
	}
}

// Supports reports whether the file extension is a format this reader decodes
func (r *DataReader) Supports(filename string) bool {
	_, ok := DetectFileType(filename)
	return ok
}

// ReadFile decodes a spreadsheet from disk
func (r *DataReader) ReadFile(ctx context.Context, path string) (*table.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(fmt.Sprintf("file %s", path))
		}
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer file.Close()
	return r.Decode(ctx, filepath.Base(path), file)
}

// Decode reads the input as the format its file name says
func (r *DataReader) Decode(ctx context.Context, filename string, rd io.Reader) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fileType, ok := DetectFileType(filename)
	if !ok {
		return nil, errors.MalformedTable(fmt.Sprintf("unsupported file type %q: upload an .xlsx or .csv file", filepath.Ext(filename)), nil)
	}

	switch fileType {
	case FileTypeCSV:
		return r.readCSV(rd)
	default:
		return r.readExcel(rd)
	}
}

// readExcel reads the configured sheet (or the first one) of a workbook
func (r *DataReader) readExcel(rd io.Reader) (*table.Table, error) {
	startTime := time.Now()
	f, err := excelize.OpenReader(rd)
	if err != nil {
		return nil, errors.MalformedTable("file is not a readable Excel workbook", err)
	}
	defer f.Close()
	r.logger.Debug("Excel file opened in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)

	sheet, err := r.selectSheet(f)
	if err != nil {
		return nil, err
	}

	readStart := time.Now()
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.MalformedTable(fmt.Sprintf("failed to read sheet %q", sheet), err)
	}
	r.logger.Debug("%s read in %.2fms (%d rows)", sheet, float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) == 0 {
		return nil, errors.MalformedTable(fmt.Sprintf("sheet %q is empty: no header row found", sheet), nil)
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	rawHeaders := make([]string, width)
	copy(rawHeaders, rows[0])
	headers := normalizeHeaders(rawHeaders, r.config.TrimHeaders)

	t := table.New(headers...)
	for i, raw := range rows[1:] {
		rowNum := i + 2
		row := make(table.Row, len(headers))
		for col, name := range headers {
			var value string
			if col < len(raw) {
				value = raw[col]
			}
			row[name] = r.excelCell(f, sheet, col+1, rowNum, value)
		}
		t.Append(row)
	}

	r.logger.Debug("XLSX file processed (%d columns, %d rows)", len(headers), t.Len())
	return t, nil
}

func (r *DataReader) selectSheet(f *excelize.File) (string, error) {
	if r.config.Sheet != "" {
		idx, err := f.GetSheetIndex(r.config.Sheet)
		if err != nil || idx == -1 {
			return "", errors.MalformedTable(fmt.Sprintf("sheet %q not found in workbook", r.config.Sheet), err)
		}
		return r.config.Sheet, nil
	}
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", errors.MalformedTable("workbook has no sheets", nil)
	}
	return sheets[0], nil
}

// excelCell maps one stored cell value onto a tagged cell using its type
// and number format
func (r *DataReader) excelCell(f *excelize.File, sheet string, col, rowNum int, value string) table.Cell {
	if value == "" {
		return table.Null()
	}
	ref, err := excelize.CoordinatesToCellName(col, rowNum)
	if err != nil {
		return r.coercer.CellFromString(value, table.KindText)
	}
	cellType, err := f.GetCellType(sheet, ref)
	if err != nil {
		return r.coercer.CellFromString(value, table.KindText)
	}

	switch cellType {
	case excelize.CellTypeBool:
		return table.Bool(value == "1" || strings.EqualFold(value, "TRUE"))
	case excelize.CellTypeError:
		if r.coercer.IsNull(value) {
			return table.Null()
		}
		return table.ErrorValue(value)
	case excelize.CellTypeDate:
		if t, err := r.coercer.ParseDate(value); err == nil {
			return table.Date(t)
		}
		return table.Text(value)
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return r.coercer.CellFromString(value, table.KindText)
		}
		if r.isDateFormatted(f, sheet, ref) {
			if t, err := r.coercer.SerialToTime(n); err == nil {
				return table.Date(t)
			}
		}
		return table.Number(n)
	default:
		return r.coercer.CellFromString(value, table.KindText)
	}
}

// isDateFormatted reports whether the cell's number format displays a date
func (r *DataReader) isDateFormatted(f *excelize.File, sheet, ref string) bool {
	styleID, err := f.GetCellStyle(sheet, ref)
	if err != nil || styleID == 0 {
		return false
	}
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	if builtinDateFormats[style.NumFmt] {
		return true
	}
	return style.CustomNumFmt != nil && isDateFormatCode(*style.CustomNumFmt)
}

// readCSV reads comma separated text; every value stays raw text for the
// validator to parse
func (r *DataReader) readCSV(rd io.Reader) (*table.Table, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, errors.MalformedTable("failed to read CSV file", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.MalformedTable("file is not valid CSV", err)
	}
	r.logger.Debug("CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) == 0 {
		return nil, errors.MalformedTable("CSV file is empty: no header row found", nil)
	}

	headers := normalizeHeaders(rows[0], r.config.TrimHeaders)
	t := table.New(headers...)
	for i, raw := range rows[1:] {
		if len(raw) > len(headers) {
			return nil, errors.MalformedTable(fmt.Sprintf("line %d has %d fields, header has %d", i+2, len(raw), len(headers)), nil)
		}
		row := make(table.Row, len(headers))
		for col, name := range headers {
			if col < len(raw) {
				row[name] = r.coercer.CellFromString(raw[col], table.KindRaw)
			} else {
				row[name] = table.Null()
			}
		}
		t.Append(row)
	}

	r.logger.Debug("CSV file processed (%d columns, %d rows)", len(headers), t.Len())
	return t, nil
}

// normalizeHeaders names blank headers "Unnamed: N" and suffixes repeated
// headers with ".1", ".2" so every column name is unique
func normalizeHeaders(raw []string, trim bool) []string {
	headers := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	next := make(map[string]int)
	for i, h := range raw {
		name := h
		if trim {
			name = strings.TrimSpace(name)
		}
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if used[name] {
			base := name
			for {
				next[base]++
				candidate := fmt.Sprintf("%s.%d", base, next[base])
				if !used[candidate] {
					name = candidate
					break
				}
			}
		}
		used[name] = true
		headers[i] = name
	}
	return headers
}
