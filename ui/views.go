package ui

import (
	"fmt"
	"html/template"

	"sheetcheck/domain/report"
	"sheetcheck/domain/schema"
	"sheetcheck/internal/render"
)

// indexPage feeds index.html
type indexPage struct {
	Schemas    []schema.Schema
	Selected   schema.Name
	Accept     string
	MaxUpload  int64
	Error      string
	LastSource string
}

// columnLine is one row of the "Data Type Checks" list
type columnLine struct {
	Name     string
	Status   report.CheckStatus
	Line     string
	Summary  string
	Failures []report.CellFailure
}

// reportPage feeds report.html
type reportPage struct {
	Run      *report.Run
	Missing  string
	Columns  []columnLine
	Overall  string
	Passed   bool
	Shown    string
	Selected schema.Name
}

func newReportPage(run *report.Run) reportPage {
	rep := run.Report
	lines := make([]columnLine, 0, len(rep.Columns))
	for _, c := range rep.Columns {
		lines = append(lines, columnLine{
			Name:     c.Name,
			Status:   c.Status,
			Line:     render.StatusLine(c),
			Summary:  render.SummaryLine(c),
			Failures: c.Failures,
		})
	}

	shown := ""
	if run.Preview.TotalRows > len(run.Preview.Rows) {
		shown = fmt.Sprintf("%d of %d rows shown", len(run.Preview.Rows), run.Preview.TotalRows)
	}

	return reportPage{
		Run:      run,
		Missing:  render.MissingMessage(rep),
		Columns:  lines,
		Overall:  render.OverallMessage(rep),
		Passed:   rep.Passed(),
		Shown:    shown,
		Selected: run.Schema,
	}
}

// schemaPage feeds schema.html
type schemaPage struct {
	Schema      schema.Schema
	Description template.HTML
}
