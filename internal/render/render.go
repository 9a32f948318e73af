// Package render turns validation runs into text, JSON or markdown.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"sheetcheck/domain/report"
	"sheetcheck/domain/table"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
)

// Format selects an output encoding
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat maps a flag value onto a Format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown format %q: use text, json or markdown", s)
	}
}

// Options tune text output
type Options struct {
	Color        bool
	ShowPreview  bool
	ShowFailures bool
}

// Write renders run to w in the given format
func Write(w io.Writer, run *report.Run, format Format, opts Options) error {
	switch format {
	case FormatJSON:
		data, err := JSON(run)
		if err != nil {
			return err
		}
		_, err = w.Write(append(data, '\n'))
		return err
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(run))
		return err
	default:
		_, err := io.WriteString(w, Text(run, opts))
		return err
	}
}

// JSON encodes the run with its full report
func JSON(run *report.Run) ([]byte, error) {
	return json.MarshalIndent(run, "", "  ")
}

type styles struct {
	heading lipgloss.Style
	valid   lipgloss.Style
	invalid lipgloss.Style
	missing lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{plain, plain, plain, plain, plain, plain, plain}
	}
	return styles{
		heading: lipgloss.NewStyle().Bold(true).Underline(true),
		valid:   lipgloss.NewStyle().Foreground(lipgloss.Color("green")),
		invalid: lipgloss.NewStyle().Foreground(lipgloss.Color("red")),
		missing: lipgloss.NewStyle().Foreground(lipgloss.Color("yellow")),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("green")).Bold(true),
		failure: lipgloss.NewStyle().Foreground(lipgloss.Color("red")).Bold(true),
	}
}

// Text renders the run the way the upload page lays it out: preview,
// column check, per-column type checks, overall status
func Text(run *report.Run, opts Options) string {
	st := newStyles(opts.Color)
	rep := run.Report
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", st.muted.Render(fmt.Sprintf("%s · schema %s · run %s", run.Source, run.Schema, run.ID)))

	if opts.ShowPreview {
		fmt.Fprintf(&b, "\n%s\n", st.heading.Render("Data Preview:"))
		b.WriteString(PreviewTable(run.Preview))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\n%s\n", st.heading.Render("Column Check:"))
	if len(rep.MissingColumns) > 0 {
		fmt.Fprintf(&b, "%s\n", st.missing.Render(MissingMessage(rep)))
	} else {
		fmt.Fprintf(&b, "%s\n", MissingMessage(rep))
	}

	fmt.Fprintf(&b, "\n%s\n", st.heading.Render("Data Type Checks:"))
	for _, c := range rep.Columns {
		style := st.valid
		switch c.Status {
		case report.StatusInvalid:
			style = st.invalid
		case report.StatusMissing:
			style = st.missing
		}
		line := fmt.Sprintf("  %s: %s", c.Name, style.Render(StatusLine(c)))
		if summary := SummaryLine(c); summary != "" {
			line += " " + st.muted.Render("("+summary+")")
		}
		b.WriteString(line + "\n")

		if opts.ShowFailures {
			for _, f := range c.Failures {
				fmt.Fprintf(&b, "    %s\n", st.muted.Render(fmt.Sprintf("row %d: %s", f.Row, f.Reason)))
			}
		}
	}

	fmt.Fprintf(&b, "\n%s\n", st.heading.Render("Overall Status:"))
	if rep.Passed() {
		fmt.Fprintf(&b, "%s\n", st.success.Render(OverallMessage(rep)))
	} else {
		fmt.Fprintf(&b, "%s\n", st.failure.Render(OverallMessage(rep)))
	}
	return b.String()
}

// PreviewTable draws the preview rows in a bordered grid
func PreviewTable(p table.Preview) string {
	if len(p.Columns) == 0 {
		return "(no columns)"
	}
	t := ltable.New().
		Border(lipgloss.NormalBorder()).
		Headers(p.Columns...).
		Rows(p.Rows...)
	out := t.String()
	if p.TotalRows > len(p.Rows) {
		out += fmt.Sprintf("\n%d of %d rows shown", len(p.Rows), p.TotalRows)
	}
	return out
}

// Markdown renders the run as a markdown document
func Markdown(run *report.Run) string {
	rep := run.Report
	var b strings.Builder

	fmt.Fprintf(&b, "## Validation report: %s\n\n", run.Schema)
	fmt.Fprintf(&b, "- **Source:** %s\n", escapeMarkdown(run.Source))
	fmt.Fprintf(&b, "- **Status:** %s\n", rep.Status)
	fmt.Fprintf(&b, "- **Run:** `%s`\n\n", run.ID)
	fmt.Fprintf(&b, "%s\n\n", MissingMessage(rep))

	b.WriteString("| Column | Expected type | Status | Detail |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, c := range rep.Columns {
		detail := c.Detail
		if summary := SummaryLine(c); summary != "" {
			detail = summary
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			escapeMarkdown(c.Name), c.ExpectedType, c.Status, escapeMarkdown(detail))
	}

	fmt.Fprintf(&b, "\n**%s**\n", OverallMessage(rep))
	return b.String()
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
