package validation

import (
	"sheetcheck/adapters/datareadiness/coercer"
	"sheetcheck/domain/report"
	"sheetcheck/domain/schema"
	"sheetcheck/domain/table"
	"sheetcheck/internal/errors"
	"sheetcheck/internal/registry"
)

const (
	defaultMaxFailures = 20
	// failures named in a column's detail line
	detailLimit = 5
)

// Validator checks decoded tables against registered schemas. It holds no
// per-call state, so one Validator may serve concurrent callers.
type Validator struct {
	registry    *registry.Registry
	coercer     *coercer.TypeCoercer
	maxFailures int
}

// Option configures a Validator
type Option func(*Validator)

// WithMaxFailures caps how many failing cells a column result records
func WithMaxFailures(n int) Option {
	return func(v *Validator) {
		if n < detailLimit {
			n = detailLimit
		}
		v.maxFailures = n
	}
}

// NewValidator creates a validator over a frozen registry. A nil coercer
// uses the default parsing rules.
func NewValidator(reg *registry.Registry, c *coercer.TypeCoercer, opts ...Option) *Validator {
	if reg == nil {
		reg = registry.Builtin()
	}
	if c == nil {
		c = coercer.NewTypeCoercer(coercer.DefaultCoercionConfig())
	}
	v := &Validator{registry: reg, coercer: c, maxFailures: defaultMaxFailures}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks t against the named schema.
//
// An unknown schema or an unusable table is an error and no report is
// produced. Content problems never are: they show up as MISSING or INVALID
// columns in the report.
func (v *Validator) Validate(t *table.Table, name schema.Name) (report.ValidationReport, error) {
	s, err := v.registry.Lookup(name)
	if err != nil {
		return report.ValidationReport{}, err
	}
	if t == nil {
		return report.ValidationReport{}, errors.MalformedTable("no table to validate", nil)
	}
	if err := t.Check(); err != nil {
		return report.ValidationReport{}, errors.MalformedTable("table header is not usable", err)
	}

	present := t.ColumnSet()
	missing := make([]string, 0)
	columns := make([]report.ColumnResult, 0, len(s.Columns))

	for _, col := range s.Columns {
		if !present[col.Name] {
			missing = append(missing, col.Name)
			columns = append(columns, report.ColumnResult{
				Name:         col.Name,
				ExpectedType: col.Type,
				Status:       report.StatusMissing,
				Detail:       "column not found",
			})
			continue
		}
		columns = append(columns, v.checkColumn(col, t.Cells(col.Name)))
	}

	return report.ValidationReport{
		Schema:         s.Name,
		Status:         report.DeriveStatus(missing, columns),
		MissingColumns: missing,
		Columns:        columns,
	}, nil
}

// Validate checks t against a built-in schema with default parsing rules
func Validate(t *table.Table, name schema.Name) (report.ValidationReport, error) {
	return NewValidator(registry.Builtin(), nil).Validate(t, name)
}
