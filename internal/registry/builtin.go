package registry

import (
	"sync"

	"sheetcheck/domain/schema"
)

const (
	OptionA schema.Name = "Option_A"
	OptionB schema.Name = "Option_B"
)

var (
	builtinOnce sync.Once
	builtin     *Registry
)

// Builtin returns the process-wide registry of the two shipped schemas
func Builtin() *Registry {
	builtinOnce.Do(func() {
		r, err := New(BuiltinSchemas()...)
		if err != nil {
			panic("registry: invalid built-in schema: " + err.Error())
		}
		builtin = r
	})
	return builtin
}

// BuiltinSchemas returns fresh copies of the shipped schema definitions
func BuiltinSchemas() []schema.Schema {
	return []schema.Schema{
		{
			Name:        OptionA,
			Description: "Dealer warranty repair log. One row per repaired **part**, with the repair date and the date the replacement is expected.",
			Columns: []schema.ColumnSpec{
				{Name: "dealername", Type: schema.TypeString},
				{Name: "dealercode", Type: schema.TypeString},
				{Name: "component", Type: schema.TypeString},
				{Name: "partnumber", Type: schema.TypeString},
				{Name: "repair_date", Type: schema.TypeDate},
				{Name: "quantity", Type: schema.TypeNumber},
				{Name: "expected_date", Type: schema.TypeDate},
			},
		},
		{
			Name:        OptionB,
			Description: "Simple inventory list: item *name*, item type, quantity and date.",
			Columns: []schema.ColumnSpec{
				{Name: "Name", Type: schema.TypeString},
				{Name: "Type", Type: schema.TypeString},
				{Name: "Quantity", Type: schema.TypeNumber},
				{Name: "Date", Type: schema.TypeDate},
			},
		},
	}
}
