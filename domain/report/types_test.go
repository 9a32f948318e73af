package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	valid := ColumnResult{Name: "a", Status: StatusValid}
	invalid := ColumnResult{Name: "b", Status: StatusInvalid}
	missing := ColumnResult{Name: "c", Status: StatusMissing}

	tests := []struct {
		name    string
		missing []string
		columns []ColumnResult
		want    OverallStatus
	}{
		{"all valid", nil, []ColumnResult{valid}, Passed},
		{"no columns", nil, nil, Passed},
		{"missing column", []string{"c"}, []ColumnResult{valid, missing}, Failed},
		{"invalid column", nil, []ColumnResult{valid, invalid}, Failed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.missing, tt.columns))
		})
	}
}

func TestReportAccessors(t *testing.T) {
	rep := ValidationReport{
		Status: Failed,
		Columns: []ColumnResult{
			{Name: "a", Status: StatusValid},
			{Name: "b", Status: StatusInvalid},
			{Name: "c", Status: StatusInvalid},
		},
	}

	assert.False(t, rep.Passed())
	assert.Equal(t, []string{"b", "c"}, rep.InvalidColumns())

	got, ok := rep.Result("b")
	assert.True(t, ok)
	assert.Equal(t, StatusInvalid, got.Status)
	_, ok = rep.Result("z")
	assert.False(t, ok)

	assert.Len(t, rep.Results(), 3)
}
