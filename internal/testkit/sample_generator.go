package testkit

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"sheetcheck/domain/schema"
)

// SampleGeneratorConfig configures the sample row generator
type SampleGeneratorConfig struct {
	Rows      int       `json:"rows"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	NullRate  float64   `json:"null_rate"` // chance that any one cell is left empty
	Seed      int64     `json:"seed"`
}

// DefaultSampleConfig returns sensible defaults for sample generation
func DefaultSampleConfig() SampleGeneratorConfig {
	return SampleGeneratorConfig{
		Rows:      10,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		NullRate:  0,
		Seed:      42,
	}
}

// SampleGenerator produces rows that satisfy a schema, for templates and fixtures
type SampleGenerator struct {
	config SampleGeneratorConfig
	rng    *rand.Rand
}

// NewSampleGenerator creates a new sample generator
func NewSampleGenerator(config SampleGeneratorConfig) *SampleGenerator {
	if !config.EndDate.After(config.StartDate) {
		config.EndDate = config.StartDate.AddDate(1, 0, 0)
	}
	return &SampleGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate returns a header row followed by config.Rows data rows in the
// schema's column order. Values are typed so a workbook writer stores
// numbers as numbers and dates as dates.
func (g *SampleGenerator) Generate(s schema.Schema) [][]interface{} {
	header := make([]interface{}, len(s.Columns))
	for i, col := range s.Columns {
		header[i] = col.Name
	}

	rows := [][]interface{}{header}
	for r := 0; r < g.config.Rows; r++ {
		row := make([]interface{}, len(s.Columns))
		for i, col := range s.Columns {
			if g.config.NullRate > 0 && g.rng.Float64() < g.config.NullRate {
				continue
			}
			row[i] = g.value(col, r)
		}
		rows = append(rows, row)
	}
	return rows
}

func (g *SampleGenerator) value(col schema.ColumnSpec, row int) interface{} {
	switch col.Type {
	case schema.TypeNumber:
		return 1 + g.rng.Intn(50)
	case schema.TypeDate:
		return g.randomDate()
	default:
		return g.text(col.Name, row)
	}
}

// text picks a plausible value from the column name
func (g *SampleGenerator) text(column string, row int) string {
	name := strings.ToLower(column)
	switch {
	case strings.Contains(name, "dealername"):
		return dealerNames[g.rng.Intn(len(dealerNames))]
	case strings.Contains(name, "dealercode"):
		return fmt.Sprintf("D%04d", 1000+g.rng.Intn(9000))
	case strings.Contains(name, "component"):
		return components[g.rng.Intn(len(components))]
	case strings.Contains(name, "partnumber"), strings.Contains(name, "part"):
		return fmt.Sprintf("PN-%05d", g.rng.Intn(100000))
	case name == "type" || strings.HasSuffix(name, "_type"):
		return itemTypes[g.rng.Intn(len(itemTypes))]
	case name == "name" || strings.HasSuffix(name, "name"):
		return fmt.Sprintf("Item %03d", row+1)
	default:
		return fmt.Sprintf("%s_%04d", column, row+1)
	}
}

func (g *SampleGenerator) randomDate() time.Time {
	days := int(g.config.EndDate.Sub(g.config.StartDate).Hours() / 24)
	if days <= 0 {
		return g.config.StartDate
	}
	return g.config.StartDate.AddDate(0, 0, g.rng.Intn(days+1))
}

var (
	dealerNames = []string{"Northgate Motors", "Riverside Auto", "Summit Trucks", "Lakeview Motors", "Harbor Auto Group"}
	components  = []string{"brake pad", "alternator", "water pump", "fuel injector", "starter motor", "radiator"}
	itemTypes   = []string{"part", "service", "accessory"}
)
