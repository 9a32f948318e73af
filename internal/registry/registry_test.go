package registry

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"sheetcheck/domain/schema"
	"sheetcheck/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Load(ctx context.Context) ([]schema.Schema, error) {
	args := m.Called(ctx)
	schemas, _ := args.Get(0).([]schema.Schema)
	return schemas, args.Error(1)
}

func testSchema(name string, cols ...string) schema.Schema {
	s := schema.Schema{Name: schema.Name(name)}
	for _, c := range cols {
		s.Columns = append(s.Columns, schema.ColumnSpec{Name: c, Type: schema.TypeString})
	}
	return s
}

func TestBuiltin(t *testing.T) {
	r := Builtin()
	assert.Equal(t, []schema.Name{OptionA, OptionB}, r.Names())
	assert.Same(t, r, Builtin())

	a, err := r.Lookup(OptionA)
	require.NoError(t, err)
	assert.Equal(t, []string{"dealername", "dealercode", "component", "partnumber", "repair_date", "quantity", "expected_date"}, a.ColumnNames())
	assert.Equal(t, schema.TypeDate, a.Columns[4].Type)
	assert.Equal(t, schema.TypeNumber, a.Columns[5].Type)

	b, err := r.Lookup(OptionB)
	require.NoError(t, err)
	assert.Equal(t, []schema.ColumnSpec{
		{Name: "Name", Type: schema.TypeString},
		{Name: "Type", Type: schema.TypeString},
		{Name: "Quantity", Type: schema.TypeNumber},
		{Name: "Date", Type: schema.TypeDate},
	}, b.Columns)
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Builtin().Lookup("Option_Z")
	require.Error(t, err)
	assert.True(t, errors.IsUnknownSchema(err))
	assert.Contains(t, err.Error(), "Option_Z")

	_, err = Builtin().Lookup("option_a")
	assert.True(t, errors.IsUnknownSchema(err), "names are case-sensitive")
}

func TestLookup_ReturnsCopy(t *testing.T) {
	r := Builtin()
	s, err := r.Lookup(OptionB)
	require.NoError(t, err)
	s.Columns[0].Name = "mutated"

	again, err := r.Lookup(OptionB)
	require.NoError(t, err)
	assert.Equal(t, "Name", again.Columns[0].Name)
}

func TestNew_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		schemas []schema.Schema
	}{
		{"empty name", []schema.Schema{testSchema("", "a")}},
		{"no columns", []schema.Schema{testSchema("s")}},
		{"duplicate column", []schema.Schema{testSchema("s", "a", "a")}},
		{"duplicate schema", []schema.Schema{testSchema("s", "a"), testSchema("s", "b")}},
		{"unknown type", []schema.Schema{{Name: "s", Columns: []schema.ColumnSpec{{Name: "a", Type: "blob"}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.schemas...)
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestNew_CopiesInput(t *testing.T) {
	s := testSchema("s", "a")
	r, err := New(s)
	require.NoError(t, err)
	s.Columns[0].Name = "changed"

	got, err := r.Lookup("s")
	require.NoError(t, err)
	assert.Equal(t, "a", got.Columns[0].Name)
}

func TestLoad(t *testing.T) {
	src := &mockSource{}
	src.On("Load", mock.Anything).Return([]schema.Schema{testSchema("Option_C", "x")}, nil)

	r, err := Load(context.Background(), src, nil)
	require.NoError(t, err)
	assert.Equal(t, []schema.Name{OptionA, OptionB, "Option_C"}, r.Names())
	assert.Equal(t, 3, r.Len())
	assert.True(t, r.Has("Option_C"))
	src.AssertExpectations(t)
}

func TestLoad_Errors(t *testing.T) {
	failing := &mockSource{}
	failing.On("Load", mock.Anything).Return(nil, fmt.Errorf("connection refused"))
	_, err := Load(context.Background(), failing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	clashing := &mockSource{}
	clashing.On("Load", mock.Anything).Return([]schema.Schema{testSchema(string(OptionA), "x")}, nil)
	_, err = Load(context.Background(), clashing)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestLoad_RepeatedBuiltin(t *testing.T) {
	src := &mockSource{}
	src.On("Load", mock.Anything).Return(BuiltinSchemas(), nil)

	r, err := Load(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, []schema.Name{OptionA, OptionB}, r.Names())
}

func TestRegistry_ConcurrentReaders(t *testing.T) {
	r := Builtin()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, err := r.Lookup(OptionA)
				assert.NoError(t, err)
				_ = r.Names()
			}
		}()
	}
	wg.Wait()
}
