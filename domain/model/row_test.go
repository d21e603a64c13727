package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema(t *testing.T) {
	t.Parallel()

	s := NewSchema([]string{"Name", "name", "Age", "Name"})
	assert.Equal(t, []string{"Name", "name", "Age"}, s.Columns())
	assert.Equal(t, 3, s.Len())

	i, ok := s.Index("name")
	require.True(t, ok)
	assert.Equal(t, 1, i, "exact match has priority")

	i, ok = s.Index("AGE")
	require.True(t, ok)
	assert.Equal(t, 2, i)

	_, ok = s.Position("AGE")
	assert.False(t, ok)
}

func TestRow(t *testing.T) {
	t.Parallel()

	s := NewSchema([]string{"city", "total"})
	row := s.NewRow([]Value{String("Osaka")})

	v, ok := row.Get("city")
	require.True(t, ok)
	assert.Equal(t, "Osaka", v.String())

	v, ok = row.Lookup("TOTAL")
	require.True(t, ok)
	assert.True(t, v.IsNull(), "missing trailing values are null")

	_, ok = row.Get("missing")
	assert.False(t, ok)
	assert.True(t, row.At(9).IsNull())

	assert.Equal(t, map[string]any{"city": "Osaka", "total": nil}, row.Map())
}

func TestRow_MarshalJSONKeepsColumnOrder(t *testing.T) {
	t.Parallel()

	s := NewSchema([]string{"z", "a", "m"})
	row := s.NewRow([]Value{Number(1), String("x"), Null()})

	b, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":"x","m":null}`, string(b))
}

func TestResult_MarshalJSON(t *testing.T) {
	t.Parallel()

	s := NewSchema([]string{"n"})
	res := NewResult(s, []Row{s.NewRow([]Value{Number(1)}), s.NewRow([]Value{Number(2)})})

	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"results":[{"n":1},{"n":2}],"row_count":2}`, string(b))

	empty := NewResult(s, nil)
	b, err = json.Marshal(empty)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"results":[],"row_count":0}`, string(b))
}
