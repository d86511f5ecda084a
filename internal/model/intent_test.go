package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterValuesKeepOrder(t *testing.T) {
	var f FilterValues
	err := json.Unmarshal([]byte(`{"role": "litigation", "practice_area": "corporate", "city": null, "n": 5}`), &f)
	require.NoError(t, err)

	assert.Equal(t, FilterValues{
		{Dimension: "role", Value: "litigation"},
		{Dimension: "practice_area", Value: "corporate"},
		{Dimension: "city", Value: ""},
		{Dimension: "n", Value: "5"},
	}, f)
	assert.Len(t, f.Active(), 3)

	out, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, `{"role":"litigation","practice_area":"corporate","city":null,"n":"5"}`, string(out))
}

func TestFilterValuesNonObject(t *testing.T) {
	var f FilterValues
	require.NoError(t, json.Unmarshal([]byte(`null`), &f))
	assert.Nil(t, f)
}

func TestNormalizeVersion(t *testing.T) {
	assert.Equal(t, "Jun", NormalizeVersion("jun"))
	assert.Equal(t, "Sep", NormalizeVersion("SEP"))
	assert.Equal(t, "", NormalizeVersion("  "))
}

func TestLookup2DTriesBothOrders(t *testing.T) {
	set := NewTableSet("Jun")
	set.Add(&Table{Name: "industry_x_city"})
	set.Add(&Table{Name: "industry"})

	tbl, ok := set.Lookup2D([]string{"city", "industry"})
	require.True(t, ok)
	assert.Equal(t, "industry_x_city", tbl.Name)

	tbl, ok = set.Lookup2D([]string{"industry", "city"})
	require.True(t, ok)
	assert.Equal(t, "industry_x_city", tbl.Name)

	_, ok = set.Lookup2D([]string{"role", "city"})
	assert.False(t, ok)

	_, ok = set.Lookup1D("industry")
	assert.True(t, ok)
}

func TestTableHelpers(t *testing.T) {
	tbl := &Table{
		Columns: []string{"Dimension Value", "2024 Avg Rate Jun"},
		Rows: [][]string{
			{"Technology", "1,200.5"},
			{"Health Care", ""},
			{"Technology", "800"},
		},
	}

	v, ok := tbl.Number(0, 1)
	require.True(t, ok)
	assert.Equal(t, 1200.5, v)

	_, ok = tbl.Number(1, 1)
	assert.False(t, ok)

	assert.Equal(t, 2, tbl.Where(0, "Technology").Len())
	assert.Equal(t, []string{"Technology", "Health Care"}, tbl.UniqueValues(0, 5))
	assert.Equal(t, []string{"Technology"}, tbl.UniqueValues(0, 1))
}

func TestJSONRowsStrings(t *testing.T) {
	rows := JSONRows{{"Technology", 1200.5, nil, true}}
	assert.Equal(t, [][]string{{"Technology", "1200.5", "", "true"}}, rows.Strings())
}
