package repository

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vkadam-18/LVDI-2D/internal/model"
)

const oneDCSV = "\ufeffDimension Type, Dimension Value ,2024 Avg Rate Jun\nIndustry,Technology,1000\nIndustry,Health Care\n"

func writeVersion(t *testing.T, dir, version string, skip string) string {
	t.Helper()
	folder := filepath.Join(dir, version)
	require.NoError(t, os.MkdirAll(folder, 0o755))
	for _, key := range model.DimensionKeys {
		if key == skip {
			continue
		}
		require.NoError(t, os.WriteFile(filepath.Join(folder, key+".csv"), []byte(oneDCSV), 0o644))
	}
	return folder
}

func TestFileSourceLoadTables(t *testing.T) {
	dir := t.TempDir()
	folder := writeVersion(t, dir, "Jun", "")

	twoD := "Dimension1 Value,Dimension2 Value,2023 Timekeeper Count Jun\nCorporate,Partner,10\n"
	require.NoError(t, os.WriteFile(filepath.Join(folder, "practice_area_x_role.csv"), []byte(twoD), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "notes.txt"), []byte("ignore me"), 0o644))

	source := NewFileSource(dir)
	set, err := source.LoadTables(context.Background(), "jun")
	require.NoError(t, err)

	assert.Equal(t, "Jun", set.Version)
	assert.Len(t, set.OneD, len(model.DimensionKeys))
	require.Len(t, set.TwoD, 1)

	industry, ok := set.Lookup1D("industry")
	require.True(t, ok)
	assert.Equal(t, []string{"Dimension Type", "Dimension Value", "2024 Avg Rate Jun"}, industry.Columns)
	assert.Equal(t, [][]string{
		{"Industry", "Technology", "1000"},
		{"Industry", "Health Care", ""},
	}, industry.Rows)

	_, ok = set.Lookup2D([]string{"role", "practice_area"})
	assert.True(t, ok)
}

func TestFileSourceXLSX(t *testing.T) {
	dir := t.TempDir()
	folder := writeVersion(t, dir, "Sep", "city")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Dimension Type", "Dimension Value", "2024 Avg Rate Sep"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"City", "New York", 1200}))
	require.NoError(t, f.SaveAs(filepath.Join(folder, "city.xlsx")))
	require.NoError(t, f.Close())

	set, err := NewFileSource(dir).LoadTables(context.Background(), "Sep")
	require.NoError(t, err)

	city, ok := set.Lookup1D("city")
	require.True(t, ok)
	assert.Equal(t, []string{"Dimension Type", "Dimension Value", "2024 Avg Rate Sep"}, city.Columns)
	require.Len(t, city.Rows, 1)
	assert.Equal(t, "New York", city.Rows[0][1])
	v, ok := city.Number(0, 2)
	require.True(t, ok)
	assert.Equal(t, 1200.0, v)
}

func TestFileSourceXLSXFormattedNumbers(t *testing.T) {
	dir := t.TempDir()
	folder := writeVersion(t, dir, "Jun", "industry")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Dimension Value", "2024 Avg Rate Jun", "2024 Timekeeper Count Jun"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Technology", 1234.5, 0.456}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"Health Care", 1234.567, 0.5}))

	thousands, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	require.NoError(t, err)
	percent, err := f.NewStyle(&excelize.Style{NumFmt: 9})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "B2", "B3", thousands))
	require.NoError(t, f.SetCellStyle(sheet, "C2", "C3", percent))
	require.NoError(t, f.SaveAs(filepath.Join(folder, "industry.xlsx")))
	require.NoError(t, f.Close())

	set, err := NewFileSource(dir).LoadTables(context.Background(), "Jun")
	require.NoError(t, err)
	industry, ok := set.Lookup1D("industry")
	require.True(t, ok)

	tests := []struct {
		row, col int
		want     float64
	}{
		{row: 0, col: 1, want: 1234.5},
		{row: 0, col: 2, want: 0.456},
		{row: 1, col: 1, want: 1234.567},
		{row: 1, col: 2, want: 0.5},
	}
	for _, tt := range tests {
		v, ok := industry.Number(tt.row, tt.col)
		require.True(t, ok, industry.Cell(tt.row, tt.col))
		assert.InDelta(t, tt.want, v, 1e-9)
	}
}

func TestFileSourceErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewFileSource(dir).LoadTables(context.Background(), "Jun")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing folder")

	writeVersion(t, dir, "Jun", "country")
	_, err = NewFileSource(dir).LoadTables(context.Background(), "Jun")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "country")
}

func TestFileSourceVersions(t *testing.T) {
	dir := t.TempDir()
	writeVersion(t, dir, "Sep", "")
	writeVersion(t, dir, "Jun", "")

	versions, err := NewFileSource(dir).Versions()
	require.NoError(t, err)
	assert.Equal(t, []string{"Jun", "Sep"}, versions)
}

func TestBuildTableRaggedRows(t *testing.T) {
	records, err := parseCSV(strings.NewReader("a,b,c\n1,2\n1,2,3,4\n"))
	require.NoError(t, err)

	table, err := buildTable("t", records)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "2", ""}, {"1", "2", "3"}}, table.Rows)

	_, err = buildTable("empty", nil)
	assert.Error(t, err)
}
