package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/vkadam-18/LVDI-2D/internal/model"
)

// Supported table file extensions, in lookup order
var tableExtensions = []string{".xlsx", ".csv"}

// FileSource loads pivot tables from <Dir>/<Version>/. Every 1D table in
// model.DimensionKeys must exist; 2D tables are any file named a_x_b.
type FileSource struct {
	Dir string
}

// NewFileSource creates a file-backed table source
func NewFileSource(dir string) *FileSource {
	return &FileSource{Dir: dir}
}

// LoadTables reads every table of a version
func (s *FileSource) LoadTables(ctx context.Context, version string) (*model.TableSet, error) {
	version = model.NormalizeVersion(version)
	folder := filepath.Join(s.Dir, version)

	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("missing folder: %s", folder)
	}

	set := model.NewTableSet(version)

	for _, key := range model.DimensionKeys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path, ok := findTableFile(folder, key)
		if !ok {
			return nil, fmt.Errorf("missing table file for %s in %s", key, folder)
		}
		table, err := readTableFile(path, key)
		if err != nil {
			return nil, err
		}
		set.Add(table)
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", folder, err)
	}
	for _, entry := range entries {
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		key := strings.TrimSuffix(name, filepath.Ext(name))
		if entry.IsDir() || !isTableExt(ext) || !strings.Contains(key, model.TableKeySeparator) {
			continue
		}
		if _, seen := set.TwoD[key]; seen {
			continue
		}
		table, err := readTableFile(filepath.Join(folder, name), key)
		if err != nil {
			return nil, err
		}
		set.Add(table)
	}

	return set, nil
}

// Versions lists the version folders under Dir, sorted
func (s *FileSource) Versions() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, err
	}
	var versions []string
	for _, e := range entries {
		if e.IsDir() {
			versions = append(versions, e.Name())
		}
	}
	sort.Strings(versions)
	return versions, nil
}

func findTableFile(folder, key string) (string, bool) {
	for _, ext := range tableExtensions {
		path := filepath.Join(folder, key+ext)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

func isTableExt(ext string) bool {
	for _, e := range tableExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func readTableFile(path, key string) (*model.Table, error) {
	var (
		records [][]string
		err     error
	)
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		records, err = readXLSX(path)
	} else {
		records, err = readCSV(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return buildTable(key, records)
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return parseCSV(f)
}

func parseCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// readXLSX reads the first sheet of a workbook. Cells come back as stored
// values, not as their number-formatted display text.
func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
}

// buildTable turns raw records into a table: header names trimmed,
// rows padded or cut to the header width
func buildTable(key string, records [][]string) (*model.Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("table %s has no header row", key)
	}

	header := records[0]
	columns := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		columns[i] = strings.TrimSpace(h)
	}

	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make([]string, len(columns))
		copy(row, rec)
		rows = append(rows, row)
	}

	return &model.Table{Name: key, Columns: columns, Rows: rows}, nil
}
