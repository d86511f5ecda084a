package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// TableKeySeparator joins the two dimension keys of a 2D table
const TableKeySeparator = "_x_"

// Table is a precomputed pivot: ordered columns and string cells
type Table struct {
	Name    string     `json:"name"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// ColumnIndex returns the position of a column, or -1
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// Cell returns the value at row i of the given column index
func (t *Table) Cell(i, col int) string {
	if col < 0 || col >= len(t.Rows[i]) {
		return ""
	}
	return t.Rows[i][col]
}

// Number parses the cell at row i as a float. Blank or non-numeric cells are reported as missing.
func (t *Table) Number(i, col int) (float64, bool) {
	raw := strings.TrimSpace(t.Cell(i, col))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Where returns a copy holding only rows whose column equals value
func (t *Table) Where(col int, value string) *Table {
	out := &Table{Name: t.Name, Columns: t.Columns}
	for i := range t.Rows {
		if t.Cell(i, col) == value {
			out.Rows = append(out.Rows, t.Rows[i])
		}
	}
	return out
}

// Values returns a column's cells in row order
func (t *Table) Values(col int) []string {
	vals := make([]string, 0, len(t.Rows))
	for i := range t.Rows {
		vals = append(vals, t.Cell(i, col))
	}
	return vals
}

// UniqueValues returns distinct cells in first-seen order, capped at limit (0 = all)
func (t *Table) UniqueValues(col, limit int) []string {
	seen := make(map[string]struct{})
	var vals []string
	for i := range t.Rows {
		v := t.Cell(i, col)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		vals = append(vals, v)
		if limit > 0 && len(vals) == limit {
			break
		}
	}
	return vals
}

// TableSet is every table of one data version
type TableSet struct {
	Version string            `json:"version"`
	OneD    map[string]*Table `json:"one_d"`
	TwoD    map[string]*Table `json:"two_d"`
}

// NewTableSet creates an empty set for a version
func NewTableSet(version string) *TableSet {
	return &TableSet{
		Version: version,
		OneD:    make(map[string]*Table),
		TwoD:    make(map[string]*Table),
	}
}

// Add files a table under 1D or 2D depending on its key
func (s *TableSet) Add(t *Table) {
	if strings.Contains(t.Name, TableKeySeparator) {
		s.TwoD[t.Name] = t
		return
	}
	s.OneD[t.Name] = t
}

// Lookup1D finds a single-dimension table
func (s *TableSet) Lookup1D(dimension string) (*Table, bool) {
	t, ok := s.OneD[dimension]
	return t, ok
}

// Lookup2D finds a two-dimension table, trying a_x_b then b_x_a
func (s *TableSet) Lookup2D(dims []string) (*Table, bool) {
	if len(dims) != 2 {
		return nil, false
	}
	if t, ok := s.TwoD[dims[0]+TableKeySeparator+dims[1]]; ok {
		return t, true
	}
	t, ok := s.TwoD[dims[1]+TableKeySeparator+dims[0]]
	return t, ok
}

// Keys lists the 1D and 2D table keys, sorted
func (s *TableSet) Keys() (oneD, twoD []string) {
	for k := range s.OneD {
		oneD = append(oneD, k)
	}
	for k := range s.TwoD {
		twoD = append(twoD, k)
	}
	sort.Strings(oneD)
	sort.Strings(twoD)
	return oneD, twoD
}

// JSONColumns represents a JSON array of column names stored in Postgres
type JSONColumns []string

// Value implements driver.Valuer interface
func (j JSONColumns) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner interface
func (j *JSONColumns) Scan(value interface{}) error {
	return scanJSON(value, j)
}

// JSONRows represents a JSON array of row arrays stored in Postgres
type JSONRows [][]any

// Value implements driver.Valuer interface
func (j JSONRows) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner interface
func (j *JSONRows) Scan(value interface{}) error {
	return scanJSON(value, j)
}

// RowsFromStrings converts table cells for JSON storage
func RowsFromStrings(rows [][]string) JSONRows {
	out := make(JSONRows, 0, len(rows))
	for _, r := range rows {
		row := make([]any, len(r))
		for i, cell := range r {
			row[i] = cell
		}
		out = append(out, row)
	}
	return out
}

// Strings converts every cell to its text form; null cells become blank
func (j JSONRows) Strings() [][]string {
	rows := make([][]string, 0, len(j))
	for _, r := range j {
		row := make([]string, len(r))
		for i, cell := range r {
			switch v := cell.(type) {
			case nil:
				row[i] = ""
			case string:
				row[i] = v
			case float64:
				row[i] = strconv.FormatFloat(v, 'f', -1, 64)
			default:
				row[i] = fmt.Sprint(v)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func scanJSON(value interface{}, dest any) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported JSON column type %T", value)
	}
}
