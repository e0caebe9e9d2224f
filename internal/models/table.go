package models

// ParsedTable is the raw result of parsing a delimited file: the header row
// plus every non-empty data row, all cells still untyped text. It is never
// mutated after parsing.
type ParsedTable struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// RowCount returns the number of data rows (headers excluded).
func (t *ParsedTable) RowCount() int {
	return len(t.Rows)
}

// Cell returns the value at (row, col), or "" when the column was not present
// in that row.
func (t *ParsedTable) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}
