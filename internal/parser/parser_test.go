package parser

import (
	"errors"
	"testing"
)

func TestParseBasic(t *testing.T) {
	input := "Date,Amount,Memo\n2024-01-01,-50.00,Coffee\n2024-01-02,1200.00,Payroll\n"

	table, err := Parse([]byte(input), ',')
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(table.Headers) != 3 {
		t.Errorf("Expected 3 headers, got %d", len(table.Headers))
	}
	if table.RowCount() != 2 {
		t.Errorf("Expected 2 rows, got %d", table.RowCount())
	}
	if table.Cell(0, 2) != "Coffee" {
		t.Errorf("Expected Coffee, got %q", table.Cell(0, 2))
	}
}

func TestParseQuotedFields(t *testing.T) {
	input := "Name,Notes\n\"Acme, Inc.\",\"line one\nline two\"\n\"He said \"\"hi\"\"\",x\n"

	table, err := Parse([]byte(input), ',')
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if table.RowCount() != 2 {
		t.Fatalf("Expected 2 rows, got %d", table.RowCount())
	}
	if got := table.Cell(0, 0); got != "Acme, Inc." {
		t.Errorf("Quoted delimiter not preserved, got %q", got)
	}
	if got := table.Cell(0, 1); got != "line one\nline two" {
		t.Errorf("Embedded newline not preserved, got %q", got)
	}
	if got := table.Cell(1, 0); got != `He said "hi"` {
		t.Errorf("Escaped quote not preserved, got %q", got)
	}
}

func TestParseRaggedRows(t *testing.T) {
	input := "A,B,C\n1,2\n1,2,3,4\n"

	table, err := Parse([]byte(input), ',')
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	for i := 0; i < table.RowCount(); i++ {
		if len(table.Rows[i]) != 3 {
			t.Errorf("Row %d width = %d, want 3", i, len(table.Rows[i]))
		}
	}
	if table.Cell(0, 2) != "" {
		t.Errorf("Short row not padded with empty cell")
	}
}

func TestParseDropsEmptyRows(t *testing.T) {
	input := "A,B\n1,2\n,\n  ,  \n\n3,4\n"

	table, err := Parse([]byte(input), ',')
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if table.RowCount() != 2 {
		t.Errorf("Expected 2 rows after dropping empties, got %d", table.RowCount())
	}
}

func TestParseEmptyInput(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"zero bytes", ""},
		{"header only", "Date,Amount,Memo\n"},
		{"header and blank lines", "Date,Amount\n\n\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.input), ',')
			if !errors.Is(err, ErrNoDataRows) {
				t.Errorf("Expected ErrNoDataRows, got %v", err)
			}
		})
	}
}

func TestParseUTF16(t *testing.T) {
	// "A,B\n1,2\n" as UTF-16 LE with BOM
	raw := []byte{0xFF, 0xFE}
	for _, r := range "A,B\n1,2\n" {
		raw = append(raw, byte(r), 0x00)
	}

	table, err := Parse(raw, ',')
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if table.Headers[0] != "A" || table.Cell(0, 1) != "2" {
		t.Errorf("UTF-16 input not decoded correctly: %+v", table)
	}
}

func TestParseRoundTrip(t *testing.T) {
	input := "Name,Amount\n\"Smith, Jane\",10.50\nBob,-3\n"

	first, err := Parse([]byte(input), ',')
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	serialized, err := Serialize(first, ',')
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	second, err := Parse([]byte(serialized), ',')
	if err != nil {
		t.Fatalf("Re-parse failed: %v", err)
	}

	if len(first.Headers) != len(second.Headers) || first.RowCount() != second.RowCount() {
		t.Fatalf("Round trip changed shape: %d/%d vs %d/%d",
			len(first.Headers), first.RowCount(), len(second.Headers), second.RowCount())
	}
	for i := range first.Rows {
		for j := range first.Rows[i] {
			if first.Rows[i][j] != second.Rows[i][j] {
				t.Errorf("Round trip changed cell (%d,%d): %q vs %q", i, j, first.Rows[i][j], second.Rows[i][j])
			}
		}
	}
}

func TestParseSemicolonDelimiter(t *testing.T) {
	input := "A;B\n1;2\n"

	table, err := Parse([]byte(input), ';')
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if table.Cell(0, 1) != "2" {
		t.Errorf("Semicolon delimiter not honored: %+v", table.Rows)
	}
}
