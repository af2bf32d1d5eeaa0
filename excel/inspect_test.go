package excel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeTestWorkbook builds a workbook with a data sheet carrying a named
// table, an empty sheet, and a sheet whose header sits on the second row.
func writeTestWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	data := [][]interface{}{
		{"ID", "Name", "Qty"},
		{1, "Widget", 10},
		{2, "Gadget", 4},
		{3, "Sprocket", 7},
	}
	for r, row := range data {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, value))
		}
	}
	require.NoError(t, f.AddTable("Sheet1", &excelize.Table{
		Name:  "Orders",
		Range: "A1:C4",
	}))

	_, err := f.NewSheet("Empty")
	require.NoError(t, err)

	_, err = f.NewSheet("Offset")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Offset", "A2", "Name"))
	require.NoError(t, f.SetCellValue("Offset", "B2", "Total"))
	require.NoError(t, f.SetCellValue("Offset", "A3", "Alice"))
	require.NoError(t, f.SetCellValue("Offset", "B3", 42))

	path := filepath.Join(t.TempDir(), "test.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestInspect(t *testing.T) {
	path := writeTestWorkbook(t)

	info, err := Inspect(path)
	require.NoError(t, err)
	require.Len(t, info.Sheets, 3)

	data := info.Sheets[0]
	assert.Equal(t, "Sheet1", data.Name)
	assert.Equal(t, 4, data.Rows)
	assert.Equal(t, 3, data.Cols)
	assert.Equal(t, 1, data.HeaderRow)
	assert.Equal(t, []string{"ID", "Name", "Qty"}, data.Headers)

	empty := info.Sheets[1]
	assert.Equal(t, "Empty", empty.Name)
	assert.Zero(t, empty.Rows)
	assert.Zero(t, empty.HeaderRow)
	assert.Nil(t, empty.Headers)

	offset := info.Sheets[2]
	assert.Equal(t, 2, offset.HeaderRow)
	assert.Equal(t, []string{"Name", "Total"}, offset.Headers)

	require.Len(t, info.Tables, 1)
	assert.Equal(t, "Orders", info.Tables[0].Name)
	assert.Equal(t, "Sheet1", info.Tables[0].Sheet)
	assert.Equal(t, "A1:C4", info.Tables[0].Range)
}

func TestInspectMissingFile(t *testing.T) {
	_, err := Inspect(filepath.Join(t.TempDir(), "missing.xlsx"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open workbook")
}

func TestInspectRejectsNonWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("this is not a zip archive"), 0644))

	_, err := Inspect(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open workbook")
}

func TestGuessHeader(t *testing.T) {
	tests := []struct {
		name        string
		rows        [][]string
		wantRow     int
		wantHeaders []string
	}{
		{
			name:        "first row",
			rows:        [][]string{{"ID", "Name", "Qty"}, {"1", "Widget", "10"}},
			wantRow:     1,
			wantHeaders: []string{"ID", "Name", "Qty"},
		},
		{
			name:        "second row after blank",
			rows:        [][]string{{}, {"Name", "Total"}},
			wantRow:     2,
			wantHeaders: []string{"Name", "Total"},
		},
		{
			name:    "single cell is not a header",
			rows:    [][]string{{"Title"}, {""}, {""}},
			wantRow: 0,
		},
		{
			name:    "too deep",
			rows:    [][]string{{}, {}, {}, {"ID", "Name"}},
			wantRow: 0,
		},
		{
			name:        "gap filled with column number",
			rows:        [][]string{{"ID", "", "Qty"}},
			wantRow:     1,
			wantHeaders: []string{"ID", "Column2", "Qty"},
		},
		{
			name:        "caps sample size",
			rows:        [][]string{{"A", "B", "C", "D", "E", "F", "G"}},
			wantRow:     1,
			wantHeaders: []string{"A", "B", "C", "D", "E"},
		},
		{
			name:    "empty sheet",
			rows:    nil,
			wantRow: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, headers := guessHeader(tt.rows)
			assert.Equal(t, tt.wantRow, row)
			assert.Equal(t, tt.wantHeaders, headers)
		})
	}
}

func TestSummary(t *testing.T) {
	info := &WorkbookInfo{
		Path: "/tmp/report.xlsx",
		Sheets: []SheetInfo{
			{Name: "Data", Rows: 4, Cols: 3, HeaderRow: 1, Headers: []string{"ID", "Name", "Qty"}},
			{Name: "Blank"},
			{Name: "Extra", Rows: 1, Cols: 1},
		},
		Tables: []TableInfo{{Name: "Orders", Sheet: "Data", Range: "A1:C4"}},
	}

	want := "report.xlsx: 3 worksheets, 1 named table\n" +
		"  Data: 4 rows x 3 columns, headers: ID, Name, Qty\n" +
		"  Blank: empty\n" +
		"  Extra: 1 row x 1 column\n" +
		"  table Orders on Data (A1:C4)"
	assert.Equal(t, want, info.Summary())
}

func TestSummaryFromInspect(t *testing.T) {
	path := writeTestWorkbook(t)
	info, err := Inspect(path)
	require.NoError(t, err)

	summary := info.Summary()
	assert.Contains(t, summary, "test.xlsx: 3 worksheets, 1 named table")
	assert.Contains(t, summary, "headers: ID, Name, Qty")
	assert.Contains(t, summary, "Empty: empty")
	assert.Contains(t, summary, "table Orders on Sheet1 (A1:C4)")
}

func TestOpenLocalMissingFile(t *testing.T) {
	err := OpenLocal(filepath.Join(t.TempDir(), "missing.xlsx"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open file")
}
