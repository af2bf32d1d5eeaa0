// Package excel inspects Excel workbooks without needing Excel installed.
package excel

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	// headerScanRows is how many leading rows are considered as header
	// candidates.
	headerScanRows = 3
	// headerScanCols is how many leading columns count toward the
	// non-empty threshold.
	headerScanCols = 10
	// sampleHeaders caps how many header names are kept per sheet.
	sampleHeaders = 5
)

// SheetInfo describes one worksheet.
type SheetInfo struct {
	Name string
	// Rows and Cols span the used range, header included.
	Rows int
	Cols int
	// HeaderRow is the 1-based detected header row, 0 when none.
	HeaderRow int
	// Headers holds up to sampleHeaders column names from the header row.
	Headers []string
}

// TableInfo describes a named table.
type TableInfo struct {
	Name  string
	Sheet string
	Range string
}

// WorkbookInfo is the result of inspecting a workbook file.
type WorkbookInfo struct {
	Path   string
	Sheets []SheetInfo
	Tables []TableInfo
}

// Inspect opens the workbook at path and reports its worksheets, detected
// header rows and named tables.
func Inspect(path string) (*WorkbookInfo, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	info := &WorkbookInfo{Path: path}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		sheet := SheetInfo{Name: name, Rows: len(rows)}
		for _, row := range rows {
			if len(row) > sheet.Cols {
				sheet.Cols = len(row)
			}
		}
		sheet.HeaderRow, sheet.Headers = guessHeader(rows)
		info.Sheets = append(info.Sheets, sheet)

		tables, err := f.GetTables(name)
		if err != nil {
			return nil, fmt.Errorf("read tables of %q: %w", name, err)
		}
		for _, table := range tables {
			info.Tables = append(info.Tables, TableInfo{
				Name:  table.Name,
				Sheet: name,
				Range: table.Range,
			})
		}
	}
	return info, nil
}

// guessHeader scans the first headerScanRows rows for one that looks like
// a header: at least two non-empty cells among the leading columns. It
// returns the 1-based row number and up to sampleHeaders column names,
// filling gaps with "ColumnN".
func guessHeader(rows [][]string) (int, []string) {
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		row := rows[i]
		filled := 0
		for j := 0; j < len(row) && j < headerScanCols; j++ {
			if strings.TrimSpace(row[j]) != "" {
				filled++
			}
		}
		if filled < 2 {
			continue
		}
		headers := make([]string, 0, sampleHeaders)
		for j := 0; j < len(row) && j < sampleHeaders; j++ {
			cell := strings.TrimSpace(row[j])
			if cell == "" {
				cell = fmt.Sprintf("Column%d", j+1)
			}
			headers = append(headers, cell)
		}
		return i + 1, headers
	}
	return 0, nil
}

// Summary renders the inspection as indented text for the activity log.
func (w *WorkbookInfo) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s, %s\n", filepath.Base(w.Path),
		plural(len(w.Sheets), "worksheet"), plural(len(w.Tables), "named table"))
	for _, s := range w.Sheets {
		if s.Rows == 0 {
			fmt.Fprintf(&b, "  %s: empty\n", s.Name)
			continue
		}
		fmt.Fprintf(&b, "  %s: %s x %s", s.Name, plural(s.Rows, "row"), plural(s.Cols, "column"))
		if len(s.Headers) > 0 {
			fmt.Fprintf(&b, ", headers: %s", strings.Join(s.Headers, ", "))
		}
		b.WriteByte('\n')
	}
	for _, t := range w.Tables {
		fmt.Fprintf(&b, "  table %s on %s (%s)\n", t.Name, t.Sheet, t.Range)
	}
	return strings.TrimRight(b.String(), "\n")
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
