package models

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// RemoteFile represents a workbook in a remote document library.
type RemoteFile struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	WebURL     string    `json:"web_url"`
	Size       int64     `json:"size"`
	Modified   time.Time `json:"modified"`
	ModifiedBy string    `json:"modified_by"`
}

// workbookExtensions lists the spreadsheet types the app manages.
var workbookExtensions = []string{".xlsx", ".xlsm", ".xls"}

// IsWorkbookName reports whether a filename looks like an Excel workbook.
func IsWorkbookName(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, e := range workbookExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// DisplaySize renders the file size for list rows.
func (f RemoteFile) DisplaySize() string {
	const unit = 1024
	if f.Size < unit {
		return fmt.Sprintf("%d B", f.Size)
	}
	div, exp := int64(unit), 0
	for n := f.Size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(f.Size)/float64(div), "KMGT"[exp])
}

// DisplayModified renders the modified timestamp for list rows.
func (f RemoteFile) DisplayModified() string {
	if f.Modified.IsZero() {
		return "unknown"
	}
	return f.Modified.Local().Format("2006-01-02 15:04")
}
