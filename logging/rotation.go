package logging

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// rotate removes the oldest log files in dir so that at most maxFiles-1
// remain before a new file is opened. A maxFiles of zero or less keeps
// everything.
func rotate(dir string, maxFiles int) error {
	if maxFiles <= 0 {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	type logFile struct {
		path string
		mod  int64
	}
	var logs []logFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		logs = append(logs, logFile{
			path: filepath.Join(dir, entry.Name()),
			mod:  info.ModTime().UnixNano(),
		})
	}
	if len(logs) < maxFiles {
		return nil
	}

	sort.Slice(logs, func(i, j int) bool { return logs[i].mod < logs[j].mod })

	// Keep room for the file about to be created.
	excess := len(logs) - (maxFiles - 1)
	for i := 0; i < excess; i++ {
		if err := os.Remove(logs[i].path); err != nil {
			return err
		}
	}
	return nil
}
