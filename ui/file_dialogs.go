package ui

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	fynestorage "fyne.io/fyne/v2/storage"
	"github.com/ncruces/zenity"
)

var (
	workbookPatterns = []string{"*.xlsx", "*.xlsm", "*.xls"}
	settingsPatterns = []string{"*.json"}
)

// isKDE reports whether a KDE session is running, where kdialog blends
// in better than zenity
func isKDE() bool {
	if os.Getenv("KDE_FULL_SESSION") != "" {
		return true
	}
	return strings.Contains(strings.ToLower(os.Getenv("XDG_CURRENT_DESKTOP")), "kde")
}

func startDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

func kdialogFilter(filterName string, patterns []string) string {
	return filterName + " (" + strings.Join(patterns, " ") + ")"
}

// extensionsOf converts glob patterns into the extension list the Fyne
// filter wants
func extensionsOf(patterns []string) []string {
	extensions := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if strings.HasPrefix(pattern, "*.") {
			extensions = append(extensions, pattern[1:])
		}
	}
	return extensions
}

// nativeOpenDialog asks for an existing file, preferring the desktop's
// own dialog (kdialog, zenity) and falling back to the Fyne one.
// An empty path with a nil error means the user cancelled.
func (mw *MainWindow) nativeOpenDialog(title, filterName string, patterns []string) (string, error) {
	if isKDE() {
		if kdialogPath, err := exec.LookPath("kdialog"); err == nil {
			output, err := exec.Command(kdialogPath, "--title", title,
				"--getopenfilename", startDir(), kdialogFilter(filterName, patterns)).Output()
			if err == nil {
				return strings.TrimSpace(string(output)), nil
			}
			// Exit status 1 is cancel
			if exitError, ok := err.(*exec.ExitError); ok && exitError.ExitCode() == 1 {
				return "", nil
			}
			mw.log.Debug("kdialog failed, trying zenity", "error", err)
		}
	}

	filename, err := zenity.SelectFile(
		zenity.Title(title),
		zenity.Filename(startDir()+string(os.PathSeparator)),
		zenity.FileFilters{
			{Name: filterName, Patterns: patterns, CaseFold: true},
			{Name: "All files", Patterns: []string{"*"}, CaseFold: false},
		},
	)
	if err != nil {
		if err == zenity.ErrCanceled {
			return "", nil
		}
		mw.log.Debug("zenity failed, using the fallback dialog", "error", err)
		return mw.fyneOpenDialog(patterns)
	}
	return filename, nil
}

// nativeSaveDialog asks where to store a file, with the same fallback
// chain as nativeOpenDialog
func (mw *MainWindow) nativeSaveDialog(title, suggested, filterName string, patterns []string) (string, error) {
	if isKDE() {
		if kdialogPath, err := exec.LookPath("kdialog"); err == nil {
			output, err := exec.Command(kdialogPath, "--title", title,
				"--getsavefilename", filepath.Join(startDir(), suggested),
				kdialogFilter(filterName, patterns)).Output()
			if err == nil {
				return strings.TrimSpace(string(output)), nil
			}
			if exitError, ok := err.(*exec.ExitError); ok && exitError.ExitCode() == 1 {
				return "", nil
			}
			mw.log.Debug("kdialog failed, trying zenity", "error", err)
		}
	}

	filename, err := zenity.SelectFileSave(
		zenity.Title(title),
		zenity.Filename(filepath.Join(startDir(), suggested)),
		zenity.ConfirmOverwrite(),
		zenity.FileFilters{
			{Name: filterName, Patterns: patterns, CaseFold: true},
			{Name: "All files", Patterns: []string{"*"}, CaseFold: false},
		},
	)
	if err != nil {
		if err == zenity.ErrCanceled {
			return "", nil
		}
		mw.log.Debug("zenity failed, using the fallback dialog", "error", err)
		return mw.fyneSaveDialog(suggested, patterns)
	}
	return filename, nil
}

// fyneOpenDialog is the last resort when no native dialog tool works
func (mw *MainWindow) fyneOpenDialog(patterns []string) (string, error) {
	resultChan := make(chan string, 1)
	errorChan := make(chan error, 1)

	fileDialog := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			errorChan <- err
			return
		}
		if reader == nil {
			resultChan <- ""
			return
		}
		defer reader.Close()
		resultChan <- reader.URI().Path()
	}, mw.window)

	fileDialog.SetFilter(fynestorage.NewExtensionFileFilter(extensionsOf(patterns)))
	if listableURI, err := fynestorage.ListerForURI(fynestorage.NewFileURI(startDir())); err == nil {
		fileDialog.SetLocation(listableURI)
	}
	fileDialog.Resize(fyne.NewSize(800, 600))
	fileDialog.Show()

	select {
	case result := <-resultChan:
		return result, nil
	case err := <-errorChan:
		return "", err
	}
}

func (mw *MainWindow) fyneSaveDialog(suggested string, patterns []string) (string, error) {
	resultChan := make(chan string, 1)
	errorChan := make(chan error, 1)

	fileDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			errorChan <- err
			return
		}
		if writer == nil {
			resultChan <- ""
			return
		}
		path := writer.URI().Path()
		writer.Close()
		// The transfer writes the file itself, the dialog only picks
		// the path
		os.Remove(path)
		resultChan <- path
	}, mw.window)

	fileDialog.SetFileName(suggested)
	fileDialog.SetFilter(fynestorage.NewExtensionFileFilter(extensionsOf(patterns)))
	if listableURI, err := fynestorage.ListerForURI(fynestorage.NewFileURI(startDir())); err == nil {
		fileDialog.SetLocation(listableURI)
	}
	fileDialog.Resize(fyne.NewSize(800, 600))
	fileDialog.Show()

	select {
	case result := <-resultChan:
		return result, nil
	case err := <-errorChan:
		return "", err
	}
}
