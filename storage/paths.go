package storage

import (
	"os"
	"path/filepath"
	"runtime"
)

// appDirName keys the per-user configuration directory on every platform.
const appDirName = "SharePointExcelManager"

const settingsFileName = "settings.json"

// ResolveConfigDir returns the per-user configuration directory for this
// application: %APPDATA% on Windows, ~/Library/Application Support on
// macOS, $XDG_CONFIG_HOME or ~/.config elsewhere. When none of those can
// be determined it falls back to the current working directory and
// reports that through fellBack so callers can log a warning.
func ResolveConfigDir() (dir string, fellBack bool) {
	return resolveConfigDir(runtime.GOOS)
}

func resolveConfigDir(goos string) (string, bool) {
	switch goos {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appDirName), false
		}
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			return filepath.Join(home, "AppData", "Roaming", appDirName), false
		}
	case "darwin":
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			return filepath.Join(home, "Library", "Application Support", appDirName), false
		}
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appDirName), false
		}
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			return filepath.Join(home, ".config", appDirName), false
		}
	}
	return ".", true
}
