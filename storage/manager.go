package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"excelmanager/models"
)

// Manager handles settings persistence. It owns the durable path and the
// read/validate/write cycle; the in-memory record itself belongs to the
// caller.
type Manager struct {
	configDir string
	fellBack  bool
}

// NewManager creates a storage manager rooted at the platform
// configuration directory.
func NewManager() *Manager {
	dir, fellBack := ResolveConfigDir()
	return &Manager{configDir: dir, fellBack: fellBack}
}

// NewManagerAt creates a storage manager rooted at an explicit directory.
// Used by the -settings-path flag and the console build.
func NewManagerAt(dir string) *Manager {
	return &Manager{configDir: dir}
}

// ConfigDir returns the directory holding the settings document.
func (m *Manager) ConfigDir() string {
	return m.configDir
}

// SettingsPath returns the full path of the settings document.
func (m *Manager) SettingsPath() string {
	return filepath.Join(m.configDir, settingsFileName)
}

// FellBack reports whether path resolution fell back to the working
// directory. Callers surface this as a warning, never an error.
func (m *Manager) FellBack() bool {
	return m.fellBack
}

// LoadSettings loads the settings from disk. A missing file is a fresh
// install and yields defaults with no error. A corrupt or unreadable
// file also yields usable defaults, plus an error describing what was
// wrong so the caller can warn; the app always proceeds.
func (m *Manager) LoadSettings() (*models.Settings, error) {
	data, err := os.ReadFile(m.SettingsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return models.DefaultSettings(), nil
		}
		return models.DefaultSettings(), fmt.Errorf("%w: read %s: %v", ErrIO, m.SettingsPath(), err)
	}

	settings, err := Decode(data)
	if err != nil {
		return models.DefaultSettings(), err
	}
	return settings, nil
}

// SaveSettings validates and persists the settings. The write is atomic:
// the document is written to a temporary file in the same directory and
// renamed over the target, so a crash mid-write never corrupts the
// previous durable copy. Validation failures leave the file untouched.
func (m *Manager) SaveSettings(settings *models.Settings) error {
	if err := Validate(settings); err != nil {
		return err
	}
	settings.TruncateRecents()

	data, err := Encode(settings)
	if err != nil {
		return err
	}
	return m.writeAtomic(data)
}

func (m *Manager) writeAtomic(data []byte) error {
	if err := os.MkdirAll(m.configDir, 0755); err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrIO, m.configDir, err)
	}

	target := m.SettingsPath()
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrIO, tmp, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: replace %s: %v", ErrIO, target, err)
	}
	return nil
}

// ResetSettings returns a fresh default record. Nothing is persisted
// until SaveSettings is called.
func (m *Manager) ResetSettings() *models.Settings {
	return models.DefaultSettings()
}

// ExportSettings writes the live record to a caller-chosen path, without
// touching the canonical settings document.
func (m *Manager) ExportSettings(settings *models.Settings, dst string) error {
	if err := Validate(settings); err != nil {
		return err
	}
	data, err := Encode(settings)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrIO, dst, err)
	}
	return nil
}

// ImportSettings reads, decodes, and validates a settings document from
// an external path. The result is returned for the caller to adopt and
// save; the canonical document is not modified here.
func (m *Manager) ImportSettings(src string) (*models.Settings, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrIO, src, err)
	}
	settings, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if err := Validate(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// Validate enforces the record's save-time rules: bounded string fields,
// non-negative window dimensions, and a known theme. The recents bound
// is not validated here; SaveSettings truncates instead of erroring.
func Validate(settings *models.Settings) error {
	if len(settings.SiteURL) > models.MaxFieldLength {
		return &ValidationError{Field: "site_url", Reason: "exceeds maximum length"}
	}
	if len(settings.FolderPath) > models.MaxFieldLength {
		return &ValidationError{Field: "folder_path", Reason: "exceeds maximum length"}
	}
	if settings.WindowWidth < 0 {
		return &ValidationError{Field: "window_width", Reason: "must not be negative"}
	}
	if settings.WindowHeight < 0 {
		return &ValidationError{Field: "window_height", Reason: "must not be negative"}
	}
	switch settings.Theme {
	case "light", "dark", "system":
	default:
		return &ValidationError{Field: "theme", Reason: fmt.Sprintf("unknown theme %q", settings.Theme)}
	}
	return nil
}
