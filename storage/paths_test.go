package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveConfigDirWindows(t *testing.T) {
	appData := t.TempDir()
	t.Setenv("APPDATA", appData)

	dir, fellBack := resolveConfigDir("windows")
	assert.False(t, fellBack)
	assert.Equal(t, filepath.Join(appData, appDirName), dir)
}

func TestResolveConfigDirWindowsWithoutAppData(t *testing.T) {
	home := t.TempDir()
	t.Setenv("APPDATA", "")
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	dir, fellBack := resolveConfigDir("windows")
	assert.False(t, fellBack)
	assert.Equal(t, filepath.Join(home, "AppData", "Roaming", appDirName), dir)
}

func TestResolveConfigDirDarwin(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	dir, fellBack := resolveConfigDir("darwin")
	assert.False(t, fellBack)
	assert.Equal(t, filepath.Join(home, "Library", "Application Support", appDirName), dir)
}

func TestResolveConfigDirXDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	dir, fellBack := resolveConfigDir("linux")
	assert.False(t, fellBack)
	assert.Equal(t, filepath.Join(xdg, appDirName), dir)
}

func TestResolveConfigDirXDGFallsBackToHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	dir, fellBack := resolveConfigDir("linux")
	assert.False(t, fellBack)
	assert.Equal(t, filepath.Join(home, ".config", appDirName), dir)
}

func TestResolveConfigDirLastResort(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "")
	t.Setenv("USERPROFILE", "")

	dir, fellBack := resolveConfigDir("linux")
	assert.True(t, fellBack)
	assert.Equal(t, ".", dir)
}

func TestResolveConfigDirCurrentPlatform(t *testing.T) {
	dir, _ := ResolveConfigDir()
	assert.NotEmpty(t, dir)
}
