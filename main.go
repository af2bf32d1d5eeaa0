//go:build !console
// +build !console

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"excelmanager/logging"
	"excelmanager/storage"
	"excelmanager/ui"
)

const appVersion = "2.0.0"

func main() {
	// Check for command-line arguments
	if len(os.Args) > 1 {
		handleCommandLineArgs()
		return
	}

	// Normal GUI mode
	store := storage.NewManager()
	cfg := logging.DefaultConfig()
	cfg.Dir = filepath.Join(store.ConfigDir(), "logs")

	logger, logErr := logging.Init(cfg)
	defer logger.Shutdown()
	if logErr != nil {
		logger.Warn("file logging unavailable", "error", logErr)
	}

	logger.Info("starting SharePoint Excel Manager", "version", appVersion)
	mainWindow := ui.NewMainWindow(logger)
	mainWindow.ShowAndRun()
	logger.Info("stopped")
}

// handleCommandLineArgs processes command-line arguments
func handleCommandLineArgs() {
	args := os.Args[1:]

	if len(args) == 0 {
		showUsage()
		return
	}

	switch args[0] {
	case "-version", "--version":
		fmt.Printf("SharePoint Excel Manager %s\n", appVersion)
	case "-show-settings", "--show-settings":
		showSettings()
	case "-settings-path", "--settings-path":
		fmt.Println(storage.NewManager().SettingsPath())
	case "-export-settings", "--export-settings":
		if len(args) < 2 {
			fmt.Println("Error: Target file required")
			showUsage()
			return
		}
		exportSettings(args[1])
	case "-reset-settings", "--reset-settings":
		resetSettings()
	case "-help", "--help", "-h", "--h":
		showUsage()
	default:
		fmt.Printf("Unknown option: %s\n", args[0])
		showUsage()
	}
}

// showSettings prints the persisted settings
func showSettings() {
	store := storage.NewManager()
	settings, err := store.LoadSettings()
	if err != nil {
		fmt.Printf("Warning: %v\n", err)
	}

	fmt.Println("Current settings:")
	fmt.Println("=================")
	fmt.Printf("Settings file:  %s\n", store.SettingsPath())
	fmt.Printf("Site URL:       %s\n", orNone(settings.SiteURL))
	fmt.Printf("Folder:         %s\n", orNone(settings.FolderPath))
	fmt.Printf("Last username:  %s\n", orNone(settings.LastUsername))
	fmt.Printf("Auto connect:   %t\n", settings.AutoConnect)
	fmt.Printf("Theme:          %s\n", settings.Theme)
	fmt.Printf("Window size:    %dx%d\n", settings.WindowWidth, settings.WindowHeight)

	if len(settings.RecentConnections) == 0 {
		fmt.Println("Recent connections: none")
		return
	}
	fmt.Println("Recent connections:")
	for i, recent := range settings.RecentConnections {
		folder := recent.FolderPath
		if folder == "" {
			folder = "(library root)"
		}
		fmt.Printf("%d. %s\n", i+1, recent.SiteURL)
		fmt.Printf("   Folder: %s\n", folder)
		fmt.Printf("   Last used: %s\n", recent.LastUsed.Format("2006-01-02 15:04"))
	}
}

// exportSettings writes a settings backup to the given path
func exportSettings(target string) {
	store := storage.NewManager()
	settings, err := store.LoadSettings()
	if err != nil {
		fmt.Printf("Warning: %v\n", err)
	}
	if err := store.ExportSettings(settings, target); err != nil {
		fmt.Printf("Error exporting settings: %v\n", err)
		return
	}
	fmt.Printf("Settings exported to %s\n", target)
}

// resetSettings writes the defaults back to disk
func resetSettings() {
	store := storage.NewManager()
	defaults := store.ResetSettings()
	if err := store.SaveSettings(defaults); err != nil {
		fmt.Printf("Error resetting settings: %v\n", err)
		return
	}
	fmt.Printf("Settings reset to defaults in %s\n", store.SettingsPath())
}

func orNone(value string) string {
	if value == "" {
		return "(not set)"
	}
	return value
}

// showUsage displays command-line usage information
func showUsage() {
	fmt.Println("SharePoint Excel Manager - Command Line Usage")
	fmt.Println("=============================================")
	fmt.Println()
	fmt.Println("GUI Mode (default):")
	fmt.Println("  excelmanager.exe")
	fmt.Println()
	fmt.Println("Command Line Options:")
	fmt.Println("  -version                  Show the application version")
	fmt.Println("  -show-settings            Print the persisted settings")
	fmt.Println("  -settings-path            Print the settings file location")
	fmt.Println("  -export-settings <file>   Write a settings backup")
	fmt.Println("  -reset-settings           Reset all settings to defaults")
	fmt.Println("  -help                     Show this help message")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  excelmanager.exe -show-settings                  # Inspect the settings")
	fmt.Println("  excelmanager.exe -export-settings backup.json    # Back up the settings")
	fmt.Println("  excelmanager.exe -reset-settings                 # Start fresh")
	fmt.Println("  excelmanager.exe -help                           # Show help")
}
