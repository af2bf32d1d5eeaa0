//go:build console
// +build console

package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"excelmanager/models"
	"excelmanager/storage"
)

// ConsoleApp is a terminal-only settings maintenance tool for machines
// where the GUI cannot run
type ConsoleApp struct {
	storage  *storage.Manager
	settings *models.Settings
}

// NewConsoleApp creates a new console application
func NewConsoleApp() *ConsoleApp {
	return &ConsoleApp{
		storage: storage.NewManager(),
	}
}

// Run starts the console application
func (app *ConsoleApp) Run() {
	app.loadData()

	for {
		app.showMenu()
		choice := app.getUserChoice()
		app.handleChoice(choice)
	}
}

// loadData loads the settings from storage
func (app *ConsoleApp) loadData() {
	var err error

	app.settings, err = app.storage.LoadSettings()
	if err != nil {
		fmt.Printf("Warning: settings could not be loaded: %v\n", err)
	}
	fmt.Printf("Settings file: %s\n", app.storage.SettingsPath())
}

// showMenu displays the main menu
func (app *ConsoleApp) showMenu() {
	fmt.Println("\n=== SharePoint Excel Manager Console ===")
	fmt.Println("1. Show Settings")
	fmt.Println("2. Edit Connection")
	fmt.Println("3. Toggle Auto-Connect")
	fmt.Println("4. Choose Theme")
	fmt.Println("5. List Recent Connections")
	fmt.Println("6. Clear Recent Connections")
	fmt.Println("7. Export Settings")
	fmt.Println("8. Import Settings")
	fmt.Println("9. Reset Settings")
	fmt.Println("10. Exit")
	fmt.Print("Choose an option: ")
}

// getUserChoice gets user input for menu selection
func (app *ConsoleApp) getUserChoice() int {
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)

	choice, err := strconv.Atoi(input)
	if err != nil {
		return 0
	}

	return choice
}

// handleChoice processes the user's menu choice
func (app *ConsoleApp) handleChoice(choice int) {
	switch choice {
	case 1:
		app.showSettings()
	case 2:
		app.editConnection()
	case 3:
		app.toggleAutoConnect()
	case 4:
		app.chooseTheme()
	case 5:
		app.listRecents()
	case 6:
		app.clearRecents()
	case 7:
		app.exportSettings()
	case 8:
		app.importSettings()
	case 9:
		app.resetSettings()
	case 10:
		fmt.Println("Goodbye!")
		os.Exit(0)
	default:
		fmt.Println("Invalid choice. Please try again.")
	}
}

// showSettings displays the current settings
func (app *ConsoleApp) showSettings() {
	fmt.Println("\n=== Settings ===")
	fmt.Printf("Site URL:       %s\n", orNotSet(app.settings.SiteURL))
	fmt.Printf("Folder:         %s\n", orNotSet(app.settings.FolderPath))
	fmt.Printf("Last username:  %s\n", orNotSet(app.settings.LastUsername))
	fmt.Printf("Auto connect:   %t\n", app.settings.AutoConnect)
	fmt.Printf("Theme:          %s\n", app.settings.Theme)
	fmt.Printf("Window size:    %dx%d\n", app.settings.WindowWidth, app.settings.WindowHeight)
	fmt.Printf("Recent entries: %d\n", len(app.settings.RecentConnections))
}

// editConnection edits the site URL and folder path
func (app *ConsoleApp) editConnection() {
	reader := bufio.NewReader(os.Stdin)

	fmt.Printf("Current site URL: %s\n", orNotSet(app.settings.SiteURL))
	fmt.Print("New site URL (press Enter to keep current): ")
	siteURL, _ := reader.ReadString('\n')
	siteURL = strings.TrimSpace(siteURL)
	if siteURL != "" {
		app.settings.SiteURL = strings.Trim(siteURL, `"'`)
	}

	fmt.Printf("Current folder: %s\n", orNotSet(app.settings.FolderPath))
	fmt.Print("New folder path (press Enter to keep current): ")
	folder, _ := reader.ReadString('\n')
	folder = strings.TrimSpace(folder)
	if folder != "" {
		app.settings.FolderPath = strings.Trim(folder, `"'`)
	}

	app.saveSettings()
}

// toggleAutoConnect flips the startup connection flag
func (app *ConsoleApp) toggleAutoConnect() {
	app.settings.AutoConnect = !app.settings.AutoConnect
	fmt.Printf("Auto connect is now %t\n", app.settings.AutoConnect)
	app.saveSettings()
}

// chooseTheme selects the UI theme
func (app *ConsoleApp) chooseTheme() {
	reader := bufio.NewReader(os.Stdin)

	fmt.Printf("Current theme: %s\n", app.settings.Theme)
	fmt.Print("New theme (light, dark or system): ")
	input, _ := reader.ReadString('\n')
	input = strings.ToLower(strings.TrimSpace(input))

	switch input {
	case "light", "dark", "system":
		app.settings.Theme = input
		app.saveSettings()
	case "":
		fmt.Println("Theme unchanged.")
	default:
		fmt.Printf("Unknown theme: %s\n", input)
	}
}

// listRecents displays the recent connections
func (app *ConsoleApp) listRecents() {
	fmt.Println("\n=== Recent Connections ===")
	if len(app.settings.RecentConnections) == 0 {
		fmt.Println("No recent connections.")
		return
	}

	for i, recent := range app.settings.RecentConnections {
		folder := recent.FolderPath
		if folder == "" {
			folder = "(library root)"
		}
		fmt.Printf("%d. %s\n", i+1, recent.SiteURL)
		fmt.Printf("   Folder: %s\n", folder)
		fmt.Printf("   Last used: %s\n", recent.LastUsed.Format("2006-01-02 15:04"))
		fmt.Println()
	}
}

// clearRecents removes all recent connections
func (app *ConsoleApp) clearRecents() {
	if len(app.settings.RecentConnections) == 0 {
		fmt.Println("No recent connections to clear.")
		return
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("Clear %d recent connections? (y/N): ", len(app.settings.RecentConnections))
	confirm, _ := reader.ReadString('\n')
	confirm = strings.TrimSpace(strings.ToLower(confirm))

	if confirm != "y" && confirm != "yes" {
		fmt.Println("Cancelled.")
		return
	}

	app.settings.RecentConnections = nil
	app.saveSettings()
	fmt.Println("Recent connections cleared.")
}

// exportSettings writes a settings backup
func (app *ConsoleApp) exportSettings() {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Enter target file path: ")
	target, _ := reader.ReadString('\n')
	target = strings.Trim(strings.TrimSpace(target), `"'`)
	if target == "" {
		fmt.Println("No target given.")
		return
	}

	if err := app.storage.ExportSettings(app.settings, target); err != nil {
		fmt.Printf("Error exporting settings: %v\n", err)
		return
	}
	fmt.Printf("Settings exported to %s\n", target)
}

// importSettings replaces the settings from a backup file
func (app *ConsoleApp) importSettings() {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Enter backup file path: ")
	source, _ := reader.ReadString('\n')
	source = strings.Trim(strings.TrimSpace(source), `"'`)
	if source == "" {
		fmt.Println("No file given.")
		return
	}

	imported, err := app.storage.ImportSettings(source)
	if err != nil {
		fmt.Printf("Error importing settings: %v\n", err)
		return
	}

	app.settings = imported
	app.saveSettings()
	fmt.Printf("Settings imported from %s\n", source)
}

// resetSettings restores the defaults
func (app *ConsoleApp) resetSettings() {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Reset all settings to defaults? (y/N): ")
	confirm, _ := reader.ReadString('\n')
	confirm = strings.TrimSpace(strings.ToLower(confirm))

	if confirm != "y" && confirm != "yes" {
		fmt.Println("Cancelled.")
		return
	}

	app.settings = app.storage.ResetSettings()
	app.saveSettings()
	fmt.Println("Settings reset to defaults.")
}

// saveSettings saves the settings to storage
func (app *ConsoleApp) saveSettings() {
	err := app.storage.SaveSettings(app.settings)
	if err != nil {
		fmt.Printf("Error saving settings: %v\n", err)
	} else {
		fmt.Println("Settings saved.")
	}
}

func orNotSet(value string) string {
	if value == "" {
		return "(not set)"
	}
	return value
}

func main() {
	fmt.Println("SharePoint Excel Manager Console Version")
	fmt.Println("========================================")

	app := NewConsoleApp()
	app.Run()
}
