package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"excelmanager/auth"
	"excelmanager/excel"
	"excelmanager/logging"
	"excelmanager/models"
	"excelmanager/sharepoint"
	"excelmanager/storage"
)

// MainWindow represents the main application window
type MainWindow struct {
	app    fyne.App
	window fyne.Window

	storage   *storage.Manager
	autosaver *storage.Autosaver
	auth      *auth.Authenticator
	log       logging.Logger

	settings *models.Settings
	loadErr  error

	client *sharepoint.Client
	site   *sharepoint.Site

	files        []models.RemoteFile
	filesMutex   sync.RWMutex // Protects concurrent access to the files slice
	selectedFile int          // Track selected workbook index

	urlEntry     *widget.Entry
	folderEntry  *widget.Entry
	accountLabel *widget.Label
	accountIcon  *canvas.Image
	statusLabel  *StatusLabel
	console      *widget.Entry
	fileList     *widget.List
	recentList   *widget.List
}

// NewMainWindow creates a new main window
func NewMainWindow(log logging.Logger) *MainWindow {
	if log == nil {
		log = logging.Nop()
	}

	myApp := app.New()
	myApp.SetIcon(theme.DocumentIcon())

	window := myApp.NewWindow("SharePoint Excel Manager")

	mw := &MainWindow{
		app:          myApp,
		window:       window,
		storage:      storage.NewManager(),
		log:          log,
		selectedFile: -1,
	}

	mw.auth = auth.NewAuthenticator(mw.storage.ConfigDir(), log)
	mw.loadData()
	mw.autosaver = storage.NewAutosaver(mw.storage.SaveSettings, storage.DefaultAutosaveDelay, func(err error) {
		mw.log.Error("autosave failed", "error", err)
		mw.setStatus(StatusWarning, "Autosave failed: "+err.Error())
	})

	mw.setupUI()
	mw.applyTheme(mw.settings.Theme)
	mw.restoreWindowState()
	mw.window.SetCloseIntercept(mw.handleClose)

	if mw.settings.AutoConnect && strings.TrimSpace(mw.settings.SiteURL) != "" {
		mw.autoConnect()
	}

	return mw
}

// ShowAndRun displays the window and runs the event loop until exit
func (mw *MainWindow) ShowAndRun() {
	mw.window.ShowAndRun()
}

// loadData loads the persisted settings, falling back to defaults when
// the document cannot be used
func (mw *MainWindow) loadData() {
	settings, err := mw.storage.LoadSettings()
	if err != nil {
		mw.log.Warn("settings could not be loaded, continuing with defaults", "error", err)
		mw.loadErr = err
	}
	mw.settings = settings

	if mw.storage.FellBack() {
		mw.log.Warn("no per-user config directory, settings live in the working directory",
			"path", mw.storage.SettingsPath())
	}
}

// setupUI initializes the user interface
func (mw *MainWindow) setupUI() {
	toolbar := mw.createToolbar()

	mw.urlEntry = widget.NewEntry()
	mw.urlEntry.SetPlaceHolder("https://contoso.sharepoint.com/sites/TeamA")
	mw.urlEntry.Text = mw.settings.SiteURL

	mw.folderEntry = widget.NewEntry()
	mw.folderEntry.SetPlaceHolder("Shared Documents/Reports (optional)")
	mw.folderEntry.Text = mw.settings.FolderPath

	// Handlers attach after the initial values go in so that restoring
	// state does not arm the autosaver
	mw.urlEntry.OnChanged = func(value string) {
		mw.settings.SiteURL = strings.TrimSpace(value)
		mw.site = nil
		mw.autosaver.NotifyEdit(mw.settings)
	}
	mw.folderEntry.OnChanged = func(value string) {
		mw.settings.FolderPath = strings.TrimSpace(value)
		mw.autosaver.NotifyEdit(mw.settings)
	}

	mw.accountIcon = canvas.NewImageFromResource(theme.AccountIcon())
	mw.accountIcon.SetMinSize(fyne.NewSize(24, 24))
	mw.accountIcon.FillMode = canvas.ImageFillContain
	mw.accountLabel = widget.NewLabel("Not signed in")
	accountBox := container.NewHBox(mw.accountIcon, mw.accountLabel)

	connectionForm := widget.NewForm(
		widget.NewFormItem("Site URL", mw.urlEntry),
		widget.NewFormItem("Folder", mw.folderEntry),
	)

	mw.statusLabel = NewStatusLabel()
	mw.setStatus(StatusNeutral, "Ready")

	mw.recentList = widget.NewList(
		func() int {
			return len(mw.settings.RecentConnections)
		},
		func() fyne.CanvasObject {
			siteLabel := widget.NewLabel("Site")
			siteLabel.TextStyle = fyne.TextStyle{Bold: true}
			folderLabel := widget.NewLabel("Folder")
			return container.NewVBox(siteLabel, folderLabel)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if int(id) >= len(mw.settings.RecentConnections) {
				return
			}
			recent := mw.settings.RecentConnections[id]

			box := obj.(*fyne.Container)
			if len(box.Objects) < 2 {
				return
			}
			if siteLabel, ok := box.Objects[0].(*widget.Label); ok {
				siteLabel.SetText(truncateText(displaySite(recent.SiteURL), 32))
			}
			if folderLabel, ok := box.Objects[1].(*widget.Label); ok {
				folder := recent.FolderPath
				if folder == "" {
					folder = "(library root)"
				}
				folderLabel.SetText(truncateText(folder, 32))
			}
		},
	)
	mw.recentList.OnSelected = func(id widget.ListItemID) {
		mw.useRecentConnection(int(id))
	}

	mw.fileList = widget.NewList(
		func() int {
			mw.filesMutex.RLock()
			defer mw.filesMutex.RUnlock()
			return len(mw.files)
		},
		func() fyne.CanvasObject {
			icon := canvas.NewImageFromResource(theme.FileIcon())
			icon.SetMinSize(fyne.NewSize(24, 24))
			icon.FillMode = canvas.ImageFillContain
			nameLabel := widget.NewLabel("Workbook name")
			nameLabel.TextStyle = fyne.TextStyle{Bold: true}
			nameContainer := container.NewHBox(icon, nameLabel)

			sizeLabel := widget.NewLabel("Size")
			modifiedLabel := widget.NewLabel("Modified")
			downloadBtn := widget.NewButton("Download", nil)
			rightContainer := container.NewHBox(sizeLabel, modifiedLabel, downloadBtn)

			return container.NewBorder(nil, nil, nil, rightContainer, nameContainer)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			mw.filesMutex.RLock()
			if int(id) >= len(mw.files) {
				mw.filesMutex.RUnlock()
				return
			}
			file := mw.files[id]
			mw.filesMutex.RUnlock()

			// Border structure: [center, right]
			borderContainer := obj.(*fyne.Container)
			if len(borderContainer.Objects) < 2 {
				return
			}
			if nameContainer, ok := borderContainer.Objects[0].(*fyne.Container); ok && len(nameContainer.Objects) >= 2 {
				if nameLabel, ok := nameContainer.Objects[1].(*widget.Label); ok {
					nameLabel.SetText(truncateText(file.Name, 48))
				}
			}
			if rightContainer, ok := borderContainer.Objects[1].(*fyne.Container); ok && len(rightContainer.Objects) >= 3 {
				if sizeLabel, ok := rightContainer.Objects[0].(*widget.Label); ok {
					sizeLabel.SetText(file.DisplaySize())
				}
				if modifiedLabel, ok := rightContainer.Objects[1].(*widget.Label); ok {
					modifiedLabel.SetText(file.DisplayModified())
				}
				if downloadBtn, ok := rightContainer.Objects[2].(*widget.Button); ok {
					downloadBtn.OnTapped = func() {
						mw.downloadFile(file)
					}
				}
			}
		},
	)
	mw.fileList.OnSelected = func(id widget.ListItemID) {
		mw.selectedFile = int(id)
	}

	mw.console = widget.NewMultiLineEntry()
	mw.console.Wrapping = fyne.TextWrapWord
	mw.console.SetPlaceHolder("Activity log")
	mw.console.SetMinRowsVisible(5)

	recentsPane := container.NewBorder(
		widget.NewLabelWithStyle("Recent Connections", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		nil, nil, nil, mw.recentList)
	filesPane := container.NewBorder(
		widget.NewLabelWithStyle("Excel Workbooks", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		nil, nil, nil, mw.fileList)

	split := container.NewHSplit(recentsPane, filesPane)
	split.SetOffset(0.3)

	top := container.NewVBox(
		toolbar,
		container.NewBorder(nil, nil, nil, accountBox, connectionForm),
		mw.statusLabel,
	)

	content := container.NewBorder(top, mw.console, nil, nil, split)
	mw.window.SetContent(content)

	if mw.loadErr != nil {
		mw.setStatus(StatusWarning, "Settings could not be read, defaults are in use")
		mw.appendConsole("Settings problem: %v", mw.loadErr)
	}
}

// createToolbar creates the application toolbar
func (mw *MainWindow) createToolbar() *widget.Toolbar {
	return widget.NewToolbar(
		widget.NewToolbarAction(theme.LoginIcon(), func() {
			mw.signIn()
		}),
		widget.NewToolbarAction(theme.LogoutIcon(), func() {
			mw.signOut()
		}),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ConfirmIcon(), func() {
			mw.testConnection()
		}),
		widget.NewToolbarAction(theme.ViewRefreshIcon(), func() {
			mw.browseFiles()
		}),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DownloadIcon(), func() {
			mw.downloadSelectedFile()
		}),
		widget.NewToolbarAction(theme.UploadIcon(), func() {
			mw.uploadWorkbook()
		}),
		widget.NewToolbarAction(theme.InfoIcon(), func() {
			mw.inspectSelectedFile()
		}),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), func() {
			mw.saveSettingsNow()
		}),
		widget.NewToolbarAction(theme.SettingsIcon(), func() {
			mw.showSettings()
		}),
	)
}

func (mw *MainWindow) setStatus(level StatusLevel, text string) {
	mw.statusLabel.SetStatus(level, text)
}

// appendConsole adds a timestamped line to the activity log
func (mw *MainWindow) appendConsole(format string, args ...interface{}) {
	line := fmt.Sprintf("%s  %s\n", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
	text := mw.console.Text + line
	mw.console.SetText(text)
	mw.console.CursorRow = strings.Count(text, "\n")
	mw.console.Refresh()
}

// reportError logs the error, writes it to the activity log and raises
// the status line. Azure AD codes come back as actionable guidance.
func (mw *MainWindow) reportError(heading string, err error) {
	message := sharepoint.FriendlyAuthError(err)
	mw.log.Error(strings.ToLower(heading), "error", err)
	mw.setStatus(StatusError, heading+": "+message)
	mw.appendConsole("%s: %s", heading, message)
}

// requireSignIn reports whether a session is active, prompting when not
func (mw *MainWindow) requireSignIn() bool {
	if mw.client != nil {
		return true
	}
	mw.setStatus(StatusWarning, "Sign in first")
	mw.signIn()
	return false
}

// resolveSite returns the cached site or resolves it from the form
func (mw *MainWindow) resolveSite(ctx context.Context) (*sharepoint.Site, error) {
	if mw.site != nil {
		return mw.site, nil
	}
	siteURL := strings.TrimSpace(mw.settings.SiteURL)
	if siteURL == "" {
		return nil, fmt.Errorf("no site URL configured")
	}
	site, err := mw.client.ResolveSite(ctx, siteURL)
	if err != nil {
		return nil, err
	}
	mw.site = site
	return site, nil
}

// recordConnection upserts the current form values into the recents list
func (mw *MainWindow) recordConnection() {
	mw.settings.RecordConnection(strings.TrimSpace(mw.urlEntry.Text), strings.TrimSpace(mw.folderEntry.Text))
	mw.autosaver.NotifyEdit(mw.settings)
	mw.recentList.Refresh()
}

// useRecentConnection copies a recent entry back into the form
func (mw *MainWindow) useRecentConnection(index int) {
	if index < 0 || index >= len(mw.settings.RecentConnections) {
		return
	}
	recent := mw.settings.RecentConnections[index]

	// SetText funnels through OnChanged, which updates the record and
	// arms the autosaver
	mw.urlEntry.SetText(recent.SiteURL)
	mw.folderEntry.SetText(recent.FolderPath)
	mw.settings.RecordConnection(recent.SiteURL, recent.FolderPath)
	mw.autosaver.NotifyEdit(mw.settings)

	mw.recentList.UnselectAll()
	mw.recentList.Refresh()
	mw.setStatus(StatusNeutral, "Loaded recent connection")
}

// testConnection resolves the site in the form and reports the outcome
func (mw *MainWindow) testConnection() {
	if !mw.requireSignIn() {
		return
	}
	siteURL := strings.TrimSpace(mw.urlEntry.Text)
	if siteURL == "" {
		mw.setStatus(StatusWarning, "Enter a site URL first")
		return
	}

	// An explicit test always re-resolves
	mw.site = nil
	mw.setStatus(StatusWorking, "Connecting to "+siteURL+"...")

	progress := dialog.NewProgressInfinite("Testing Connection", "Contacting "+siteURL, mw.window)
	progress.Show()

	go func() {
		defer progress.Hide()
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		site, err := mw.resolveSite(ctx)
		if err != nil {
			mw.reportError("Connection failed", err)
			return
		}

		mw.recordConnection()
		mw.setStatus(StatusOK, "Connected to "+site.DisplayName)
		mw.appendConsole("Connected to %s (%s)", site.DisplayName, site.WebURL)
	}()
}

// browseFiles lists the Excel workbooks in the configured folder
func (mw *MainWindow) browseFiles() {
	if !mw.requireSignIn() {
		return
	}
	if strings.TrimSpace(mw.urlEntry.Text) == "" {
		mw.setStatus(StatusWarning, "Enter a site URL first")
		return
	}

	folder := strings.TrimSpace(mw.folderEntry.Text)
	mw.setStatus(StatusWorking, "Loading workbooks...")

	progress := dialog.NewProgressInfinite("Browsing", "Listing Excel workbooks...", mw.window)
	progress.Show()

	go func() {
		defer progress.Hide()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		site, err := mw.resolveSite(ctx)
		if err != nil {
			mw.reportError("Connection failed", err)
			return
		}

		files, err := mw.client.ListWorkbooks(ctx, site, folder)
		if err != nil {
			mw.reportError("Listing failed", err)
			return
		}

		mw.filesMutex.Lock()
		mw.files = files
		mw.filesMutex.Unlock()
		mw.selectedFile = -1
		mw.fileList.UnselectAll()
		mw.fileList.Refresh()

		mw.recordConnection()
		if len(files) == 0 {
			mw.setStatus(StatusWarning, "No Excel workbooks in this folder")
		} else {
			mw.setStatus(StatusOK, fmt.Sprintf("Found %d Excel workbooks", len(files)))
		}
		mw.appendConsole("Listed %d workbooks on %s", len(files), site.DisplayName)
	}()
}

// selectedFileRecord returns a copy of the selected list entry
func (mw *MainWindow) selectedFileRecord() (models.RemoteFile, bool) {
	mw.filesMutex.RLock()
	defer mw.filesMutex.RUnlock()
	if mw.selectedFile < 0 || mw.selectedFile >= len(mw.files) {
		return models.RemoteFile{}, false
	}
	return mw.files[mw.selectedFile], true
}

func (mw *MainWindow) downloadSelectedFile() {
	file, ok := mw.selectedFileRecord()
	if !ok {
		dialog.ShowInformation("No Workbook Selected", "Please select a workbook to download.", mw.window)
		return
	}
	mw.downloadFile(file)
}

// downloadFile asks for a target path and transfers the workbook
func (mw *MainWindow) downloadFile(file models.RemoteFile) {
	if !mw.requireSignIn() {
		return
	}

	target, err := mw.nativeSaveDialog("Save Workbook", file.Name, "Excel workbooks", workbookPatterns)
	if err != nil {
		dialog.ShowError(err, mw.window)
		return
	}
	if target == "" {
		return
	}

	progress := dialog.NewProgressInfinite("Downloading", "Downloading "+file.Name+"...", mw.window)
	progress.Show()

	go func() {
		defer progress.Hide()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		written, err := mw.saveRemoteFile(ctx, file, target)
		if err != nil {
			mw.reportError("Download failed", err)
			return
		}

		mw.setStatus(StatusOK, "Downloaded "+file.Name)
		mw.appendConsole("Downloaded %s (%d bytes) to %s", file.Name, written, target)

		if info, err := excel.Inspect(target); err == nil {
			mw.appendConsole("%s", info.Summary())
		} else {
			mw.log.Warn("downloaded workbook could not be inspected", "error", err)
		}

		dialog.ShowConfirm("Download Complete",
			fmt.Sprintf("Saved %s.\n\nOpen it now?", file.Name),
			func(confirm bool) {
				if !confirm {
					return
				}
				if err := excel.OpenLocal(target); err != nil {
					dialog.ShowError(err, mw.window)
				}
			}, mw.window)
	}()
}

// saveRemoteFile downloads into a temp file next to the target and
// renames it into place once complete, so an aborted transfer leaves
// nothing half written
func (mw *MainWindow) saveRemoteFile(ctx context.Context, file models.RemoteFile, target string) (int64, error) {
	site, err := mw.resolveSite(ctx)
	if err != nil {
		return 0, err
	}

	tmp := target + ".partial"
	out, err := os.Create(tmp)
	if err != nil {
		return 0, err
	}

	written, err := mw.client.Download(ctx, site, file.ID, out)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp)
		return written, err
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return written, err
	}
	return written, nil
}

// uploadWorkbook picks a local workbook and uploads it to the folder in
// the form
func (mw *MainWindow) uploadWorkbook() {
	if !mw.requireSignIn() {
		return
	}
	if strings.TrimSpace(mw.urlEntry.Text) == "" {
		mw.setStatus(StatusWarning, "Enter a site URL first")
		return
	}

	source, err := mw.nativeOpenDialog("Select Workbook", "Excel workbooks", workbookPatterns)
	if err != nil {
		dialog.ShowError(err, mw.window)
		return
	}
	if source == "" {
		return
	}

	name := filepath.Base(source)
	if !models.IsWorkbookName(name) {
		dialog.ShowError(fmt.Errorf("%s is not an Excel workbook", name), mw.window)
		return
	}
	folder := strings.TrimSpace(mw.folderEntry.Text)

	targetText := "the document library root"
	if folder != "" {
		targetText = "'" + folder + "'"
	}
	dialog.ShowConfirm("Upload Workbook",
		fmt.Sprintf("Upload '%s' to %s?\n\nAn existing file with the same name will be replaced.", name, targetText),
		func(confirm bool) {
			if !confirm {
				return
			}
			mw.runUpload(source, folder, name)
		}, mw.window)
}

func (mw *MainWindow) runUpload(source, folder, name string) {
	progress := dialog.NewProgressInfinite("Uploading", "Uploading "+name+"...", mw.window)
	progress.Show()

	go func() {
		defer progress.Hide()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		site, err := mw.resolveSite(ctx)
		if err != nil {
			mw.reportError("Upload failed", err)
			return
		}

		in, err := os.Open(source)
		if err != nil {
			mw.reportError("Upload failed", err)
			return
		}
		defer in.Close()

		stat, err := in.Stat()
		if err != nil {
			mw.reportError("Upload failed", err)
			return
		}

		uploaded, err := mw.client.Upload(ctx, site, folder, name, in, stat.Size())
		if err != nil {
			mw.reportError("Upload failed", err)
			return
		}

		mw.setStatus(StatusOK, "Uploaded "+uploaded.Name)
		mw.appendConsole("Uploaded %s (%s)", uploaded.Name, uploaded.DisplaySize())

		// Refresh the list quietly so the new file shows up
		files, err := mw.client.ListWorkbooks(ctx, site, folder)
		if err != nil {
			mw.log.Warn("could not refresh the workbook list", "error", err)
			return
		}
		mw.filesMutex.Lock()
		mw.files = files
		mw.filesMutex.Unlock()
		mw.fileList.Refresh()
	}()
}

// inspectSelectedFile downloads the selection to a scratch directory and
// summarizes its sheets and tables
func (mw *MainWindow) inspectSelectedFile() {
	file, ok := mw.selectedFileRecord()
	if !ok {
		dialog.ShowInformation("No Workbook Selected", "Please select a workbook to inspect.", mw.window)
		return
	}
	if !mw.requireSignIn() {
		return
	}

	progress := dialog.NewProgressInfinite("Inspecting", "Fetching "+file.Name+"...", mw.window)
	progress.Show()

	go func() {
		defer progress.Hide()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		tmpDir, err := os.MkdirTemp("", "excelmanager_")
		if err != nil {
			mw.reportError("Inspection failed", err)
			return
		}
		defer os.RemoveAll(tmpDir)

		target := filepath.Join(tmpDir, file.Name)
		if _, err := mw.saveRemoteFile(ctx, file, target); err != nil {
			mw.reportError("Inspection failed", err)
			return
		}

		info, err := excel.Inspect(target)
		if err != nil {
			mw.reportError("Inspection failed", err)
			return
		}

		summary := info.Summary()
		mw.appendConsole("%s", summary)
		mw.setStatus(StatusOK, "Inspected "+file.Name)
		dialog.ShowInformation("Workbook Contents", summary, mw.window)
	}()
}

// saveSettingsNow forces a synchronous save of the current settings
func (mw *MainWindow) saveSettingsNow() {
	if err := mw.autosaver.Flush(mw.settings); err != nil {
		mw.reportError("Save failed", err)
		return
	}
	mw.setStatus(StatusOK, "Settings saved")
}

// showSettings shows the application settings dialog
func (mw *MainWindow) showSettings() {
	autoConnectCheck := widget.NewCheck("Connect automatically at startup", nil)
	autoConnectCheck.SetChecked(mw.settings.AutoConnect)

	themeSelect := widget.NewSelect([]string{"system", "light", "dark"}, nil)
	themeSelect.SetSelected(mw.settings.Theme)

	exportBtn := widget.NewButton("Export...", func() {
		mw.exportSettings()
	})
	importBtn := widget.NewButton("Import...", func() {
		mw.importSettings()
	})
	resetBtn := widget.NewButton("Reset to Defaults", func() {
		mw.resetSettings()
	})

	settingsForm := dialog.NewForm("Settings", "Save", "Cancel",
		[]*widget.FormItem{
			widget.NewFormItem("", autoConnectCheck),
			widget.NewFormItem("Theme", themeSelect),
			widget.NewFormItem("Backup", container.NewHBox(exportBtn, importBtn)),
			widget.NewFormItem("", resetBtn),
		},
		func(confirm bool) {
			if !confirm {
				return
			}
			mw.settings.AutoConnect = autoConnectCheck.Checked
			if themeSelect.Selected != "" && themeSelect.Selected != mw.settings.Theme {
				mw.settings.Theme = themeSelect.Selected
				mw.applyTheme(mw.settings.Theme)
			}
			mw.autosaver.NotifyEdit(mw.settings)
		},
		mw.window)

	settingsForm.Resize(fyne.NewSize(420, 280))
	settingsForm.Show()
}

func (mw *MainWindow) applyTheme(name string) {
	switch name {
	case "light":
		mw.app.Settings().SetTheme(theme.LightTheme())
	case "dark":
		mw.app.Settings().SetTheme(theme.DarkTheme())
	default:
		mw.app.Settings().SetTheme(theme.DefaultTheme())
	}
}

func (mw *MainWindow) exportSettings() {
	target, err := mw.nativeSaveDialog("Export Settings", "excelmanager-settings.json", "JSON documents", settingsPatterns)
	if err != nil {
		dialog.ShowError(err, mw.window)
		return
	}
	if target == "" {
		return
	}
	if err := mw.storage.ExportSettings(mw.settings, target); err != nil {
		mw.reportError("Export failed", err)
		return
	}
	mw.setStatus(StatusOK, "Settings exported")
	mw.appendConsole("Exported settings to %s", target)
}

func (mw *MainWindow) importSettings() {
	source, err := mw.nativeOpenDialog("Import Settings", "JSON documents", settingsPatterns)
	if err != nil {
		dialog.ShowError(err, mw.window)
		return
	}
	if source == "" {
		return
	}
	imported, err := mw.storage.ImportSettings(source)
	if err != nil {
		mw.reportError("Import failed", err)
		return
	}

	mw.adoptSettings(imported)
	mw.setStatus(StatusOK, "Settings imported")
	mw.appendConsole("Imported settings from %s", source)
}

func (mw *MainWindow) resetSettings() {
	dialog.ShowConfirm("Reset Settings",
		"Reset all settings to defaults?\n\nRecent connections will be cleared.",
		func(confirm bool) {
			if !confirm {
				return
			}
			mw.adoptSettings(mw.storage.ResetSettings())
			mw.setStatus(StatusNeutral, "Settings reset to defaults")
		}, mw.window)
}

// adoptSettings replaces the live record and refreshes every widget
// bound to it
func (mw *MainWindow) adoptSettings(settings *models.Settings) {
	mw.settings = settings
	mw.site = nil
	mw.urlEntry.SetText(settings.SiteURL)
	mw.folderEntry.SetText(settings.FolderPath)
	mw.applyTheme(settings.Theme)
	mw.recentList.Refresh()
	mw.autosaver.NotifyEdit(mw.settings)
}

// restoreWindowState applies the persisted window geometry
func (mw *MainWindow) restoreWindowState() {
	width, height := mw.settings.WindowWidth, mw.settings.WindowHeight
	if width <= 0 || height <= 0 {
		width, height = 900, 640
	}
	mw.window.Resize(fyne.NewSize(float32(width), float32(height)))
	// The window origin is persisted for other frontends, the toolkit
	// offers no way to reposition a window, so only the size comes back
	mw.window.CenterOnScreen()
}

// handleClose records the window geometry and flushes settings before
// the window goes away
func (mw *MainWindow) handleClose() {
	size := mw.window.Canvas().Size()
	mw.settings.SetWindowSize(int(size.Width), int(size.Height))

	if err := mw.autosaver.Flush(mw.settings); err != nil {
		mw.log.Error("final settings save failed", "error", err)
	}
	if err := mw.autosaver.Close(); err != nil {
		mw.log.Error("autosave shutdown failed", "error", err)
	}
	mw.window.Close()
}

func displaySite(siteURL string) string {
	trimmed := strings.TrimPrefix(siteURL, "https://")
	return strings.TrimPrefix(trimmed, "http://")
}

// truncateText truncates text to a maximum length with ellipsis
func truncateText(text string, maxLength int) string {
	if len(text) <= maxLength {
		return text
	}
	if maxLength <= 3 {
		return text[:maxLength]
	}
	return text[:maxLength-3] + "..."
}
