package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"excelmanager/auth"
	"excelmanager/sharepoint"
)

// signIn lets the user pick between the browser and device code flows
func (mw *MainWindow) signIn() {
	if mw.auth.SignedIn() {
		account := mw.auth.CurrentAccount()
		name := "this account"
		if account != nil && account.Username != "" {
			name = account.Username
		}
		dialog.ShowInformation("Already Signed In",
			"You are already signed in as "+name+".\nSign out first to switch accounts.", mw.window)
		return
	}

	var chooser dialog.Dialog

	browserBtn := widget.NewButtonWithIcon("Sign in with a browser", theme.ComputerIcon(), func() {
		chooser.Hide()
		mw.signInInteractive()
	})
	deviceBtn := widget.NewButtonWithIcon("Sign in with a device code", theme.ContentCopyIcon(), func() {
		chooser.Hide()
		mw.signInDeviceCode()
	})

	content := container.NewVBox(
		widget.NewLabel("Choose how to sign in to your Microsoft account:"),
		browserBtn,
		deviceBtn,
	)
	chooser = dialog.NewCustom("Sign In", "Cancel", content, mw.window)
	chooser.Show()
}

// signInInteractive runs the browser redirect flow in the background
func (mw *MainWindow) signInInteractive() {
	mw.setStatus(StatusWorking, "Waiting for the browser sign-in to finish...")
	mw.appendConsole("Sign-in started, check your browser")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		account, err := mw.auth.SignInInteractive(ctx)
		if err != nil {
			mw.reportAuthError(err)
			return
		}
		mw.completeSignIn(account)
	}()
}

// signInDeviceCode runs the device code flow. The dialog stays up while
// the token endpoint is polled and cancels the poll when dismissed.
func (mw *MainWindow) signInDeviceCode() {
	mw.setStatus(StatusWorking, "Requesting a device code...")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		code, err := mw.auth.SignInDeviceCode(ctx)
		if err != nil {
			cancel()
			mw.reportAuthError(err)
			return
		}

		// Put the code on the clipboard right away so the verification
		// page can be filled with a single paste.
		mw.window.Clipboard().SetContent(code.UserCode)
		codeDialog := mw.showDeviceCodeDialog(code, cancel)

		account, err := mw.auth.WaitForDeviceCode(ctx, code)
		codeDialog.Hide()
		if err != nil {
			if ctx.Err() != nil {
				mw.setStatus(StatusNeutral, "Sign-in cancelled")
				return
			}
			mw.reportAuthError(err)
			return
		}
		mw.completeSignIn(account)
	}()
}

// showDeviceCodeDialog presents the user code with copy and browser
// shortcuts while the poll waits for approval
func (mw *MainWindow) showDeviceCodeDialog(code *auth.DeviceCode, cancel context.CancelFunc) dialog.Dialog {
	codeLabel := widget.NewLabelWithStyle(code.UserCode, fyne.TextAlignCenter,
		fyne.TextStyle{Bold: true, Monospace: true})
	linkLabel := widget.NewLabelWithStyle(code.VerificationURI, fyne.TextAlignCenter, fyne.TextStyle{})

	copyBtn := widget.NewButtonWithIcon("Copy Code", theme.ContentCopyIcon(), func() {
		mw.window.Clipboard().SetContent(code.UserCode)
	})
	openBtn := widget.NewButtonWithIcon("Open Browser", theme.ComputerIcon(), func() {
		if err := auth.OpenBrowser(code.VerificationURI); err != nil {
			mw.log.Warn("could not open browser", "error", err)
		}
	})

	content := container.NewVBox(
		widget.NewLabel("Open the verification page and enter this code:"),
		codeLabel,
		linkLabel,
		container.NewCenter(container.NewHBox(copyBtn, openBtn)),
		widget.NewLabel("The code is already on your clipboard. Waiting for approval..."),
	)

	codeDialog := dialog.NewCustom("Device Code Sign-In", "Cancel", content, mw.window)
	codeDialog.SetOnClosed(func() {
		cancel()
	})
	codeDialog.Show()
	return codeDialog
}

// completeSignIn wires up the Graph client and refreshes the header
func (mw *MainWindow) completeSignIn(account *auth.Account) {
	mw.client = sharepoint.NewClient(mw.auth.TokenSource(), mw.log)

	username := ""
	if account != nil {
		username = account.Username
	}
	if username == "" {
		// Older tenants omit identity claims, ask Graph instead
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		user, err := mw.client.Me(ctx)
		cancel()
		if err != nil {
			mw.log.Warn("could not look up the signed-in user", "error", err)
		} else {
			username = user.UserPrincipalName
		}
	}

	if username != "" && username != mw.settings.LastUsername {
		mw.settings.LastUsername = username
		mw.autosaver.NotifyEdit(mw.settings)
	}

	display := username
	if display == "" {
		display = "signed in"
	}
	mw.accountLabel.SetText(display)
	mw.setStatus(StatusOK, "Signed in as "+display)
	mw.appendConsole("Signed in as %s", display)
	mw.fetchAccountPhoto()

	if mw.settings.AutoConnect && strings.TrimSpace(mw.settings.SiteURL) != "" {
		mw.browseFiles()
	}
}

// autoConnect restores the cached session at startup without dialogs
func (mw *MainWindow) autoConnect() {
	mw.setStatus(StatusWorking, "Signing in...")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		account, err := mw.auth.SignInSilent(ctx)
		if err != nil {
			if errors.Is(err, auth.ErrNoAccount) {
				mw.setStatus(StatusNeutral, "Sign in to connect")
				return
			}
			mw.reportAuthError(err)
			return
		}
		mw.completeSignIn(account)
	}()
}

func (mw *MainWindow) signOut() {
	if !mw.auth.SignedIn() {
		mw.setStatus(StatusNeutral, "Not signed in")
		return
	}

	dialog.ShowConfirm("Sign Out", "Sign out and forget the saved session?", func(confirm bool) {
		if !confirm {
			return
		}
		if err := mw.auth.SignOut(); err != nil {
			dialog.ShowError(err, mw.window)
			return
		}
		mw.client = nil
		mw.site = nil
		mw.filesMutex.Lock()
		mw.files = nil
		mw.filesMutex.Unlock()
		mw.selectedFile = -1
		mw.fileList.Refresh()

		mw.accountLabel.SetText("Not signed in")
		mw.accountIcon.File = ""
		mw.accountIcon.Resource = theme.AccountIcon()
		mw.accountIcon.Refresh()

		mw.setStatus(StatusNeutral, "Signed out")
		mw.appendConsole("Signed out")
	}, mw.window)
}

// fetchAccountPhoto loads the profile photo into the header, keeping the
// generic icon when the account has none
func (mw *MainWindow) fetchAccountPhoto() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		cacheDir := filepath.Join(mw.storage.ConfigDir(), "cache")
		path, err := mw.client.FetchUserPhoto(ctx, cacheDir)
		if err != nil {
			if !errors.Is(err, sharepoint.ErrNoPhoto) {
				mw.log.Warn("profile photo unavailable", "error", err)
			}
			return
		}

		mw.accountIcon.Resource = nil
		mw.accountIcon.File = path
		mw.accountIcon.Refresh()
	}()
}

// reportAuthError routes sign-in failures through the AADSTS rewriter
func (mw *MainWindow) reportAuthError(err error) {
	mw.reportError("Sign-in failed", err)
}
