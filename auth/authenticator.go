// Package auth signs the user in to Azure AD and hands out OAuth2 token
// sources for Microsoft Graph calls.
package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"excelmanager/logging"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

const (
	// clientID is the Microsoft Office public client, which most tenants
	// already trust for Microsoft Graph access.
	clientID = "d3590ed6-52b3-4102-aeff-aad2292ab01c"

	tokenFileName = "token.json"
)

// scopes request Graph access plus the reserved scopes needed for refresh
// tokens and user identity claims.
var scopes = []string{
	"https://graph.microsoft.com/.default",
	"openid",
	"profile",
	"offline_access",
}

// ErrNoAccount is returned by SignInSilent when no usable cached token
// exists and the user must sign in interactively.
var ErrNoAccount = errors.New("no cached account")

// Account identifies a signed-in user.
type Account struct {
	// Username is the user principal name, e.g. "user@contoso.com".
	Username string
	// Name is the display name from the identity token.
	Name string
}

// DeviceCode holds the prompt data for a pending device code sign-in.
type DeviceCode struct {
	// UserCode is the short code the user types on the verification page.
	UserCode string
	// VerificationURI is the page where the user enters the code.
	VerificationURI string
	// Message is a ready-to-show instruction line.
	Message string
	// Expiry is when the code stops working.
	Expiry time.Time

	resp *oauth2.DeviceAuthResponse
}

// Authenticator manages Azure AD sign-in and token caching for the app.
// All methods are safe for concurrent use.
type Authenticator struct {
	cfg       oauth2.Config
	cachePath string
	log       logging.Logger

	// openBrowser is swapped out by tests.
	openBrowser func(url string) error

	mu      sync.Mutex
	source  oauth2.TokenSource
	account *Account
}

// NewAuthenticator returns an Authenticator that caches tokens under
// configDir.
func NewAuthenticator(configDir string, log logging.Logger) *Authenticator {
	if log == nil {
		log = logging.Nop()
	}
	return &Authenticator{
		cfg: oauth2.Config{
			ClientID: clientID,
			Endpoint: microsoft.AzureADEndpoint("common"),
			Scopes:   scopes,
		},
		cachePath:   filepath.Join(configDir, tokenFileName),
		log:         log,
		openBrowser: OpenBrowser,
	}
}

// SignInSilent restores the previous session from the token cache,
// refreshing the access token if needed. Returns ErrNoAccount when there
// is nothing to restore.
func (a *Authenticator) SignInSilent(ctx context.Context) (*Account, error) {
	tok, err := a.loadToken()
	if err != nil {
		return nil, err
	}
	fresh, err := a.cfg.TokenSource(ctx, tok).Token()
	if err != nil {
		return nil, fmt.Errorf("silent sign-in failed: %w", err)
	}
	return a.adopt(fresh), nil
}

// SignInDeviceCode starts the device code flow and returns the prompt the
// user must complete. Call WaitForDeviceCode to finish the sign-in.
func (a *Authenticator) SignInDeviceCode(ctx context.Context) (*DeviceCode, error) {
	resp, err := a.cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("device code request failed: %w", err)
	}
	uri := resp.VerificationURI
	if uri == "" {
		uri = resp.VerificationURIComplete
	}
	return &DeviceCode{
		UserCode:        resp.UserCode,
		VerificationURI: uri,
		Message: fmt.Sprintf("To sign in, open %s in a browser and enter the code %s.",
			uri, resp.UserCode),
		Expiry: resp.Expiry,
		resp:   resp,
	}, nil
}

// WaitForDeviceCode polls the token endpoint until the user completes the
// device code prompt, the code expires, or ctx is cancelled.
func (a *Authenticator) WaitForDeviceCode(ctx context.Context, dc *DeviceCode) (*Account, error) {
	tok, err := a.cfg.DeviceAccessToken(ctx, dc.resp)
	if err != nil {
		return nil, fmt.Errorf("device code sign-in failed: %w", err)
	}
	return a.adopt(tok), nil
}

// SignInInteractive opens the system browser for an authorization code
// sign-in with PKCE and waits for the redirect on a loopback listener.
func (a *Authenticator) SignInInteractive(ctx context.Context) (*Account, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("loopback listener: %w", err)
	}

	cfg := a.cfg
	cfg.RedirectURL = fmt.Sprintf("http://%s/callback", ln.Addr().String())

	state := uuid.New().String()
	verifier := oauth2.GenerateVerifier()
	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			errChan <- errors.New("sign-in rejected: state mismatch")
			return
		}
		if errCode := query.Get("error"); errCode != "" {
			desc := query.Get("error_description")
			http.Error(w, "sign-in failed", http.StatusBadRequest)
			errChan <- fmt.Errorf("sign-in failed: %s: %s", errCode, desc)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, signInDonePage)
		codeChan <- query.Get("code")
	})
	srv := &http.Server{Handler: mux}
	go srv.Serve(ln)
	defer srv.Close()

	authURL := cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier))
	a.log.Info("opening browser for sign-in", "redirect", cfg.RedirectURL)
	if err := a.openBrowser(authURL); err != nil {
		a.log.Warn("could not open browser, visit the URL manually",
			"url", authURL, "error", err)
	}

	select {
	case code := <-codeChan:
		tok, err := cfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
		if err != nil {
			return nil, fmt.Errorf("token exchange failed: %w", err)
		}
		return a.adopt(tok), nil
	case err := <-errChan:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

const signInDonePage = `<html><body style="font-family: sans-serif">
<h2>Signed in</h2><p>You can close this window and return to SharePoint Excel Manager.</p>
</body></html>`

// SignOut forgets the current session and removes the token cache.
func (a *Authenticator) SignOut() error {
	a.mu.Lock()
	a.source = nil
	a.account = nil
	a.mu.Unlock()
	if err := a.removeToken(); err != nil {
		return fmt.Errorf("remove token cache: %w", err)
	}
	a.log.Info("signed out")
	return nil
}

// TokenSource returns the live token source, or nil when signed out.
func (a *Authenticator) TokenSource() oauth2.TokenSource {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.source
}

// SignedIn reports whether a session is active.
func (a *Authenticator) SignedIn() bool {
	return a.TokenSource() != nil
}

// CurrentAccount returns the signed-in account, or nil.
func (a *Authenticator) CurrentAccount() *Account {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.account
}

// adopt installs tok as the active session and persists it.
func (a *Authenticator) adopt(tok *oauth2.Token) *Account {
	acct := accountFromToken(tok)
	src := &cachingTokenSource{
		src:    a.cfg.TokenSource(context.Background(), tok),
		auth:   a,
		access: tok.AccessToken,
	}
	a.mu.Lock()
	a.account = acct
	a.source = src
	a.mu.Unlock()

	if err := a.saveToken(tok); err != nil {
		a.log.Warn("token cache write failed", "error", err)
	}
	a.log.Info("signed in", "user", acct.Username)
	return acct
}

// accountFromToken extracts identity claims from the id_token, when the
// endpoint returned one.
func accountFromToken(tok *oauth2.Token) *Account {
	acct := &Account{}
	raw, _ := tok.Extra("id_token").(string)
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return acct
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return acct
	}
	var claims struct {
		PreferredUsername string `json:"preferred_username"`
		UPN               string `json:"upn"`
		Name              string `json:"name"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return acct
	}
	acct.Username = claims.PreferredUsername
	if acct.Username == "" {
		acct.Username = claims.UPN
	}
	acct.Name = claims.Name
	return acct
}
