// Package sharepoint talks to Microsoft Graph for SharePoint site and
// document library operations.
package sharepoint

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"excelmanager/logging"
	"excelmanager/models"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	graphBase      = "https://graph.microsoft.com/v1.0"
	userAgent      = "SharePointExcelManager/2.0"
	requestTimeout = 30 * time.Second
	maxErrorBody   = 64 * 1024
)

// Site is a resolved SharePoint site.
type Site struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	WebURL      string `json:"webUrl"`
}

// User is the signed-in Microsoft Graph user profile.
type User struct {
	DisplayName       string `json:"displayName"`
	UserPrincipalName string `json:"userPrincipalName"`
	Mail              string `json:"mail"`
}

// APIError is a failed Graph call with a message fit for the status line.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string { return e.Message }

// Client issues Microsoft Graph requests authorized by tokens.
type Client struct {
	base   string
	http   *http.Client
	stream *http.Client
	tokens oauth2.TokenSource
	log    logging.Logger
}

// NewClient returns a Graph client. tokens must come from a signed-in
// Authenticator.
func NewClient(tokens oauth2.TokenSource, log logging.Logger) *Client {
	if log == nil {
		log = logging.Nop()
	}
	return &Client{
		base: graphBase,
		http: &http.Client{Timeout: requestTimeout},
		// No overall timeout on content transfers, large files are
		// governed by the request context.
		stream: &http.Client{},
		tokens: tokens,
		log:    log,
	}
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	tok, err := c.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("acquire token: %w", err)
	}
	tok.SetAuthHeader(req)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("client-request-id", uuid.New().String())
	return req, nil
}

// responseError reads the failed response body and diagnoses it.
func (c *Client) responseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	code, message := DiagnoseResponse(resp.StatusCode, resp.Header.Get("Content-Type"), body)
	c.log.Warn("graph request failed",
		"status", resp.StatusCode, "code", code, "url", resp.Request.URL.Path)
	return &APIError{Status: resp.StatusCode, Code: code, Message: message}
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("graph request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return c.responseError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode graph response: %w", err)
	}
	return nil
}

// ResolveSite looks up the SharePoint site behind siteURL, e.g.
// "https://contoso.sharepoint.com/sites/TeamA".
func (c *Client) ResolveSite(ctx context.Context, siteURL string) (*Site, error) {
	u, err := url.Parse(strings.TrimSpace(siteURL))
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid site URL %q", siteURL)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, fmt.Errorf("invalid site URL %q: unsupported scheme %q", siteURL, u.Scheme)
	}
	endpoint := c.base + "/sites/" + u.Host
	if p := strings.Trim(u.Path, "/"); p != "" {
		endpoint += ":/" + escapePath(p)
	}

	var site Site
	if err := c.getJSON(ctx, endpoint, &site); err != nil {
		return nil, err
	}
	c.log.Info("resolved site", "site", site.DisplayName, "id", site.ID)
	return &site, nil
}

// driveItem is the subset of the Graph driveItem resource the app reads.
type driveItem struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	WebURL       string    `json:"webUrl"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModifiedDateTime"`
	Folder       *struct {
		ChildCount int `json:"childCount"`
	} `json:"folder"`
	LastModifiedBy struct {
		User struct {
			DisplayName string `json:"displayName"`
		} `json:"user"`
	} `json:"lastModifiedBy"`
}

func (d driveItem) toRemoteFile() models.RemoteFile {
	return models.RemoteFile{
		ID:         d.ID,
		Name:       d.Name,
		WebURL:     d.WebURL,
		Size:       d.Size,
		Modified:   d.LastModified,
		ModifiedBy: d.LastModifiedBy.User.DisplayName,
	}
}

// ListWorkbooks returns the Excel workbooks inside folder on the site's
// default document library, following result pages. An empty folder
// lists the library root.
func (c *Client) ListWorkbooks(ctx context.Context, site *Site, folder string) ([]models.RemoteFile, error) {
	endpoint := c.base + "/sites/" + site.ID + "/drive/root/children"
	if f := strings.Trim(strings.TrimSpace(folder), "/"); f != "" {
		endpoint = c.base + "/sites/" + site.ID + "/drive/root:/" + escapePath(f) + ":/children"
	}

	var files []models.RemoteFile
	pages := 0
	for endpoint != "" {
		var page struct {
			Value    []driveItem `json:"value"`
			NextLink string      `json:"@odata.nextLink"`
		}
		if err := c.getJSON(ctx, endpoint, &page); err != nil {
			return nil, err
		}
		for _, item := range page.Value {
			if item.Folder != nil || !models.IsWorkbookName(item.Name) {
				continue
			}
			files = append(files, item.toRemoteFile())
		}
		endpoint = page.NextLink
		pages++
	}
	c.log.Info("listed workbooks", "count", len(files), "pages", pages)
	return files, nil
}

// Download streams the drive item's content into w and returns the byte
// count. Graph answers with a redirect to a pre-authorized URL, which the
// HTTP client follows.
func (c *Client) Download(ctx context.Context, site *Site, itemID string, w io.Writer) (int64, error) {
	endpoint := c.base + "/sites/" + site.ID + "/drive/items/" + url.PathEscape(itemID) + "/content"
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.stream.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, c.responseError(resp)
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("download body: %w", err)
	}
	c.log.Info("downloaded file", "item", itemID, "bytes", n)
	return n, nil
}

// Upload writes the content of r as name inside folder, replacing any
// existing file, and returns the resulting drive item. size must be the
// exact content length.
func (c *Client) Upload(ctx context.Context, site *Site, folder, name string, r io.Reader, size int64) (*models.RemoteFile, error) {
	itemPath := name
	if f := strings.Trim(strings.TrimSpace(folder), "/"); f != "" {
		itemPath = f + "/" + name
	}
	endpoint := c.base + "/sites/" + site.ID + "/drive/root:/" + escapePath(itemPath) + ":/content"

	req, err := c.newRequest(ctx, http.MethodPut, endpoint, r)
	if err != nil {
		return nil, err
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, c.responseError(resp)
	}
	var item driveItem
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	file := item.toRemoteFile()
	c.log.Info("uploaded file", "name", name, "bytes", size)
	return &file, nil
}

// Me returns the signed-in user's profile.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.getJSON(ctx, c.base+"/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// escapePath escapes each path segment while keeping the separators.
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
