package sharepoint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"excelmanager/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestClient(ts *httptest.Server) *Client {
	c := NewClient(oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: "test-token", TokenType: "Bearer"}), logging.Nop())
	c.base = ts.URL
	return c
}

func TestResolveSite(t *testing.T) {
	var gotAuth, gotRequestID string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("client-request-id")
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/sites/contoso.sharepoint.com:/sites/TeamA":
			fmt.Fprint(w, `{"id":"contoso.sharepoint.com,111,222",`+
				`"displayName":"Team A",`+
				`"webUrl":"https://contoso.sharepoint.com/sites/TeamA"}`)
		case "/sites/contoso.sharepoint.com":
			fmt.Fprint(w, `{"id":"contoso.sharepoint.com,000,000",`+
				`"displayName":"Contoso Root","webUrl":"https://contoso.sharepoint.com"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":{"code":"itemNotFound","message":"The resource could not be found."}}`)
		}
	}))
	defer ts.Close()

	c := newTestClient(ts)

	site, err := c.ResolveSite(context.Background(), "https://contoso.sharepoint.com/sites/TeamA/")
	require.NoError(t, err)
	assert.Equal(t, "contoso.sharepoint.com,111,222", site.ID)
	assert.Equal(t, "Team A", site.DisplayName)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.NotEmpty(t, gotRequestID)

	root, err := c.ResolveSite(context.Background(), "https://contoso.sharepoint.com")
	require.NoError(t, err)
	assert.Equal(t, "Contoso Root", root.DisplayName)
}

func TestResolveSiteRejectsBadURLs(t *testing.T) {
	c := NewClient(oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: "t"}), logging.Nop())

	for _, bad := range []string{"", "not a url", "ftp://contoso.sharepoint.com/sites/A", "/sites/A"} {
		_, err := c.ResolveSite(context.Background(), bad)
		assert.Error(t, err, "expected error for %q", bad)
		assert.Contains(t, err.Error(), "invalid site URL")
	}
}

func TestResolveSiteNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"code":"itemNotFound","message":"Requested site could not be found"}}`)
	}))
	defer ts.Close()

	c := newTestClient(ts)
	_, err := c.ResolveSite(context.Background(), "https://contoso.sharepoint.com/sites/Nope")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "itemNotFound", apiErr.Code)
	assert.Contains(t, apiErr.Message, "could not be found")
}

func TestListWorkbooksFollowsPages(t *testing.T) {
	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/sites/site-1/drive/root/children":
			fmt.Fprintf(w, `{"value":[
				{"id":"item-1","name":"report.xlsx","webUrl":"https://x/report.xlsx","size":2048,
				 "lastModifiedDateTime":"2024-05-01T10:30:00Z",
				 "file":{"mimeType":"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
				 "lastModifiedBy":{"user":{"displayName":"Alice"}}},
				{"id":"item-2","name":"notes.txt","size":10,"file":{"mimeType":"text/plain"}},
				{"id":"item-3","name":"Archive","folder":{"childCount":3}}
			],"@odata.nextLink":%q}`, ts.URL+"/page-2")
		case "/page-2":
			fmt.Fprint(w, `{"value":[
				{"id":"item-4","name":"budget.xlsm","size":512,
				 "lastModifiedDateTime":"2024-06-02T08:00:00Z",
				 "file":{"mimeType":"application/vnd.ms-excel.sheet.macroEnabled.12"},
				 "lastModifiedBy":{"user":{"displayName":"Bob"}}}
			]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":{"code":"itemNotFound","message":"not found"}}`)
		}
	}))
	defer ts.Close()

	c := newTestClient(ts)
	files, err := c.ListWorkbooks(context.Background(), &Site{ID: "site-1"}, "")
	require.NoError(t, err)

	require.Len(t, files, 2)
	assert.Equal(t, "report.xlsx", files[0].Name)
	assert.Equal(t, "item-1", files[0].ID)
	assert.Equal(t, int64(2048), files[0].Size)
	assert.Equal(t, "Alice", files[0].ModifiedBy)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC), files[0].Modified)
	assert.Equal(t, "budget.xlsm", files[1].Name)
	assert.Equal(t, "Bob", files[1].ModifiedBy)
}

func TestListWorkbooksInFolder(t *testing.T) {
	var requested string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"value":[]}`)
	}))
	defer ts.Close()

	c := newTestClient(ts)
	files, err := c.ListWorkbooks(context.Background(), &Site{ID: "site-1"}, "/Shared Documents/Reports/")
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Equal(t, "/sites/site-1/drive/root:/Shared Documents/Reports:/children", requested)
}

func TestDownloadFollowsRedirect(t *testing.T) {
	content := []byte("PK\x03\x04 fake workbook bytes")
	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sites/site-1/drive/items/item-1/content":
			http.Redirect(w, r, ts.URL+"/cdn/item-1", http.StatusFound)
		case "/cdn/item-1":
			w.Write(content)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	c := newTestClient(ts)
	var buf bytes.Buffer
	n, err := c.Download(context.Background(), &Site{ID: "site-1"}, "item-1", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), n)
	assert.Equal(t, content, buf.Bytes())
}

func TestDownloadNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"code":"itemNotFound","message":"The resource could not be found."}}`)
	}))
	defer ts.Close()

	c := newTestClient(ts)
	var buf bytes.Buffer
	_, err := c.Download(context.Background(), &Site{ID: "site-1"}, "gone", &buf)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Zero(t, buf.Len())
}

func TestUpload(t *testing.T) {
	payload := []byte("new workbook content")
	var gotPath, gotContentType string
	var gotLength int64
	var gotBody []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotLength = r.ContentLength
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":"item-9","name":"new.xlsx","size":20,
			"lastModifiedDateTime":"2024-07-01T12:00:00Z",
			"lastModifiedBy":{"user":{"displayName":"Alice"}}}`)
	}))
	defer ts.Close()

	c := newTestClient(ts)
	file, err := c.Upload(context.Background(), &Site{ID: "site-1"}, "Reports", "new.xlsx",
		bytes.NewReader(payload), int64(len(payload)))
	require.NoError(t, err)

	assert.Equal(t, "/sites/site-1/drive/root:/Reports/new.xlsx:/content", gotPath)
	assert.Equal(t, "application/octet-stream", gotContentType)
	assert.Equal(t, int64(len(payload)), gotLength)
	assert.Equal(t, payload, gotBody)
	assert.Equal(t, "item-9", file.ID)
	assert.Equal(t, "new.xlsx", file.Name)
}

func TestUploadToLibraryRoot(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"item-10","name":"root.xlsx"}`)
	}))
	defer ts.Close()

	c := newTestClient(ts)
	_, err := c.Upload(context.Background(), &Site{ID: "site-1"}, "", "root.xlsx",
		bytes.NewReader([]byte("x")), 1)
	require.NoError(t, err)
	assert.Equal(t, "/sites/site-1/drive/root:/root.xlsx:/content", gotPath)
}

func TestMe(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"displayName":"Test User","userPrincipalName":"user@contoso.com","mail":"user@contoso.com"}`)
	}))
	defer ts.Close()

	c := newTestClient(ts)
	user, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Test User", user.DisplayName)
	assert.Equal(t, "user@contoso.com", user.UserPrincipalName)
}

type failingTokens struct{}

func (failingTokens) Token() (*oauth2.Token, error) {
	return nil, errors.New("refresh failed")
}

func TestRequestsFailWithoutToken(t *testing.T) {
	c := NewClient(failingTokens{}, logging.Nop())
	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acquire token")
}

func TestFetchUserPhoto(t *testing.T) {
	var photo bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 200, 120))
	for x := 0; x < 200; x++ {
		for y := 0; y < 120; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	require.NoError(t, png.Encode(&photo, img))

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me/photo/$value" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(photo.Bytes())
	}))
	defer ts.Close()

	c := newTestClient(ts)
	cacheDir := t.TempDir()
	path, err := c.FetchUserPhoto(context.Background(), cacheDir)
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cached, err := png.Decode(f)
	require.NoError(t, err)
	assert.LessOrEqual(t, cached.Bounds().Dx(), 96)
	assert.LessOrEqual(t, cached.Bounds().Dy(), 96)
}

func TestFetchUserPhotoMissing(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"code":"imageNotFound","message":"no photo"}}`)
	}))
	defer ts.Close()

	c := newTestClient(ts)
	_, err := c.FetchUserPhoto(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, ErrNoPhoto)
}

func TestFetchUserPhotoRejectsHTML(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		fmt.Fprint(w, "<html><body>Sign in to continue</body></html>")
	}))
	defer ts.Close()

	c := newTestClient(ts)
	_, err := c.FetchUserPhoto(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTML")
}
