package sharepoint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/gen2brain/avif"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"
)

const (
	photoEdge     = 96
	maxPhotoBytes = 8 << 20
	photoFileName = "account_photo.png"
)

// ErrNoPhoto is returned when the account has no profile photo.
var ErrNoPhoto = errors.New("no profile photo")

// FetchUserPhoto downloads the signed-in user's profile photo, validates
// that it really is an image, scales it down to thumbnail size and caches
// it as PNG under cacheDir. Returns the cached file path.
func (c *Client) FetchUserPhoto(ctx context.Context, cacheDir string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.base+"/me/photo/$value", nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("photo request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return "", ErrNoPhoto
	}
	if resp.StatusCode != http.StatusOK {
		return "", c.responseError(resp)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
	if err != nil {
		return "", fmt.Errorf("photo body: %w", err)
	}
	if looksLikeHTML(data) {
		return "", errors.New("photo endpoint returned an HTML page instead of image data")
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("photo data not decodable: %w", err)
	}

	thumb := resize.Thumbnail(photoEdge, photoEdge, img, resize.Lanczos3)

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return "", fmt.Errorf("create cache directory: %w", err)
	}
	path := filepath.Join(cacheDir, photoFileName)
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create photo cache: %w", err)
	}
	if err := png.Encode(out, thumb); err != nil {
		out.Close()
		os.Remove(path)
		return "", fmt.Errorf("cache photo: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	c.log.Debug("cached profile photo", "path", path, "format", format)
	return path, nil
}

// looksLikeHTML detects HTML masquerading as binary content, which
// happens when a proxy or sign-in portal intercepts the request.
func looksLikeHTML(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	s := strings.ToLower(strings.TrimSpace(string(head)))
	return strings.HasPrefix(s, "<!doctype html") || strings.HasPrefix(s, "<html")
}
