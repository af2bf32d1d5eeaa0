package sharepoint

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/oauth2"
)

// aadHints maps Azure AD failure codes to guidance the user can act on.
var aadHints = map[string]string{
	"AADSTS53003": "access is blocked by a Conditional Access policy, sign in from a compliant device or network",
	"AADSTS50058": "the saved session has expired, sign in again",
	"AADSTS50076": "multi-factor authentication is required, complete the sign-in prompt",
	"AADSTS65001": "the app has not been granted consent, ask an administrator to approve it",
	"AADSTS70016": "the sign-in request expired before it was approved, start over",
}

var aadCodePattern = regexp.MustCompile(`AADSTS\d+`)

// AADHint extracts an Azure AD error code from text and returns guidance
// for it. Empty when the text carries no AADSTS code.
func AADHint(text string) string {
	code := aadCodePattern.FindString(text)
	if code == "" {
		return ""
	}
	if hint, ok := aadHints[code]; ok {
		return code + ": " + hint
	}
	return code + ": sign-in was rejected by Azure AD"
}

// FriendlyAuthError rewrites a sign-in failure into a message fit for the
// status line, expanding known Azure AD codes.
func FriendlyAuthError(err error) string {
	if err == nil {
		return ""
	}
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		text := rerr.ErrorDescription
		if text == "" {
			text = string(rerr.Body)
		}
		if hint := AADHint(text); hint != "" {
			return hint
		}
		if rerr.ErrorCode != "" {
			return rerr.ErrorCode + ": " + clip(text, 200)
		}
	}
	if hint := AADHint(err.Error()); hint != "" {
		return hint
	}
	return err.Error()
}

// DiagnoseResponse turns a failed HTTP response into an error code and a
// readable message. Handles the Graph error envelope, the flat AAD token
// error shape, and HTML pages injected by proxies or sign-in portals.
func DiagnoseResponse(status int, contentType string, body []byte) (code, message string) {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "json") {
		if c, m, ok := diagnoseJSON(body); ok {
			return c, m
		}
	}
	if strings.Contains(ct, "html") {
		return "", diagnoseHTML(status, body)
	}

	text := strings.TrimSpace(string(body))
	if hint := AADHint(text); hint != "" {
		return aadCodePattern.FindString(text), hint
	}
	if text == "" {
		return "", fmt.Sprintf("HTTP %d %s", status, http.StatusText(status))
	}
	return "", fmt.Sprintf("HTTP %d: %s", status, clip(text, 200))
}

func diagnoseJSON(body []byte) (string, string, bool) {
	// Graph envelope: {"error":{"code":"...","message":"..."}}
	var graph struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &graph); err == nil &&
		(graph.Error.Code != "" || graph.Error.Message != "") {
		msg := graph.Error.Message
		if hint := AADHint(msg); hint != "" {
			msg = hint
		}
		if msg == "" {
			msg = graph.Error.Code
		} else if graph.Error.Code != "" {
			msg = graph.Error.Code + ": " + msg
		}
		return graph.Error.Code, clip(msg, 300), true
	}

	// Token endpoint shape: {"error":"...","error_description":"..."}
	var aad struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &aad); err == nil && aad.Error != "" {
		msg := aad.Description
		if hint := AADHint(msg); hint != "" {
			msg = hint
		}
		if msg == "" {
			msg = aad.Error
		}
		return aad.Error, clip(msg, 300), true
	}
	return "", "", false
}

// htmlErrorSelectors are tried in order against HTML error pages.
var htmlErrorSelectors = []string{"#errorText", ".error-message", "h1", "title"}

func diagnoseHTML(status int, body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err == nil {
		for _, sel := range htmlErrorSelectors {
			text := strings.TrimSpace(doc.Find(sel).First().Text())
			if text == "" {
				continue
			}
			if hint := AADHint(text); hint != "" {
				return hint
			}
			return fmt.Sprintf("HTTP %d: %s", status, clip(text, 200))
		}
	}
	return fmt.Sprintf("HTTP %d: received an HTML page instead of an API response, a proxy or sign-in portal may be intercepting requests", status)
}

// clip collapses whitespace and limits s to max runes.
func clip(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
