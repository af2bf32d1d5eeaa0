package sharepoint

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/oauth2"
)

func TestDiagnoseResponseGraphEnvelope(t *testing.T) {
	body := []byte(`{"error":{"code":"itemNotFound","message":"The resource could not be found."}}`)
	code, msg := DiagnoseResponse(404, "application/json", body)
	assert.Equal(t, "itemNotFound", code)
	assert.Contains(t, msg, "itemNotFound")
	assert.Contains(t, msg, "could not be found")
}

func TestDiagnoseResponseTokenEndpointShape(t *testing.T) {
	body := []byte(`{"error":"invalid_grant","error_description":"AADSTS50058: A silent sign-in request was sent but no user is signed in."}`)
	code, msg := DiagnoseResponse(400, "application/json; charset=utf-8", body)
	assert.Equal(t, "invalid_grant", code)
	assert.Contains(t, msg, "AADSTS50058")
	assert.Contains(t, msg, "sign in again")
}

func TestDiagnoseResponseConditionalAccess(t *testing.T) {
	body := []byte(`{"error":{"code":"unauthorized","message":"AADSTS53003: Access has been blocked by Conditional Access policies."}}`)
	_, msg := DiagnoseResponse(401, "application/json", body)
	assert.Contains(t, msg, "AADSTS53003")
	assert.Contains(t, msg, "Conditional Access")
}

func TestDiagnoseResponseHTMLTitle(t *testing.T) {
	body := []byte(`<html><head><title>Sign in to your account</title></head><body><p>whatever</p></body></html>`)
	code, msg := DiagnoseResponse(403, "text/html", body)
	assert.Empty(t, code)
	assert.Contains(t, msg, "HTTP 403")
	assert.Contains(t, msg, "Sign in to your account")
}

func TestDiagnoseResponseHTMLErrorText(t *testing.T) {
	body := []byte(`<html><body><div id="errorText">AADSTS53003: blocked by policy</div></body></html>`)
	_, msg := DiagnoseResponse(403, "text/html; charset=utf-8", body)
	assert.Contains(t, msg, "AADSTS53003")
	assert.Contains(t, msg, "Conditional Access")
}

func TestDiagnoseResponseBareHTML(t *testing.T) {
	body := []byte(`<html><body></body></html>`)
	_, msg := DiagnoseResponse(502, "text/html", body)
	assert.Contains(t, msg, "HTTP 502")
	assert.Contains(t, msg, "HTML page")
}

func TestDiagnoseResponseEmptyBody(t *testing.T) {
	_, msg := DiagnoseResponse(503, "", nil)
	assert.Equal(t, "HTTP 503 Service Unavailable", msg)
}

func TestDiagnoseResponsePlainText(t *testing.T) {
	_, msg := DiagnoseResponse(500, "text/plain", []byte("something   broke\nbadly"))
	assert.Equal(t, "HTTP 500: something broke badly", msg)
}

func TestAADHint(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "conditional access",
			text: "AADSTS53003: Access has been blocked by Conditional Access policies.",
			want: "Conditional Access",
		},
		{
			name: "expired session",
			text: "error AADSTS50058 while refreshing",
			want: "sign in again",
		},
		{
			name: "mfa required",
			text: "AADSTS50076: Due to a configuration change...",
			want: "multi-factor",
		},
		{
			name: "unknown code still surfaces",
			text: "AADSTS99999: mystery",
			want: "AADSTS99999",
		},
		{
			name: "no code",
			text: "plain failure",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AADHint(tt.text)
			if tt.want == "" {
				assert.Empty(t, got)
				return
			}
			assert.Contains(t, got, tt.want)
		})
	}
}

func TestFriendlyAuthError(t *testing.T) {
	t.Run("retrieve error with hint", func(t *testing.T) {
		err := &oauth2.RetrieveError{
			ErrorCode:        "invalid_grant",
			ErrorDescription: "AADSTS53003: Access has been blocked by Conditional Access policies.",
		}
		msg := FriendlyAuthError(err)
		assert.Contains(t, msg, "AADSTS53003")
		assert.Contains(t, msg, "Conditional Access")
	})

	t.Run("retrieve error without hint", func(t *testing.T) {
		err := &oauth2.RetrieveError{
			ErrorCode:        "access_denied",
			ErrorDescription: "The user declined the sign-in request.",
		}
		msg := FriendlyAuthError(err)
		assert.Contains(t, msg, "access_denied")
		assert.Contains(t, msg, "declined")
	})

	t.Run("plain error passes through", func(t *testing.T) {
		assert.Equal(t, "boom", FriendlyAuthError(errors.New("boom")))
	})

	t.Run("nil", func(t *testing.T) {
		assert.Empty(t, FriendlyAuthError(nil))
	})
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
	assert.Equal(t, "a b c", clip("a   b \n c", 10))
	assert.Equal(t, "abcde...", clip("abcdefghij", 5))
}
