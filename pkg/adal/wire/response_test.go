package wire

import (
	"testing"
	"time"
)

func TestDecodeTokenResponse(t *testing.T) {
	body := []byte(`{
		"access_token": "at",
		"token_type": "Bearer",
		"refresh_token": "rt",
		"id_token": "idt",
		"expires_in": 3600,
		"resource": "https://api.example.com"
	}`)

	resp, err := DecodeTokenResponse(body)
	if err != nil {
		t.Fatalf("Failed to decode token response: %v", err)
	}

	if resp.AccessToken != "at" {
		t.Errorf("Expected access token %q, got %q", "at", resp.AccessToken)
	}
	if resp.ExpiresIn != 3600 {
		t.Errorf("Expected expires_in 3600, got %d", resp.ExpiresIn)
	}
	if resp.IsError() {
		t.Error("Expected success response, got error")
	}
}

func TestDecodeTokenResponse_StringExpiresIn(t *testing.T) {
	// ADFS and older AAD endpoints return expires_in as a string.
	body := []byte(`{"access_token": "at", "expires_in": "3599"}`)

	resp, err := DecodeTokenResponse(body)
	if err != nil {
		t.Fatalf("Failed to decode token response: %v", err)
	}
	if resp.ExpiresIn != 3599 {
		t.Errorf("Expected expires_in 3599, got %d", resp.ExpiresIn)
	}
}

func TestDecodeTokenResponse_Error(t *testing.T) {
	body := []byte(`{"error": "invalid_grant", "error_description": "AADSTS70002: refresh token expired"}`)

	resp, err := DecodeTokenResponse(body)
	if err != nil {
		t.Fatalf("Failed to decode token response: %v", err)
	}

	if !resp.IsError() {
		t.Fatal("Expected error response")
	}
	if !resp.IsInvalidGrant() {
		t.Error("Expected invalid_grant to be recognized")
	}
	if resp.ErrorString() != "invalid_grant: AADSTS70002: refresh token expired" {
		t.Errorf("Unexpected error string %q", resp.ErrorString())
	}
}

func TestDecodeTokenResponse_Malformed(t *testing.T) {
	if _, err := DecodeTokenResponse([]byte("<html>gateway error</html>")); err == nil {
		t.Error("Expected error for non-JSON body")
	}
}

func TestTokenResponse_ExpiresOn(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	resp := &TokenResponse{ExpiresIn: 3600}
	if got := resp.ExpiresOn(now); !got.Equal(now.Add(time.Hour)) {
		t.Errorf("Expected expiry one hour after reference, got %v", got)
	}

	resp = &TokenResponse{}
	if got := resp.ExpiresOn(now); !got.IsZero() {
		t.Errorf("Expected zero expiry without expires_in, got %v", got)
	}
}
