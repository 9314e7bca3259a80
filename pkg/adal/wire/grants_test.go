package wire

import (
	"encoding/base64"
	"testing"
)

func TestTokenEndpoint(t *testing.T) {
	got := TokenEndpoint("https://login.example.com/tenant/")
	want := "https://login.example.com/tenant/oauth2/token"
	if got != want {
		t.Errorf("Expected token endpoint %q, got %q", want, got)
	}
}

func TestAuthorizeEndpoint(t *testing.T) {
	got := AuthorizeEndpoint("https://login.example.com/tenant")
	want := "https://login.example.com/tenant/oauth2/authorize"
	if got != want {
		t.Errorf("Expected authorize endpoint %q, got %q", want, got)
	}
}

func TestRefreshGrant(t *testing.T) {
	grant := RefreshGrant("client-abc", "refresh-xyz", "https://api.example.com")

	if got := grant.Get("grant_type"); got != GrantTypeRefreshToken {
		t.Errorf("Expected grant_type %q, got %q", GrantTypeRefreshToken, got)
	}
	if got := grant.Get("refresh_token"); got != "refresh-xyz" {
		t.Errorf("Expected refresh_token %q, got %q", "refresh-xyz", got)
	}
	if got := grant.Get("client_id"); got != "client-abc" {
		t.Errorf("Expected client_id %q, got %q", "client-abc", got)
	}
	if got := grant.Get("resource"); got != "https://api.example.com" {
		t.Errorf("Expected resource %q, got %q", "https://api.example.com", got)
	}
}

func TestRefreshGrant_NoResource(t *testing.T) {
	grant := RefreshGrant("client-abc", "refresh-xyz", "")
	if _, ok := grant["resource"]; ok {
		t.Error("Expected no resource parameter for empty resource")
	}
}

func TestAssertionGrant(t *testing.T) {
	grant := AssertionGrant(GrantTypeSAML2, "<saml:Assertion/>", "client-abc", "https://api.example.com")

	if got := grant.Get("grant_type"); got != GrantTypeSAML2 {
		t.Errorf("Expected grant_type %q, got %q", GrantTypeSAML2, got)
	}

	decoded, err := base64.URLEncoding.DecodeString(grant.Get("assertion"))
	if err != nil {
		t.Fatalf("Failed to decode assertion parameter: %v", err)
	}
	if string(decoded) != "<saml:Assertion/>" {
		t.Errorf("Expected assertion round-trip, got %q", string(decoded))
	}
}

func TestAuthorizationCodeGrant(t *testing.T) {
	grant := AuthorizationCodeGrant("client-abc", "code-123", "myapp://auth")

	if got := grant.Get("grant_type"); got != GrantTypeAuthorizationCode {
		t.Errorf("Expected grant_type %q, got %q", GrantTypeAuthorizationCode, got)
	}
	if got := grant.Get("code"); got != "code-123" {
		t.Errorf("Expected code %q, got %q", "code-123", got)
	}
	if got := grant.Get("redirect_uri"); got != "myapp://auth" {
		t.Errorf("Expected redirect_uri %q, got %q", "myapp://auth", got)
	}
}
