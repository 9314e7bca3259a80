package wire

import (
	"encoding/base64"
	"net/url"
)

// OAuth2 protocol constants for the AAD/ADFS token endpoint.
const (
	// AuthorizeEndpointSuffix is appended to the authority to form the
	// authorization endpoint.
	AuthorizeEndpointSuffix = "/oauth2/authorize"

	// TokenEndpointSuffix is appended to the authority to form the token
	// endpoint.
	TokenEndpointSuffix = "/oauth2/token"

	// GrantTypeRefreshToken exchanges a refresh token for a new access token.
	GrantTypeRefreshToken = "refresh_token"

	// GrantTypeAuthorizationCode exchanges an authorization code.
	GrantTypeAuthorizationCode = "authorization_code"

	// GrantTypeSAML11 is the bearer grant type URN for SAML 1.1 assertions.
	GrantTypeSAML11 = "urn:ietf:params:oauth:grant-type:saml1_1-bearer"

	// GrantTypeSAML2 is the bearer grant type URN for SAML 2.0 assertions.
	GrantTypeSAML2 = "urn:ietf:params:oauth:grant-type:saml2-bearer"
)

// TokenEndpoint returns the token endpoint URL for an authority.
func TokenEndpoint(authority string) string {
	return trimTrailingSlash(authority) + TokenEndpointSuffix
}

// AuthorizeEndpoint returns the authorization endpoint URL for an authority.
func AuthorizeEndpoint(authority string) string {
	return trimTrailingSlash(authority) + AuthorizeEndpointSuffix
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}

// RefreshGrant encodes a refresh_token grant for the token endpoint.
// resource may be empty when the refresh token is not resource-scoped.
func RefreshGrant(clientID, refreshToken, resource string) url.Values {
	grant := url.Values{
		"grant_type":    {GrantTypeRefreshToken},
		"refresh_token": {refreshToken},
		"client_id":     {clientID},
	}
	if resource != "" {
		grant.Set("resource", resource)
	}
	return grant
}

// AssertionGrant encodes a SAML bearer assertion grant. The assertion is
// base64url-encoded into the request body as required by RFC 7522.
func AssertionGrant(grantType, assertion, clientID, resource string) url.Values {
	grant := url.Values{
		"grant_type": {grantType},
		"assertion":  {base64.URLEncoding.EncodeToString([]byte(assertion))},
		"client_id":  {clientID},
		"scope":      {"openid"},
	}
	if resource != "" {
		grant.Set("resource", resource)
	}
	return grant
}

// AuthorizationCodeGrant encodes an authorization_code grant. The
// redirect URI must match the one used in the authorization request.
func AuthorizationCodeGrant(clientID, code, redirectURI string) url.Values {
	return url.Values{
		"grant_type":   {GrantTypeAuthorizationCode},
		"code":         {code},
		"client_id":    {clientID},
		"redirect_uri": {redirectURI},
	}
}
