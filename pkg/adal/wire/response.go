package wire

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// OAuth2 error codes returned by the token endpoint that the engine
// reacts to.
const (
	// ErrorCodeInvalidGrant indicates the refresh token or assertion was
	// rejected by the identity provider.
	ErrorCodeInvalidGrant = "invalid_grant"

	// ErrorCodeAccessDenied indicates the user or the identity provider
	// denied the authorization request.
	ErrorCodeAccessDenied = "access_denied"
)

// TokenResponse is the decoded body of a token endpoint response. A
// response either carries tokens or an OAuth2 error, never both.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`

	// ExpiresIn is the access token lifetime in seconds, relative to the
	// moment the response was produced.
	ExpiresIn int64 `json:"expires_in,omitempty"`

	// Resource echoes the resource the token is valid for. AAD returns it
	// for multi-resource refresh token responses.
	Resource string `json:"resource,omitempty"`

	// Scope is the granted scope(s).
	Scope string `json:"scope,omitempty"`

	// Error and ErrorDescription are set on OAuth2 error responses.
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// DecodeTokenResponse parses a token endpoint response body. AAD is known
// to return expires_in as either a number or a string, so both are
// accepted.
func DecodeTokenResponse(body []byte) (*TokenResponse, error) {
	var raw struct {
		AccessToken      string          `json:"access_token"`
		TokenType        string          `json:"token_type"`
		RefreshToken     string          `json:"refresh_token"`
		IDToken          string          `json:"id_token"`
		ExpiresIn        json.RawMessage `json:"expires_in"`
		Resource         string          `json:"resource"`
		Scope            string          `json:"scope"`
		Error            string          `json:"error"`
		ErrorDescription string          `json:"error_description"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	resp := &TokenResponse{
		AccessToken:      raw.AccessToken,
		TokenType:        raw.TokenType,
		RefreshToken:     raw.RefreshToken,
		IDToken:          raw.IDToken,
		Resource:         raw.Resource,
		Scope:            raw.Scope,
		Error:            raw.Error,
		ErrorDescription: raw.ErrorDescription,
	}

	if len(raw.ExpiresIn) > 0 {
		expiresIn, err := parseFlexibleInt(raw.ExpiresIn)
		if err != nil {
			return nil, fmt.Errorf("invalid expires_in in token response: %w", err)
		}
		resp.ExpiresIn = expiresIn
	}

	return resp, nil
}

// parseFlexibleInt parses a JSON value that may be a number or a quoted
// numeric string.
func parseFlexibleInt(raw json.RawMessage) (int64, error) {
	s := string(raw)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return strconv.ParseInt(s, 10, 64)
}

// IsError reports whether the response carries an OAuth2 error.
func (r *TokenResponse) IsError() bool {
	return r.Error != ""
}

// IsInvalidGrant reports whether the identity provider rejected the grant
// itself (expired or revoked refresh token, rejected assertion).
func (r *TokenResponse) IsInvalidGrant() bool {
	return r.Error == ErrorCodeInvalidGrant
}

// ErrorString formats the OAuth2 error for diagnostics.
func (r *TokenResponse) ErrorString() string {
	if r.ErrorDescription != "" {
		return r.Error + ": " + r.ErrorDescription
	}
	return r.Error
}

// ExpiresOn computes the absolute expiry of the access token relative to
// the given reference time.
func (r *TokenResponse) ExpiresOn(now time.Time) time.Time {
	if r.ExpiresIn <= 0 {
		return time.Time{}
	}
	return now.Add(time.Duration(r.ExpiresIn) * time.Second)
}
