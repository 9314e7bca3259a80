package wire

import (
	"fmt"
	"net/url"
	"strings"
)

// Prompt values sent to the authorization endpoint.
const (
	// PromptLogin forces the credential UI to collect credentials even
	// when a valid session cookie exists.
	PromptLogin = "login"

	// PromptRefreshSession forces re-authorization of the resource while
	// reusing an existing logon session.
	PromptRefreshSession = "refresh_session"
)

// AuthorizationRequest describes a single authorization round-trip to be
// rendered by the credential UI collaborator.
type AuthorizationRequest struct {
	// AuthorizationEndpoint is the authority's authorize endpoint.
	AuthorizationEndpoint string

	// ClientID identifies the calling application.
	ClientID string

	// Resource is the resource identifier a token is requested for.
	Resource string

	// RedirectURI is where the authorization response is delivered.
	RedirectURI string

	// Prompt is the prompt instruction for the UI layer ("" for default
	// behavior, PromptLogin or PromptRefreshSession otherwise).
	Prompt string

	// LoginHint prefills the username field in the credential UI.
	LoginHint string

	// CorrelationID is echoed by the server for diagnostics.
	CorrelationID string

	// ExtraQueryParameters is appended verbatim to the query string.
	ExtraQueryParameters string

	// UIParent is an optional, opaque handle to the hosting UI anchor.
	// The engine passes it through untouched; a nil value means the UI
	// collaborator creates its own surface.
	UIParent any
}

// URL renders the authorization request as a full authorization endpoint
// URL.
func (r *AuthorizationRequest) URL() (string, error) {
	u, err := url.Parse(r.AuthorizationEndpoint)
	if err != nil {
		return "", fmt.Errorf("invalid authorization endpoint: %w", err)
	}

	params := url.Values{
		"response_type": {"code"},
		"client_id":     {r.ClientID},
		"resource":      {r.Resource},
		"redirect_uri":  {r.RedirectURI},
	}
	if r.Prompt != "" {
		params.Set("prompt", r.Prompt)
	}
	if r.LoginHint != "" {
		params.Set("login_hint", r.LoginHint)
	}
	if r.CorrelationID != "" {
		params.Set("client-request-id", r.CorrelationID)
	}

	query := params.Encode()
	if extra := sanitizeExtraQuery(r.ExtraQueryParameters); extra != "" {
		query += "&" + extra
	}

	u.RawQuery = query
	return u.String(), nil
}

// sanitizeExtraQuery strips a leading '&' or '?' that callers commonly
// include when passing extra query parameters.
func sanitizeExtraQuery(extra string) string {
	extra = strings.TrimSpace(extra)
	extra = strings.TrimPrefix(extra, "?")
	extra = strings.TrimPrefix(extra, "&")
	return extra
}

// RedirectResponse is the parsed result of an authorization round-trip:
// the query (or fragment) parameters of the redirect URI the UI surface
// ended on.
type RedirectResponse struct {
	// Code is the authorization code on success.
	Code string

	// State echoes the state parameter, when one was sent.
	State string

	// Error and ErrorDescription are set when the server denied the
	// request.
	Error            string
	ErrorDescription string
}

// IsError reports whether the authorization response is an error response.
func (r *RedirectResponse) IsError() bool {
	return r.Error != ""
}

// ErrorString formats the authorization error for diagnostics.
func (r *RedirectResponse) ErrorString() string {
	if r.ErrorDescription != "" {
		return r.Error + ": " + r.ErrorDescription
	}
	return r.Error
}

// ParseRedirect extracts the authorization response parameters from a
// redirect URI. Parameters are read from the query string, falling back
// to the fragment for servers configured with fragment response mode.
func ParseRedirect(redirectURL string) (*RedirectResponse, error) {
	u, err := url.Parse(redirectURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect response URL: %w", err)
	}

	params := u.Query()
	if len(params) == 0 && u.Fragment != "" {
		params, err = url.ParseQuery(u.Fragment)
		if err != nil {
			return nil, fmt.Errorf("invalid redirect response fragment: %w", err)
		}
	}

	return &RedirectResponse{
		Code:             params.Get("code"),
		State:            params.Get("state"),
		Error:            params.Get("error"),
		ErrorDescription: params.Get("error_description"),
	}, nil
}
