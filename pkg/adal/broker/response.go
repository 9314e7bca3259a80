package broker

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Error codes a broker response may carry.
const (
	// ErrorCodeAccessDenied means the broker's identity provider rejected
	// the authorization.
	ErrorCodeAccessDenied = "access_denied"

	// ErrorCodeUserCancelled means the user dismissed the broker UI.
	ErrorCodeUserCancelled = "user_cancelled"
)

// Response is a parsed broker response URL.
type Response struct {
	// Authority, ClientID, Resource and UserID locate the cache entry the
	// response should produce.
	Authority string
	ClientID  string
	Resource  string
	UserID    string

	// AccessToken and RefreshToken are the issued credentials.
	AccessToken  string
	RefreshToken string

	// RawIDToken is the id token exactly as issued, when present.
	RawIDToken string

	// ExpiresOn is the absolute access token expiry.
	ExpiresOn time.Time

	// CorrelationID matches the response to its in-flight request.
	CorrelationID uuid.UUID

	// ErrorCode and ErrorDescription are set on failure responses.
	ErrorCode        string
	ErrorDescription string
}

// IsError reports whether the broker returned an error instead of tokens.
func (r *Response) IsError() bool {
	return r.ErrorCode != ""
}

// Cancelled reports whether the user dismissed the broker UI. Older
// broker versions signal cancellation as access_denied with the
// description "cancel" instead of a dedicated code.
func (r *Response) Cancelled() bool {
	if r.ErrorCode == ErrorCodeUserCancelled {
		return true
	}
	return r.ErrorCode == ErrorCodeAccessDenied && r.ErrorDescription == "cancel"
}

// ErrorString formats the broker error for diagnostics.
func (r *Response) ErrorString() string {
	if r.ErrorDescription != "" {
		return r.ErrorCode + ": " + r.ErrorDescription
	}
	return r.ErrorCode
}

// ParseResponse decodes a broker response URL. The correlation identifier
// is mandatory; everything else is optional depending on success or
// failure.
func ParseResponse(responseURL string) (*Response, error) {
	u, err := url.Parse(responseURL)
	if err != nil {
		return nil, fmt.Errorf("malformed broker response URL: %w", err)
	}

	params := u.Query()

	correlationID, err := uuid.Parse(params.Get("correlation_id"))
	if err != nil {
		return nil, fmt.Errorf("broker response carries no valid correlation_id: %w", err)
	}

	resp := &Response{
		Authority:        params.Get("authority"),
		ClientID:         params.Get("client_id"),
		Resource:         params.Get("resource"),
		UserID:           params.Get("user_id"),
		AccessToken:      params.Get("access_token"),
		RefreshToken:     params.Get("refresh_token"),
		RawIDToken:       params.Get("id_token"),
		CorrelationID:    correlationID,
		ErrorCode:        params.Get("error_code"),
		ErrorDescription: params.Get("error_description"),
	}

	if expiresOn := params.Get("expires_on"); expiresOn != "" {
		secs, err := strconv.ParseInt(expiresOn, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid expires_on in broker response: %w", err)
		}
		resp.ExpiresOn = time.Unix(secs, 0)
	}

	return resp, nil
}
