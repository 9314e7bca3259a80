package adal

import (
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"adauth/pkg/adal/cache"
)

// AuthenticationStatus is the terminal status of a token request.
type AuthenticationStatus int

const (
	// StatusSucceeded means a token was acquired.
	StatusSucceeded AuthenticationStatus = iota

	// StatusFailed means the request terminated with an error.
	StatusFailed

	// StatusCancelled means the user dismissed the interactive or broker
	// UI. Not an error status.
	StatusCancelled
)

// String returns the string representation of the status.
func (s AuthenticationStatus) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// AuthenticationCallback receives the single terminal result of a token
// request.
type AuthenticationCallback func(*AuthenticationResult)

// AuthenticationResult is the terminal output of a token request. Exactly
// one of the token fields or Error is populated, according to Status.
type AuthenticationResult struct {
	// Status is the terminal state the request reached.
	Status AuthenticationStatus

	// TokenCacheItem carries the acquired tokens on success.
	TokenCacheItem *cache.Item

	// AccessToken is the acquired access token on success (a convenience
	// view of TokenCacheItem.AccessToken).
	AccessToken string

	// UserInfo is the identity parsed from the id token, when one was
	// issued.
	UserInfo *UserInfo

	// CorrelationID is the identifier attached to the request, echoed for
	// diagnostics.
	CorrelationID uuid.UUID

	// Error describes the failure on Failed results, and carries the
	// cancellation note on Cancelled ones.
	Error *Error
}

// Token returns the result as an oauth2.Token, or nil when the request
// did not succeed.
func (r *AuthenticationResult) Token() *oauth2.Token {
	if r.Status != StatusSucceeded || r.TokenCacheItem == nil {
		return nil
	}
	return r.TokenCacheItem.ToOAuth2Token()
}

func newSucceededResult(item *cache.Item, userInfo *UserInfo, correlationID uuid.UUID) *AuthenticationResult {
	return &AuthenticationResult{
		Status:         StatusSucceeded,
		TokenCacheItem: item,
		AccessToken:    item.AccessToken,
		UserInfo:       userInfo,
		CorrelationID:  correlationID,
	}
}

func newFailedResult(err *Error) *AuthenticationResult {
	return &AuthenticationResult{
		Status:        StatusFailed,
		CorrelationID: err.CorrelationID,
		Error:         err,
	}
}

func newCancelledResult(correlationID uuid.UUID, message string) *AuthenticationResult {
	return &AuthenticationResult{
		Status:        StatusCancelled,
		CorrelationID: correlationID,
		Error:         newError(ErrorCancelled, correlationID, message),
	}
}
