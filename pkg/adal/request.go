package adal

import (
	"context"

	"github.com/google/uuid"
)

// AcquireOptions carries the optional parameters of interactive and
// silent acquisition. The zero value is valid.
type AcquireOptions struct {
	// UserID is a plain displayable user identifier, shorthand for
	// UserIdentifierFromUserID. Ignored when User is set.
	UserID string

	// User identifies the requested user with explicit match strictness.
	// Takes precedence over UserID when both are supplied.
	User *UserIdentifier

	// ExtraQueryParameters is appended verbatim to the authorization
	// request query string.
	ExtraQueryParameters string

	// PromptBehavior controls credential UI display. Silent calls ignore
	// it.
	PromptBehavior PromptBehavior

	// CredentialsType overrides the context's credential surface policy
	// for this call.
	CredentialsType *CredentialsType

	// UIParent is an optional, opaque handle to the hosting UI anchor,
	// passed through to the CredentialUI collaborator. Nil means the UI
	// creates its own surface.
	UIParent any
}

// request is the immutable per-call descriptor driving one resolution.
type request struct {
	resource    string
	clientID    string
	redirectURI string

	user                 UserIdentifier
	extraQueryParameters string
	prompt               PromptBehavior
	credentials          CredentialsType
	uiParent             any

	silent bool

	assertion          string
	assertionGrantType string

	correlationID uuid.UUID
}

func (r *request) isAssertion() bool {
	return r.assertionGrantType != ""
}

// newRequest resolves the option surface into a descriptor. When both a
// plain user id and a UserIdentifier are supplied, the identifier wins:
// it is the more specific of the two.
func (c *AuthenticationContext) newRequest(resource, clientID, redirectURI string, opts *AcquireOptions, silent bool) *request {
	if opts == nil {
		opts = &AcquireOptions{}
	}

	user := UserIdentifier{}
	switch {
	case opts.User != nil:
		user = *opts.User
	case opts.UserID != "":
		user = UserIdentifierFromUserID(opts.UserID)
	}

	credentials := c.credentialsType
	if opts.CredentialsType != nil {
		credentials = *opts.CredentialsType
	}

	return &request{
		resource:             resource,
		clientID:             clientID,
		redirectURI:          redirectURI,
		user:                 user,
		extraQueryParameters: opts.ExtraQueryParameters,
		prompt:               opts.PromptBehavior,
		credentials:          credentials,
		uiParent:             opts.UIParent,
		silent:               silent,
		correlationID:        c.requestCorrelationID(),
	}
}

// AcquireToken acquires an access token for the resource, escalating
// from cache to refresh exchange to interactive or broker-delegated
// authorization as needed. The callback fires exactly once with the
// terminal result; the call itself returns immediately.
//
// The callback must be non-nil; resource and clientID must be non-empty.
func (c *AuthenticationContext) AcquireToken(ctx context.Context, resource, clientID, redirectURI string, opts *AcquireOptions, callback AuthenticationCallback) {
	req := c.newRequest(resource, clientID, redirectURI, opts, false)
	c.dispatch(ctx, req, callback)
}

// AcquireTokenSilent acquires a token using the cache and refresh paths
// only. When interaction would be required it fails with
// user_input_needed instead of displaying anything.
func (c *AuthenticationContext) AcquireTokenSilent(ctx context.Context, resource, clientID, redirectURI string, opts *AcquireOptions, callback AuthenticationCallback) {
	req := c.newRequest(resource, clientID, redirectURI, opts, true)
	c.dispatch(ctx, req, callback)
}

// AcquireTokenForAssertion acquires a token for the user represented by
// the SAML assertion. The cache and refresh paths are tried first,
// scoped to the given user id; the assertion is exchanged only when they
// are exhausted. The flow never consults interactive UI.
func (c *AuthenticationContext) AcquireTokenForAssertion(ctx context.Context, assertion string, assertionType AssertionType, resource, clientID, userID string, callback AuthenticationCallback) {
	req := c.newRequest(resource, clientID, "", &AcquireOptions{UserID: userID}, true)
	req.assertion = assertion
	req.assertionGrantType = assertionType.GrantType()
	c.dispatch(ctx, req, callback)
}

// dispatch spawns the resolution state machine for one request. Requests
// run independently; no ordering exists between their callbacks.
func (c *AuthenticationContext) dispatch(ctx context.Context, req *request, callback AuthenticationCallback) {
	if callback == nil {
		panic("adal: nil authentication callback")
	}

	res := &resolution{
		authctx:  c,
		req:      req,
		callback: callback,
	}

	if req.resource == "" || req.clientID == "" {
		go res.fail(newError(ErrorAuthorizationDenied, req.correlationID, "resource and clientID are required"))
		return
	}
	if req.isAssertion() && req.assertion == "" {
		go res.fail(newError(ErrorAssertionInvalid, req.correlationID, "assertion must not be empty"))
		return
	}

	go res.run(ctx)
}
