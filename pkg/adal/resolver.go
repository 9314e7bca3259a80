package adal

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"adauth/pkg/adal/broker"
	"adauth/pkg/adal/cache"
	"adauth/pkg/adal/wire"
)

// resolutionState names the stages of the token resolution state machine.
type resolutionState int

const (
	stateCacheLookup resolutionState = iota
	stateRefreshExchange
	stateAssertionExchange
	stateNeedsInteraction
	stateBrokerDelegation
	stateInteractiveAuthorization
	stateSatisfied
	stateFailed
	stateCancelled
)

// String returns the string representation of the state.
func (s resolutionState) String() string {
	switch s {
	case stateCacheLookup:
		return "cache_lookup"
	case stateRefreshExchange:
		return "refresh_exchange"
	case stateAssertionExchange:
		return "assertion_exchange"
	case stateNeedsInteraction:
		return "needs_interaction"
	case stateBrokerDelegation:
		return "broker_delegation"
	case stateInteractiveAuthorization:
		return "interactive_authorization"
	case stateSatisfied:
		return "satisfied"
	case stateFailed:
		return "failed"
	case stateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// resolution is one in-flight token request: an independent instance of
// the state machine. Stages run strictly sequentially on one goroutine;
// the completion callback fires exactly once.
type resolution struct {
	authctx  *AuthenticationContext
	req      *request
	callback AuthenticationCallback
	once     sync.Once
}

// deliver fires the completion callback. Single-fire regardless of which
// terminal path calls it.
func (r *resolution) deliver(result *AuthenticationResult) {
	r.once.Do(func() {
		r.authctx.logger.Debug("Token request completed",
			"correlation_id", r.req.correlationID.String(),
			"status", result.Status.String(),
		)
		r.callback(result)
	})
}

func (r *resolution) satisfied(item *cache.Item, userInfo *UserInfo) {
	r.deliver(newSucceededResult(item, userInfo, r.req.correlationID))
}

func (r *resolution) fail(err *Error) {
	r.deliver(newFailedResult(err))
}

func (r *resolution) cancelled(message string) {
	r.deliver(newCancelledResult(r.req.correlationID, message))
}

// run drives the state machine to a terminal state.
func (r *resolution) run(ctx context.Context) {
	c, req := r.authctx, r.req

	c.logger.Debug("Token request started",
		"correlation_id", req.correlationID.String(),
		"authority", c.authority,
		"resource", req.resource,
		"client_id", req.clientID,
		"silent", req.silent,
		"assertion", req.isAssertion(),
		"prompt", req.prompt.String(),
	)

	// Explicit prompt behaviors re-authorize even when a valid token is
	// cached, so the cache stage is skipped for them.
	if !req.silent && req.prompt != PromptAuto {
		r.needsInteraction(ctx)
		return
	}

	r.cacheLookup(ctx)
}

// cacheLookup queries the Cache Matcher and escalates per its outcome.
func (r *resolution) cacheLookup(ctx context.Context) {
	c, req := r.authctx, r.req

	items := c.tokenCache.Lookup(cache.Key{
		Authority: c.authority,
		ClientID:  req.clientID,
	})
	r.checkDuplicateKeys(items)

	matches := matchCandidates(items, req.resource, req.user)

	if item := selectAccessToken(matches, c.now()); item != nil {
		c.logger.Debug("Token request satisfied from cache",
			"correlation_id", req.correlationID.String(),
			"resource", req.resource,
		)
		userInfo := userInfoFromItem(item)
		r.satisfied(item, userInfo)
		return
	}

	if item := selectRefreshToken(matches); item != nil {
		r.refreshExchange(ctx, item)
		return
	}

	if req.isAssertion() {
		r.assertionExchange(ctx)
		return
	}

	r.needsInteraction(ctx)
}

// checkDuplicateKeys flags the cache-write invariant violation of
// multiple entries sharing one exact key. The most recent entry is still
// used; the condition is diagnostic.
func (r *resolution) checkDuplicateKeys(items []*cache.Item) {
	seen := make(map[cache.Key]bool, len(items))
	for _, item := range items {
		key := item.Key()
		if seen[key] {
			r.authctx.logger.Error("Token cache invariant violated: duplicate entries for one key",
				"correlation_id", r.req.correlationID.String(),
				"authority", key.Authority,
				"client_id", key.ClientID,
				"resource", key.Resource,
			)
			return
		}
		seen[key] = true
	}
}

// exchange performs one grant exchange through the transport
// collaborator, mapping transport failures to transient network errors.
func (r *resolution) exchange(ctx context.Context, grant url.Values) (*wire.TokenResponse, *Error) {
	c, req := r.authctx, r.req

	if c.transport == nil {
		return nil, newError(ErrorTransientNetwork, req.correlationID,
			"no token endpoint transport configured")
	}

	resp, err := c.transport.Exchange(ctx, wire.TokenEndpoint(c.authority), grant)
	if err != nil {
		return nil, wrapError(ErrorTransientNetwork, req.correlationID,
			"token endpoint exchange failed", err)
	}
	return resp, nil
}

// ensureAuthorityTrusted runs authority validation before the first
// network stage of the request.
func (r *resolution) ensureAuthorityTrusted(ctx context.Context) *Error {
	if err := r.authctx.checkAuthorityTrusted(ctx); err != nil {
		return wrapError(ErrorInvalidAuthority, r.req.correlationID,
			"authority validation failed", err)
	}
	return nil
}

// refreshExchange exchanges a cached refresh token for a new access
// token. A rejected refresh token invalidates the cache entry and
// escalates; a network failure surfaces directly (the engine never
// retries on its own).
func (r *resolution) refreshExchange(ctx context.Context, item *cache.Item) {
	c, req := r.authctx, r.req

	if verr := r.ensureAuthorityTrusted(ctx); verr != nil {
		r.fail(verr)
		return
	}

	c.logger.Debug("Exchanging refresh token",
		"correlation_id", req.correlationID.String(),
		"resource", req.resource,
		"mrrt", item.MultiResourceRefreshToken,
	)

	resp, xerr := r.exchange(ctx, wire.RefreshGrant(req.clientID, item.RefreshToken, req.resource))
	if xerr != nil {
		r.fail(xerr)
		return
	}

	if resp.IsInvalidGrant() {
		if err := c.tokenCache.Remove(item.Key()); err != nil {
			c.logger.Warn("Failed to remove rejected cache entry",
				"correlation_id", req.correlationID.String(),
				"error", err.Error(),
			)
		}
		c.logger.Debug("Refresh token rejected by identity provider",
			"correlation_id", req.correlationID.String(),
			"error", resp.ErrorString(),
		)

		switch {
		case req.isAssertion():
			r.assertionExchange(ctx)
		case req.silent:
			r.fail(newError(ErrorUserInputNeeded, req.correlationID,
				"refresh token rejected and the call is silent"))
		default:
			r.needsInteraction(ctx)
		}
		return
	}

	if resp.IsError() {
		r.fail(newError(ErrorAuthorizationDenied, req.correlationID, resp.ErrorString()))
		return
	}

	r.assembleAndDeliver(resp, item)
}

// assertionExchange exchanges the SAML assertion for tokens. Never
// escalates to interaction.
func (r *resolution) assertionExchange(ctx context.Context) {
	c, req := r.authctx, r.req

	if verr := r.ensureAuthorityTrusted(ctx); verr != nil {
		r.fail(verr)
		return
	}

	c.logger.Debug("Exchanging user assertion",
		"correlation_id", req.correlationID.String(),
		"grant_type", req.assertionGrantType,
	)

	grant := wire.AssertionGrant(req.assertionGrantType, req.assertion, req.clientID, req.resource)
	resp, xerr := r.exchange(ctx, grant)
	if xerr != nil {
		r.fail(xerr)
		return
	}

	if resp.IsError() {
		r.fail(newError(ErrorAssertionInvalid, req.correlationID, resp.ErrorString()))
		return
	}

	r.assembleAndDeliver(resp, nil)
}

// needsInteraction routes between broker delegation and interactive
// authorization, or fails immediately when the prompt policy forbids
// interaction.
func (r *resolution) needsInteraction(ctx context.Context) {
	c, req := r.authctx, r.req

	decision := EvaluatePrompt(req.prompt, req.silent)
	if !decision.Allowed {
		r.fail(newError(ErrorUserInputNeeded, req.correlationID,
			"user interaction is required but the call is silent"))
		return
	}

	if c.brokerAvailable(req.credentials) {
		r.brokerDelegation(ctx, decision)
		return
	}

	if c.ui == nil {
		r.fail(newError(ErrorAuthorizationDenied, req.correlationID,
			"user interaction is required but no credential UI is configured"))
		return
	}

	r.interactiveAuthorization(ctx, decision)
}

// loginHint returns the value used to prefill the username field of the
// credential UI or broker account picker.
func loginHint(user UserIdentifier) string {
	if user.IsAnyUser() || user.Type == UniqueID {
		return ""
	}
	return user.ID
}

// interactiveAuthorization presents the credential UI, parses the
// redirect it ends on and exchanges the authorization code.
func (r *resolution) interactiveAuthorization(ctx context.Context, decision PromptDecision) {
	c, req := r.authctx, r.req

	if verr := r.ensureAuthorityTrusted(ctx); verr != nil {
		r.fail(verr)
		return
	}

	authReq := &wire.AuthorizationRequest{
		AuthorizationEndpoint: wire.AuthorizeEndpoint(c.authority),
		ClientID:              req.clientID,
		Resource:              req.resource,
		RedirectURI:           req.redirectURI,
		Prompt:                decision.UIPrompt,
		LoginHint:             loginHint(req.user),
		CorrelationID:         req.correlationID.String(),
		ExtraQueryParameters:  req.extraQueryParameters,
		UIParent:              req.uiParent,
	}

	c.logger.Debug("Presenting credential UI",
		"correlation_id", req.correlationID.String(),
		"prompt", decision.UIPrompt,
	)

	redirectURL, err := c.ui.Present(ctx, authReq)
	if err != nil {
		if errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) {
			r.cancelled("user cancelled the credential dialog")
			return
		}
		r.fail(wrapError(ErrorAuthorizationDenied, req.correlationID,
			"credential UI failed", err))
		return
	}

	resp, err := wire.ParseRedirect(redirectURL)
	if err != nil {
		r.fail(wrapError(ErrorAuthorizationDenied, req.correlationID,
			"malformed authorization response", err))
		return
	}
	if resp.IsError() {
		r.fail(newError(ErrorAuthorizationDenied, req.correlationID, resp.ErrorString()))
		return
	}
	if resp.Code == "" {
		r.fail(newError(ErrorAuthorizationDenied, req.correlationID,
			"authorization response carries no code"))
		return
	}

	tokenResp, xerr := r.exchange(ctx, wire.AuthorizationCodeGrant(req.clientID, resp.Code, req.redirectURI))
	if xerr != nil {
		r.fail(xerr)
		return
	}
	if tokenResp.IsError() {
		r.fail(newError(ErrorAuthorizationDenied, req.correlationID, tokenResp.ErrorString()))
		return
	}

	r.assembleAndDeliver(tokenResp, nil)
}

// brokerDelegation registers a pending entry, hands the authorization
// request to the broker application and waits for the correlated
// response.
func (r *resolution) brokerDelegation(ctx context.Context, decision PromptDecision) {
	c, req := r.authctx, r.req

	if verr := r.ensureAuthorityTrusted(ctx); verr != nil {
		r.fail(verr)
		return
	}

	// Register before invoking: the response can beat the invoker's
	// return on fast platforms.
	ch := c.router.Register(req.correlationID)

	breq := &broker.Request{
		Authority:            c.authority,
		ClientID:             req.clientID,
		Resource:             req.resource,
		RedirectURI:          req.redirectURI,
		LoginHint:            loginHint(req.user),
		Prompt:               decision.UIPrompt,
		ExtraQueryParameters: req.extraQueryParameters,
		CorrelationID:        req.correlationID,
	}

	c.logger.Debug("Delegating to broker application",
		"correlation_id", req.correlationID.String(),
	)

	if err := c.invoker.Invoke(ctx, breq); err != nil {
		c.router.Cancel(req.correlationID)
		r.fail(wrapError(ErrorAuthorizationDenied, req.correlationID,
			"broker invocation failed", err))
		return
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			r.fail(newError(ErrorAuthorizationDenied, req.correlationID,
				"broker delegation timed out"))
			return
		}
		if resp.Cancelled() {
			r.cancelled("user cancelled broker authentication")
			return
		}
		if resp.IsError() {
			r.fail(newError(ErrorAuthorizationDenied, req.correlationID, resp.ErrorString()))
			return
		}
		r.assembleBrokerAndDeliver(resp)

	case <-ctx.Done():
		c.router.Cancel(req.correlationID)
		r.cancelled("request cancelled during broker delegation")
	}
}

// userInfoFromItem recovers identity information from a cached entry's
// raw id token, when one was stored.
func userInfoFromItem(item *cache.Item) *UserInfo {
	if item.RawIDToken == "" {
		return nil
	}
	info, err := ParseIDToken(item.RawIDToken)
	if err != nil {
		return nil
	}
	return info
}
