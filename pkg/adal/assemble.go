package adal

import (
	"adauth/pkg/adal/broker"
	"adauth/pkg/adal/cache"
	"adauth/pkg/adal/wire"
)

// assembleAndDeliver is the Result Assembler for token endpoint
// responses: it converts the response into a cache entry, writes it and
// delivers the Succeeded result. The cache write is an optimization: a
// failed write is logged and the result still succeeds.
//
// refreshedFrom is the cache entry whose refresh token produced the
// response, nil for assertion and authorization-code exchanges.
func (r *resolution) assembleAndDeliver(resp *wire.TokenResponse, refreshedFrom *cache.Item) {
	c, req := r.authctx, r.req
	now := c.now()

	var userInfo *UserInfo
	if resp.IDToken != "" {
		info, err := ParseIDToken(resp.IDToken)
		if err != nil {
			c.logger.Debug("Failed to parse id token from token response",
				"correlation_id", req.correlationID.String(),
				"error", err.Error(),
			)
		} else {
			userInfo = info
		}
	}

	item := &cache.Item{
		Authority:    c.authority,
		ClientID:     req.clientID,
		Resource:     req.resource,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresOn:    resp.ExpiresOn(now),
		RawIDToken:   resp.IDToken,
		StoredAt:     now,

		// AAD signals a multi-resource refresh token by echoing the
		// resource in the response.
		MultiResourceRefreshToken: resp.Resource != "",
	}

	switch {
	case userInfo != nil:
		item.UserID = normalizeID(userInfo.UserID())
		item.UniqueID = userInfo.UniqueID
		item.DisplayableID = userInfo.DisplayableID
	case refreshedFrom != nil:
		item.UserID = refreshedFrom.UserID
		item.UniqueID = refreshedFrom.UniqueID
		item.DisplayableID = refreshedFrom.DisplayableID
		if item.RawIDToken == "" {
			item.RawIDToken = refreshedFrom.RawIDToken
			userInfo = userInfoFromItem(refreshedFrom)
		}
	case !req.user.IsAnyUser():
		item.UserID = req.user.Normalized()
		if req.user.Type == UniqueID {
			item.UniqueID = req.user.ID
		} else {
			item.DisplayableID = req.user.ID
		}
	}

	if refreshedFrom != nil {
		if refreshedFrom.MultiResourceRefreshToken {
			item.MultiResourceRefreshToken = true
		}
		if item.RefreshToken == "" {
			// The endpoint did not rotate the refresh token. Re-read the
			// source entry before reusing ours: a concurrent request may
			// have stored a newer one in the meantime.
			item.RefreshToken = currentRefreshToken(c.tokenCache, refreshedFrom)
		}
	}

	r.writeEntry(item)

	// A refresh token rotated through a cross-resource MRRT exchange also
	// refreshes the source entry, so later requests for the original
	// resource use the newest token.
	if refreshedFrom != nil && resp.RefreshToken != "" &&
		refreshedFrom.MultiResourceRefreshToken && refreshedFrom.Resource != item.Resource {
		source := refreshedFrom.Clone()
		source.RefreshToken = resp.RefreshToken
		source.StoredAt = now
		r.writeEntry(source)
	}

	r.satisfied(item, userInfo)
}

// currentRefreshToken re-reads the entry the refresh started from and
// returns the freshest refresh token available for it.
func currentRefreshToken(store cache.Store, refreshedFrom *cache.Item) string {
	for _, current := range store.Lookup(refreshedFrom.Key()) {
		if current.RefreshToken != "" {
			return current.RefreshToken
		}
	}
	return refreshedFrom.RefreshToken
}

// assembleBrokerAndDeliver is the Result Assembler for successful broker
// responses.
func (r *resolution) assembleBrokerAndDeliver(resp *broker.Response) {
	c, req := r.authctx, r.req
	now := c.now()

	authority := resp.Authority
	if authority == "" {
		authority = c.authority
	}
	resource := resp.Resource
	if resource == "" {
		resource = req.resource
	}

	var userInfo *UserInfo
	if resp.RawIDToken != "" {
		if info, err := ParseIDToken(resp.RawIDToken); err == nil {
			userInfo = info
		}
	}

	item := &cache.Item{
		Authority:    authority,
		ClientID:     req.clientID,
		Resource:     resource,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresOn:    resp.ExpiresOn,
		RawIDToken:   resp.RawIDToken,
		UserID:       normalizeID(resp.UserID),
		StoredAt:     now,
	}
	if userInfo != nil {
		item.UserID = normalizeID(userInfo.UserID())
		item.UniqueID = userInfo.UniqueID
		item.DisplayableID = userInfo.DisplayableID
	}

	r.writeEntry(item)
	r.satisfied(item, userInfo)
}

// writeEntry persists one cache entry, logging instead of failing: the
// cache is an optimization, not a correctness requirement.
func (r *resolution) writeEntry(item *cache.Item) {
	if err := r.authctx.tokenCache.Write(item); err != nil {
		r.authctx.logger.Warn("Failed to write token cache entry",
			"correlation_id", r.req.correlationID.String(),
			"authority", item.Authority,
			"resource", item.Resource,
			"error", err.Error(),
		)
	}
}
