package adal

import (
	"time"

	"adauth/pkg/adal/cache"
)

// accessTokenExpiryMargin is the margin applied when deciding whether a
// cached access token is still worth returning. It accounts for clock
// skew and the time the caller will spend using the token.
const accessTokenExpiryMargin = 30 * time.Second

// cacheMatch is one candidate cache entry for a request.
type cacheMatch struct {
	item *cache.Item

	// refreshOnly marks a multi-resource-refresh-token candidate matched
	// across resources: its refresh token is usable, its access token is
	// not.
	refreshOnly bool
}

// matchCandidates filters and orders cache entries for a request, most
// specific first: exact-resource matches before cross-resource MRRT
// candidates, most recently written first within each group.
//
// The store already scoped the list to authority and clientID; the rules
// applied here are the resource and user-identity ones. Entries for a
// different user than a RequireMatch identifier are never returned.
func matchCandidates(items []*cache.Item, resource string, user UserIdentifier) []cacheMatch {
	var exact, mrrt []cacheMatch

	for _, item := range items {
		if !userMatches(item, user) {
			continue
		}

		switch {
		case item.Resource == resource:
			exact = append(exact, cacheMatch{item: item})
		case item.MultiResourceRefreshToken && item.RefreshToken != "":
			// Resource mismatch tolerated for refresh-token reuse only.
			mrrt = append(mrrt, cacheMatch{item: item, refreshOnly: true})
		}
	}

	return append(exact, mrrt...)
}

// userMatches applies the identifier's match strictness to one entry.
func userMatches(item *cache.Item, user UserIdentifier) bool {
	if user.IsAnyUser() || !user.Type.RequiresMatch() {
		return true
	}

	want := user.Normalized()
	if user.Type == UniqueID {
		// Compare the stable identifier, falling back to the keyed user id
		// for entries written without an id token.
		if item.UniqueID != "" {
			return normalizeID(item.UniqueID) == want
		}
		return normalizeID(item.UserID) == want
	}

	// RequiredDisplayableID: compare the displayable identifier, falling
	// back to the keyed user id for entries written without one.
	if item.DisplayableID != "" {
		return normalizeID(item.DisplayableID) == want
	}
	return normalizeID(item.UserID) == want
}

func normalizeID(id string) string {
	return UserIdentifier{ID: id}.Normalized()
}

// selectAccessToken returns the first candidate whose access token is
// usable as-is: an exact resource match that has not expired.
func selectAccessToken(matches []cacheMatch, now time.Time) *cache.Item {
	for _, m := range matches {
		if m.refreshOnly {
			continue
		}
		if m.item.AccessToken != "" && !m.item.IsExpired(now, accessTokenExpiryMargin) {
			return m.item
		}
	}
	return nil
}

// selectRefreshToken returns the most specific candidate carrying a
// refresh token.
func selectRefreshToken(matches []cacheMatch) *cache.Item {
	for _, m := range matches {
		if m.item.RefreshToken != "" {
			return m.item
		}
	}
	return nil
}
