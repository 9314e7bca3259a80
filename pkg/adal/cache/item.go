package cache

import (
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Key identifies a token cache entry. A zero-valued Resource or UserID
// acts as a wildcard in Lookup calls.
type Key struct {
	// Authority is the identity provider's base endpoint for a tenant.
	Authority string

	// ClientID identifies the application the tokens were issued to.
	ClientID string

	// Resource is the resource identifier the access token is valid for.
	Resource string

	// UserID is the normalized user identifier (unique id when known,
	// displayable id otherwise). Empty for entries without user identity.
	UserID string
}

// Normalized returns the canonical form of the key used for storage and
// comparison: authority host and user id lowercased, resource and client
// id untouched.
func (k Key) Normalized() Key {
	return Key{
		Authority: NormalizeAuthority(k.Authority),
		ClientID:  k.ClientID,
		Resource:  k.Resource,
		UserID:    strings.ToLower(strings.TrimSpace(k.UserID)),
	}
}

// NormalizeAuthority canonicalizes an authority URL for cache-key
// comparison: the host is lowercased and any trailing slash dropped. A
// string that does not parse as a URL is returned lowercased as-is; key
// comparison still works, it just loses host-only case folding.
func NormalizeAuthority(authority string) string {
	authority = strings.TrimRight(strings.TrimSpace(authority), "/")
	u, err := url.Parse(authority)
	if err != nil || u.Host == "" {
		return strings.ToLower(authority)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	return u.String()
}

// Item is a single token cache entry.
type Item struct {
	// Authority, ClientID, Resource and UserID form the entry's key.
	Authority string `json:"authority"`
	ClientID  string `json:"client_id"`
	Resource  string `json:"resource"`
	UserID    string `json:"user_id,omitempty"`

	// UniqueID is the stable unique user identifier (oid or sub claim)
	// extracted from the id token, when one was issued.
	UniqueID string `json:"unique_id,omitempty"`

	// DisplayableID is the human-readable user identifier (UPN or email)
	// extracted from the id token, when one was issued.
	DisplayableID string `json:"displayable_id,omitempty"`

	// AccessToken is the bearer token used for authorization.
	AccessToken string `json:"access_token"`

	// RefreshToken is used to obtain new access tokens (optional).
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresOn is the absolute expiry of the access token.
	ExpiresOn time.Time `json:"expires_on,omitempty"`

	// RawIDToken is the id token exactly as issued.
	RawIDToken string `json:"id_token,omitempty"`

	// MultiResourceRefreshToken marks the refresh token as reusable
	// across resources for the same client and user.
	MultiResourceRefreshToken bool `json:"mrrt,omitempty"`

	// StoredAt is when the entry was last written. Lookup recency
	// ordering relies on it.
	StoredAt time.Time `json:"stored_at"`
}

// Key returns the entry's normalized cache key.
func (i *Item) Key() Key {
	return Key{
		Authority: i.Authority,
		ClientID:  i.ClientID,
		Resource:  i.Resource,
		UserID:    i.UserID,
	}.Normalized()
}

// IsExpired reports whether the access token is expired at the given
// instant, with a margin for clock skew and in-flight latency. Entries
// without an expiry never expire.
func (i *Item) IsExpired(now time.Time, margin time.Duration) bool {
	if i.ExpiresOn.IsZero() {
		return false
	}
	return now.Add(margin).After(i.ExpiresOn)
}

// ToOAuth2Token converts the entry to an oauth2.Token, carrying the raw
// id token as extra data under "id_token".
func (i *Item) ToOAuth2Token() *oauth2.Token {
	token := &oauth2.Token{
		AccessToken:  i.AccessToken,
		RefreshToken: i.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       i.ExpiresOn,
	}
	if i.RawIDToken != "" {
		token = token.WithExtra(map[string]interface{}{
			"id_token": i.RawIDToken,
		})
	}
	return token
}

// Clone returns a copy of the item so callers can mutate their view
// without racing the store.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	clone := *i
	return &clone
}
