package adal

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// UserInfo is the identity information extracted from an id token.
type UserInfo struct {
	// UniqueID is the stable unique identifier (oid claim, falling back
	// to sub).
	UniqueID string

	// DisplayableID is the human-readable identifier (upn, email or
	// unique_name claim).
	DisplayableID string

	GivenName        string
	FamilyName       string
	IdentityProvider string
	TenantID         string
}

// UserID returns the identifier used for cache keying: the displayable
// identifier when present, the unique identifier otherwise.
func (u *UserInfo) UserID() string {
	if u.DisplayableID != "" {
		return u.DisplayableID
	}
	return u.UniqueID
}

// ParseIDToken extracts user information from a raw id token. Only the
// payload segment is decoded; the signature is not verified, matching
// the client-side role of this library: the token came over TLS from the
// endpoint we sent the request to, and we use it for display and cache
// keying, not authorization decisions.
func ParseIDToken(rawIDToken string) (*UserInfo, error) {
	parts := strings.Split(rawIDToken, ".")
	if len(parts) != 3 {
		return nil, errors.New("id token is not a compact JWT")
	}

	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return nil, fmt.Errorf("failed to decode id token payload: %w", err)
	}

	var claims struct {
		ObjectID   string `json:"oid"`
		Subject    string `json:"sub"`
		UPN        string `json:"upn"`
		Email      string `json:"email"`
		UniqueName string `json:"unique_name"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
		IdP        string `json:"idp"`
		TenantID   string `json:"tid"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("failed to decode id token claims: %w", err)
	}

	info := &UserInfo{
		UniqueID:         claims.ObjectID,
		GivenName:        claims.GivenName,
		FamilyName:       claims.FamilyName,
		IdentityProvider: claims.IdP,
		TenantID:         claims.TenantID,
	}
	if info.UniqueID == "" {
		info.UniqueID = claims.Subject
	}

	switch {
	case claims.UPN != "":
		info.DisplayableID = claims.UPN
	case claims.Email != "":
		info.DisplayableID = claims.Email
	default:
		info.DisplayableID = claims.UniqueName
	}

	if info.UniqueID == "" && info.DisplayableID == "" {
		return nil, errors.New("id token carries no user identity claims")
	}

	return info, nil
}
