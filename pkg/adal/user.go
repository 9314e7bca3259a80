package adal

import "strings"

// UserIdentifierType tags a UserIdentifier with its match strictness.
type UserIdentifierType int

const (
	// UniqueID matches the stable unique identifier of a cache entry
	// exactly; entries for other users are never returned.
	UniqueID UserIdentifierType = iota

	// RequiredDisplayableID matches the displayable identifier (UPN or
	// email) of a cache entry exactly.
	RequiredDisplayableID

	// OptionalDisplayableID prefills the credential UI but does not
	// filter the cache; any entry for the authority/client/resource is
	// eligible.
	OptionalDisplayableID
)

// String returns the string representation of the identifier type.
func (t UserIdentifierType) String() string {
	switch t {
	case UniqueID:
		return "unique_id"
	case RequiredDisplayableID:
		return "required_displayable_id"
	case OptionalDisplayableID:
		return "optional_displayable_id"
	default:
		return "unknown"
	}
}

// RequiresMatch reports whether cache candidates must carry this exact
// identifier.
func (t UserIdentifierType) RequiresMatch() bool {
	return t == UniqueID || t == RequiredDisplayableID
}

// UserIdentifier names the user a token request is for. At most one
// identifying value is authoritative per mode: ID interpreted per Type.
// The zero value identifies no user (any cached entry is eligible).
type UserIdentifier struct {
	ID   string
	Type UserIdentifierType
}

// NewUserIdentifier creates an identifier with an explicit type.
func NewUserIdentifier(id string, idType UserIdentifierType) UserIdentifier {
	return UserIdentifier{ID: id, Type: idType}
}

// UserIdentifierFromUserID wraps a plain user id string the way the
// userId-taking entry points do: a displayable identifier that must
// match.
func UserIdentifierFromUserID(userID string) UserIdentifier {
	return UserIdentifier{ID: userID, Type: RequiredDisplayableID}
}

// IsAnyUser reports whether the identifier places no constraint on the
// user at all.
func (u UserIdentifier) IsAnyUser() bool {
	return u.ID == ""
}

// Normalized returns the identifier value in cache-key form.
func (u UserIdentifier) Normalized() string {
	return strings.ToLower(strings.TrimSpace(u.ID))
}
