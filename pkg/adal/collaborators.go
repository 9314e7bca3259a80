package adal

import (
	"context"
	"net/url"

	"adauth/pkg/adal/wire"
)

// Transport is the token endpoint collaborator. It performs the HTTP
// exchange of an encoded grant and decodes the response body.
//
// A transport error (connection, timeout, non-JSON body) means the
// endpoint could not be consulted and surfaces as a transient network
// failure. An OAuth2 error from the endpoint is not a transport error:
// it comes back as a TokenResponse with Error set.
type Transport interface {
	Exchange(ctx context.Context, endpoint string, grant url.Values) (*wire.TokenResponse, error)
}

// CredentialUI is the interactive authorization collaborator. Present
// renders the authorization request (embedded browser, system browser,
// credential dialog) and blocks until the flow ends on the redirect URI,
// returning that full redirect URL.
//
// Present returns ErrCancelled (possibly wrapped) when the user dismisses
// the surface. Implementations should honor ctx cancellation the same
// way.
type CredentialUI interface {
	Present(ctx context.Context, req *wire.AuthorizationRequest) (redirectURL string, err error)
}

// AuthorityValidator is the authority metadata discovery/validation
// collaborator. Validate returns nil when the authority is a known,
// trusted endpoint. The engine memoizes successful validations per
// authority.
type AuthorityValidator interface {
	Validate(ctx context.Context, authority string) error
}
