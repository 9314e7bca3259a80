// Package adal implements client-side token acquisition against an
// OAuth2 identity provider of the AAD/ADFS family. Given an authority, a
// resource identifier and a client identifier, it produces an access
// token for a user with as few network round-trips and as little user
// interaction as the token cache and refresh-token exchange allow.
//
// # Token resolution
//
// Every acquisition runs an independent instance of the token resolution
// state machine. The engine first consults the cache: an unexpired
// access token satisfies the request with zero network calls, a refresh
// token (including a multi-resource refresh token for the same
// client/user/authority) escalates to a refresh exchange. Only when both
// are exhausted does the request reach interaction, routed to a
// system-installed broker application when one is available and
// permitted, and to the credential UI otherwise. Silent variants fail
// with user_input_needed instead of ever displaying anything.
//
//	authctx, err := adal.NewAuthenticationContext(
//	    "https://login.example.com/tenant",
//	    adal.WithTransport(transport),
//	    adal.WithCredentialUI(ui),
//	)
//	if err != nil {
//	    return err
//	}
//
//	authctx.AcquireToken(ctx, resource, clientID, redirectURI, nil,
//	    func(result *adal.AuthenticationResult) {
//	        if result.Status == adal.StatusSucceeded {
//	            use(result.AccessToken)
//	        }
//	    })
//
// # Collaborators
//
// The engine owns the decision procedure and nothing else. The HTTP
// exchange with the token endpoint (Transport), the credential UI
// surface (CredentialUI), authority metadata validation
// (AuthorityValidator), the token cache store (cache.Store) and the
// OS-level broker invocation (broker.Invoker) are narrow interfaces
// supplied at construction time. Defaults exist only where no platform
// integration is required: an in-memory cache and the process-wide
// broker response router.
//
// # Concurrency
//
// A context supports any number of concurrent in-flight requests. Each
// runs on its own goroutine, stage transitions are strictly sequential
// within a request, and the completion callback fires exactly once, after
// all cache side effects of that request are applied. No ordering exists
// between callbacks of different requests.
package adal
