// Package wire implements the OAuth2 wire formats used by the token
// resolution engine: grant encoding for the token endpoint, token response
// decoding, authorization request URL construction, and redirect response
// parsing.
//
// The package deliberately stops at encoding and decoding. The HTTP
// exchange itself is performed by the Transport collaborator supplied to
// the engine, so nothing in this package opens a connection.
//
// # Grants
//
// Three grant types are encoded, matching the escalation paths of the
// engine:
//
//   - refresh_token: exchanging a cached refresh token
//   - urn:ietf:params:oauth:grant-type:saml*-bearer: SAML assertion exchange
//   - authorization_code: exchanging the code returned by interactive or
//     broker-delegated authorization
//
// All grants are application/x-www-form-urlencoded bodies represented as
// url.Values, ready for the Transport's Exchange call.
package wire
