// Package broker implements the delegation protocol between the token
// resolution engine and a system-installed authenticator application.
//
// Broker delegation is inherently cross-process: the engine hands an
// authorization request to the broker application and the response comes
// back later through the platform's URL-open boundary. The Router owns
// the pending-request table that correlates inbound responses with
// in-flight requests by correlation identifier.
//
// # Router lifecycle
//
// A Router is an explicit object so tests can instantiate isolated
// instances. Production code normally uses the package-level
// DefaultRouter through the two process-wide entry points:
//
//	if broker.IsResponseFromBroker(sourceApplication, url) {
//	    broker.HandleResponse(url)
//	}
//
// A response whose correlation identifier has no pending entry is a
// logged no-op: it may belong to a different consumer of the same URL
// scheme and must neither crash nor complete anyone's callback.
package broker
