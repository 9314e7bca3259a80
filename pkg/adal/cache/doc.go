// Package cache defines the token cache contract consumed by the token
// resolution engine.
//
// The engine treats the cache as an external collaborator: Lookup, Write
// and Remove are individually atomic and implementations own their
// locking. The engine never holds a lock across its multi-stage flow, so
// a concurrent request may legitimately overwrite an entry mid-flight;
// the engine re-reads before overwriting instead of assuming ownership.
//
// # Keys
//
// Entries are keyed by (authority, client id, resource, user id). Keys
// are normalized before comparison: authority host and user id are
// case-insensitive, client id and resource are compared exactly.
//
// # MemoryStore
//
// MemoryStore is the bundled thread-safe, in-memory Store. Persistent
// stores (file, keychain) are the application's responsibility; anything
// satisfying Store can be shared across AuthenticationContexts.
package cache
