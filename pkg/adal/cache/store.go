package cache

// Store is the token cache collaborator contract. Each method is
// individually atomic; implementations own their locking and may be
// shared across AuthenticationContexts and processes.
type Store interface {
	// Lookup returns every entry matching the key. Zero-valued Resource
	// and UserID fields act as wildcards; Authority and ClientID are
	// always required. The returned items are the caller's to keep.
	Lookup(key Key) []*Item

	// Write stores the item, overwriting any entry with the same
	// normalized key. Appending a duplicate for an existing key is an
	// invariant violation.
	Write(item *Item) error

	// Remove deletes the entry with the exact normalized key, if present.
	Remove(key Key) error
}
