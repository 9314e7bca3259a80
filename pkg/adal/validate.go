package adal

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// authorityGuard memoizes successful authority validations so that
// concurrent requests against one context share a single validator call
// instead of racing duplicate network round-trips.
type authorityGuard struct {
	mu        sync.RWMutex
	validated map[string]bool
	group     singleflight.Group
}

// checkAuthorityTrusted runs the configured validator for the context's
// authority, at most once per authority across all in-flight requests.
// Returns nil immediately when validation is disabled or no validator is
// configured; failures are never cached, so a later request retries.
func (c *AuthenticationContext) checkAuthorityTrusted(ctx context.Context) error {
	if !c.validateAuthority || c.validator == nil {
		return nil
	}

	g := &c.authorityGuard
	authority := c.authority

	// Fast path with read lock.
	g.mu.RLock()
	done := g.validated[authority]
	g.mu.RUnlock()
	if done {
		return nil
	}

	// Deduplicate concurrent validations.
	_, err, _ := g.group.Do(authority, func() (interface{}, error) {
		// Double-check after acquiring the singleflight slot.
		g.mu.RLock()
		done := g.validated[authority]
		g.mu.RUnlock()
		if done {
			return nil, nil
		}

		if err := c.validator.Validate(ctx, authority); err != nil {
			return nil, err
		}

		g.mu.Lock()
		if g.validated == nil {
			g.validated = make(map[string]bool)
		}
		g.validated[authority] = true
		g.mu.Unlock()

		return nil, nil
	})

	return err
}
