package adal

import (
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"adauth/pkg/adal/broker"
	"adauth/pkg/adal/cache"
)

// AuthenticationContext manages token acquisition against a single
// authority. Create one per AAD or ADFS authority; it is safe for
// concurrent use and outlives all requests issued through it.
type AuthenticationContext struct {
	authority            string
	validateAuthority    bool
	correlationID        uuid.UUID
	credentialsType      CredentialsType
	applicationURLScheme string

	tokenCache cache.Store
	transport  Transport
	ui         CredentialUI
	invoker    broker.Invoker
	router     *broker.Router
	validator  AuthorityValidator

	logger *slog.Logger
	now    func() time.Time

	authorityGuard authorityGuard
}

// Option configures an AuthenticationContext.
type Option func(*AuthenticationContext)

// WithValidateAuthority controls authority validation before the first
// network call of each request. Enabled by default; it only takes effect
// when an AuthorityValidator is configured.
func WithValidateAuthority(validate bool) Option {
	return func(c *AuthenticationContext) {
		c.validateAuthority = validate
	}
}

// WithCorrelationID pins the correlation identifier used for every
// request issued through the context. When unset, a fresh identifier is
// generated per request.
func WithCorrelationID(id uuid.UUID) Option {
	return func(c *AuthenticationContext) {
		c.correlationID = id
	}
}

// WithCredentialsType sets the default credential surface policy.
// CredentialsEmbedded suppresses broker delegation entirely.
func WithCredentialsType(t CredentialsType) Option {
	return func(c *AuthenticationContext) {
		c.credentialsType = t
	}
}

// WithApplicationURLScheme registers the application's URL scheme for
// broker response recognition. Required for broker delegation.
func WithApplicationURLScheme(scheme string) Option {
	return func(c *AuthenticationContext) {
		c.applicationURLScheme = scheme
	}
}

// WithTokenCache sets the shared token cache. Defaults to a fresh
// in-memory store; pass the same Store to multiple contexts to share
// entries between them.
func WithTokenCache(store cache.Store) Option {
	return func(c *AuthenticationContext) {
		c.tokenCache = store
	}
}

// WithTransport sets the token endpoint transport collaborator.
func WithTransport(t Transport) Option {
	return func(c *AuthenticationContext) {
		c.transport = t
	}
}

// WithCredentialUI sets the interactive authorization collaborator.
func WithCredentialUI(ui CredentialUI) Option {
	return func(c *AuthenticationContext) {
		c.ui = ui
	}
}

// WithBroker sets the broker application collaborator.
func WithBroker(invoker broker.Invoker) Option {
	return func(c *AuthenticationContext) {
		c.invoker = invoker
	}
}

// WithBrokerRouter sets the response router used for broker delegation.
// Defaults to broker.DefaultRouter; tests pass isolated routers.
func WithBrokerRouter(router *broker.Router) Option {
	return func(c *AuthenticationContext) {
		c.router = router
	}
}

// WithAuthorityValidator sets the authority metadata validation
// collaborator.
func WithAuthorityValidator(v AuthorityValidator) Option {
	return func(c *AuthenticationContext) {
		c.validator = v
	}
}

// WithLogger sets the logger. Defaults to slog.Default(). Token values
// are never logged regardless of level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *AuthenticationContext) {
		c.logger = logger
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *AuthenticationContext) {
		c.now = now
	}
}

// NewAuthenticationContext creates a context for the given authority,
// e.g. "https://login.example.com/tenant". The authority must be an
// absolute http(s) URL; construction fails with an invalid_authority
// error otherwise.
func NewAuthenticationContext(authority string, opts ...Option) (*AuthenticationContext, error) {
	normalized, err := checkAuthority(authority)
	if err != nil {
		return nil, wrapError(ErrorInvalidAuthority, uuid.Nil, "invalid authority", err)
	}

	c := &AuthenticationContext{
		authority:         normalized,
		validateAuthority: true,
		logger:            slog.Default(),
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.tokenCache == nil {
		c.tokenCache = cache.NewMemoryStore()
	}
	if c.router == nil {
		c.router = broker.DefaultRouter
	}
	if c.applicationURLScheme != "" {
		c.router.RegisterScheme(c.applicationURLScheme)
	}

	return c, nil
}

// checkAuthority performs the construction-time syntactic checks and
// returns the trimmed form.
func checkAuthority(authority string) (string, error) {
	authority = strings.TrimSpace(authority)
	if authority == "" {
		return "", errors.New("authority must not be empty")
	}

	u, err := url.Parse(authority)
	if err != nil {
		return "", err
	}
	if (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return "", errors.New("authority must be an absolute http(s) URL")
	}

	return strings.TrimRight(authority, "/"), nil
}

// Authority returns the authority the context is bound to.
func (c *AuthenticationContext) Authority() string {
	return c.authority
}

// CorrelationID returns the pinned correlation identifier, or uuid.Nil
// when identifiers are generated per request.
func (c *AuthenticationContext) CorrelationID() uuid.UUID {
	return c.correlationID
}

// TokenCache returns the shared token cache.
func (c *AuthenticationContext) TokenCache() cache.Store {
	return c.tokenCache
}

// requestCorrelationID picks the correlation identifier for one request.
func (c *AuthenticationContext) requestCorrelationID() uuid.UUID {
	if c.correlationID != uuid.Nil {
		return c.correlationID
	}
	return uuid.New()
}

// brokerAvailable reports whether broker delegation is possible for this
// context: a reachable broker application, a registered URL scheme to
// receive the response on, and a credential policy that permits external
// applications.
func (c *AuthenticationContext) brokerAvailable(credentials CredentialsType) bool {
	if credentials == CredentialsEmbedded {
		return false
	}
	return c.invoker != nil && c.applicationURLScheme != "" && c.invoker.Available()
}
