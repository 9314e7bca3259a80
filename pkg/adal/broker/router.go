package broker

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultBrokerApplication is the trusted source application identifier
// of the platform authenticator.
const DefaultBrokerApplication = "com.azure.authenticator"

// BrokerResponseHost is the reserved host of broker response URLs. A
// response arrives as <application-scheme>://broker?<parameters>.
const BrokerResponseHost = "broker"

// Request is the authorization request handed to the broker application,
// carried across the process boundary by the Invoker.
type Request struct {
	// Authority is the identity provider endpoint to authorize against.
	Authority string

	// ClientID, Resource and RedirectURI mirror the originating token
	// request.
	ClientID    string
	Resource    string
	RedirectURI string

	// LoginHint prefills the broker's account picker.
	LoginHint string

	// Prompt carries the prompt instruction (see package wire).
	Prompt string

	// ExtraQueryParameters is appended to the broker's authorization
	// request verbatim.
	ExtraQueryParameters string

	// CorrelationID correlates the eventual response with this request.
	CorrelationID uuid.UUID
}

// Invoker is the OS-level collaborator that launches the broker
// application. Implementations are platform-specific.
type Invoker interface {
	// Available reports whether a broker application is installed and
	// reachable.
	Available() bool

	// Invoke hands the request to the broker application. The response
	// arrives asynchronously through the Router.
	Invoke(ctx context.Context, req *Request) error
}

// pendingRequest is one in-flight broker delegation awaiting a response.
type pendingRequest struct {
	ch           chan *Response
	registeredAt time.Time
}

// Router correlates inbound broker responses with in-flight requests.
// It is safe for concurrent use: the pending table is mutated both by
// request dispatch and by asynchronous response delivery.
type Router struct {
	mu      sync.Mutex
	pending map[uuid.UUID]*pendingRequest
	schemes map[string]struct{}

	brokerApp  string
	pendingTTL time.Duration

	stopCleanup chan struct{}
	stopOnce    sync.Once

	logger *slog.Logger
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithBrokerApplication sets the trusted source application identifier.
func WithBrokerApplication(app string) RouterOption {
	return func(r *Router) {
		r.brokerApp = app
	}
}

// WithPendingTTL enables expiry of pending entries. Expired entries are
// resolved as timed out, so the waiting request terminates instead of
// leaking. Zero disables expiry (timeout policy is then the caller's
// context).
func WithPendingTTL(ttl time.Duration) RouterOption {
	return func(r *Router) {
		r.pendingTTL = ttl
	}
}

// WithRouterLogger sets the logger used for response routing decisions.
func WithRouterLogger(logger *slog.Logger) RouterOption {
	return func(r *Router) {
		r.logger = logger
	}
}

// NewRouter creates a Router. When a pending TTL is configured a cleanup
// goroutine runs until Stop is called.
func NewRouter(opts ...RouterOption) *Router {
	r := &Router{
		pending:     make(map[uuid.UUID]*pendingRequest),
		schemes:     make(map[string]struct{}),
		brokerApp:   DefaultBrokerApplication,
		stopCleanup: make(chan struct{}),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.pendingTTL > 0 {
		go r.cleanupLoop()
	}

	return r
}

// DefaultRouter is the process-wide router behind IsResponseFromBroker
// and HandleResponse.
var DefaultRouter = NewRouter()

// RegisterScheme registers an application URL scheme as belonging to
// this process. Responses on unregistered schemes are not recognized as
// broker responses.
func (r *Router) RegisterScheme(scheme string) {
	if scheme == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemes[scheme] = struct{}{}
}

// IsResponseFromBroker reports whether a URL delivered to the application
// is a broker response this router should handle. It is a pure predicate:
// malformed input yields false, never a panic.
func (r *Router) IsResponseFromBroker(sourceApplication, responseURL string) bool {
	if sourceApplication != r.brokerApp {
		return false
	}

	u, err := url.Parse(responseURL)
	if err != nil || u.Scheme == "" || u.Host != BrokerResponseHost {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.schemes[u.Scheme]
	return ok
}

// Register adds a pending entry for the correlation identifier and
// returns the channel its response will be delivered on. The channel is
// buffered; delivery never blocks the response boundary. A closed channel
// means the entry expired or was displaced before a response arrived.
//
// A pinned correlation id can collide when two delegations are in flight
// at once. The newer registration wins; the displaced entry's channel is
// closed so its request terminates instead of waiting forever.
func (r *Router) Register(correlationID uuid.UUID) <-chan *Response {
	ch := make(chan *Response, 1)

	r.mu.Lock()
	defer r.mu.Unlock()

	if displaced, ok := r.pending[correlationID]; ok {
		close(displaced.ch)
		r.logger.Warn("Displacing pending broker request with a duplicate correlation id",
			"correlation_id", correlationID.String(),
		)
	}
	r.pending[correlationID] = &pendingRequest{
		ch:           ch,
		registeredAt: time.Now(),
	}

	return ch
}

// Cancel removes a pending entry without delivering anything. Used when
// the waiting request terminates for reasons of its own (caller context
// cancelled, broker invocation failed).
func (r *Router) Cancel(correlationID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, correlationID)
}

// HandleResponse parses a broker response URL and resolves the matching
// in-flight request. A response with no matching pending entry is a
// logged no-op and returns false: it must not crash and must not complete
// anyone's callback.
func (r *Router) HandleResponse(responseURL string) bool {
	resp, err := ParseResponse(responseURL)
	if err != nil {
		r.logger.Warn("Discarding unparseable broker response",
			"error", err.Error(),
		)
		return false
	}

	r.mu.Lock()
	entry, ok := r.pending[resp.CorrelationID]
	if ok {
		delete(r.pending, resp.CorrelationID)
	}
	r.mu.Unlock()

	if !ok {
		// Unknown or expired correlation id. The response may belong to a
		// different consumer of the same URL scheme.
		r.logger.Debug("Broker response matches no pending request",
			"correlation_id", resp.CorrelationID.String(),
		)
		return false
	}

	entry.ch <- resp

	r.logger.Debug("Broker response routed to pending request",
		"correlation_id", resp.CorrelationID.String(),
		"is_error", resp.IsError(),
	)
	return true
}

// PendingCount returns the number of in-flight entries.
func (r *Router) PendingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Stop terminates the cleanup goroutine, if one is running.
func (r *Router) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCleanup)
	})
}

// cleanupLoop periodically expires pending entries older than the TTL.
func (r *Router) cleanupLoop() {
	ticker := time.NewTicker(r.pendingTTL / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.expirePending()
		case <-r.stopCleanup:
			return
		}
	}
}

// expirePending closes and removes entries past the TTL. The closed
// channel tells the waiting request the delegation timed out.
func (r *Router) expirePending() {
	cutoff := time.Now().Add(-r.pendingTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, entry := range r.pending {
		if entry.registeredAt.Before(cutoff) {
			close(entry.ch)
			delete(r.pending, id)
			r.logger.Warn("Expired pending broker request",
				"correlation_id", id.String(),
				"age", time.Since(entry.registeredAt).String(),
			)
		}
	}
}

// IsResponseFromBroker reports whether the URL is a broker response for
// the process-wide DefaultRouter.
func IsResponseFromBroker(sourceApplication, responseURL string) bool {
	return DefaultRouter.IsResponseFromBroker(sourceApplication, responseURL)
}

// HandleResponse dispatches a broker response through the process-wide
// DefaultRouter.
func HandleResponse(responseURL string) bool {
	return DefaultRouter.HandleResponse(responseURL)
}
