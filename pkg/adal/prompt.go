package adal

import "adauth/pkg/adal/wire"

// PromptBehavior controls whether and how the credential UI is shown.
type PromptBehavior int

const (
	// PromptAuto prompts only if the cache and refresh paths are
	// exhausted. Silent variants fail with user_input_needed instead.
	PromptAuto PromptBehavior = iota

	// PromptAlways prompts explicitly for credentials even when a valid
	// cached token exists. Useful in multi-user scenarios.
	PromptAlways

	// PromptRefreshSession re-authorizes the resource, reusing an
	// existing logon session when one exists. Sent to the authorization
	// endpoint as prompt=refresh_session.
	PromptRefreshSession

	// PromptForce prompts through the broker application when one is
	// installed, otherwise behaves like PromptAlways.
	PromptForce
)

// String returns the string representation of the prompt behavior.
func (b PromptBehavior) String() string {
	switch b {
	case PromptAuto:
		return "auto"
	case PromptAlways:
		return "always"
	case PromptRefreshSession:
		return "refresh_session"
	case PromptForce:
		return "force"
	default:
		return "unknown"
	}
}

// CredentialsType controls where the credential dialog resides.
type CredentialsType int

const (
	// CredentialsAuto lets the engine pick the most suitable surface,
	// including delegating to an installed broker application.
	CredentialsAuto CredentialsType = iota

	// CredentialsEmbedded confines authentication to an embedded dialog;
	// no external application or broker is ever invoked.
	CredentialsEmbedded
)

// String returns the string representation of the credentials type.
func (t CredentialsType) String() string {
	switch t {
	case CredentialsAuto:
		return "auto"
	case CredentialsEmbedded:
		return "embedded"
	default:
		return "unknown"
	}
}

// AssertionType identifies the format of a user assertion.
type AssertionType int

const (
	// AssertionSAML11 marks the assertion as SAML 1.1 (the default).
	AssertionSAML11 AssertionType = iota

	// AssertionSAML2 marks the assertion as SAML 2.0.
	AssertionSAML2
)

// GrantType returns the bearer grant type URN for the assertion format.
func (t AssertionType) GrantType() string {
	if t == AssertionSAML2 {
		return wire.GrantTypeSAML2
	}
	return wire.GrantTypeSAML11
}

// PromptDecision is the outcome of the prompt policy: whether interactive
// UI is permitted, and the instruction to pass through if it is.
type PromptDecision struct {
	// Allowed reports whether any user-visible interaction may happen.
	Allowed bool

	// UIPrompt is the prompt parameter for the authorization request
	// ("", wire.PromptLogin or wire.PromptRefreshSession). A UI-layer
	// instruction only; the engine just passes it through.
	UIPrompt string
}

// EvaluatePrompt is the pure prompt-policy function. Silent calls are
// never allowed to interact, regardless of behavior. For non-silent
// calls every behavior permits interaction once the engine has exhausted
// the cache and refresh paths; the difference is the instruction passed
// to the UI layer. Routing between broker and embedded UI is the
// engine's concern, not the policy's: an available broker is always
// preferred.
func EvaluatePrompt(behavior PromptBehavior, isSilentCall bool) PromptDecision {
	if isSilentCall {
		return PromptDecision{}
	}

	decision := PromptDecision{Allowed: true}
	switch behavior {
	case PromptAlways, PromptForce:
		decision.UIPrompt = wire.PromptLogin
	case PromptRefreshSession:
		decision.UIPrompt = wire.PromptRefreshSession
	}

	return decision
}
