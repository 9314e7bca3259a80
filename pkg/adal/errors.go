package adal

import (
	"errors"

	"github.com/google/uuid"
)

// ErrCancelled is returned by a CredentialUI implementation when the user
// dismisses the credential surface. The engine turns it into a Cancelled
// result rather than a Failed one.
var ErrCancelled = errors.New("user cancelled authentication")

// ErrorKind classifies token acquisition failures.
type ErrorKind int

const (
	// ErrorUnknown is the zero value; it never appears on results the
	// engine produces.
	ErrorUnknown ErrorKind = iota

	// ErrorInvalidAuthority means the authority failed syntactic checks
	// at construction time or metadata validation at request time.
	ErrorInvalidAuthority

	// ErrorUserInputNeeded means a silent call reached a point where user
	// interaction would be required.
	ErrorUserInputNeeded

	// ErrorAssertionInvalid means the identity provider rejected the
	// supplied assertion.
	ErrorAssertionInvalid

	// ErrorTransientNetwork means the token endpoint could not be
	// reached; retrying the whole call may succeed.
	ErrorTransientNetwork

	// ErrorAuthorizationDenied means the interactive or broker-delegated
	// authorization was rejected, or could not be carried out at all (no
	// credential UI configured, broker invocation failed).
	ErrorAuthorizationDenied

	// ErrorBrokerResponseMismatch means a broker response arrived with no
	// matching in-flight request. Intentionally never surfaced as a
	// result; it exists for diagnostics only.
	ErrorBrokerResponseMismatch

	// ErrorCancelled accompanies a Cancelled result status.
	ErrorCancelled
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrorInvalidAuthority:
		return "invalid_authority"
	case ErrorUserInputNeeded:
		return "user_input_needed"
	case ErrorAssertionInvalid:
		return "assertion_invalid"
	case ErrorTransientNetwork:
		return "transient_network_error"
	case ErrorAuthorizationDenied:
		return "authorization_denied"
	case ErrorBrokerResponseMismatch:
		return "broker_response_mismatch"
	case ErrorCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Error is the failure type carried on Failed results. It keeps the
// request's correlation identifier so callers can line errors up with
// server-side diagnostics.
type Error struct {
	Kind          ErrorKind
	Message       string
	CorrelationID uuid.UUID

	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.cause.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

// Unwrap returns the underlying cause for error chain inspection.
func (e *Error) Unwrap() error {
	return e.cause
}

func newError(kind ErrorKind, correlationID uuid.UUID, message string) *Error {
	return &Error{
		Kind:          kind,
		Message:       message,
		CorrelationID: correlationID,
	}
}

func wrapError(kind ErrorKind, correlationID uuid.UUID, message string, cause error) *Error {
	return &Error{
		Kind:          kind,
		Message:       message,
		CorrelationID: correlationID,
		cause:         cause,
	}
}

// KindOf extracts the ErrorKind from an error chain. It returns
// ErrorUnknown when no *Error is present.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrorUnknown
}
