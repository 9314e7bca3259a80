package adal

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

func TestError_ErrorAndUnwrap(t *testing.T) {
	id := uuid.New()

	plain := newError(ErrorUserInputNeeded, id, "interaction required")
	if plain.Error() != "user_input_needed: interaction required" {
		t.Errorf("Unexpected error string %q", plain.Error())
	}
	if plain.Unwrap() != nil {
		t.Error("Expected no cause on a plain error")
	}

	cause := errors.New("connection refused")
	wrapped := wrapError(ErrorTransientNetwork, id, "token endpoint exchange failed", cause)
	if !errors.Is(wrapped, cause) {
		t.Error("Expected the cause to be reachable through errors.Is")
	}
	if wrapped.Error() != "transient_network_error: token endpoint exchange failed: connection refused" {
		t.Errorf("Unexpected error string %q", wrapped.Error())
	}
}

func TestKindOf(t *testing.T) {
	err := newError(ErrorAssertionInvalid, uuid.New(), "rejected")

	if KindOf(err) != ErrorAssertionInvalid {
		t.Errorf("Expected assertion_invalid, got %v", KindOf(err))
	}
	if KindOf(fmt.Errorf("outer: %w", err)) != ErrorAssertionInvalid {
		t.Error("Expected KindOf to see through wrapping")
	}
	if KindOf(errors.New("unrelated")) != ErrorUnknown {
		t.Error("Expected unknown kind for foreign errors")
	}
	if KindOf(nil) != ErrorUnknown {
		t.Error("Expected unknown kind for nil")
	}
}
