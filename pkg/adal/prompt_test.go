package adal

import (
	"testing"

	"adauth/pkg/adal/wire"
)

func TestEvaluatePrompt(t *testing.T) {
	cases := []struct {
		name         string
		behavior     PromptBehavior
		silent       bool
		wantAllowed  bool
		wantUIPrompt string
	}{
		{
			name:        "auto allows interaction after silent paths fail",
			behavior:    PromptAuto,
			wantAllowed: true,
		},
		{
			name:     "silent call never interacts",
			behavior: PromptAuto,
			silent:   true,
		},
		{
			name:     "silent call overrides always",
			behavior: PromptAlways,
			silent:   true,
		},
		{
			name:         "always forces the login prompt",
			behavior:     PromptAlways,
			wantAllowed:  true,
			wantUIPrompt: wire.PromptLogin,
		},
		{
			name:         "refresh session passes the instruction through",
			behavior:     PromptRefreshSession,
			wantAllowed:  true,
			wantUIPrompt: wire.PromptRefreshSession,
		},
		{
			name:         "force behaves like always at the policy level",
			behavior:     PromptForce,
			wantAllowed:  true,
			wantUIPrompt: wire.PromptLogin,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := EvaluatePrompt(tc.behavior, tc.silent)
			if got.Allowed != tc.wantAllowed {
				t.Errorf("Expected Allowed=%v, got %v", tc.wantAllowed, got.Allowed)
			}
			if got.UIPrompt != tc.wantUIPrompt {
				t.Errorf("Expected UIPrompt=%q, got %q", tc.wantUIPrompt, got.UIPrompt)
			}
		})
	}
}

func TestAssertionType_GrantType(t *testing.T) {
	if got := AssertionSAML11.GrantType(); got != wire.GrantTypeSAML11 {
		t.Errorf("Unexpected grant type %q for SAML 1.1", got)
	}
	if got := AssertionSAML2.GrantType(); got != wire.GrantTypeSAML2 {
		t.Errorf("Unexpected grant type %q for SAML 2.0", got)
	}
}
