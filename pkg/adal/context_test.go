package adal

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewAuthenticationContext(t *testing.T) {
	c, err := NewAuthenticationContext("https://login.example.com/tenant/")
	if err != nil {
		t.Fatalf("Failed to create context: %v", err)
	}

	if c.Authority() != "https://login.example.com/tenant" {
		t.Errorf("Expected trailing slash to be trimmed, got %q", c.Authority())
	}
	if c.TokenCache() == nil {
		t.Error("Expected a default token cache")
	}
	if c.CorrelationID() != uuid.Nil {
		t.Errorf("Expected per-request correlation ids by default, got pinned %s", c.CorrelationID())
	}
}

func TestNewAuthenticationContext_InvalidAuthority(t *testing.T) {
	cases := []struct {
		name      string
		authority string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"relative", "login.example.com/tenant"},
		{"wrong scheme", "ftp://login.example.com/tenant"},
		{"no host", "https:///tenant"},
		{"unparseable", "https://login.example.com/%zz"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewAuthenticationContext(tc.authority)
			if err == nil {
				t.Fatalf("Expected error for authority %q", tc.authority)
			}
			if KindOf(err) != ErrorInvalidAuthority {
				t.Errorf("Expected invalid_authority, got %v", KindOf(err))
			}
		})
	}
}

func TestNewAuthenticationContext_PinnedCorrelationID(t *testing.T) {
	pinned := uuid.New()
	c, err := NewAuthenticationContext("https://login.example.com/tenant", WithCorrelationID(pinned))
	if err != nil {
		t.Fatalf("Failed to create context: %v", err)
	}

	if c.CorrelationID() != pinned {
		t.Errorf("Expected pinned correlation id %s, got %s", pinned, c.CorrelationID())
	}
	if c.requestCorrelationID() != pinned {
		t.Error("Expected requests to reuse the pinned correlation id")
	}
}

func TestAuthenticationContext_BrokerAvailability(t *testing.T) {
	newCtx := func(t *testing.T, opts ...Option) *AuthenticationContext {
		t.Helper()
		c, err := NewAuthenticationContext("https://login.example.com/tenant", opts...)
		if err != nil {
			t.Fatalf("Failed to create context: %v", err)
		}
		return c
	}

	t.Run("no invoker", func(t *testing.T) {
		c := newCtx(t, WithApplicationURLScheme("myapp"))
		if c.brokerAvailable(CredentialsAuto) {
			t.Error("Expected broker to be unavailable without an invoker")
		}
	})

	t.Run("no application scheme", func(t *testing.T) {
		c := newCtx(t, WithBroker(&fakeInvoker{available: true}))
		if c.brokerAvailable(CredentialsAuto) {
			t.Error("Expected broker to be unavailable without a registered scheme")
		}
	})

	t.Run("invoker reports unavailable", func(t *testing.T) {
		c := newCtx(t, WithApplicationURLScheme("myapp"), WithBroker(&fakeInvoker{}))
		if c.brokerAvailable(CredentialsAuto) {
			t.Error("Expected broker to be unavailable when the invoker says so")
		}
	})

	t.Run("available", func(t *testing.T) {
		c := newCtx(t, WithApplicationURLScheme("myapp"), WithBroker(&fakeInvoker{available: true}))
		if !c.brokerAvailable(CredentialsAuto) {
			t.Error("Expected broker to be available")
		}
	})

	t.Run("embedded credentials suppress the broker", func(t *testing.T) {
		c := newCtx(t, WithApplicationURLScheme("myapp"), WithBroker(&fakeInvoker{available: true}))
		if c.brokerAvailable(CredentialsEmbedded) {
			t.Error("Expected embedded credentials to rule the broker out")
		}
	})
}
