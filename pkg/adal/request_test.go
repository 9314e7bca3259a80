package adal

import (
	"context"
	"testing"
)

func TestNewRequest_UserPrecedence(t *testing.T) {
	c, err := NewAuthenticationContext("https://login.example.com/tenant")
	if err != nil {
		t.Fatalf("Failed to create context: %v", err)
	}

	t.Run("nil options", func(t *testing.T) {
		req := c.newRequest("https://api.example.com", "client-abc", "myapp://callback", nil, false)
		if !req.user.IsAnyUser() {
			t.Errorf("Expected no user constraint, got %+v", req.user)
		}
		if req.silent {
			t.Error("Expected a non-silent request")
		}
	})

	t.Run("plain user id becomes a required displayable id", func(t *testing.T) {
		req := c.newRequest("r", "c", "", &AcquireOptions{UserID: "user@example.com"}, true)
		if req.user.ID != "user@example.com" || req.user.Type != RequiredDisplayableID {
			t.Errorf("Unexpected identifier %+v", req.user)
		}
	})

	t.Run("explicit identifier wins over the plain id", func(t *testing.T) {
		explicit := NewUserIdentifier("unique-123", UniqueID)
		req := c.newRequest("r", "c", "", &AcquireOptions{
			UserID: "user@example.com",
			User:   &explicit,
		}, true)
		if req.user != explicit {
			t.Errorf("Expected the explicit identifier to win, got %+v", req.user)
		}
	})
}

func TestNewRequest_CredentialsOverride(t *testing.T) {
	c, err := NewAuthenticationContext("https://login.example.com/tenant",
		WithCredentialsType(CredentialsEmbedded))
	if err != nil {
		t.Fatalf("Failed to create context: %v", err)
	}

	req := c.newRequest("r", "c", "", nil, false)
	if req.credentials != CredentialsEmbedded {
		t.Errorf("Expected the context default, got %v", req.credentials)
	}

	auto := CredentialsAuto
	req = c.newRequest("r", "c", "", &AcquireOptions{CredentialsType: &auto}, false)
	if req.credentials != CredentialsAuto {
		t.Errorf("Expected the per-call override, got %v", req.credentials)
	}
}

func TestDispatch_NilCallbackPanics(t *testing.T) {
	c, err := NewAuthenticationContext("https://login.example.com/tenant")
	if err != nil {
		t.Fatalf("Failed to create context: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("Expected panic for nil callback")
		}
	}()
	c.AcquireTokenSilent(context.Background(), "r", "c", "", nil, nil)
}
