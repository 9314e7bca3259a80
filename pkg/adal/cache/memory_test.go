package cache

import (
	"testing"
	"time"
)

func testItem(resource, userID string) *Item {
	return &Item{
		Authority:    "https://login.example.com/tenant",
		ClientID:     "client-abc",
		Resource:     resource,
		UserID:       userID,
		AccessToken:  "at-" + resource,
		RefreshToken: "rt-" + resource,
		ExpiresOn:    time.Now().Add(time.Hour),
	}
}

func TestMemoryStore_WriteAndLookup(t *testing.T) {
	store := NewMemoryStore()

	if err := store.Write(testItem("https://api.example.com", "user@example.com")); err != nil {
		t.Fatalf("Failed to write item: %v", err)
	}

	items := store.Lookup(Key{
		Authority: "https://login.example.com/tenant",
		ClientID:  "client-abc",
		Resource:  "https://api.example.com",
		UserID:    "user@example.com",
	})
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	if items[0].AccessToken != "at-https://api.example.com" {
		t.Errorf("Unexpected access token %q", items[0].AccessToken)
	}
}

func TestMemoryStore_OverwriteNotAppend(t *testing.T) {
	store := NewMemoryStore()

	first := testItem("https://api.example.com", "user@example.com")
	if err := store.Write(first); err != nil {
		t.Fatalf("Failed to write item: %v", err)
	}

	second := testItem("https://api.example.com", "user@example.com")
	second.AccessToken = "newer"
	if err := store.Write(second); err != nil {
		t.Fatalf("Failed to overwrite item: %v", err)
	}

	if store.Count() != 1 {
		t.Fatalf("Expected overwrite to keep a single entry, got %d", store.Count())
	}

	items := store.Lookup(Key{Authority: first.Authority, ClientID: first.ClientID})
	if len(items) != 1 || items[0].AccessToken != "newer" {
		t.Errorf("Expected the newer entry to win, got %+v", items)
	}
}

func TestMemoryStore_WildcardLookup(t *testing.T) {
	store := NewMemoryStore()

	older := testItem("https://api-one.example.com", "user@example.com")
	older.StoredAt = time.Now().Add(-time.Minute)
	newer := testItem("https://api-two.example.com", "user@example.com")
	newer.StoredAt = time.Now()

	if err := store.Write(older); err != nil {
		t.Fatalf("Failed to write item: %v", err)
	}
	if err := store.Write(newer); err != nil {
		t.Fatalf("Failed to write item: %v", err)
	}

	// Wildcard resource: both entries, most recently written first.
	items := store.Lookup(Key{Authority: older.Authority, ClientID: older.ClientID})
	if len(items) != 2 {
		t.Fatalf("Expected 2 items for wildcard lookup, got %d", len(items))
	}
	if items[0].Resource != "https://api-two.example.com" {
		t.Errorf("Expected most recent entry first, got %q", items[0].Resource)
	}
}

func TestMemoryStore_AuthorityHostCaseInsensitive(t *testing.T) {
	store := NewMemoryStore()

	item := testItem("https://api.example.com", "User@Example.com")
	item.Authority = "https://LOGIN.Example.com/tenant"
	if err := store.Write(item); err != nil {
		t.Fatalf("Failed to write item: %v", err)
	}

	items := store.Lookup(Key{
		Authority: "https://login.example.com/tenant",
		ClientID:  "client-abc",
		Resource:  "https://api.example.com",
		UserID:    "user@example.com",
	})
	if len(items) != 1 {
		t.Fatalf("Expected case-insensitive host and user matching, got %d items", len(items))
	}
}

func TestMemoryStore_Remove(t *testing.T) {
	store := NewMemoryStore()

	item := testItem("https://api.example.com", "user@example.com")
	if err := store.Write(item); err != nil {
		t.Fatalf("Failed to write item: %v", err)
	}
	if err := store.Remove(item.Key()); err != nil {
		t.Fatalf("Failed to remove item: %v", err)
	}

	if store.Count() != 0 {
		t.Errorf("Expected empty store after remove, got %d entries", store.Count())
	}
}

func TestMemoryStore_LookupReturnsCopies(t *testing.T) {
	store := NewMemoryStore()

	if err := store.Write(testItem("https://api.example.com", "user@example.com")); err != nil {
		t.Fatalf("Failed to write item: %v", err)
	}

	items := store.Lookup(Key{Authority: "https://login.example.com/tenant", ClientID: "client-abc"})
	items[0].AccessToken = "mutated"

	again := store.Lookup(Key{Authority: "https://login.example.com/tenant", ClientID: "client-abc"})
	if again[0].AccessToken == "mutated" {
		t.Error("Expected Lookup to return copies, caller mutation leaked into the store")
	}
}

func TestItem_IsExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	item := &Item{ExpiresOn: now.Add(10 * time.Second)}
	if !item.IsExpired(now, 30*time.Second) {
		t.Error("Expected token expiring within the margin to count as expired")
	}
	if item.IsExpired(now, 0) {
		t.Error("Expected token to be valid without margin")
	}

	forever := &Item{}
	if forever.IsExpired(now, time.Hour) {
		t.Error("Expected token without expiry to never expire")
	}
}

func TestItem_ToOAuth2Token(t *testing.T) {
	item := testItem("https://api.example.com", "user@example.com")
	item.RawIDToken = "raw-id-token"

	token := item.ToOAuth2Token()
	if token.AccessToken != item.AccessToken {
		t.Errorf("Expected access token %q, got %q", item.AccessToken, token.AccessToken)
	}
	if token.RefreshToken != item.RefreshToken {
		t.Errorf("Expected refresh token %q, got %q", item.RefreshToken, token.RefreshToken)
	}
	if got := token.Extra("id_token"); got != "raw-id-token" {
		t.Errorf("Expected id_token extra %q, got %v", "raw-id-token", got)
	}
}
