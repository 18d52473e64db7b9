package client

import (
	"os"
	"path/filepath"
	"testing"

	"goingmarry-api/internal/model"
)

func TestSessionRoundTrip(t *testing.T) {
	store := NewSessionStore(filepath.Join(t.TempDir(), "session.json"))

	seller := &model.Seller{
		ID:           "seller-1",
		Name:         "Rowie",
		Email:        "rowie@example.com",
		BoutiqueName: "Rowie's Closet",
	}
	if err := store.Establish("tok-123", seller); err != nil {
		t.Fatalf("Establish: %v", err)
	}

	s, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !s.Active() {
		t.Fatal("expected an active session")
	}
	if s.Token != "tok-123" || s.Seller.BoutiqueName != "Rowie's Closet" {
		t.Errorf("session = %+v", s)
	}
}

func TestSessionClear(t *testing.T) {
	store := NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
	store.Establish("tok", &model.Seller{ID: "x"})

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	s, err := store.Load()
	if err != nil {
		t.Fatalf("Load after clear: %v", err)
	}
	if s.Active() {
		t.Error("cleared session should be inactive")
	}

	// Clearing twice is fine.
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear: %v", err)
	}
}

func TestSessionLoadMissingOrCorrupt(t *testing.T) {
	dir := t.TempDir()

	s, err := NewSessionStore(filepath.Join(dir, "absent.json")).Load()
	if err != nil {
		t.Fatalf("Load missing: %v", err)
	}
	if s.Active() {
		t.Error("missing session file should mean logged out")
	}

	corrupt := filepath.Join(dir, "corrupt.json")
	os.WriteFile(corrupt, []byte("{not json"), 0o600)
	s, err = NewSessionStore(corrupt).Load()
	if err != nil {
		t.Fatalf("Load corrupt: %v", err)
	}
	if s.Active() {
		t.Error("corrupt session file should mean logged out")
	}
}

func TestValidateNewPassword(t *testing.T) {
	if err := ValidateNewPassword("hunter22", "hunter22"); err != nil {
		t.Errorf("valid password rejected: %v", err)
	}
	if err := ValidateNewPassword("hunter22", "different"); err == nil {
		t.Error("mismatched confirmation accepted")
	}
	if err := ValidateNewPassword("short", "short"); err == nil {
		t.Error("five-character password accepted")
	}
}
