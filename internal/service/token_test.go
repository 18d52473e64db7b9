package service

import (
	"testing"

	"goingmarry-api/internal/model"
)

func TestGenerateAndVerifyToken(t *testing.T) {
	tokens := NewTokenService("test-secret")

	seller := &model.Seller{
		ID:      "seller-1",
		Email:   "rowie@example.com",
		IsAdmin: true,
	}

	token, err := tokens.Generate(seller)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	identity, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if identity.ID != "seller-1" {
		t.Errorf("id = %q", identity.ID)
	}
	if identity.Email != "rowie@example.com" {
		t.Errorf("email = %q", identity.Email)
	}
	if !identity.IsAdmin {
		t.Error("admin flag lost in round trip")
	}
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	token, _ := NewTokenService("secret1").Generate(&model.Seller{ID: "x"})

	if _, err := NewTokenService("secret2").Verify(token); err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestVerifyTokenGarbage(t *testing.T) {
	if _, err := NewTokenService("secret").Verify("not-a-token"); err == nil {
		t.Error("expected error for malformed token")
	}
}
