package utils

import "testing"

func TestTokenRoundTrip(t *testing.T) {
	tok, err := GenerateToken("op-1", "ops@example.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := ValidateToken(tok)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Subject != "op-1" || claims.Email != "ops@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestTokenTampered(t *testing.T) {
	tok, err := GenerateToken("op-1", "ops@example.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ValidateToken(tok + "x"); err == nil {
		t.Fatalf("expected tampered token to fail")
	}
}
