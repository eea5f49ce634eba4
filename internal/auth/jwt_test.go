package auth

import (
	"strings"
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	m := NewManager("test-secret", 15*time.Minute)

	tok, err := m.GenerateAccessToken("user-1", "eli@example.com", "employee")
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}
	if strings.Count(tok, ".") != 2 {
		t.Fatalf("token is not a compact JWT: %q", tok)
	}

	claims, err := m.VerifyAccessToken(tok)
	if err != nil {
		t.Fatalf("VerifyAccessToken failed: %v", err)
	}

	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", claims.UserID)
	}
	if claims.Email != "eli@example.com" {
		t.Errorf("Email = %q", claims.Email)
	}
	if claims.Role != "employee" {
		t.Errorf("Role = %q", claims.Role)
	}
	if claims.JTI == "" {
		t.Error("JTI not set")
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) <= 0 {
		t.Error("token expiry not in the future")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := NewManager("test-secret", -1*time.Minute)

	tok, err := m.GenerateAccessToken("user-1", "eli@example.com", "employee")
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	if _, err := m.VerifyAccessToken(tok); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signer := NewManager("secret-a", 15*time.Minute)
	verifier := NewManager("secret-b", 15*time.Minute)

	tok, err := signer.GenerateAccessToken("user-1", "eli@example.com", "employee")
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	if _, err := verifier.VerifyAccessToken(tok); err == nil {
		t.Fatal("token signed with a different secret accepted")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := NewManager("test-secret", 15*time.Minute)

	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := m.VerifyAccessToken(tok); err == nil {
			t.Errorf("malformed token %q accepted", tok)
		}
	}
}
