package auth

import "testing"

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	token, expiresAt, err := tm.GenerateToken("agent-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if expiresAt.IsZero() {
		t.Error("expected an expiry")
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.AgentID != "agent-1" {
		t.Errorf("expected agent-1, got %q", claims.AgentID)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("secret-a", 60).GenerateToken("agent-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := NewTokenManager("secret-b", 60).ParseToken(token); err == nil {
		t.Fatal("expected parse failure with wrong secret")
	}
}

func TestParseToken_Garbage(t *testing.T) {
	if _, err := NewTokenManager("secret", 60).ParseToken("not.a.token"); err == nil {
		t.Fatal("expected parse failure")
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cure-pass", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := ComparePassword(hash, "s3cure-pass"); err != nil {
		t.Errorf("expected match: %v", err)
	}
	if err := ComparePassword(hash, "wrong"); err == nil {
		t.Error("expected mismatch")
	}
}
