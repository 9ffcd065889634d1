package enroll

import (
	"testing"
	"time"
)

func TestIssueAndVerifyToken(t *testing.T) {
	secret := []byte("test-secret")
	tok, err := IssueToken(secret, "worker-9", 2*time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	claims, err := VerifyToken(secret, tok)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.Subject != "worker-9" {
		t.Fatalf("subject = %q, want worker-9", claims.Subject)
	}
	if claims.ExpiresAt == nil {
		t.Fatalf("expected ExpiresAt to be set")
	}
	if time.Until(claims.ExpiresAt.Time) <= 0 {
		t.Fatalf("token already expired")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	tok, err := IssueToken([]byte("right"), "worker-1", time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := VerifyToken([]byte("wrong"), tok); err == nil {
		t.Fatal("expected verification failure with wrong secret")
	}
}
