package auth

import (
	"context"
	"strings"
	"testing"
	"time"
)

func newTestManager(t *testing.T) *JWTManager {
	t.Helper()
	m, err := NewJWTManager("0123456789abcdef", "test-issuer", "test-audience", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestIssueAndValidate(t *testing.T) {
	m := newTestManager(t)

	token, err := m.IssueToken("user-42", "u@example.com")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("token has wrong shape: %s", token)
	}

	subject, err := m.ValidateToken(context.Background(), token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if subject != "user-42" {
		t.Errorf("subject = %q, want user-42", subject)
	}
}

func TestValidateRejectsTampering(t *testing.T) {
	m := newTestManager(t)
	token, err := m.IssueToken("user-42", "")
	if err != nil {
		t.Fatal(err)
	}

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	if _, err := m.ValidateToken(context.Background(), tampered); err == nil {
		t.Fatal("expected tampered token to fail")
	}

	other, err := NewJWTManager("another-secret-key!", "test-issuer", "test-audience", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := other.ValidateToken(context.Background(), token); err == nil {
		t.Fatal("expected cross-key validation to fail")
	}
}

func TestValidateExpired(t *testing.T) {
	m := newTestManager(t)
	m.nowFunc = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := m.IssueToken("user-42", "")
	if err != nil {
		t.Fatal(err)
	}

	m.nowFunc = time.Now
	if _, err := m.ValidateToken(context.Background(), token); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestValidateWrongIssuer(t *testing.T) {
	m := newTestManager(t)
	token, err := m.IssueToken("user-42", "")
	if err != nil {
		t.Fatal(err)
	}

	other, err := NewJWTManager("0123456789abcdef", "other-issuer", "test-audience", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := other.ValidateToken(context.Background(), token); err == nil {
		t.Fatal("expected issuer mismatch to fail")
	}
}

func TestNewJWTManagerShortSecret(t *testing.T) {
	if _, err := NewJWTManager("short", "i", "a", time.Hour); err == nil {
		t.Fatal("expected error for short secret")
	}
}
