package auth

import (
	"errors"
	"testing"
	"time"
)

var testSecret = []byte("unit-test-secret")

func TestIssueAndParseToken(t *testing.T) {
	tok, err := IssueToken(testSecret, "user-1", "a@b.com", "user", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	claims, err := ParseToken(testSecret, tok)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "a@b.com" || claims.Role != "user" {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("subject = %q", claims.Subject)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	tok, err := IssueToken(testSecret, "user-1", "a@b.com", "user", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := ParseToken([]byte("other-secret"), tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong secret: %v", err)
	}
}

func TestParseToken_Expired(t *testing.T) {
	tok, err := IssueToken(testSecret, "user-1", "a@b.com", "user", -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := ParseToken(testSecret, tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token: %v", err)
	}
}

func TestParseToken_Garbage(t *testing.T) {
	for _, tok := range []string{"", "not.a.jwt", "aaaa.bbbb.cccc"} {
		if _, err := ParseToken(testSecret, tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("token %q: %v", tok, err)
		}
	}
}
