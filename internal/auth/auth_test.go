package auth

import (
	"testing"
	"time"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret" {
		t.Fatalf("hash must not equal the plaintext")
	}
	if err := CheckPassword(hash, "s3cret"); err != nil {
		t.Fatalf("check: %v", err)
	}
	if err := CheckPassword(hash, "wrong"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	token, err := issuer.Mint("user-1")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	userID, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("subject = %q", userID)
	}
}

func TestTokenRejections(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	if _, err := issuer.Verify("not-a-token"); err != ErrInvalidToken {
		t.Fatalf("garbage token: %v", err)
	}

	other := NewTokenIssuer("other-secret", time.Hour)
	token, _ := other.Mint("user-1")
	if _, err := issuer.Verify(token); err != ErrInvalidToken {
		t.Fatalf("wrong secret: %v", err)
	}

	expired := NewTokenIssuer("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _ = expired.Mint("user-1")
	if _, err := issuer.Verify(token); err != ErrInvalidToken {
		t.Fatalf("expired token: %v", err)
	}
}
