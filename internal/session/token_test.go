package session

import (
	"errors"
	"testing"
	"time"
)

func TestTokenCodecRoundTrip(t *testing.T) {
	codec := NewTokenCodec("secret", time.Hour)

	token, exp, err := codec.Sign("0812345678", "phone")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatal("expiry should be in the future")
	}

	sub, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if sub != "0812345678" {
		t.Fatalf("unexpected subject %q", sub)
	}
}

func TestTokenCodecRejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenCodec("secret-a", time.Hour).Sign("0812345678", "phone")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewTokenCodec("secret-b", time.Hour).Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestTokenCodecRejectsExpired(t *testing.T) {
	codec := NewTokenCodec("secret", time.Minute)
	codec.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }

	token, _, err := codec.Sign("0812345678", "phone")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	codec.now = time.Now
	if _, err := codec.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token rejection, got %v", err)
	}
}
