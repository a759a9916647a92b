package auth

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := NewAccessToken("u-123", "reader@booknest.local", "customer", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	claims, err := Parse(token, testSecret)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if claims.Sub != "u-123" {
		t.Errorf("sub = %q, want u-123", claims.Sub)
	}
	if claims.Email != "reader@booknest.local" {
		t.Errorf("email = %q, want reader@booknest.local", claims.Email)
	}
	if claims.Role != "customer" {
		t.Errorf("role = %q, want customer", claims.Role)
	}
}

func TestParseExpiredToken(t *testing.T) {
	token, err := NewAccessToken("u-123", "reader@booknest.local", "customer", testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	_, err = Parse(token, testSecret)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Parse expired token err = %v, want ErrTokenExpired", err)
	}
}

func TestParseWrongSecret(t *testing.T) {
	token, err := NewAccessToken("u-123", "reader@booknest.local", "customer", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	_, err = Parse(token, "other-secret")
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Parse with wrong secret err = %v, want ErrTokenInvalid", err)
	}
}

func TestParseGarbage(t *testing.T) {
	if _, err := Parse("not-a-token", testSecret); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Parse garbage err = %v, want ErrTokenInvalid", err)
	}
}

func TestDecodeExpiry(t *testing.T) {
	ttl := 24 * time.Hour
	token, err := NewAccessToken("u-123", "reader@booknest.local", "customer", testSecret, ttl)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	exp, err := DecodeExpiry(token)
	if err != nil {
		t.Fatalf("DecodeExpiry: %v", err)
	}

	want := time.Now().Add(ttl)
	if exp.Before(want.Add(-time.Minute)) || exp.After(want.Add(time.Minute)) {
		t.Errorf("expiry = %v, want within a minute of %v", exp, want)
	}

	if _, err := DecodeExpiry("junk"); err == nil {
		t.Error("DecodeExpiry(junk) did not fail")
	}
}
