package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNormalizeEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Foo@Bar.com", "foo@bar.com"},
		{"  reader@booknest.local  ", "reader@booknest.local"},
		{"already@lower.com", "already@lower.com"},
	}
	for _, c := range cases {
		if got := NormalizeEmail(c.in); got != c.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSendOTPRequestValidation(t *testing.T) {
	req := &SendOTPRequest{Email: "not-an-email", Name: ""}
	err := Validate(req)
	if err == nil {
		t.Fatal("expected validation error")
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err type = %T, want *ValidationError", err)
	}
	if _, ok := verr.Fields["email"]; !ok {
		t.Error("missing per-field message for email")
	}
	if _, ok := verr.Fields["name"]; !ok {
		t.Error("missing per-field message for name")
	}
}

func TestRegisterRequestOTPFormat(t *testing.T) {
	req := &RegisterRequest{Email: "reader@booknest.local", OTP: "12a456", Password: "secret1"}
	if err := Validate(req); err == nil {
		t.Error("non-numeric otp passed validation")
	}

	req.OTP = "1234"
	if err := Validate(req); err == nil {
		t.Error("short otp passed validation")
	}

	req.OTP = "123456"
	if err := Validate(req); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}
}

func TestUserInfoExcludesSecrets(t *testing.T) {
	hash := "argon2-hash"
	code := "123456"
	u := &User{
		ID:           "u-1",
		Email:        "reader@booknest.local",
		PasswordHash: &hash,
		OTPCode:      &code,
		Role:         RoleCustomer,
		Status:       true,
	}

	info := u.ToUserInfo()
	if info.Email != u.Email || info.ID != u.ID {
		t.Error("projection lost identity fields")
	}

	raw, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal user: %v", err)
	}
	for _, secret := range []string{hash, code} {
		if strings.Contains(string(raw), secret) {
			t.Errorf("serialized user leaks %q", secret)
		}
	}
}
