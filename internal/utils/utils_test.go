package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("s3cret", 42, "TENANT", 15)
	if err != nil {
		t.Fatal(err)
	}
	if time.Until(tok.Exp) <= 14*time.Minute {
		t.Errorf("expiry too early: %s", tok.Exp)
	}
	c, err := ParseAccessToken("s3cret", tok.Token)
	if err != nil {
		t.Fatal(err)
	}
	if c.UserID != 42 || c.Role != "TENANT" {
		t.Errorf("claims = %+v", c)
	}
}

func TestParseAccessTokenRejects(t *testing.T) {
	good, _ := NewAccessToken("s3cret", 1, "TENANT", 15)
	expired, _ := NewAccessToken("s3cret", 1, "TENANT", -5)
	noRole, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("s3cret"))
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "1", "role": "SUPER_ADMIN", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	cases := map[string]struct{ secret, raw string }{
		"wrong secret": {"other", good.Token},
		"expired":      {"s3cret", expired.Token},
		"no role":      {"s3cret", noRole},
		"alg none":     {"s3cret", none},
		"garbage":      {"s3cret", "not.a.jwt"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseAccessToken(tc.secret, tc.raw); err != ErrInvalidToken {
				t.Errorf("err = %v; want ErrInvalidToken", err)
			}
		})
	}
}

func TestRefreshToken(t *testing.T) {
	rt, err := NewRefreshToken(7)
	if err != nil {
		t.Fatal(err)
	}
	if len(rt.Raw) != 96 {
		t.Errorf("raw length = %d", len(rt.Raw))
	}
	h := HashRefreshRaw(rt.Raw)
	if len(h) != 64 || h == rt.Raw || h != HashRefreshRaw(rt.Raw) {
		t.Errorf("unexpected hash %q", h)
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("nyumba123", 4)
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyPassword(hash, "nyumba123") || VerifyPassword(hash, "nyumba124") {
		t.Error("verify mismatch")
	}
}

func TestCheckPasswordStrength(t *testing.T) {
	for pw, ok := range map[string]bool{
		"short1":      false,
		"lettersonly": false,
		"12345678":    false,
		"nyumba2024":  true,
		"karibusana1": true,
	} {
		err := CheckPasswordStrength(pw)
		if (err == nil) != ok {
			t.Errorf("%q: err = %v", pw, err)
		}
	}
	if !strings.Contains(ErrWeakPassword.Error(), "8") {
		t.Error("message should name the minimum")
	}
}
