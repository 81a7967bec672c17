package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/polkiloo/orderpay/internal/domain/model"
)

func TestNewJWTStrategy_DefaultTTL(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{})
	if string(strategy.secret) != "secret" {
		t.Fatalf("unexpected secret: %q", string(strategy.secret))
	}
	if strategy.ttl != 24*time.Hour {
		t.Fatalf("unexpected ttl: %s", strategy.ttl)
	}
}

func TestNewJWTStrategy_CustomTTL(t *testing.T) {
	ttl := 2 * time.Hour
	if strategy := NewJWTStrategy("secret", Options{TTL: ttl}); strategy.ttl != ttl {
		t.Fatalf("unexpected ttl: %s", strategy.ttl)
	}
}

func TestJWTStrategy_IssueAndParse(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{TTL: time.Minute})

	for _, p := range []Principal{
		{UserID: "u-1", Role: model.RoleUser},
		{UserID: "u-2", Role: model.RoleAdmin},
	} {
		token, err := strategy.IssueToken(p)
		if err != nil {
			t.Fatalf("issue token: %v", err)
		}
		got, err := strategy.ParseToken(token)
		if err != nil {
			t.Fatalf("parse token: %v", err)
		}
		if got != p {
			t.Fatalf("unexpected principal %+v, want %+v", got, p)
		}
	}
}

func TestJWTStrategy_IssueRequiresUser(t *testing.T) {
	if _, err := NewJWTStrategy("secret", Options{}).IssueToken(Principal{}); err == nil {
		t.Fatal("expected error for empty user id")
	}
}

func TestJWTStrategy_UnknownRoleDowngradesToUser(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{})
	token, err := strategy.IssueToken(Principal{UserID: "u", Role: "root"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	got, err := strategy.ParseToken(token)
	if err != nil || got.Role != model.RoleUser || got.IsAdmin() {
		t.Fatalf("expected plain user, got %+v err=%v", got, err)
	}
}

func TestJWTStrategy_ParseRejects(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{TTL: time.Minute})
	valid, _ := strategy.IssueToken(Principal{UserID: "u", Role: model.RoleUser})
	foreign, _ := NewJWTStrategy("other", Options{}).IssueToken(Principal{UserID: "u"})

	expired, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: "u",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString([]byte("secret"))

	noUser, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))},
	}).SignedString([]byte("secret"))

	unsigned, _ := jwt.NewWithClaims(jwt.SigningMethodNone, claims{UserID: "u"}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + ".AAAA"

	cases := map[string]string{
		"garbage":        "not-a-token",
		"foreign secret": foreign,
		"expired":        expired,
		"no user":        noUser,
		"alg none":       unsigned,
		"tampered":       tampered,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := strategy.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestJWTStrategy_Name(t *testing.T) {
	if name := NewJWTStrategy("secret", Options{}).Name(); name != "jwt" {
		t.Fatalf("unexpected name: %s", name)
	}
}
