package jwtutil_test

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	jwtutil "github.com/5w1tchy/library-api/internal/security/jwt"
)

var secret = []byte("0123456789abcdef0123456789abcdef")

func TestSignParseRoundtrip(t *testing.T) {
	token, err := jwtutil.Sign(secret, "bob", "64b0f7a0c2d4e8f901234567")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := jwtutil.Parse(secret, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Username != "bob" {
		t.Errorf("want username bob, got %q", claims.Username)
	}
	if claims.UserID != "64b0f7a0c2d4e8f901234567" {
		t.Errorf("want user id preserved, got %q", claims.UserID)
	}
}

// Clients decode the payload without the claims struct, so the raw JSON must
// carry username and id keys.
func TestPayloadShape(t *testing.T) {
	token, err := jwtutil.Sign(secret, "bob", "64b0f7a0c2d4e8f901234567")
	if err != nil {
		t.Fatal(err)
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("malformed token: %q", token)
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload["username"] != "bob" {
		t.Errorf("payload username = %v", payload["username"])
	}
	if payload["id"] != "64b0f7a0c2d4e8f901234567" {
		t.Errorf("payload id = %v", payload["id"])
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := jwtutil.Sign(secret, "bob", "id")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := jwtutil.Parse([]byte("another-secret-another-secret!!!"), token); err == nil {
		t.Fatal("token signed with a different secret must not verify")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, tok := range []string{"", "not.a.token", "a.b"} {
		if _, err := jwtutil.Parse(secret, tok); err == nil {
			t.Fatalf("garbage %q must not verify", tok)
		}
	}
}
