package token

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "f3c2d0a1b4e5968778695a4b3c2d1e0f"

func TestJWTMakerRoundTrip(t *testing.T) {
	maker, err := NewJWTMaker(testSecret)
	if err != nil {
		t.Fatalf("new maker: %v", err)
	}

	signed, err := maker.CreateToken("user-42", time.Minute)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	payload, err := maker.VerifyToken(signed)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if payload.UserID != "user-42" {
		t.Fatalf("subject = %q, want user-42", payload.UserID)
	}
	if payload.ExpiredAt.Before(time.Now()) {
		t.Fatalf("token expired too early: %v", payload.ExpiredAt)
	}
}

func TestJWTMakerRejectsShortSecret(t *testing.T) {
	if _, err := NewJWTMaker("too-short"); err == nil {
		t.Fatal("expected an error for a short secret")
	}
}

func TestJWTMakerRejectsExpiredToken(t *testing.T) {
	maker, err := NewJWTMaker(testSecret)
	if err != nil {
		t.Fatalf("new maker: %v", err)
	}

	signed, err := maker.CreateToken("user-42", -time.Minute)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	if _, err := maker.VerifyToken(signed); err == nil {
		t.Fatal("expected verification to fail for an expired token")
	}
}

func TestJWTMakerRejectsForeignSignature(t *testing.T) {
	maker, err := NewJWTMaker(testSecret)
	if err != nil {
		t.Fatalf("new maker: %v", err)
	}
	other, err := NewJWTMaker(strings.Repeat("z", 32))
	if err != nil {
		t.Fatalf("new maker: %v", err)
	}

	signed, err := other.CreateToken("user-42", time.Minute)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	if _, err := maker.VerifyToken(signed); err == nil {
		t.Fatal("expected verification to fail for a foreign signature")
	}
}

func TestJWTMakerRejectsGarbage(t *testing.T) {
	maker, err := NewJWTMaker(testSecret)
	if err != nil {
		t.Fatalf("new maker: %v", err)
	}
	if _, err := maker.VerifyToken("not.a.token"); err == nil {
		t.Fatal("expected verification to fail for garbage input")
	}
}
