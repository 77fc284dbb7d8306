package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/trackwise-backend/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "trackwise",
		ExpirationMinutes: 30,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{UserID: 7, Username: "admin"})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.UserID != 7 || claims.Username != "admin" {
		t.Fatalf("unexpected identity %d/%s", claims.UserID, claims.Username)
	}
	if claims.Role != RoleAdmin {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.Subject != "7" {
		t.Fatalf("unexpected subject %s", claims.Subject)
	}
	if claims.ID == "" {
		t.Fatalf("expected generated jti")
	}
	if got := claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time); got != 30*time.Minute {
		t.Fatalf("unexpected ttl %s", got)
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), AccessTokenPayload{UserID: 1, Username: "admin"})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatalf("expected expired token error")
	}
}

func TestParseAccessTokenRejectsOtherSecretOrIssuer(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: 1, Username: "admin"})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	other := cfg
	other.Secret = "different"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatalf("expected signature error")
	}

	other = cfg
	other.Issuer = "someone-else"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatalf("expected issuer error")
	}
}

func TestMintAccessTokenValidatesInput(t *testing.T) {
	cfg := testJWTConfig()
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Username: "admin"}); err == nil {
		t.Fatalf("expected missing user id error")
	}

	noSecret := cfg
	noSecret.Secret = ""
	_, err := MintAccessToken(noSecret, time.Now(), AccessTokenPayload{UserID: 1, Username: "admin"})
	if err == nil || !strings.Contains(err.Error(), "secret") {
		t.Fatalf("expected secret error, got %v", err)
	}
}

func TestParseAccessTokenExpiredSentinel(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), AccessTokenPayload{UserID: 3, Username: "ops"})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	_, err = ParseAccessToken(cfg, token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}

	if _, err := ParseAccessToken(cfg, "not-a-token"); err == nil || errors.Is(err, ErrTokenExpired) {
		t.Fatalf("malformed token should fail without the expiry sentinel, got %v", err)
	}
}
