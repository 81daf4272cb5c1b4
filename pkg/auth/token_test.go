package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dinehub-mw/dinehub-backend/pkg/config"
	"github.com/dinehub-mw/dinehub-backend/pkg/enums"
)

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "dinehub",
		ExpirationMinutes: 30,
	}
	now := time.Now().UTC()
	userID := uuid.New()
	estID := uuid.New()

	payload := AccessTokenPayload{
		UserID:          userID,
		EstablishmentID: &estID,
		Role:            enums.RoleSupervisor,
	}

	token, err := MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.UserID != userID {
		t.Fatalf("expected user_id %s, got %s", userID, claims.UserID)
	}
	if claims.EstablishmentID == nil || *claims.EstablishmentID != estID {
		t.Fatalf("establishment id not preserved")
	}
	if claims.Role != enums.RoleSupervisor {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("unexpected issuer %s", claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatal("jti should be generated when not provided")
	}
}

func TestMintAccessTokenRejectsInvalidInput(t *testing.T) {
	now := time.Now().UTC()
	payload := AccessTokenPayload{UserID: uuid.New(), Role: enums.RoleCustomer}

	if _, err := MintAccessToken(config.JWTConfig{Issuer: "dinehub", ExpirationMinutes: 30}, now, payload); err == nil {
		t.Fatal("expected error for missing secret")
	}
	if _, err := MintAccessToken(config.JWTConfig{Secret: "s", ExpirationMinutes: 30}, now, payload); err == nil {
		t.Fatal("expected error for missing issuer")
	}

	bad := payload
	bad.Role = enums.Role("chef")
	if _, err := MintAccessToken(config.JWTConfig{Secret: "s", Issuer: "dinehub", ExpirationMinutes: 30}, now, bad); err == nil {
		t.Fatal("expected error for invalid role")
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "dinehub", ExpirationMinutes: 30}
	token, err := MintAccessToken(cfg, time.Now().UTC(), AccessTokenPayload{UserID: uuid.New(), Role: enums.RoleCustomer})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	wrong := cfg
	wrong.Secret = "other"
	if _, err := ParseAccessToken(wrong, token); err == nil {
		t.Fatal("expected signature validation failure")
	}
}
