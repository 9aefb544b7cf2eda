package config

import (
	"fmt"
	"os"
	"time"
)

// minSecretLength is the shortest HS256 secret accepted.
const minSecretLength = 32

// JWTConfig holds the signing settings for bearer tokens.
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// NewJWTConfig reads JWT_SECRET (required) and JWT_EXPIRATION_HOURS
// (default 24, at most 30 days).
func NewJWTConfig() (*JWTConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLength)
	}

	hours, err := envInt("JWT_EXPIRATION_HOURS", 24, 1, 24*30)
	if err != nil {
		return nil, err
	}

	return &JWTConfig{
		Secret:     secret,
		Expiration: time.Duration(hours) * time.Hour,
		Issuer:     "ghosthawk",
	}, nil
}
