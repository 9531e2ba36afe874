package config

import (
	"fmt"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is used when BCRYPT_COST is unset.
const DefaultBcryptCost = 12

// PasswordConfig hashes and verifies operator passwords.
type PasswordConfig struct {
	BcryptCost int
	Pepper     string // optional global secret appended before hashing
}

// NewPasswordConfig reads BCRYPT_COST (10-14, default 12) and PASSWORD_PEPPER.
func NewPasswordConfig(getenv Getenv) (*PasswordConfig, error) {
	cost := DefaultBcryptCost
	if s := getenv("BCRYPT_COST"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
		}
		cost = n
	}

	cfg := &PasswordConfig{
		BcryptCost: cost,
		Pepper:     getenv("PASSWORD_PEPPER"),
	}
	if cfg.BcryptCost < 10 || cfg.BcryptCost > 14 {
		return nil, fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", cfg.BcryptCost)
	}
	return cfg, nil
}

func (c *PasswordConfig) peppered(pw string) []byte {
	return []byte(pw + c.Pepper)
}

// HashPassword hashes pw for an operator entry of the config file.
func (c *PasswordConfig) HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(c.peppered(pw), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether pw matches storedHash.
func (c *PasswordConfig) VerifyPassword(pw, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), c.peppered(pw)) == nil
}
