package utils

import (
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// bcrypt uses its own base64 alphabet without padding.
var bcryptEncoding = base64.NewEncoding("./ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789").
	WithPadding(base64.NoPadding)

// HashPassword hashes a plaintext password using bcrypt at the given cost.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(hash), err
}

// CheckPasswordHash compares a plaintext password with a bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// PlaceholderPasswordHash builds a well-formed bcrypt hash with the given cost from
// random salt and digest bytes. No password is known to match it, and comparing
// against it costs the same as comparing against a real hash of that cost.
func PlaceholderPasswordHash(cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return "", fmt.Errorf("bcrypt cost %d out of range", cost)
	}
	// 16 salt bytes encode to 22 chars, 23 digest bytes to 31 chars.
	raw, err := SecureRandomBytes(16 + 23)
	if err != nil {
		return "", err
	}
	salt := bcryptEncoding.EncodeToString(raw[:16])
	digest := bcryptEncoding.EncodeToString(raw[16:])
	return fmt.Sprintf("$2a$%02d$%s%s", cost, salt, digest), nil
}
