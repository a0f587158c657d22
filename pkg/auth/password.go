// Package auth provides authentication utilities including password hashing and JWT.
package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher hashes passwords with bcrypt at Cost. A zero Cost means
// bcrypt.DefaultCost.
type BcryptHasher struct {
	Cost int
}

// Hash generates a bcrypt hash from a plain text password.
func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Compare returns nil if password matches hash.
func (h BcryptHasher) Compare(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// HashPassword hashes with the default cost.
func HashPassword(password string) (string, error) {
	return BcryptHasher{}.Hash(password)
}

// CheckPassword compares a plain text password with a hashed password.
func CheckPassword(password, hash string) error {
	return BcryptHasher{}.Compare(password, hash)
}
