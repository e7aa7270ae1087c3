package users

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Hasher turns passwords into stored credentials and checks them.
type Hasher interface {
	Hash(password string) (string, error)
	Matches(stored, password string) bool
}

// Hash modes accepted by NewHasher.
const (
	HashPlain  = "plain"
	HashBcrypt = "bcrypt"
)

// PlainHasher stores passwords as-is. It keeps the historical file format
// and offers no protection for the stored credentials.
type PlainHasher struct{}

// Hash returns password unchanged.
func (PlainHasher) Hash(password string) (string, error) {
	return password, nil
}

// Matches compares exactly.
func (PlainHasher) Matches(stored, password string) bool {
	return stored == password
}

// BcryptHasher stores bcrypt hashes.
type BcryptHasher struct {
	Cost int
}

// Hash returns the bcrypt hash of password.
func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Matches reports whether password hashes to stored.
func (BcryptHasher) Matches(stored, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

// NewHasher returns the Hasher for a configured mode.
func NewHasher(mode string) (Hasher, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", HashPlain:
		return PlainHasher{}, nil
	case HashBcrypt:
		return BcryptHasher{}, nil
	default:
		return nil, fmt.Errorf("unknown password hash mode %q (expected plain|bcrypt)", mode)
	}
}
