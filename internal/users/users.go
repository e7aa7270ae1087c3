// Package users registers and authenticates accounts stored in a flat file.
package users

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Dicantnik/tasklist/internal/store"
)

// DefaultMinPasswordLength is the shortest password accepted at registration.
const DefaultMinPasswordLength = 8

var (
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrPasswordTooShort is returned for passwords below the minimum length.
	ErrPasswordTooShort = errors.New("password too short")
	// ErrPasswordMismatch is returned when the confirmation differs.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrInvalidUsername is returned for empty usernames or ones that cannot
	// be stored.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrInvalidCredentials is returned when no account matches.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// User is one registered account.
type User struct {
	ID       uint32
	Username string
	// Password holds the stored credential: plaintext, or a hash when the
	// directory is configured with a hashing Hasher.
	Password string
}

// Codec encodes users as "id,username,password".
type Codec struct{}

// Encode implements store.Codec.
func (Codec) Encode(u User) string {
	return store.JoinRow(store.FormatID(u.ID), u.Username, u.Password)
}

// Decode implements store.Codec.
func (Codec) Decode(line string) (User, error) {
	fields, err := store.SplitRow(line, 3)
	if err != nil {
		return User{}, err
	}
	id, err := store.ParseID(fields[0])
	if err != nil {
		return User{}, err
	}
	return User{ID: id, Username: fields[1], Password: fields[2]}, nil
}

// ID implements store.Codec.
func (Codec) ID(u User) uint32 {
	return u.ID
}

// ValidatePassword checks the length and confirmation rules, in that order.
func ValidatePassword(password, confirm string, minLength int) error {
	if len(password) < minLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrPasswordTooShort, minLength)
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

func validateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidUsername)
	}
	if err := store.CheckField("username", username); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUsername, err)
	}
	return nil
}
