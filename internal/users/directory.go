package users

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/Dicantnik/tasklist/internal/store"
)

// Directory is the account registry backed by a user store file.
type Directory struct {
	file      *store.File[User]
	hasher    Hasher
	minLength int
	logger    *log.Logger
}

// Option configures a Directory.
type Option func(*Directory)

// WithHasher sets how passwords are stored and compared.
func WithHasher(h Hasher) Option {
	return func(d *Directory) {
		if h != nil {
			d.hasher = h
		}
	}
}

// WithMinPasswordLength overrides DefaultMinPasswordLength.
func WithMinPasswordLength(n int) Option {
	return func(d *Directory) {
		if n > 0 {
			d.minLength = n
		}
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *log.Logger) Option {
	return func(d *Directory) {
		if l != nil {
			d.logger = l
		}
	}
}

// Open opens (or creates) the user store at path.
func Open(path string, opts ...Option) (*Directory, error) {
	d := &Directory{
		hasher:    PlainHasher{},
		minLength: DefaultMinPasswordLength,
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(d)
	}
	file, err := store.Open[User](path, Codec{}, store.WithSkipFunc(d.logSkip))
	if err != nil {
		return nil, fmt.Errorf("open user store: %w", err)
	}
	d.file = file
	return d, nil
}

// MinPasswordLength returns the configured minimum.
func (d *Directory) MinPasswordLength() int {
	return d.minLength
}

// Exists reports whether username is registered.
func (d *Directory) Exists(username string) (bool, error) {
	all, err := d.file.ReadAll()
	if err != nil {
		return false, fmt.Errorf("read user store: %w", err)
	}
	for _, u := range all {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

// Register creates an account. Checks run in order: username availability,
// password length, confirmation.
func (d *Directory) Register(username, password, confirm string) (User, error) {
	if err := validateUsername(username); err != nil {
		return User{}, err
	}
	taken, err := d.Exists(username)
	if err != nil {
		return User{}, err
	}
	if taken {
		return User{}, fmt.Errorf("%w: %s", ErrUsernameTaken, username)
	}
	if err := ValidatePassword(password, confirm, d.minLength); err != nil {
		return User{}, err
	}

	stored, err := d.hasher.Hash(password)
	if err != nil {
		return User{}, err
	}
	if err := store.CheckField("password", stored); err != nil {
		return User{}, err
	}

	id, err := d.file.NextID()
	if err != nil {
		return User{}, err
	}
	u := User{ID: id, Username: username, Password: stored}
	if err := d.file.Append(u); err != nil {
		return User{}, fmt.Errorf("save user: %w", err)
	}
	d.logger.Info("user registered", "user_id", u.ID, "username", u.Username)
	return u, nil
}

// Authenticate returns the first account matching username and password.
func (d *Directory) Authenticate(username, password string) (User, error) {
	all, err := d.file.ReadAll()
	if err != nil {
		return User{}, fmt.Errorf("read user store: %w", err)
	}
	for _, u := range all {
		if u.Username == username && d.hasher.Matches(u.Password, password) {
			d.logger.Info("login succeeded", "user_id", u.ID, "username", u.Username)
			return u, nil
		}
	}
	d.logger.Warn("login failed", "username", username)
	return User{}, ErrInvalidCredentials
}

func (d *Directory) logSkip(path string, line int, _ string, err error) {
	d.logger.Warn("skipping malformed user row", "file", path, "line", line, "err", err)
}
