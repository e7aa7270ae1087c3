// Package session runs the interactive menu loop: register, log in, and
// manage the logged-in user's tasks.
//
// The shell has two states. Anonymous offers register, login and exit.
// Authenticated lists the user's in-progress tasks on every render and
// offers task operations and logout. The logged-in user is carried in an
// explicit Context; nothing is kept in package state.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/Dicantnik/tasklist/internal/users"
)

// Context is the state of an authenticated session.
type Context struct {
	User      users.User
	SessionID string
	StartedAt time.Time
}

// NewContext starts a session for u with a fresh random id.
func NewContext(u users.User) *Context {
	return &Context{
		User:      u,
		SessionID: uuid.NewString(),
		StartedAt: time.Now(),
	}
}

// UserID returns the id that scopes every task operation.
func (c *Context) UserID() uint32 {
	return c.User.ID
}
