// Package auth defines caller identity, privilege and ownership scoping.
package auth

import (
	"context"
	"slices"

	"github.com/go-faster/errors"
)

var (
	// ErrUnauthenticated is returned when a request carries no valid credentials.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden is returned when an authenticated caller lacks the
	// privilege an operation requires.
	ErrForbidden = errors.New("forbidden")
	// ErrKeyNotFound is returned by a Repository for unknown or revoked keys.
	ErrKeyNotFound = errors.New("api key not found")
)

// Caller is the authenticated entity making a request.
type Caller struct {
	ID     string
	Name   string
	Scopes []string
}

// HasScope reports whether the caller was granted scope.
func (c *Caller) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}

// String is used in audit logs.
func (c *Caller) String() string {
	if c.Name == "" {
		return c.ID
	}
	return c.Name + " (" + c.ID + ")"
}

// Privilege decides whether a caller may bypass ownership filters.
type Privilege func(c *Caller) bool

// HasScope returns a Privilege granted to callers holding scope.
func HasScope(scope string) Privilege {
	return func(c *Caller) bool {
		return c != nil && c.HasScope(scope)
	}
}

// Require returns ErrForbidden unless c holds privilege p.
func Require(p Privilege, c *Caller) error {
	if p == nil || !p(c) {
		return ErrForbidden
	}
	return nil
}

type callerKey struct{}

// WithCaller stores the authenticated caller in ctx.
func WithCaller(ctx context.Context, c *Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFrom returns the caller stored by WithCaller.
func CallerFrom(ctx context.Context) (*Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(*Caller)
	return c, ok && c != nil
}
