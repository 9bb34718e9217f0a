// Package guard gates access to protected views with composable
// authorization predicates evaluated against session state.
package guard

import (
	"errors"

	"github.com/bidhub/console-go/internal/domain/user"
	"github.com/bidhub/console-go/internal/session"
)

// DefaultFallbackPath is where denied access redirects when no fallback is
// configured.
const DefaultFallbackPath = "/login"

// Guard is a pure authorization predicate. Guards hold no state of their
// own; CanActivate re-reads session state on every call.
type Guard interface {
	CanActivate() bool
}

// GuardFunc adapts a func to the Guard interface.
type GuardFunc func() bool

func (f GuardFunc) CanActivate() bool { return f() }

// UserGuard activates for any authenticated user.
func UserGuard(sessions *session.Controller) Guard {
	return GuardFunc(func() bool {
		_, ok := sessions.CurrentUser()
		return ok
	})
}

// RoleGuard activates for an authenticated user holding the named role.
func RoleGuard(sessions *session.Controller, role string) Guard {
	return GuardFunc(func() bool {
		u, ok := sessions.CurrentUser()
		return ok && u.HasRole(role)
	})
}

// AdminGuard activates for an authenticated user holding the admin role.
func AdminGuard(sessions *session.Controller) Guard {
	return RoleGuard(sessions, user.AdminRoleName)
}

// Decision is the outcome of a composed access check. When access is denied
// RedirectTo names the fallback location the caller must route to instead of
// the protected content.
type Decision struct {
	Allowed    bool
	RedirectTo string
}

// Composer grants access when at least one of its guards activates. Every
// guard is evaluated on every check; the outcome is their boolean OR, and no
// decision is cached across session transitions.
type Composer struct {
	guards   []Guard
	fallback string
}

// ComposerOptions bundles inputs for NewComposer.
type ComposerOptions struct {
	// Guards is the ordered, non-empty set of predicates. Required.
	Guards []Guard

	// FallbackPath defaults to DefaultFallbackPath when empty.
	FallbackPath string
}

// NewComposer creates a guard composer.
func NewComposer(opts ComposerOptions) (*Composer, error) {
	if len(opts.Guards) == 0 {
		return nil, errors.New("at least one guard is required")
	}
	fallback := opts.FallbackPath
	if fallback == "" {
		fallback = DefaultFallbackPath
	}
	return &Composer{
		guards:   opts.Guards,
		fallback: fallback,
	}, nil
}

// MustNewComposer is like NewComposer but panics on error.
func MustNewComposer(opts ComposerOptions) *Composer {
	c, err := NewComposer(opts)
	if err != nil {
		panic(err)
	}
	return c
}

// Check evaluates all guards synchronously and returns the decision.
func (c *Composer) Check() Decision {
	allowed := false
	for _, g := range c.guards {
		// No short circuit: every guard runs so a future telemetry hook sees
		// each predicate's answer.
		if g.CanActivate() {
			allowed = true
		}
	}
	if allowed {
		return Decision{Allowed: true}
	}
	return Decision{Allowed: false, RedirectTo: c.fallback}
}
