// Package session owns the single source of truth for "who is logged in".
// State starts Unknown, resolves exactly once to Anonymous or Authenticated,
// and never returns to Unknown within one application lifetime.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bidhub/console-go/internal/domain/user"
	"github.com/bidhub/console-go/internal/engine"
)

// Status is the three-valued session state.
type Status int

const (
	// StatusUnknown means the session has not been resolved yet. Consumers
	// that depend on session state must wait, not render.
	StatusUnknown Status = iota
	// StatusAnonymous means the session resolved with no user.
	StatusAnonymous
	// StatusAuthenticated means a user is logged in.
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusAnonymous:
		return "anonymous"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// ErrAlreadyAuthenticated is returned when a login is attempted while a user
// is logged in. There is no direct user-to-user transition; log out first.
var ErrAlreadyAuthenticated = errors.New("a user is already logged in")

// Controller is the session state machine. Only the controller writes
// session state; everything else observes it through Status/CurrentUser and
// Subscribe.
type Controller struct {
	logger      *slog.Logger
	currentUser *engine.Read[user.User]

	mu     sync.Mutex
	status Status
	user   user.User
	subs   map[chan struct{}]struct{}

	resolveOnce sync.Once
	resolved    chan struct{}
}

// ControllerOptions bundles dependencies for NewController.
type ControllerOptions struct {
	// Client is the request engine the controller resolves the session with.
	// Required.
	Client *engine.Client

	// Logger defaults to slog.Default when nil.
	Logger *slog.Logger
}

// NewController creates a session controller. It registers with the engine
// so any request settling 401/403 drops an authenticated session back to
// anonymous.
func NewController(opts ControllerOptions) (*Controller, error) {
	if opts.Client == nil {
		return nil, errors.New("engine client is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Controller{
		logger:      logger,
		currentUser: engine.NewRead[user.User](opts.Client, "users/me", user.User{}),
		status:      StatusUnknown,
		subs:        make(map[chan struct{}]struct{}),
		resolved:    make(chan struct{}),
	}
	opts.Client.OnAuthFailure(c.handleAuthFailure)
	return c, nil
}

// MustNewController is like NewController but panics on error.
func MustNewController(opts ControllerOptions) *Controller {
	c, err := NewController(opts)
	if err != nil {
		panic(err)
	}
	return c
}

// Resolve issues the "who am I" read and settles the session. An
// unauthorized or forbidden settlement resolves to anonymous (the engine has
// already cleared the credential pair). A transport failure also resolves to
// anonymous, so dependent consumers unblock, and the error is returned for
// the caller to surface.
func (c *Controller) Resolve(ctx context.Context) error {
	settlement := c.currentUser.Get(ctx, nil)

	if settlement.Err != nil {
		c.setAnonymous()
		if engine.IsAuthFailure(settlement.Err) {
			return nil
		}
		return fmt.Errorf("resolve session: %w", settlement.Err)
	}

	c.setAuthenticated(settlement.Data)
	return nil
}

// WaitUntilResolved blocks until the session has left Unknown or the context
// is done. Session-dependent work must call this before reading state.
func (c *Controller) WaitUntilResolved(ctx context.Context) error {
	select {
	case <-c.resolved:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns the current session status.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// CurrentUser returns the authenticated user, if any.
func (c *Controller) CurrentUser() (user.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusAuthenticated {
		return user.User{}, false
	}
	return c.user, true
}

// LoginFromToken transitions anonymous (or unresolved) to authenticated
// using the identity decoded from a freshly issued access token. No user
// re-query is needed; the token payload carries subject, name and roles.
func (c *Controller) LoginFromToken(accessToken string) (user.User, error) {
	identity, err := IdentityFromAccessToken(accessToken)
	if err != nil {
		return user.User{}, err
	}

	c.mu.Lock()
	if c.status == StatusAuthenticated {
		c.mu.Unlock()
		return user.User{}, ErrAlreadyAuthenticated
	}
	c.status = StatusAuthenticated
	c.user = identity
	c.notifyLocked()
	c.mu.Unlock()

	c.markResolved()
	c.logger.Info("session authenticated", slog.String("user", identity.Username))
	return identity, nil
}

// Logout transitions to anonymous. The caller (the logout binding) is
// responsible for clearing the credential pair.
func (c *Controller) Logout() {
	c.setAnonymous()
}

// Subscribe registers for session change notifications; the channel signals
// (coalescing) on every transition. Consumers recompute by reading Status
// and CurrentUser.
func (c *Controller) Subscribe() (func(), <-chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan struct{}, 1)
	c.subs[ch] = struct{}{}

	unsub := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, ch)
	}
	return unsub, ch
}

// handleAuthFailure reacts to any request settling 401/403. An authenticated
// session drops to anonymous; an unresolved session is left for Resolve to
// settle.
func (c *Controller) handleAuthFailure() {
	c.mu.Lock()
	if c.status != StatusAuthenticated {
		c.mu.Unlock()
		return
	}
	c.status = StatusAnonymous
	c.user = user.User{}
	c.notifyLocked()
	c.mu.Unlock()

	c.logger.Info("session invalidated by authorization failure")
}

func (c *Controller) setAnonymous() {
	c.mu.Lock()
	changed := c.status != StatusAnonymous
	c.status = StatusAnonymous
	c.user = user.User{}
	if changed {
		c.notifyLocked()
	}
	c.mu.Unlock()

	c.markResolved()
}

func (c *Controller) setAuthenticated(u user.User) {
	c.mu.Lock()
	c.status = StatusAuthenticated
	c.user = u
	c.notifyLocked()
	c.mu.Unlock()

	c.markResolved()
}

func (c *Controller) markResolved() {
	c.resolveOnce.Do(func() {
		close(c.resolved)
	})
}

func (c *Controller) notifyLocked() {
	for ch := range c.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
