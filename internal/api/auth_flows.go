package api

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bidhub/console-go/internal/credentials"
	"github.com/bidhub/console-go/internal/domain/user"
	"github.com/bidhub/console-go/internal/engine"
)

// Login builds the login call site. The exchange itself is anonymous; on
// success the issued pair is persisted and the session transitions to
// authenticated using the token's own identity claims.
func (s *UserService) Login() *LoginFlow {
	return &LoginFlow{
		op:       engine.NewAnonymousMutation(s.client, "POST", "users/login", TokenPair{}),
		store:    s.client.Store(),
		sessions: s.sessions,
		logger:   s.logger,
	}
}

// LoginFlow is the users/login call site plus its settlement side effects.
type LoginFlow struct {
	op       *engine.Mutation[TokenPair]
	store    credentials.Store
	sessions SessionWriter
	logger   *slog.Logger
}

// SessionWriter is the slice of the session controller the auth flows drive.
type SessionWriter interface {
	LoginFromToken(accessToken string) (user.User, error)
	Logout()
}

// Do performs the login exchange. A failed login creates no credentials and
// leaves session state untouched. The session accepts the token before the
// pair is persisted, so a login the session rejects never leaves stored
// credentials behind.
func (f *LoginFlow) Do(ctx context.Context, username, password string) (user.User, error) {
	req := LoginRequest{Username: username, Password: password}
	if err := req.Validate(); err != nil {
		return user.User{}, err
	}

	settlement := f.op.Mutate(ctx, req)
	if settlement.Err != nil {
		return user.User{}, fmt.Errorf("login: %w", settlement.Err)
	}

	pair := credentials.Pair{
		AccessToken:  settlement.Data.AccessToken,
		RefreshToken: settlement.Data.RefreshToken,
	}
	identity, err := f.sessions.LoginFromToken(pair.AccessToken)
	if err != nil {
		return user.User{}, err
	}

	if err := f.store.Set(ctx, pair); err != nil {
		f.sessions.Logout()
		return user.User{}, fmt.Errorf("persist credentials: %w", err)
	}
	return identity, nil
}

// State returns the visible call-site state.
func (f *LoginFlow) State() engine.State[TokenPair] { return f.op.State() }

// Logout builds the logout call site. On success the credential pair is
// cleared and the session drops to anonymous.
func (s *UserService) Logout() *LogoutFlow {
	return &LogoutFlow{
		op:       engine.NewMutation[struct{}](s.client, "POST", "users/logout", struct{}{}),
		store:    s.client.Store(),
		sessions: s.sessions,
		logger:   s.logger,
	}
}

// LogoutFlow is the users/logout call site plus its settlement side effects.
type LogoutFlow struct {
	op       *engine.Mutation[struct{}]
	store    credentials.Store
	sessions SessionWriter
	logger   *slog.Logger
}

// Do performs the logout exchange. An authorization failure counts as logged
// out: the engine has already cleared the pair and the session followed.
func (f *LogoutFlow) Do(ctx context.Context) error {
	settlement := f.op.Mutate(ctx, nil)
	if settlement.Err != nil {
		if engine.IsAuthFailure(settlement.Err) {
			f.sessions.Logout()
			return nil
		}
		return fmt.Errorf("logout: %w", settlement.Err)
	}

	if err := f.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	f.sessions.Logout()
	f.logger.Info("logged out")
	return nil
}

// State returns the visible call-site state.
func (f *LogoutFlow) State() engine.State[struct{}] { return f.op.State() }
