package session_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bidhub/console-go/internal/credentials"
	"github.com/bidhub/console-go/internal/domain/user"
	"github.com/bidhub/console-go/internal/engine"
	"github.com/bidhub/console-go/internal/session"
	"github.com/bidhub/console-go/internal/testutil"
)

var adminRoles = []user.Role{{ID: 1, Name: "Admin"}}

func newSessionFixture(t *testing.T, api *testutil.FakeAPI, pair credentials.Pair) (*session.Controller, credentials.Store) {
	t.Helper()

	store := credentials.NewMemoryStore()
	if !pair.IsZero() {
		require.NoError(t, store.Set(context.Background(), pair))
	}

	client, err := engine.NewClient(engine.ClientOptions{
		BaseURL: api.BaseURL(),
		Store:   store,
		Logger:  slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)

	ctrl, err := session.NewController(session.ControllerOptions{
		Client: client,
		Logger: slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)
	return ctrl, store
}

func TestControllerStartsUnknown(t *testing.T) {
	api := testutil.NewFakeAPI()
	defer api.Close()

	ctrl, _ := newSessionFixture(t, api, credentials.Pair{})

	assert.Equal(t, session.StatusUnknown, ctrl.Status())
	_, ok := ctrl.CurrentUser()
	assert.False(t, ok)
}

func TestControllerResolveAuthenticated(t *testing.T) {
	api := testutil.NewFakeAPI(testutil.FakeUser{
		ID: 1, Username: "alice", Email: "alice@example.com", Password: "s3cret-pw", Roles: adminRoles,
	})
	defer api.Close()

	token := testutil.MintAccessToken(t, "1", "alice", adminRoles)
	ctrl, _ := newSessionFixture(t, api, credentials.Pair{AccessToken: token})

	require.NoError(t, ctrl.Resolve(context.Background()))

	assert.Equal(t, session.StatusAuthenticated, ctrl.Status())
	u, ok := ctrl.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "alice", u.Username)
	assert.True(t, u.IsAdmin())
}

func TestControllerResolveAnonymousWithoutCredentials(t *testing.T) {
	api := testutil.NewFakeAPI()
	defer api.Close()

	ctrl, _ := newSessionFixture(t, api, credentials.Pair{})

	require.NoError(t, ctrl.Resolve(context.Background()))
	assert.Equal(t, session.StatusAnonymous, ctrl.Status())
}

func TestControllerResolveClearsRejectedCredentials(t *testing.T) {
	api := testutil.NewFakeAPI()
	defer api.Close()

	ctrl, store := newSessionFixture(t, api, credentials.Pair{AccessToken: "expired-or-forged"})

	require.NoError(t, ctrl.Resolve(context.Background()))

	assert.Equal(t, session.StatusAnonymous, ctrl.Status())
	_, err := store.Get(context.Background())
	assert.ErrorIs(t, err, credentials.ErrNoCredentials)
}

func TestControllerResolveTransportFailure(t *testing.T) {
	api := testutil.NewFakeAPI()
	api.Close() // server down

	ctrl, _ := newSessionFixture(t, api, credentials.Pair{AccessToken: "any"})

	err := ctrl.Resolve(context.Background())

	require.Error(t, err, "transport failures surface to the caller")
	assert.Equal(t, session.StatusAnonymous, ctrl.Status(),
		"session still resolves so dependent work unblocks")
}

func TestControllerLoginFromToken(t *testing.T) {
	api := testutil.NewFakeAPI()
	defer api.Close()

	ctrl, _ := newSessionFixture(t, api, credentials.Pair{})
	token := testutil.MintAccessToken(t, "42", "bob", []user.Role{{ID: 2, Name: "User"}})

	identity, err := ctrl.LoginFromToken(token)

	require.NoError(t, err)
	assert.Equal(t, "42", identity.ID)
	assert.Equal(t, "bob", identity.Username)
	assert.False(t, identity.IsAdmin())

	assert.Equal(t, session.StatusAuthenticated, ctrl.Status())
	u, ok := ctrl.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, identity, u)
}

func TestControllerLoginFromTokenRejectsSecondLogin(t *testing.T) {
	api := testutil.NewFakeAPI()
	defer api.Close()

	ctrl, _ := newSessionFixture(t, api, credentials.Pair{})
	first := testutil.MintAccessToken(t, "1", "alice", adminRoles)
	second := testutil.MintAccessToken(t, "2", "bob", nil)

	_, err := ctrl.LoginFromToken(first)
	require.NoError(t, err)

	_, err = ctrl.LoginFromToken(second)
	assert.ErrorIs(t, err, session.ErrAlreadyAuthenticated)

	u, _ := ctrl.CurrentUser()
	assert.Equal(t, "alice", u.Username, "existing session is untouched")
}

func TestControllerLoginFromTokenRejectsGarbage(t *testing.T) {
	api := testutil.NewFakeAPI()
	defer api.Close()

	ctrl, _ := newSessionFixture(t, api, credentials.Pair{})

	_, err := ctrl.LoginFromToken("not-a-jwt")
	require.Error(t, err)
	assert.Equal(t, session.StatusUnknown, ctrl.Status(), "a failed login does not resolve the session")
}

func TestControllerLogout(t *testing.T) {
	api := testutil.NewFakeAPI()
	defer api.Close()

	ctrl, _ := newSessionFixture(t, api, credentials.Pair{})
	token := testutil.MintAccessToken(t, "1", "alice", adminRoles)
	_, err := ctrl.LoginFromToken(token)
	require.NoError(t, err)

	ctrl.Logout()

	assert.Equal(t, session.StatusAnonymous, ctrl.Status())
	_, ok := ctrl.CurrentUser()
	assert.False(t, ok)
}

func TestControllerAuthFailureDropsSession(t *testing.T) {
	api := testutil.NewFakeAPI(testutil.FakeUser{
		ID: 1, Username: "alice", Email: "alice@example.com", Password: "s3cret-pw", Roles: adminRoles,
	})
	defer api.Close()

	store := credentials.NewMemoryStore()
	client, err := engine.NewClient(engine.ClientOptions{
		BaseURL: api.BaseURL(),
		Store:   store,
		Logger:  slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)

	ctrl, err := session.NewController(session.ControllerOptions{
		Client: client,
		Logger: slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)

	token := testutil.MintAccessToken(t, "1", "alice", adminRoles)
	require.NoError(t, store.Set(context.Background(), credentials.Pair{AccessToken: token}))
	require.NoError(t, ctrl.Resolve(context.Background()))
	require.Equal(t, session.StatusAuthenticated, ctrl.Status())

	// Simulate server-side token revocation, then any request drops the session.
	require.NoError(t, store.Set(context.Background(), credentials.Pair{AccessToken: "revoked"}))
	read := engine.NewRead(client, "users/count", 0)
	settled := read.Get(context.Background(), nil)
	require.True(t, engine.IsAuthFailure(settled.Err))

	assert.Equal(t, session.StatusAnonymous, ctrl.Status())
}

func TestControllerWaitUntilResolved(t *testing.T) {
	api := testutil.NewFakeAPI()
	defer api.Close()

	ctrl, _ := newSessionFixture(t, api, credentials.Pair{})

	t.Run("blocks until resolution", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, ctrl.WaitUntilResolved(ctx), context.DeadlineExceeded)
	})

	t.Run("returns once resolved", func(t *testing.T) {
		done := make(chan error, 1)
		go func() {
			done <- ctrl.WaitUntilResolved(context.Background())
		}()

		require.NoError(t, ctrl.Resolve(context.Background()))

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("WaitUntilResolved never returned")
		}
	})
}

func TestControllerSubscribe(t *testing.T) {
	api := testutil.NewFakeAPI()
	defer api.Close()

	ctrl, _ := newSessionFixture(t, api, credentials.Pair{})
	unsub, ch := ctrl.Subscribe()
	defer unsub()

	token := testutil.MintAccessToken(t, "1", "alice", adminRoles)
	_, err := ctrl.LoginFromToken(token)
	require.NoError(t, err)

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("no notification on session transition")
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "unknown", session.StatusUnknown.String())
	assert.Equal(t, "anonymous", session.StatusAnonymous.String())
	assert.Equal(t, "authenticated", session.StatusAuthenticated.String())
}
