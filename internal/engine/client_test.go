package engine_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bidhub/console-go/internal/credentials"
	"github.com/bidhub/console-go/internal/engine"
	"github.com/bidhub/console-go/internal/mocks"
)

func newTestClient(t *testing.T, baseURL string, store credentials.Store) *engine.Client {
	t.Helper()

	client, err := engine.NewClient(engine.ClientOptions{
		BaseURL: baseURL,
		Store:   store,
		Logger:  slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)
	return client
}

func storeWith(t *testing.T, pair credentials.Pair) credentials.Store {
	t.Helper()

	store := credentials.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), pair))
	return store
}

func TestNewClientValidation(t *testing.T) {
	tests := []struct {
		name string
		opts engine.ClientOptions
	}{
		{
			name: "missing base URL",
			opts: engine.ClientOptions{Store: credentials.NewMemoryStore()},
		},
		{
			name: "missing store",
			opts: engine.ClientOptions{BaseURL: "http://localhost:3000/"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.NewClient(tc.opts)
			assert.Error(t, err)
		})
	}
}

func TestClientAttachesBearerToken(t *testing.T) {
	var gotAuth, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-Id")
		_ = json.NewEncoder(w).Encode(map[string]string{"ok": "yes"})
	}))
	defer srv.Close()

	store := storeWith(t, credentials.Pair{AccessToken: "token-123", RefreshToken: "refresh"})
	client := newTestClient(t, srv.URL+"/", store)

	read := engine.NewRead(client, "users/me", map[string]string{})
	settled := read.Get(context.Background(), nil)

	require.NoError(t, settled.Err)
	assert.Equal(t, "Bearer token-123", gotAuth)
	assert.NotEmpty(t, gotRequestID, "every request carries a correlation id")
}

func TestClientAnonymousSkipsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := storeWith(t, credentials.Pair{AccessToken: "token-123"})
	client := newTestClient(t, srv.URL+"/", store)

	login := engine.NewAnonymousMutation(client, http.MethodPost, "users/login", struct{}{})
	settled := login.Mutate(context.Background(), map[string]string{"username": "alice"})

	require.NoError(t, settled.Err)
	assert.Empty(t, gotAuth, "anonymous operations never attach credentials")
}

func TestClientClearsCredentialsOnAuthFailure(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{name: "unauthorized", status: http.StatusUnauthorized},
		{name: "forbidden", status: http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			store := storeWith(t, credentials.Pair{AccessToken: "stale"})
			client := newTestClient(t, srv.URL+"/", store)

			notified := 0
			client.OnAuthFailure(func() { notified++ })

			read := engine.NewRead(client, "users/me", struct{}{})
			settled := read.Get(context.Background(), nil)

			assert.True(t, engine.IsAuthFailure(settled.Err))
			assert.Equal(t, 1, notified)

			_, err := store.Get(context.Background())
			assert.ErrorIs(t, err, credentials.ErrNoCredentials)
		})
	}
}

func TestClientKeepsCredentialsOnOtherErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := storeWith(t, credentials.Pair{AccessToken: "still-good"})
	client := newTestClient(t, srv.URL+"/", store)

	notified := false
	client.OnAuthFailure(func() { notified = true })

	read := engine.NewRead(client, "users/me", struct{}{})
	settled := read.Get(context.Background(), nil)

	require.Error(t, settled.Err)
	assert.False(t, engine.IsAuthFailure(settled.Err))
	assert.False(t, notified)

	pair, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "still-good", pair.AccessToken)
}

func TestIsAuthFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "unauthorized",
			err:  &engine.StatusError{StatusCode: http.StatusUnauthorized, Status: "401 Unauthorized"},
			want: true,
		},
		{
			name: "forbidden",
			err:  &engine.StatusError{StatusCode: http.StatusForbidden, Status: "403 Forbidden"},
			want: true,
		},
		{
			name: "wrapped unauthorized",
			err:  fmt.Errorf("resolve session: %w", &engine.StatusError{StatusCode: http.StatusUnauthorized}),
			want: true,
		},
		{
			name: "server error",
			err:  &engine.StatusError{StatusCode: http.StatusInternalServerError, Status: "500 Internal Server Error"},
			want: false,
		},
		{
			name: "plain error",
			err:  fmt.Errorf("connection refused"),
			want: false,
		},
		{
			name: "nil",
			err:  nil,
			want: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, engine.IsAuthFailure(tc.err))
		})
	}
}

func TestClientStoreInteractions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Get(gomock.Any()).Return(credentials.Pair{AccessToken: "stale"}, nil)
	store.EXPECT().Clear(gomock.Any()).Return(nil)

	client := newTestClient(t, srv.URL+"/", store)
	read := engine.NewRead(client, "users/me", struct{}{})

	settled := read.Get(context.Background(), nil)
	assert.True(t, engine.IsAuthFailure(settled.Err))
}

func TestResponseOK(t *testing.T) {
	assert.True(t, (&engine.Response{StatusCode: http.StatusOK}).OK())
	assert.True(t, (&engine.Response{StatusCode: http.StatusCreated}).OK())
	assert.False(t, (&engine.Response{StatusCode: http.StatusMovedPermanently}).OK())
	assert.False(t, (&engine.Response{StatusCode: http.StatusNotFound}).OK())
}
