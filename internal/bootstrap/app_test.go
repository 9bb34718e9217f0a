package bootstrap_test

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bidhub/console-go/config"
	"github.com/bidhub/console-go/internal/bootstrap"
	"github.com/bidhub/console-go/internal/credentials"
	"github.com/bidhub/console-go/internal/session"
)

func baseConfig() config.AppConfig {
	return config.AppConfig{
		API: config.APIConfig{
			BaseURL:   "http://localhost:3000/",
			UserAgent: "bidhub-console",
		},
		Credentials: config.CredentialsConfig{Backend: config.BackendMemory},
	}
}

func TestBuildCredentialStore(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		store, err := bootstrap.BuildCredentialStore(baseConfig())
		require.NoError(t, err)
		assert.IsType(t, &credentials.MemoryStore{}, store)
	})

	t.Run("file with explicit path", func(t *testing.T) {
		cfg := baseConfig()
		cfg.Credentials.Backend = config.BackendFile
		cfg.Credentials.FilePath = filepath.Join(t.TempDir(), "credentials.json")

		store, err := bootstrap.BuildCredentialStore(cfg)
		require.NoError(t, err)
		assert.IsType(t, &credentials.FileStore{}, store)
	})

	t.Run("redis", func(t *testing.T) {
		cfg := baseConfig()
		cfg.Credentials.Backend = config.BackendRedis
		cfg.Credentials.RedisKey = "console:credentials"
		cfg.Redis.Addr = "localhost:6379"

		store, err := bootstrap.BuildCredentialStore(cfg)
		require.NoError(t, err)
		assert.IsType(t, &credentials.RedisStore{}, store)
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := baseConfig()
		cfg.Credentials.Backend = "vault"

		_, err := bootstrap.BuildCredentialStore(cfg)
		assert.Error(t, err)
	})
}

func TestNewApp(t *testing.T) {
	app, err := bootstrap.NewApp(bootstrap.AppOptions{
		Config: baseConfig(),
		Logger: slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)

	assert.NotNil(t, app.Store)
	assert.NotNil(t, app.Client)
	assert.NotNil(t, app.Sessions)
	assert.NotNil(t, app.Users)
	assert.Equal(t, session.StatusUnknown, app.Sessions.Status(),
		"assembly alone never touches the network")
}

func TestNewListView(t *testing.T) {
	cfg := baseConfig()
	cfg.List.PageSize = 250
	cfg.List.SearchDebounce = 100 * time.Millisecond

	app, err := bootstrap.NewApp(bootstrap.AppOptions{
		Config: cfg,
		Logger: slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)

	lv, err := app.NewListView()
	require.NoError(t, err)
	t.Cleanup(lv.Close)

	assert.Equal(t, 250, lv.Query().Limit, "list configuration drives the initial page size")
}

func TestNewAppRequiresBaseURL(t *testing.T) {
	cfg := baseConfig()
	cfg.API.BaseURL = ""

	_, err := bootstrap.NewApp(bootstrap.AppOptions{Config: cfg})
	assert.Error(t, err)
}
