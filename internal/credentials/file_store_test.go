package credentials_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/bidhub/console-go/internal/credentials"
)

func TestFileStoreGetEmpty(t *testing.T) {
	store, err := credentials.NewFileStore(filepath.Join(t.TempDir(), "credentials.json"))
	require.NoError(t, err)

	_, err = store.Get(context.Background())
	assert.ErrorIs(t, err, credentials.ErrNoCredentials)
}

func TestFileStoreSetGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	store, err := credentials.NewFileStore(path)
	require.NoError(t, err)

	pair := credentials.Pair{AccessToken: "access", RefreshToken: "refresh"}
	require.NoError(t, store.Set(context.Background(), pair))

	got, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, pair, got)
}

func TestFileStoreSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	first, err := credentials.NewFileStore(path)
	require.NoError(t, err)
	pair := credentials.Pair{AccessToken: "access", RefreshToken: "refresh"}
	require.NoError(t, first.Set(context.Background(), pair))

	second, err := credentials.NewFileStore(path)
	require.NoError(t, err)
	got, err := second.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, pair, got)
}

func TestFileStorePersistsTokenForm(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	store, err := credentials.NewFileStore(path)
	require.NoError(t, err)

	pair := credentials.Pair{AccessToken: "access", RefreshToken: "refresh"}
	require.NoError(t, store.Set(context.Background(), pair))

	// The file is readable as a standard oauth2 token, not a private shape.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var tok oauth2.Token
	require.NoError(t, json.Unmarshal(data, &tok))
	assert.Equal(t, "access", tok.AccessToken)
	assert.Equal(t, "refresh", tok.RefreshToken)
	assert.Equal(t, "Bearer", tok.TokenType)
}

func TestFileStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	store, err := credentials.NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Set(context.Background(), credentials.Pair{AccessToken: "access"}))
	require.NoError(t, store.Clear(context.Background()))

	_, err = store.Get(context.Background())
	assert.ErrorIs(t, err, credentials.ErrNoCredentials)

	_, statErr := os.Stat(path)
	assert.ErrorIs(t, statErr, os.ErrNotExist, "clear removes the file")
}

func TestFileStoreClearEmpty(t *testing.T) {
	store, err := credentials.NewFileStore(filepath.Join(t.TempDir(), "credentials.json"))
	require.NoError(t, err)

	assert.NoError(t, store.Clear(context.Background()))
}

func TestFileStorePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	store, err := credentials.NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Set(context.Background(), credentials.Pair{AccessToken: "access"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestNewFileStoreRequiresPath(t *testing.T) {
	_, err := credentials.NewFileStore("")
	assert.Error(t, err)
}
