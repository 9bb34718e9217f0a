package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
)

// FileStore persists the credential pair on disk, the headless analogue of
// cookie-backed browser storage: the pair survives a full process restart.
// The file holds the pair in its oauth2 token form, so other tooling that
// speaks the standard token shape can read it.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a FileStore writing to the given path.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("credentials file path is required")
	}
	return &FileStore{path: path}, nil
}

// DefaultCredentialsPath returns the default on-disk location for the
// credential file, under the user configuration directory.
func DefaultCredentialsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "console", "credentials.json"), nil
}

func (s *FileStore) Get(_ context.Context) (Pair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Pair{}, ErrNoCredentials
		}
		return Pair{}, fmt.Errorf("read credentials file: %w", err)
	}

	var tok oauth2.Token
	if unmarshalErr := json.Unmarshal(data, &tok); unmarshalErr != nil {
		return Pair{}, fmt.Errorf("unmarshal credentials: %w", unmarshalErr)
	}
	pair := PairFromToken(&tok)
	if pair.IsZero() {
		return Pair{}, ErrNoCredentials
	}
	return pair, nil
}

func (s *FileStore) Set(_ context.Context, pair Pair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(pair.Token())
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	dir := filepath.Dir(s.path)
	if mkErr := os.MkdirAll(dir, 0o700); mkErr != nil {
		return fmt.Errorf("create credentials dir: %w", mkErr)
	}

	// Write-then-rename so a crash mid-write never leaves a torn file.
	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return fmt.Errorf("create temp credentials file: %w", err)
	}
	tmpName := tmp.Name()
	if _, writeErr := tmp.Write(data); writeErr != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write credentials: %w", writeErr)
	}
	if chmodErr := tmp.Chmod(0o600); chmodErr != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod credentials: %w", chmodErr)
	}
	if closeErr := tmp.Close(); closeErr != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close credentials file: %w", closeErr)
	}
	if renameErr := os.Rename(tmpName, s.path); renameErr != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename credentials file: %w", renameErr)
	}
	return nil
}

func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credentials file: %w", err)
	}
	return nil
}
