package filestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/kubeatlas-console/internal/errors"
	"github.com/jrsteele09/kubeatlas-console/token"
)

const (
	fileMode = 0o600
	dirMode  = 0o700
)

var _ token.Store = (*Store)(nil)

// Store persists credentials as a flat JSON object holding exactly the three
// <app>_token keys. Writes go through a temp file and rename.
type Store struct {
	path string
	keys token.StorageKeys
	mu   sync.Mutex
}

func New(path, app string) *Store {
	return &Store{path: path, keys: token.KeysFor(app)}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Load() (token.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return token.Credential{}, errors.ErrNotFound
	}
	if err != nil {
		return token.Credential{}, fmt.Errorf("read credentials: %w", err)
	}

	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return token.Credential{}, errors.Wrapf(errors.ErrInvalidToken, "decode %s: %v", s.path, err)
	}

	cred := s.keys.Credential(values)
	if cred.IsZero() {
		return token.Credential{}, errors.ErrNotFound
	}
	if !cred.Complete() {
		return cred, errors.ErrIncompleteCredential
	}
	return cred, nil
}

func (s *Store) Save(cred token.Credential) error {
	if !cred.Complete() {
		return errors.ErrIncompleteCredential
	}

	data, err := json.MarshalIndent(s.keys.Values(cred), "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("create credentials directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("rename credentials file: %w", err)
	}
	return nil
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}
