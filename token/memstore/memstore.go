package memstore

import (
	"sync"

	"github.com/jrsteele09/kubeatlas-console/internal/errors"
	"github.com/jrsteele09/kubeatlas-console/token"
)

var _ token.Store = (*Store)(nil)

// Store keeps the credential keys in memory, the way browser local storage
// holds them for the dashboard.
type Store struct {
	keys   token.StorageKeys
	values map[string]string
	lock   sync.RWMutex
}

func New(app string) *Store {
	return &Store{
		keys:   token.KeysFor(app),
		values: make(map[string]string),
	}
}

func (s *Store) Load() (token.Credential, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	cred := s.keys.Credential(s.values)
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
	s.lock.Lock()
	defer s.lock.Unlock()
	for k, v := range s.keys.Values(cred) {
		s.values[k] = v
	}
	return nil
}

func (s *Store) Clear() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.values, s.keys.AccessToken)
	delete(s.values, s.keys.RefreshToken)
	delete(s.values, s.keys.IDToken)
	return nil
}

// Get returns a raw stored value.
func (s *Store) Get(key string) (string, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set writes a raw value, bypassing credential validation.
func (s *Store) Set(key, value string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.values[key] = value
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.values)
}
