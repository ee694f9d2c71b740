package refreshrepofake

import (
	"sync"

	"github.com/jrsteele09/kubeatlas-console/internal/errors"
	"github.com/jrsteele09/kubeatlas-console/token/refresh"
)

var _ refresh.Repo = (*FakeRefreshTokenRepo)(nil)

type FakeRefreshTokenRepo struct {
	tokens map[string]*refresh.StoredRefreshToken
	lock   sync.RWMutex
}

func NewFakeRefreshTokenRepo() *FakeRefreshTokenRepo {
	return &FakeRefreshTokenRepo{
		tokens: make(map[string]*refresh.StoredRefreshToken),
	}
}

func (tr *FakeRefreshTokenRepo) Upsert(refreshToken *refresh.StoredRefreshToken) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	tr.tokens[refreshToken.Token] = refreshToken
	return nil
}

func (tr *FakeRefreshTokenRepo) Delete(token string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	if _, ok := tr.tokens[token]; !ok {
		return errors.ErrNotFound
	}
	delete(tr.tokens, token)
	return nil
}

func (tr *FakeRefreshTokenRepo) Get(token string) (*refresh.StoredRefreshToken, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	rt, ok := tr.tokens[token]
	if !ok {
		return nil, errors.ErrNotFound
	}
	c := *rt
	return &c, nil
}

func (tr *FakeRefreshTokenRepo) DeleteBySession(sessionID string) int {
	return tr.deleteWhere(func(rt *refresh.StoredRefreshToken) bool { return rt.SessionID == sessionID })
}

func (tr *FakeRefreshTokenRepo) DeleteByUser(userID string) int {
	return tr.deleteWhere(func(rt *refresh.StoredRefreshToken) bool { return rt.UserID == userID })
}

func (tr *FakeRefreshTokenRepo) deleteWhere(match func(*refresh.StoredRefreshToken) bool) int {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	n := 0
	for token, rt := range tr.tokens {
		if match(rt) {
			delete(tr.tokens, token)
			n++
		}
	}
	return n
}
