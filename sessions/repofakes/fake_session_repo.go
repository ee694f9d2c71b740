package fakesessionrepo

import (
	"sort"
	"sync"
	"time"

	"github.com/jrsteele09/kubeatlas-console/internal/errors"
	"github.com/jrsteele09/kubeatlas-console/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

type FakeSessionRepo struct {
	sessions map[string]*sessions.Session
	lock     sync.RWMutex
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		sessions: make(map[string]*sessions.Session),
	}
}

func (sr *FakeSessionRepo) Create(session *sessions.Session) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	if session.ID == "" {
		session.ID = sessions.NewID()
	}
	if _, ok := sr.sessions[session.ID]; ok {
		return errors.Wrapf(errors.ErrConflict, "session %s", session.ID)
	}
	c := *session
	sr.sessions[session.ID] = &c
	return nil
}

func (sr *FakeSessionRepo) Get(sessionID string) (*sessions.Session, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	session, ok := sr.sessions[sessionID]
	if !ok {
		return nil, errors.ErrSessionNotFound
	}
	c := *session
	return &c, nil
}

func (sr *FakeSessionRepo) Touch(sessionID string, at time.Time) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	session, ok := sr.sessions[sessionID]
	if !ok {
		return errors.ErrSessionNotFound
	}
	if at.After(session.LastAccess) {
		session.LastAccess = at
	}
	return nil
}

func (sr *FakeSessionRepo) ListByUser(userID string) ([]*sessions.Session, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	list := make([]*sessions.Session, 0)
	for _, s := range sr.sessions {
		if s.UserID == userID {
			c := *s
			list = append(list, &c)
		}
	}
	// ulids sort by creation time
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (sr *FakeSessionRepo) Delete(sessionID string) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	if _, ok := sr.sessions[sessionID]; !ok {
		return errors.ErrSessionNotFound
	}
	delete(sr.sessions, sessionID)
	return nil
}

func (sr *FakeSessionRepo) DeleteByUser(userID string) int {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	n := 0
	for id, s := range sr.sessions {
		if s.UserID == userID {
			delete(sr.sessions, id)
			n++
		}
	}
	return n
}

func (sr *FakeSessionRepo) Count() int {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	return len(sr.sessions)
}
