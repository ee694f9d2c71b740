package fakeuserrepo

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/kubeatlas-console/internal/errors"
	"github.com/jrsteele09/kubeatlas-console/internal/utils"
	"github.com/jrsteele09/kubeatlas-console/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

// FakeUserRepo keeps users in memory. Returned users are copies.
type FakeUserRepo struct {
	users       map[string]*users.User
	usernameIDs map[string]string // lower-cased username to user id
	emailIDs    map[string]string // lower-cased email to user id
	lock        sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:       make(map[string]*users.User),
		usernameIDs: make(map[string]string),
		emailIDs:    make(map[string]string),
	}
}

func (ur *FakeUserRepo) Upsert(user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	username, email := strings.ToLower(user.Username), strings.ToLower(user.Email)
	if id, ok := ur.usernameIDs[username]; ok && id != user.ID {
		return errors.Wrapf(errors.ErrConflict, "username %q", user.Username)
	}
	if id, ok := ur.emailIDs[email]; ok && email != "" && id != user.ID {
		return errors.Wrapf(errors.ErrConflict, "email %q", user.Email)
	}

	if existing, ok := ur.users[user.ID]; ok {
		delete(ur.usernameIDs, strings.ToLower(existing.Username))
		delete(ur.emailIDs, strings.ToLower(existing.Email))
	}

	stored := copyUser(user)
	ur.users[user.ID] = stored
	ur.usernameIDs[username] = user.ID
	if email != "" {
		ur.emailIDs[email] = user.ID
	}
	return nil
}

func (ur *FakeUserRepo) Delete(id string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.users[id]
	if !ok {
		return errors.ErrUserNotFound
	}
	delete(ur.usernameIDs, strings.ToLower(user.Username))
	delete(ur.emailIDs, strings.ToLower(user.Email))
	delete(ur.users, id)
	return nil
}

func (ur *FakeUserRepo) GetByID(id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	user, ok := ur.users[id]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	return copyUser(user), nil
}

func (ur *FakeUserRepo) GetByUsername(username string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.usernameIDs[strings.ToLower(username)]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	return copyUser(ur.users[id]), nil
}

func (ur *FakeUserRepo) GetByEmail(email string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.emailIDs[strings.ToLower(email)]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	return copyUser(ur.users[id]), nil
}

// List orders users by creation time, then username.
func (ur *FakeUserRepo) List(offset, limit int) ([]*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	userList := make([]*users.User, 0, len(ur.users))
	for _, v := range ur.users {
		userList = append(userList, copyUser(v))
	}
	sort.Slice(userList, func(i, j int) bool {
		if !userList[i].CreatedAt.Equal(userList[j].CreatedAt) {
			return userList[i].CreatedAt.Before(userList[j].CreatedAt)
		}
		return userList[i].Username < userList[j].Username
	})
	return utils.Page(userList, offset, limit), nil
}

func (ur *FakeUserRepo) Count() int {
	ur.lock.RLock()
	defer ur.lock.RUnlock()
	return len(ur.users)
}

func (ur *FakeUserRepo) SetLastLogin(id string, at time.Time) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.users[id]
	if !ok {
		return errors.ErrUserNotFound
	}
	user.LastLogin = at
	return nil
}

func copyUser(u *users.User) *users.User {
	c := *u
	c.Roles = append([]string(nil), u.Roles...)
	return &c
}
