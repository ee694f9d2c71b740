package users

import "time"

type UserRepo interface {
	Upsert(user *User) error
	Delete(id string) error
	GetByID(id string) (*User, error)
	GetByUsername(username string) (*User, error)
	GetByEmail(email string) (*User, error)
	List(offset, limit int) ([]*User, error)
	Count() int
	SetLastLogin(id string, at time.Time) error
}
