package sessions

import "time"

type Repo interface {
	// Create stores a new session, assigning an id when empty.
	Create(session *Session) error

	Get(sessionID string) (*Session, error)

	// Touch records activity on a session.
	Touch(sessionID string, at time.Time) error

	// ListByUser returns a user's sessions, oldest first.
	ListByUser(userID string) ([]*Session, error)

	Delete(sessionID string) error

	// DeleteByUser removes every session of a user and reports how many.
	DeleteByUser(userID string) int

	Count() int
}
