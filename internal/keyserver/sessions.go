package keyserver

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionCookie is the name of the session cookie.
const SessionCookie = "passcrypt_session"

const sessionTTL = 24 * time.Hour

type session struct {
	username string
	expires  time.Time
}

type sessions struct {
	mu   sync.Mutex
	byID map[string]session
	now  func() time.Time
}

func newSessions(now func() time.Time) *sessions {
	return &sessions{byID: make(map[string]session), now: now}
}

func (s *sessions) create(username string) string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[id] = session{username: username, expires: s.now().Add(sessionTTL)}
	return id
}

func (s *sessions) lookup(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byID[id]
	if !ok {
		return "", false
	}
	if s.now().After(sess.expires) {
		delete(s.byID, id)
		return "", false
	}
	return sess.username, true
}

func (s *sessions) delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
}
