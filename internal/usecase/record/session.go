package record

import (
	"sync"
	"time"
)

const (
	titleAddUser  = "Add User"
	titleEditUser = "Edit User"
)

// session is the view state of one browser session.
type session struct {
	mu       sync.Mutex
	page     int64
	query    string
	editing  *int
	modal    bool
	title    string
	lastSeen time.Time
}

func (s *session) openModal(title string, editing *int) {
	s.editing = editing
	s.modal = true
	s.title = title
}

func (s *session) closeModal() {
	s.editing = nil
	s.modal = false
	s.title = ""
}

// shiftAfterDelete keeps the editing index pointing at the same record
// after the record at removed was deleted.
func (s *session) shiftAfterDelete(removed int) {
	if s.editing == nil {
		return
	}
	switch {
	case *s.editing == removed:
		s.closeModal()
	case *s.editing > removed:
		idx := *s.editing - 1
		s.editing = &idx
	}
}

// sessionStore keeps session state in memory, dropping sessions idle for longer than ttl.
type sessionStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]*session
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]*session),
	}
}

// get returns the session for id, creating it on first use.
func (s *sessionStore) get(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess, ok := s.items[id]
	if !ok {
		s.evictLocked(now)
		sess = &session{page: 1}
		s.items[id] = sess
	}
	sess.lastSeen = now
	return sess
}

func (s *sessionStore) evictLocked(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for id, sess := range s.items {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.items, id)
		}
	}
}

// forEach calls fn on every session, holding that session's lock.
func (s *sessionStore) forEach(fn func(*session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.items {
		sess.mu.Lock()
		fn(sess)
		sess.mu.Unlock()
	}
}
