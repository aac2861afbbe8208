package service

import "sync"

// sessionLocks hands out one mutex per session id. The lock is the source of
// truth for serializing actions on a session: a forced timeout advance and a
// concurrently arriving last action contend here, and whichever loses sees
// the already-advanced state.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

// acquire blocks until the session's lock is held and returns the release
// func. Entries are reference counted so the map does not grow with dead
// sessions.
func (l *sessionLocks) acquire(sessionID string) func() {
	l.mu.Lock()
	entry, ok := l.locks[sessionID]
	if !ok {
		entry = &sessionLock{}
		l.locks[sessionID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, sessionID)
		}
		l.mu.Unlock()
	}
}
