package app

import "sync"

// SessionLocks serializes pipeline mutations per session within this
// process: concurrent uploads, replace-vs-transcribe races, and duplicate
// report generation all queue up on the same session's lock. Cross-process
// safety additionally rests on the immediate-mode write transactions and the
// session_audio unique index.
type SessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewSessionLocks creates an empty lock registry.
func NewSessionLocks() *SessionLocks {
	return &SessionLocks{locks: make(map[string]*sessionLock)}
}

// Acquire blocks until the session's lock is held and returns the release
// function. Lock entries are reference counted so the registry does not grow
// with the number of sessions ever seen.
func (l *SessionLocks) Acquire(sessionID string) func() {
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
