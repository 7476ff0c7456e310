package ledger

import "sync"

// groupLocks hands out one mutex per group id. Entries are reference counted
// and dropped when the last holder unlocks, so the map only holds groups with
// a writer in flight.
type groupLocks struct {
	mu    sync.Mutex
	locks map[string]*groupLock
}

type groupLock struct {
	mu   sync.Mutex
	refs int
}

func newGroupLocks() *groupLocks {
	return &groupLocks{locks: make(map[string]*groupLock)}
}

// lock blocks until the caller owns groupID's critical section and returns
// the function that releases it.
func (l *groupLocks) lock(groupID string) (unlock func()) {
	l.mu.Lock()
	gl, ok := l.locks[groupID]
	if !ok {
		gl = &groupLock{}
		l.locks[groupID] = gl
	}
	gl.refs++
	l.mu.Unlock()

	gl.mu.Lock()
	return func() {
		gl.mu.Unlock()

		l.mu.Lock()
		gl.refs--
		if gl.refs == 0 {
			delete(l.locks, groupID)
		}
		l.mu.Unlock()
	}
}

// size reports how many groups currently have a lock allocated.
func (l *groupLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
