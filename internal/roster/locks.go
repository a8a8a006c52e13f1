package roster

import (
	"sync"

	"github.com/tf416/rosterbot/pkg/utils"
)

// memberLocks hands out one mutex per folded username. Entries are dropped
// once nobody holds or waits on them.
type memberLocks struct {
	mu    sync.Mutex
	locks map[string]*memberLock
}

type memberLock struct {
	mu   sync.Mutex
	refs int
}

func (l *memberLocks) lock(username string) func() {
	key := utils.FoldName(username)

	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*memberLock)
	}

	ml, ok := l.locks[key]
	if !ok {
		ml = &memberLock{}
		l.locks[key] = ml
	}
	ml.refs++
	l.mu.Unlock()

	ml.mu.Lock()

	return func() {
		ml.mu.Unlock()

		l.mu.Lock()
		ml.refs--
		if ml.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}
