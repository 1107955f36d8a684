package service

import "sync"

// keyedLocks serializes mutations per ticket id. Operations on different
// tickets proceed independently; concurrent operations on the same ticket
// queue behind one mutex so statusHistory order and attempt numbering stay
// consistent. Entries are reference-counted and removed once the last
// holder releases, so the table stays bounded by in-flight tickets rather
// than every id ever seen.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// acquire locks the mutex for key and returns the unlock func.
func (k *keyedLocks) acquire(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*lockEntry)
	}
	entry, ok := k.locks[key]
	if !ok {
		entry = &lockEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
