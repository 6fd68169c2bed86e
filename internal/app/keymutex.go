package app

import "sync"

// keyMutex serializes work per integer key. Concurrent syncs of the same
// sanction id take the same entry; entries are dropped once unused so the
// map does not grow with every sanction ever synced.
type keyMutex struct {
	mu      sync.Mutex
	entries map[int]*keyMutexEntry
}

type keyMutexEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyMutex() *keyMutex {
	return &keyMutex{entries: make(map[int]*keyMutexEntry)}
}

// lock blocks until the key is free and returns the matching unlock.
func (k *keyMutex) lock(key int) func() {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &keyMutexEntry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}
