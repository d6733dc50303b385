package kv

import (
	"bytes"
	"sort"
	"sync"
)

// validatorLocks hands out one mutex per public key. Entries are reference counted
// and dropped once no goroutine holds or waits for them.
type validatorLocks struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	sync.Mutex
	refs int
}

func newValidatorLocks() *validatorLocks {
	return &validatorLocks{locks: make(map[string]*refLock)}
}

// lock acquires the locks of every given public key in sorted order and returns
// the function releasing them. Duplicate keys are locked once.
func (l *validatorLocks) lock(pubKeys ...[]byte) func() {
	keys := make([][]byte, len(pubKeys))
	copy(keys, pubKeys)
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i], keys[j]) < 0
	})
	held := make([]string, 0, len(keys))
	for i, k := range keys {
		if i > 0 && bytes.Equal(k, keys[i-1]) {
			continue
		}
		held = append(held, string(k))
	}

	entries := make([]*refLock, len(held))
	l.mu.Lock()
	for i, k := range held {
		entry, ok := l.locks[k]
		if !ok {
			entry = &refLock{}
			l.locks[k] = entry
		}
		entry.refs++
		entries[i] = entry
	}
	l.mu.Unlock()

	for _, entry := range entries {
		entry.Lock()
	}
	return func() {
		for i := len(entries) - 1; i >= 0; i-- {
			entries[i].Unlock()
		}
		l.mu.Lock()
		for i, k := range held {
			entries[i].refs--
			if entries[i].refs == 0 {
				delete(l.locks, k)
			}
		}
		l.mu.Unlock()
	}
}

func (l *validatorLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
