// Package keylock provides mutual exclusion per string key. The ledger
// engine requires that a holding aggregate is mutated by at most one logical
// operation at a time; services serialize on the (portfolio, instrument) key
// through a shared KeyedMutex while distinct holdings proceed concurrently.
package keylock

import "sync"

// KeyedMutex hands out one mutex per key. Mutexes are created lazily and
// kept for the lifetime of the process; the key space (portfolio ×
// instrument) is small enough that no eviction is needed.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates an empty KeyedMutex.
func New() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key, creating it on first use.
func (k *KeyedMutex) Lock(key string) {
	k.mutex(key).Lock()
}

// Unlock releases the mutex for key.
func (k *KeyedMutex) Unlock(key string) {
	k.mutex(key).Unlock()
}

func (k *KeyedMutex) mutex(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}
