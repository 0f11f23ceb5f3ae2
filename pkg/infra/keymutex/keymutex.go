package keymutex

import (
	"hash/fnv"
	"sync"
)

// KeyMutex serializes work per string key without a global lock. Keys are
// hashed onto a fixed set of stripes, so two distinct keys may occasionally
// share a stripe; that only over-serializes, never under-serializes.
type KeyMutex struct {
	stripes []sync.Mutex
}

func New(stripes int) *KeyMutex {
	if stripes <= 0 {
		stripes = 256
	}
	return &KeyMutex{
		stripes: make([]sync.Mutex, stripes),
	}
}

func (m *KeyMutex) Lock(key string) {
	m.stripes[m.index(key)].Lock()
}

func (m *KeyMutex) Unlock(key string) {
	m.stripes[m.index(key)].Unlock()
}

func (m *KeyMutex) index(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32() % uint32(len(m.stripes))
}
