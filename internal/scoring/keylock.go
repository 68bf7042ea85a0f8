package scoring

import (
	"sync"

	id "vouch/pkg/domain"
)

// KeyLock linearizes mutations per (domain, account) pair. The ledger
// environment requires each operation's validate-mutate-recompute span to
// run without interleaving against the same pair; operations on different
// pairs may proceed in parallel.
//
// Locks are retained for the process lifetime; the key space is bounded by
// the set of touched accounts, mirroring the lazily created reputation
// records themselves.
type KeyLock struct {
	mu    sync.Mutex
	locks map[recordKey]*sync.Mutex
}

func NewKeyLock() *KeyLock {
	return &KeyLock{locks: make(map[recordKey]*sync.Mutex)}
}

// Acquire blocks until the pair's lock is held and returns the release
// function.
func (l *KeyLock) Acquire(domainID id.DomainID, account id.AccountID) func() {
	key := recordKey{domainID: domainID, account: account}

	l.mu.Lock()
	lock, ok := l.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[key] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
