package service

import (
	"sync"

	"github.com/google/uuid"
)

// UserLocks serializes ledger-touching operations per user. One
// instance is shared by every service that credits coins, so a session
// completion can never interleave with a task or habit completion for
// the same user. Different users proceed in parallel.
type UserLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewUserLocks() *UserLocks {
	return &UserLocks{
		locks: make(map[uuid.UUID]*sync.Mutex),
	}
}

// Lock acquires the user's mutex and returns the unlock func.
func (ul *UserLocks) Lock(uid uuid.UUID) func() {
	ul.mu.Lock()
	lock, ok := ul.locks[uid]
	if !ok {
		lock = &sync.Mutex{}
		ul.locks[uid] = lock
	}
	ul.mu.Unlock()
	lock.Lock()
	return lock.Unlock
}
