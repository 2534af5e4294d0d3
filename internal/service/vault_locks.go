package service

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// VaultLocks serializes sync, upload and queue work per vault. Acquire is
// cancellable through its context.
type VaultLocks struct {
	mu    sync.Mutex
	locks map[int64]*semaphore.Weighted
}

func NewVaultLocks() *VaultLocks {
	return &VaultLocks{locks: make(map[int64]*semaphore.Weighted)}
}

func (l *VaultLocks) get(vaultID int64) *semaphore.Weighted {
	l.mu.Lock()
	defer l.mu.Unlock()

	sem, ok := l.locks[vaultID]
	if !ok {
		sem = semaphore.NewWeighted(1)
		l.locks[vaultID] = sem
	}
	return sem
}

// Acquire blocks until the vault is free or ctx is done. The returned
// function releases the lock.
func (l *VaultLocks) Acquire(ctx context.Context, vaultID int64) (func(), error) {
	sem := l.get(vaultID)
	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { sem.Release(1) }, nil
}

// TryAcquire takes the lock only if it is free.
func (l *VaultLocks) TryAcquire(vaultID int64) (func(), bool) {
	sem := l.get(vaultID)
	if !sem.TryAcquire(1) {
		return nil, false
	}
	return func() { sem.Release(1) }, true
}
