package services

import (
	"context"
	"sync"
)

// Locker serializes work on a key. Acquire blocks until the lock is held or
// ctx is done; the returned function releases it.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// LocalLocker is a Locker for a single portal process.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: map[string]*keyLock{}}
}

func (l *LocalLocker) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-kl.ch
				l.drop(key, kl)
			})
		}, nil
	case <-ctx.Done():
		l.drop(key, kl)
		return nil, ctx.Err()
	}
}

func (l *LocalLocker) drop(key string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

func requestLockKey(requestID string) string {
	return "appointment_request_lock:" + requestID
}
