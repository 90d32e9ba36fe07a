// Package lock serializes checkout commits that touch the same batches or
// credit account. The conditional decrement in the database remains the
// source of truth; these locks keep concurrent terminals from racing into it.
package lock

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrBusy is returned when a lock could not be obtained before the deadline.
var ErrBusy = errors.New("lock: resource busy")

// Release frees every key obtained by one Acquire call. It is safe to call once.
type Release func()

// Locker obtains exclusive ownership of a set of keys.
type Locker interface {
	Acquire(ctx context.Context, keys ...string) (Release, error)
}

// normalize dedupes and sorts keys so that every caller locks in the same order.
func normalize(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type localEntry struct {
	ch   chan struct{}
	refs int
}

// LocalLocker is an in-process keyed mutex.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*localEntry
}

// NewLocalLocker creates an in-process locker
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*localEntry)}
}

func (l *LocalLocker) entry(key string) *localEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.locks[key]
	if !ok {
		e = &localEntry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	return e
}

func (l *LocalLocker) drop(key string, e *localEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}

func (l *LocalLocker) Acquire(ctx context.Context, keys ...string) (Release, error) {
	keys = normalize(keys)
	held := make([]string, 0, len(keys))
	entries := make([]*localEntry, 0, len(keys))

	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-entries[i].ch
			l.drop(held[i], entries[i])
		}
	}

	for _, key := range keys {
		e := l.entry(key)
		select {
		case e.ch <- struct{}{}:
			held = append(held, key)
			entries = append(entries, e)
		case <-ctx.Done():
			l.drop(key, e)
			release()
			return nil, ErrBusy
		}
	}

	var once sync.Once
	return func() { once.Do(release) }, nil
}
