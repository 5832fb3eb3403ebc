package dbpkg

import (
	"context"
	"math"
	"sync"
)

// LockMode selects between shared and exclusive byte-range locks.
type LockMode int

// Lock modes.
const (
	Shared LockMode = iota
	Exclusive
)

func (m LockMode) String() string {
	if m == Exclusive {
		return "exclusive"
	}

	return "shared"
}

// span is a locked byte range. A zero length extends to the end of file.
type span struct {
	start  int64
	length int64
	mode   LockMode
}

func (s span) end() int64 {
	if s.length == 0 {
		return math.MaxInt64
	}

	return s.start + s.length
}

func (s span) conflicts(o span) bool {
	if s.mode == Shared && o.mode == Shared {
		return false
	}

	return s.start < o.end() && o.start < s.end()
}

type fileLocks struct {
	held    map[*span]struct{}
	changed chan struct{}
	refs    int
}

func (fl *fileLocks) blocked(s span) bool {
	for h := range fl.held {
		if h.conflicts(s) {
			return true
		}
	}

	return false
}

// lockTable serializes goroutines of one process on byte ranges of named files.
type lockTable struct {
	mu    sync.Mutex
	files map[string]*fileLocks
}

func newLockTable() *lockTable {
	return &lockTable{files: make(map[string]*fileLocks)}
}

// acquire blocks until s can be granted on key or ctx is done.
func (lt *lockTable) acquire(ctx context.Context, key string, s span) (*span, error) {
	lt.mu.Lock()

	fl, ok := lt.files[key]
	if !ok {
		fl = &fileLocks{held: make(map[*span]struct{}), changed: make(chan struct{})}
		lt.files[key] = fl
	}
	fl.refs++

	for fl.blocked(s) {
		wait := fl.changed
		lt.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			lt.mu.Lock()
			lt.drop(key, fl)
			lt.mu.Unlock()

			return nil, ctx.Err()
		}

		lt.mu.Lock()
	}

	h := &s
	fl.held[h] = struct{}{}
	lt.mu.Unlock()

	return h, nil
}

func (lt *lockTable) release(key string, h *span) {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	fl, ok := lt.files[key]
	if !ok {
		return
	}

	if _, ok := fl.held[h]; !ok {
		return
	}

	delete(fl.held, h)
	close(fl.changed)
	fl.changed = make(chan struct{})
	lt.drop(key, fl)
}

// drop must be called with lt.mu held.
func (lt *lockTable) drop(key string, fl *fileLocks) {
	fl.refs--
	if fl.refs == 0 {
		delete(lt.files, key)
	}
}
