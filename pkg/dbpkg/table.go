// Package dbpkg provides fixed-size record files with byte-range locking.
package dbpkg

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/JMan003/banking-system-project/pkg/errorspkg"
	"github.com/pkg/errors"
)

// Errors returned by table handles.
var (
	ErrNoRecord   = errors.New("no matching record")
	ErrDuplicate  = errors.New("duplicate record")
	ErrWouldBlock = errors.New("lock is held elsewhere")
)

// ToEOF as a lock length covers the record at the offset and everything after it.
const ToEOF = 0

// DB is a directory of record files sharing one in-process lock table.
type DB struct {
	dir   string
	locks *lockTable
}

// Setup creates dir if needed and returns a DB rooted at it.
func Setup(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errors.Wrapf(err, "create data dir %s", dir)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve data dir %s", dir)
	}

	return &DB{dir: abs, locks: newLockTable()}, nil
}

// SetupTestDB returns a DB in a fresh temporary directory removed after the test.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Setup(t.TempDir())
	if err != nil {
		t.Fatalf("dbpkg.Setup() failed: %v", err)
	}

	return db
}

// Dir returns the data directory.
func (db *DB) Dir() string {
	return db.dir
}

// Codec converts values to and from fixed-size records.
type Codec[T any] interface {
	Size() int
	Marshal(v T) ([]byte, error)
	Unmarshal(b []byte) (T, error)
}

// Table is a file of fixed-size records of type T.
type Table[T any] struct {
	db    *DB
	path  string
	codec Codec[T]
}

// NewTable binds the file name inside db to codec.
func NewTable[T any](db *DB, name string, codec Codec[T]) *Table[T] {
	return &Table[T]{db: db, path: filepath.Join(db.dir, name), codec: codec}
}

// Path returns the backing file path.
func (t *Table[T]) Path() string {
	return t.path
}

// RecordSize returns the size in bytes of one record.
func (t *Table[T]) RecordSize() int64 {
	return int64(t.codec.Size())
}

// Open opens the backing file for one operation, creating it empty if absent.
// The caller must Close the handle.
func (t *Table[T]) Open() (*Handle[T], error) {
	f, err := os.OpenFile(t.path, os.O_RDWR|os.O_CREATE, 0o640)
	if err != nil {
		return nil, ioError(err, "open %s", t.path)
	}

	return &Handle[T]{table: t, f: f}, nil
}

// Handle is a per-operation open descriptor of a Table.
type Handle[T any] struct {
	table *Table[T]
	f     *os.File
}

// Close closes the descriptor.
func (h *Handle[T]) Close() error {
	if err := h.f.Close(); err != nil {
		return ioError(err, "close %s", h.table.path)
	}

	return nil
}

// Guard releases a held lock. Release may be called more than once.
type Guard struct {
	once    sync.Once
	release func() error
	err     error
}

// Release unlocks the range. Only the first call has an effect.
func (g *Guard) Release() error {
	g.once.Do(func() {
		g.err = g.release()
	})

	return g.err
}

// Lock blocks until the byte range [off, off+length) is held in mode.
// A length of ToEOF locks to the end of the file. Cancelling ctx aborts the
// wait for goroutines of this process; the wait for other processes is not
// interruptible.
func (h *Handle[T]) Lock(ctx context.Context, off, length int64, mode LockMode) (*Guard, error) {
	s := span{start: off, length: length, mode: mode}

	held, err := h.table.db.locks.acquire(ctx, h.table.path, s)
	if err != nil {
		return nil, lockError(err, h.table.path, s)
	}

	if err := osLock(h.f, s); err != nil {
		h.table.db.locks.release(h.table.path, held)
		return nil, lockError(err, h.table.path, s)
	}

	g := &Guard{release: func() error {
		err := osUnlock(h.f, s)
		h.table.db.locks.release(h.table.path, held)
		if err != nil {
			return lockError(err, h.table.path, s)
		}

		return nil
	}}

	return g, nil
}

// LockRecord locks the single record at off.
func (h *Handle[T]) LockRecord(ctx context.Context, off int64, mode LockMode) (*Guard, error) {
	return h.Lock(ctx, off, h.table.RecordSize(), mode)
}

// ReadAt reads the record at off. The caller must hold a lock covering it.
func (h *Handle[T]) ReadAt(off int64) (T, error) {
	var zero T

	buf := make([]byte, h.table.codec.Size())
	if _, err := h.f.ReadAt(buf, off); err != nil {
		if errors.Is(err, io.EOF) {
			return zero, ErrNoRecord
		}

		return zero, ioError(err, "read %s at %d", h.table.path, off)
	}

	v, err := h.table.codec.Unmarshal(buf)
	if err != nil {
		return zero, ioError(err, "decode %s at %d", h.table.path, off)
	}

	return v, nil
}

// WriteAt overwrites the record at off. The caller must hold an exclusive lock covering it.
func (h *Handle[T]) WriteAt(off int64, v T) error {
	buf, err := h.table.codec.Marshal(v)
	if err != nil {
		return ioError(err, "encode %s", h.table.path)
	}

	if _, err := h.f.WriteAt(buf, off); err != nil {
		return ioError(err, "write %s at %d", h.table.path, off)
	}

	return nil
}

// Records returns the number of complete records in the file.
func (h *Handle[T]) Records() (int64, error) {
	fi, err := h.f.Stat()
	if err != nil {
		return 0, ioError(err, "stat %s", h.table.path)
	}

	return fi.Size() / h.table.RecordSize(), nil
}

// Locate returns the offset and value of the first record matching pred.
// The whole file is share-locked during the scan and unlocked before return,
// so the caller must lock the record and re-read it before mutating.
func (h *Handle[T]) Locate(ctx context.Context, pred func(T) bool) (int64, T, error) {
	var zero T

	g, err := h.Lock(ctx, 0, ToEOF, Shared)
	if err != nil {
		return 0, zero, err
	}
	defer g.Release()

	return h.find(pred)
}

// Scan calls fn for every record in file order under a whole-file shared lock.
// A non-nil error from fn stops the scan and is returned.
func (h *Handle[T]) Scan(ctx context.Context, fn func(off int64, v T) error) error {
	g, err := h.Lock(ctx, 0, ToEOF, Shared)
	if err != nil {
		return err
	}
	defer g.Release()

	return h.scan(fn)
}

// Append writes v after the last complete record under a whole-file exclusive lock.
func (h *Handle[T]) Append(ctx context.Context, v T) (int64, error) {
	g, err := h.Lock(ctx, 0, ToEOF, Exclusive)
	if err != nil {
		return 0, err
	}
	defer g.Release()

	return h.appendLocked(v)
}

// AppendUnique appends v unless a record matching dup already exists, in which
// case it returns ErrDuplicate. Check and append happen under one exclusive lock.
func (h *Handle[T]) AppendUnique(ctx context.Context, v T, dup func(T) bool) (int64, error) {
	g, err := h.Lock(ctx, 0, ToEOF, Exclusive)
	if err != nil {
		return 0, err
	}
	defer g.Release()

	_, _, err = h.find(dup)
	switch {
	case err == nil:
		return 0, ErrDuplicate
	case !errors.Is(err, ErrNoRecord):
		return 0, err
	}

	return h.appendLocked(v)
}

func (h *Handle[T]) appendLocked(v T) (int64, error) {
	n, err := h.Records()
	if err != nil {
		return 0, err
	}

	off := n * h.table.RecordSize()
	if err := h.WriteAt(off, v); err != nil {
		return 0, err
	}

	return off, nil
}

var errStop = errors.New("stop")

func (h *Handle[T]) find(pred func(T) bool) (int64, T, error) {
	var (
		found int64 = -1
		match T
	)

	err := h.scan(func(off int64, v T) error {
		if pred(v) {
			found, match = off, v
			return errStop
		}

		return nil
	})
	if err != nil && !errors.Is(err, errStop) {
		return 0, match, err
	}

	if found < 0 {
		return 0, match, ErrNoRecord
	}

	return found, match, nil
}

// scan reads sequentially without locking. A partial trailing record is ignored.
func (h *Handle[T]) scan(fn func(off int64, v T) error) error {
	size := h.table.codec.Size()
	r := bufio.NewReaderSize(io.NewSectionReader(h.f, 0, 1<<62), size*64)
	buf := make([]byte, size)

	for off := int64(0); ; off += int64(size) {
		if _, err := io.ReadFull(r, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}

			return ioError(err, "scan %s at %d", h.table.path, off)
		}

		v, err := h.table.codec.Unmarshal(buf)
		if err != nil {
			return ioError(err, "decode %s at %d", h.table.path, off)
		}

		if err := fn(off, v); err != nil {
			return err
		}
	}
}

func ioError(err error, format string, args ...any) error {
	return errors.WithStack(fmt.Errorf("%s: %w: %w", fmt.Sprintf(format, args...), errorspkg.ErrIO, err))
}

func lockError(err error, path string, s span) error {
	return errors.WithStack(fmt.Errorf("%s lock on %s at %d+%d: %w: %w",
		s.mode, filepath.Base(path), s.start, s.length, errorspkg.ErrLock, err))
}

// Classify reduces a storage error to errorspkg.ErrLock or errorspkg.ErrIO.
func Classify(err error) error {
	if errors.Is(err, errorspkg.ErrLock) {
		return errorspkg.ErrLock
	}

	return errorspkg.ErrIO
}
