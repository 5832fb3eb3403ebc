package sessionlock

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/JMan003/banking-system-project/pkg/dbpkg"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const lockExt = ".lock"

// FileLocker keeps one lock file per held identity in a directory shared by
// all server processes on the host. A lock file outlives a crashed holder, but
// its OS lock does not, so Reconcile can tell leftovers from live sessions.
type FileLocker struct {
	dir  string
	host string

	mu   sync.Mutex
	held map[string]*os.File
}

// NewFileLocker returns a FileLocker rooted at dir, creating it if needed.
func NewFileLocker(dir string) (*FileLocker, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errors.Wrapf(err, "create session lock dir %s", dir)
	}

	return &FileLocker{dir: dir, host: hostname(), held: make(map[string]*os.File)}, nil
}

func (fl *FileLocker) path(name string) string {
	return filepath.Join(fl.dir, name+lockExt)
}

func (fl *FileLocker) reserve(name string) bool {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if _, ok := fl.held[name]; ok {
		return false
	}

	fl.held[name] = nil

	return true
}

func (fl *FileLocker) unreserve(name string) {
	fl.mu.Lock()
	delete(fl.held, name)
	fl.mu.Unlock()
}

// TryAcquire takes the identity's lock file without blocking.
func (fl *FileLocker) TryAcquire(ctx context.Context, id Identity) (Guard, error) {
	name := id.Name()

	if !fl.reserve(name) {
		return nil, ErrAlreadyHeld
	}

	f, err := fl.lock(name)
	if err != nil {
		fl.unreserve(name)
		return nil, err
	}

	fl.mu.Lock()
	fl.held[name] = f
	fl.mu.Unlock()

	holder := Holder{Host: fl.host, PID: os.Getpid(), Token: uuid.NewString(), AcquiredAt: time.Now().UTC()}
	if err := writeHolder(f, holder); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("lock", name).Msg("cannot record lock holder")
	}

	return &fileGuard{locker: fl, id: id, f: f}, nil
}

// lock opens and locks the lock file. A holder releasing concurrently may
// unlink the file we just locked, so the lock only counts if the path still
// names the same file afterwards.
func (fl *FileLocker) lock(name string) (*os.File, error) {
	path := fl.path(name)

	for {
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o640)
		if err != nil {
			return nil, errors.Wrapf(err, "open lock file %s", path)
		}

		if err := dbpkg.TryLockFile(f); err != nil {
			f.Close()

			if errors.Is(err, dbpkg.ErrWouldBlock) {
				return nil, ErrAlreadyHeld
			}

			return nil, errors.Wrapf(err, "lock %s", path)
		}

		if sameFile(f, path) {
			return f, nil
		}

		f.Close()
	}
}

func sameFile(f *os.File, path string) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}

	pi, err := os.Stat(path)
	if err != nil {
		return false
	}

	return os.SameFile(fi, pi)
}

func writeHolder(f *os.File, h Holder) error {
	b, err := json.Marshal(h)
	if err != nil {
		return err
	}

	if err := f.Truncate(0); err != nil {
		return err
	}

	_, err = f.WriteAt(b, 0)

	return err
}

// ForceRelease unlinks the identity's lock file so the next TryAcquire
// succeeds. A holder in another process keeps a lock on the unlinked file,
// which no longer guards anything.
func (fl *FileLocker) ForceRelease(ctx context.Context, id Identity) error {
	name := id.Name()

	err := os.Remove(fl.path(name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(err, "remove lock file for %s", id)
	}

	fl.unreserve(name)
	zerolog.Ctx(ctx).Warn().Str("lock", name).Msg("session lock force released")

	return nil
}

// Reconcile removes lock files whose holder is gone.
func (fl *FileLocker) Reconcile(ctx context.Context) (int, error) {
	l := zerolog.Ctx(ctx)

	entries, err := os.ReadDir(fl.dir)
	if err != nil {
		return 0, errors.Wrapf(err, "read session lock dir %s", fl.dir)
	}

	var freed int

	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), lockExt)
		if !ok || e.IsDir() || !fl.reserve(name) {
			continue
		}

		f, err := fl.lock(name)
		if err != nil {
			fl.unreserve(name)

			if !errors.Is(err, ErrAlreadyHeld) {
				l.Error().Err(err).Str("lock", name).Send()
			}

			continue
		}

		if err := os.Remove(fl.path(name)); err == nil {
			freed++
			l.Info().Str("lock", name).Msg("stale session lock removed")
		}

		f.Close()
		fl.unreserve(name)
	}

	return freed, nil
}

type fileGuard struct {
	locker *FileLocker
	id     Identity
	f      *os.File
	once   sync.Once
	err    error
}

func (g *fileGuard) Identity() Identity {
	return g.id
}

// Release unlinks the lock file while still holding its lock, then closes it.
func (g *fileGuard) Release(ctx context.Context) error {
	g.once.Do(func() {
		name := g.id.Name()
		path := g.locker.path(name)

		if sameFile(g.f, path) {
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				g.err = errors.Wrapf(err, "remove lock file %s", path)
			}
		}

		if err := g.f.Close(); err != nil && g.err == nil {
			g.err = errors.Wrapf(err, "close lock file %s", path)
		}

		g.locker.mu.Lock()
		if g.locker.held[name] == g.f {
			delete(g.locker.held, name)
		}
		g.locker.mu.Unlock()

		if g.err != nil {
			zerolog.Ctx(ctx).Error().Err(g.err).Send()
		}
	})

	return g.err
}
