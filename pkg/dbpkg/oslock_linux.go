//go:build linux

package dbpkg

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Open file description locks belong to the descriptor, not the process, so
// closing another descriptor of the same file never drops them.

func flockFor(s span, typ int16) unix.Flock_t {
	return unix.Flock_t{
		Type:   typ,
		Whence: io.SeekStart,
		Start:  s.start,
		Len:    s.length,
	}
}

func osLock(f *os.File, s span) error {
	typ := int16(unix.F_RDLCK)
	if s.mode == Exclusive {
		typ = unix.F_WRLCK
	}

	lk := flockFor(s, typ)

	for {
		err := unix.FcntlFlock(f.Fd(), unix.F_OFD_SETLKW, &lk)
		if err != unix.EINTR {
			return err
		}
	}
}

func osUnlock(f *os.File, s span) error {
	lk := flockFor(s, unix.F_UNLCK)
	return unix.FcntlFlock(f.Fd(), unix.F_OFD_SETLK, &lk)
}

// TryLockFile takes a non-blocking exclusive lock on the whole of f.
// It returns ErrWouldBlock when another descriptor holds a conflicting lock.
func TryLockFile(f *os.File) error {
	lk := flockFor(span{mode: Exclusive}, unix.F_WRLCK)

	for {
		err := unix.FcntlFlock(f.Fd(), unix.F_OFD_SETLK, &lk)
		switch err {
		case nil:
			return nil
		case unix.EINTR:
			continue
		case unix.EAGAIN, unix.EACCES:
			return ErrWouldBlock
		default:
			return err
		}
	}
}
