//go:build unix

package sessionlock

import "golang.org/x/sys/unix"

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}

	return unix.Kill(pid, 0) != unix.ESRCH
}
