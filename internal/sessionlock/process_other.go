//go:build !unix

package sessionlock

// processAlive cannot probe other processes here, so every holder is assumed alive.
func processAlive(int) bool { return true }
