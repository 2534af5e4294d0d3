//go:build unix

package crypto

import "golang.org/x/sys/unix"

// lockMemory pins b into RAM so key material is not swapped out. It is
// best effort: RLIMIT_MEMLOCK may be too small for unprivileged processes.
func lockMemory(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	return unix.Mlock(b) == nil
}

func unlockMemory(b []byte) {
	if len(b) == 0 {
		return
	}
	_ = unix.Munlock(b)
}
