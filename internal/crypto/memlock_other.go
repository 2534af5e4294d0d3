//go:build !unix

package crypto

func lockMemory([]byte) bool { return false }

func unlockMemory([]byte) {}
