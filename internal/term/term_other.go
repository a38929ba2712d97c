//go:build !linux

package term

// IsTerminal reports false; colour is only detected on Linux.
func IsTerminal(fd uintptr) bool { return false }
