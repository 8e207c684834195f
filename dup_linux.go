//go:build linux

package dbglog

import "golang.org/x/sys/unix"

// dup3 is the duplicate-and-swap primitive. Linux has no dup2 on every
// architecture, dup3 is used with the close-on-exec flag folded in.
func dup3(oldfd, newfd int, cloexec bool) error {
	flags := 0
	if cloexec {
		flags = unix.O_CLOEXEC
	}
	return unix.Dup3(oldfd, newfd, flags)
}
