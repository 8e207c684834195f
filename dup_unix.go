//go:build unix && !linux

package dbglog

import "golang.org/x/sys/unix"

// dup3 emulates dup3 with dup2; dup2 always clears FD_CLOEXEC on newfd, so
// the flag is restored afterwards when requested.
func dup3(oldfd, newfd int, cloexec bool) error {
	if err := unix.Dup2(oldfd, newfd); err != nil {
		return err
	}
	if cloexec {
		return setCloexec(newfd, true)
	}
	return nil
}
