//go:build unix

package main

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/abyssdigger/dbglog"
)

// savedStreams keeps duplicates of descriptors (stdout, stderr) for as long
// as they are tied to the log file.
type savedStreams struct {
	fds   []int
	saved []int
}

func saveStreams(fds ...int) (*savedStreams, error) {
	s := &savedStreams{fds: fds}
	for _, fd := range fds {
		dup, err := unix.Dup(fd)
		if err != nil {
			s.close()
			return nil, errors.Wrapf(err, "cannot save fd %d", fd)
		}
		unix.CloseOnExec(dup)
		s.saved = append(s.saved, dup)
	}
	return s, nil
}

// restore unties the descriptors from l (nil if the logger is already gone)
// and points them back at what they referred to when saved.
func (s *savedStreams) restore(l *dbglog.Logger) error {
	var first error
	for i, fd := range s.fds {
		if l != nil {
			if err := l.Untie(fd, ""); err != nil && !errors.Is(err, dbglog.ErrNotTied) && first == nil {
				first = err
			}
		}
		if err := unix.Dup2(s.saved[i], fd); err != nil && first == nil {
			first = errors.Wrapf(err, "cannot restore fd %d", fd)
		}
	}
	s.close()
	return first
}

func (s *savedStreams) close() {
	for _, fd := range s.saved {
		unix.Close(fd)
	}
	s.saved = nil
}
