//go:build !unix

package dbglog

import (
	"os"
	"sync"
)

// LogFile is the managed log destination, see logfile.go. Without unix
// descriptor semantics redirection swaps file handles under the mutex and
// tying foreign descriptors is not available.
type LogFile struct {
	mtx    sync.Mutex
	file   *os.File
	closed bool
	state  fileState
}

// NewLogFile creates a LogFile bound to the null device.
func NewLogFile() (*LogFile, error) {
	f, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		return nil, fileError("open", os.DevNull, -1, ErrFileOpen, err)
	}
	lf := &LogFile{file: f}
	lf.SetDiagnostics(os.Stderr)
	return lf, nil
}

// Fd returns the handle of the current target.
func (lf *LogFile) Fd() int {
	lf.mtx.Lock()
	defer lf.mtx.Unlock()
	return int(lf.file.Fd())
}

// Ties always returns nil: tying is not supported on this platform.
func (lf *LogFile) Ties() []int {
	return nil
}

// RedirectMode is Redirect with an explicit permission for a newly created file.
func (lf *LogFile) RedirectMode(path string, perm os.FileMode) error {
	lf.mtx.Lock()
	defer lf.mtx.Unlock()
	if lf.closed {
		return fileError("open", path, -1, ErrClosed, nil)
	}
	target := path
	if target == "" {
		target = os.DevNull
	}
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_APPEND, perm)
	if err != nil {
		lf.diag(_ERROR_MESSAGE_FILE_OPEN + " <" + target + ">: " + err.Error())
		return fileError("open", target, -1, ErrFileOpen, err)
	}
	old := lf.file
	lf.file = f
	old.Close()
	lf.setPath(path)
	return nil
}

// Truncate truncates the current log file to zero length.
func (lf *LogFile) Truncate() error {
	lf.mtx.Lock()
	defer lf.mtx.Unlock()
	path := lf.Path()
	if lf.closed || path == "" {
		return fileError("truncate", path, -1, ErrNoActiveFile, nil)
	}
	if err := lf.file.Truncate(0); err != nil {
		return fileError("truncate", path, -1, ErrFileIO, err)
	}
	return nil
}

func (lf *LogFile) Tie(fd int) error {
	return fileError("tie", "", fd, ErrUnsupported, nil)
}

func (lf *LogFile) Untie(fd int, fallback string) error {
	return fileError("untie", fallback, fd, ErrUnsupported, nil)
}

func (lf *LogFile) SetOwner(uid, gid int) error {
	return fileError("chown", lf.Path(), -1, ErrUnsupported, nil)
}

func (lf *LogFile) CloseOnExec(value bool) error {
	return fileError("cloexec", lf.Path(), -1, ErrUnsupported, nil)
}

// Write writes the whole of p to the current target.
func (lf *LogFile) Write(p []byte) (int, error) {
	lf.mtx.Lock()
	defer lf.mtx.Unlock()
	if lf.closed {
		return 0, fileError("write", "", -1, ErrClosed, nil)
	}
	n, err := lf.file.Write(p)
	if err != nil {
		return n, fileError("write", lf.Path(), -1, ErrFileIO, err)
	}
	return n, nil
}

// Close closes the current target.
func (lf *LogFile) Close() error {
	lf.mtx.Lock()
	defer lf.mtx.Unlock()
	if lf.closed {
		return nil
	}
	lf.closed = true
	if err := lf.file.Close(); err != nil {
		return fileError("close", lf.Path(), -1, ErrFileIO, err)
	}
	return nil
}
