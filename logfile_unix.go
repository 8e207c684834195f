//go:build unix

package dbglog

import (
	"os"
	"slices"
	"strconv"
	"sync"

	"golang.org/x/sys/unix"
)

// LogFile is the managed log destination, see logfile.go.
type LogFile struct {
	mtx     sync.Mutex
	fd      int   // never changes after construction
	ties    []int // tied descriptors in registration order
	cloexec bool  // FD_CLOEXEC wanted on fd (re-applied after every swap)
	closed  bool
	state   fileState
}

// NewLogFile creates a LogFile bound to the null device.
func NewLogFile() (*LogFile, error) {
	fd, err := openFile(os.DevNull, DEFAULT_FILE_MODE)
	if err != nil {
		return nil, fileError("open", os.DevNull, -1, ErrFileOpen, err)
	}
	// inherited by children unless CloseOnExec(true) is requested
	if err := setCloexec(fd, false); err != nil {
		closeFd(fd)
		return nil, fileError("cloexec", os.DevNull, fd, ErrFileIO, err)
	}
	lf := &LogFile{fd: fd}
	lf.SetDiagnostics(os.Stderr)
	return lf, nil
}

// Fd returns the owned descriptor.
func (lf *LogFile) Fd() int {
	return lf.fd
}

// Ties returns a copy of the tied descriptors in registration order.
func (lf *LogFile) Ties() []int {
	lf.mtx.Lock()
	defer lf.mtx.Unlock()
	return slices.Clone(lf.ties)
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
	src, err := openFile(target, perm)
	if err != nil {
		lf.diag(_ERROR_MESSAGE_FILE_OPEN + " <" + target + ">: " + err.Error())
		return fileError("open", target, -1, ErrFileOpen, err)
	}
	defer closeFd(src)
	if err := dupInto(src, lf.fd, lf.cloexec); err != nil {
		lf.diag(_ERROR_MESSAGE_DUP + "(" + strconv.Itoa(src) + ") to fd(" + strconv.Itoa(lf.fd) + "): " + err.Error())
		return fileError("dup", target, lf.fd, ErrDescriptorSwap, err)
	}
	lf.retie()
	lf.setPath(path)
	return nil
}

// retie points every tied descriptor at the current target. Failures are
// reported to the diagnostics side channel and do not stop the walk.
func (lf *LogFile) retie() {
	for _, fd := range lf.ties {
		if err := dupInto(lf.fd, fd, false); err != nil {
			lf.diag(_ERROR_MESSAGE_FILE_RETIE + "(" + strconv.Itoa(fd) + "): " + err.Error())
		}
	}
}

// Truncate truncates the current log file to zero length.
func (lf *LogFile) Truncate() error {
	lf.mtx.Lock()
	defer lf.mtx.Unlock()
	if lf.closed {
		return fileError("truncate", "", lf.fd, ErrClosed, nil)
	}
	path := lf.Path()
	if path == "" {
		return fileError("truncate", "", lf.fd, ErrNoActiveFile, nil)
	}
	if err := retry(func() error { return unix.Ftruncate(lf.fd, 0) }); err != nil {
		lf.diag("error truncating log file <" + path + ">: " + err.Error())
		return fileError("truncate", path, lf.fd, ErrFileIO, err)
	}
	return nil
}

// Tie makes fd mirror the LogFile's target, now and after every later
// Redirect. Tying an already tied descriptor is a no-op. The LogFile takes
// ownership of fd and closes it in Close.
func (lf *LogFile) Tie(fd int) error {
	lf.mtx.Lock()
	defer lf.mtx.Unlock()
	if lf.closed {
		return fileError("tie", "", fd, ErrClosed, nil)
	}
	if fd == lf.fd || slices.Contains(lf.ties, fd) {
		return nil
	}
	if err := dupInto(lf.fd, fd, false); err != nil {
		lf.diag(_ERROR_MESSAGE_DUP + "(" + strconv.Itoa(lf.fd) + ") to fd(" + strconv.Itoa(fd) + "): " + err.Error())
		return fileError("tie", lf.Path(), fd, ErrDescriptorSwap, err)
	}
	lf.ties = append(lf.ties, fd)
	return nil
}

// Untie stops fd from mirroring the LogFile and points it at fallback (the
// null device when empty). Later redirections leave fd alone.
func (lf *LogFile) Untie(fd int, fallback string) error {
	lf.mtx.Lock()
	defer lf.mtx.Unlock()
	idx := slices.Index(lf.ties, fd)
	if idx < 0 {
		return fileError("untie", fallback, fd, ErrNotTied, nil)
	}
	if fallback == "" {
		fallback = os.DevNull
	}
	src, err := openFile(fallback, DEFAULT_FILE_MODE)
	if err != nil {
		return fileError("untie", fallback, fd, ErrFileOpen, err)
	}
	defer closeFd(src)
	if err := dupInto(src, fd, false); err != nil {
		return fileError("untie", fallback, fd, ErrDescriptorSwap, err)
	}
	lf.ties = slices.Delete(lf.ties, idx, idx+1)
	return nil
}

// SetOwner changes the owner of the current log file.
func (lf *LogFile) SetOwner(uid, gid int) error {
	lf.mtx.Lock()
	defer lf.mtx.Unlock()
	path := lf.Path()
	if lf.closed || path == "" {
		return fileError("chown", path, lf.fd, ErrNoActiveFile, nil)
	}
	if err := retry(func() error { return unix.Fchown(lf.fd, uid, gid) }); err != nil {
		return fileError("chown", path, lf.fd, ErrFileIO, err)
	}
	return nil
}

// CloseOnExec toggles FD_CLOEXEC on the owned descriptor. Tied descriptors
// are not affected. The setting survives later redirections.
func (lf *LogFile) CloseOnExec(value bool) error {
	lf.mtx.Lock()
	defer lf.mtx.Unlock()
	if lf.closed {
		return fileError("cloexec", "", lf.fd, ErrClosed, nil)
	}
	if err := setCloexec(lf.fd, value); err != nil {
		return fileError("cloexec", lf.Path(), lf.fd, ErrFileIO, err)
	}
	lf.cloexec = value
	return nil
}

// Write writes the whole of p to the current target, retrying short writes.
func (lf *LogFile) Write(p []byte) (int, error) {
	lf.mtx.Lock()
	defer lf.mtx.Unlock()
	if lf.closed {
		return 0, fileError("write", "", lf.fd, ErrClosed, nil)
	}
	done := 0
	for done < len(p) {
		n, err := unix.Write(lf.fd, p[done:])
		if err == unix.EINTR || err == unix.EAGAIN {
			continue
		}
		if err != nil {
			return done, fileError("write", lf.Path(), lf.fd, ErrFileIO, err)
		}
		done += n
	}
	return done, nil
}

// Close closes the owned descriptor and every tied descriptor.
func (lf *LogFile) Close() error {
	lf.mtx.Lock()
	defer lf.mtx.Unlock()
	if lf.closed {
		return nil
	}
	lf.closed = true
	var first error
	for _, fd := range append([]int{lf.fd}, lf.ties...) {
		if err := unix.Close(fd); err != nil && first == nil {
			first = fileError("close", "", fd, ErrFileIO, err)
		}
	}
	lf.ties = nil
	return first
}

/////////////////////////////////////////////////////////////////////////////////////////

// openFile opens path for appending, creating it with perm if needed. The
// returned descriptor is close-on-exec: it only lives until it is duplicated.
func openFile(path string, perm os.FileMode) (fd int, err error) {
	err = retry(func() (e error) {
		fd, e = unix.Open(path, unix.O_WRONLY|unix.O_CREAT|unix.O_APPEND|unix.O_CLOEXEC, uint32(perm.Perm()))
		return e
	})
	return fd, err
}

func closeFd(fd int) {
	unix.Close(fd)
}

// dupInto makes newfd refer to the same open file as oldfd. The swap is
// atomic: newfd never refers to a closed file. EINTR and EBUSY (a race with
// a concurrent open in another thread) are retried.
func dupInto(oldfd, newfd int, cloexec bool) error {
	if oldfd == newfd {
		return nil
	}
	for {
		err := dup3(oldfd, newfd, cloexec)
		if err == unix.EINTR || err == unix.EBUSY {
			continue
		}
		return err
	}
}

func setCloexec(fd int, value bool) error {
	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
	if err != nil {
		return err
	}
	if value {
		flags |= unix.FD_CLOEXEC
	} else {
		flags &^= unix.FD_CLOEXEC
	}
	_, err = unix.FcntlInt(uintptr(fd), unix.F_SETFD, flags)
	return err
}

// retry runs op until it fails with something other than EINTR.
func retry(op func() error) error {
	for {
		if err := op(); err != unix.EINTR {
			return err
		}
	}
}
