package dbglog

/*
LogFile owns one operating-system file descriptor that always points at a
valid, writable destination: the null device while file logging is off, an
append-mode regular file otherwise. Foreign descriptors (stdout, stderr, ...)
can be "tied" to it so they mirror whatever the LogFile currently points at,
across every later redirection.

All mutating operations hold the LogFile mutex. Redirection never closes the
owned descriptor: the freshly opened file is duplicated over it, so writers
(and tied descriptors) never observe an invalid descriptor.

Platform specific halves live in logfile_unix.go and logfile_other.go.
*/

import (
	"io"
	"strconv"
	"strings"
	"sync/atomic"
)

// FileError describes a failed LogFile operation. It matches its Kind (one of
// the package Err* values) and the underlying cause via errors.Is.
type FileError struct {
	Op   string // open, dup, tie, untie, truncate, chown, cloexec, write
	Path string // target path, if any
	Fd   int    // descriptor involved, -1 if none
	Kind error
	Err  error
}

func (e *FileError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	b.WriteString(" (")
	b.WriteString(e.Op)
	if e.Path != "" {
		b.WriteString(" <")
		b.WriteString(e.Path)
		b.WriteByte('>')
	}
	if e.Fd >= 0 {
		b.WriteString(" fd=")
		b.WriteString(strconv.Itoa(e.Fd))
	}
	b.WriteByte(')')
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *FileError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func fileError(op, path string, fd int, kind, err error) error {
	return &FileError{Op: op, Path: path, Fd: fd, Kind: kind, Err: err}
}

// fileState holds the status fields readable without the LogFile mutex.
type fileState struct {
	path   atomic.Pointer[string]
	report atomic.Pointer[io.Writer] // diagnostic side channel
}

// Path returns the current log file path ("" while bound to the null device).
func (lf *LogFile) Path() string {
	if p := lf.state.path.Load(); p != nil {
		return *p
	}
	return ""
}

// Active reports whether the LogFile points at a real file.
func (lf *LogFile) Active() bool {
	return lf.Path() != ""
}

// SetDiagnostics sets the writer used to report problems that do not fail the
// calling operation (e.g. a tied descriptor that could not be re-pointed).
// Nil silences diagnostics.
func (lf *LogFile) SetDiagnostics(w io.Writer) *LogFile {
	if w == nil {
		w = io.Discard
	}
	lf.state.report.Store(&w)
	return lf
}

// diag writes one diagnostic line to the side channel.
func (lf *LogFile) diag(s string) {
	if w := lf.state.report.Load(); w != nil {
		(*w).Write([]byte(s + "\n"))
	}
}

func (lf *LogFile) setPath(path string) {
	lf.state.path.Store(&path)
}

// Redirect points the LogFile (and every tied descriptor) at path, creating
// the file with DEFAULT_FILE_MODE if needed. An empty path rebinds to the
// null device. On failure the previous target stays in effect.
func (lf *LogFile) Redirect(path string) error {
	return lf.RedirectMode(path, DEFAULT_FILE_MODE)
}
