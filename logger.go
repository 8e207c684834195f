// A leveled, multi-destination logging core. Events carry a severity level,
// get filtered against a bitmask, are formatted once with time, pid and
// thread metadata and then fanned out to the console, an optional log file
// and any number of sinks with masks of their own.
package dbglog

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// New creates a logger with the given mask. The console (os.Stderr) is
// enabled, pid and thread display is on, no log file is open and
// os.Stderr is the fallback for internal errors.
//
// Preferred usage example:
//
//	func main() {
//	    logger, err := dbglog.New(dbglog.DEFAULT_LOG_MASK)
//	    if err != nil { ... }
//	    defer logger.Close()
//	    ...
//	}
func New(mask Mask) (*Logger, error) {
	file, err := NewLogFile()
	if err != nil {
		return nil, err
	}
	l := &Logger{file: file, console: os.Stderr}
	l.flags.Store(_SHOW_PID | _SHOW_THREAD | _USE_CONSOLE)
	l.SetFallback(os.Stderr)
	l.SetMask(mask)
	return l, nil
}

// MustNew is like New but panics if the null device cannot be opened.
func MustNew(mask Mask) *Logger {
	l, err := New(mask)
	if err != nil {
		panic(err)
	}
	return l
}

// Close closes the log file and every tied descriptor. Logging after Close
// reports write errors to the fallback writer.
func (l *Logger) Close() error {
	return l.file.Close()
}

/////////////////////////////////////////////////////////////////////////////////////////
// Mask

// SetMask replaces the primary mask and resynchronizes every shared-mask sink.
func (l *Logger) SetMask(m Mask) *Logger {
	l.mask.Store(uint32(m))
	for _, slot := range l.sinks {
		if slot.sink.SharedMask() {
			slot.sink.SetMask(m)
		}
	}
	return l
}

// SetMaskString parses text (see ParseMask) and installs it. On a syntax
// error the current mask is kept.
func (l *Logger) SetMaskString(text string) error {
	m, err := ParseMask(text)
	if err != nil {
		l.handleLogWriteError(err.Error())
		return err
	}
	l.SetMask(m)
	return nil
}

// Mask returns the primary mask.
func (l *Logger) Mask() Mask {
	return Mask(l.mask.Load())
}

// MaskString returns the canonical textual form of the primary mask.
func (l *Logger) MaskString() string {
	return l.Mask().String()
}

/////////////////////////////////////////////////////////////////////////////////////////
// Display options

// ShowThread toggles the thread id in the line prefix.
func (l *Logger) ShowThread(value bool) *Logger {
	return l.setFlag(_SHOW_THREAD, value)
}

// ShowPid toggles the process id in the line prefix.
func (l *Logger) ShowPid(value bool) *Logger {
	return l.setFlag(_SHOW_PID, value)
}

// UseConsole toggles writing to the console stream.
func (l *Logger) UseConsole(value bool) *Logger {
	return l.setFlag(_USE_CONSOLE, value)
}

func (l *Logger) setFlag(flag uint32, value bool) *Logger {
	if value {
		l.flags.Or(flag)
	} else {
		l.flags.And(^flag)
	}
	return l
}

func (l *Logger) hasFlag(flag uint32) bool {
	return l.flags.Load()&flag != 0
}

// SetTimePrecision sets the number of sub-second digits in timestamps
// (0 = whole seconds, 3 = milliseconds, 6 = microseconds; more is clamped to 6).
func (l *Logger) SetTimePrecision(digits uint) *Logger {
	l.precision.Store(clampPrecision(digits))
	return l
}

// TimePrecision returns the number of sub-second digits in timestamps.
func (l *Logger) TimePrecision() uint {
	return uint(l.precision.Load())
}

// SetConsole replaces the console stream (nil disables console output
// without touching the UseConsole toggle). The color mode is re-resolved
// against the new stream.
func (l *Logger) SetConsole(w io.Writer) *Logger {
	l.sync.consMtx.Lock()
	defer l.sync.consMtx.Unlock()
	if w == nil {
		w = io.Discard
	}
	l.console = w
	l.resolveColor()
	return l
}

// SetConsoleColor selects ANSI coloring of console lines. COLOR_AUTO colors
// only when the console is a terminal, checked again on every SetConsole.
// File and sink output is never colored.
func (l *Logger) SetConsoleColor(mode ColorMode) *Logger {
	l.sync.consMtx.Lock()
	defer l.sync.consMtx.Unlock()
	l.colorMode = mode
	l.resolveColor()
	return l
}

// resolveColor stores the effective mode for the current console. Called
// with consMtx held.
func (l *Logger) resolveColor() {
	mode := l.colorMode
	if mode == COLOR_AUTO {
		mode = COLOR_NEVER
		if f, ok := l.console.(interface{ Fd() uintptr }); ok && isatty.IsTerminal(f.Fd()) {
			mode = COLOR_ALWAYS
		}
	}
	l.color.Store(uint32(mode))
}

// Sets the fallback output used to report internal errors, io.Discard is used
// instead of nil to silently drop fallback messages. The log file reports
// its diagnostics to the same writer.
func (l *Logger) SetFallback(f io.Writer) *Logger {
	l.sync.fbckMtx.Lock()
	defer l.sync.fbckMtx.Unlock()
	if f != nil {
		l.fallbck = f
	} else {
		l.fallbck = io.Discard
	}
	l.file.SetDiagnostics(l.fallbck)
	return l
}

/////////////////////////////////////////////////////////////////////////////////////////
// Log file

// LogFile returns the logger's log file.
func (l *Logger) LogFile() *LogFile {
	return l.file
}

// LogToFile opens (or reopens) the log file at path; an empty path turns file
// logging off. On failure the previous file stays in use.
func (l *Logger) LogToFile(path string) error {
	return l.file.Redirect(path)
}

// LogToFileMode is LogToFile with an explicit permission for a new file.
func (l *Logger) LogToFileMode(path string, perm os.FileMode) error {
	return l.file.RedirectMode(path, perm)
}

// TruncateLogFile truncates the current log file.
func (l *Logger) TruncateLogFile() error {
	return l.file.Truncate()
}

// SetLogFileOwner changes the owner of the current log file.
func (l *Logger) SetLogFileOwner(uid, gid int) error {
	return l.file.SetOwner(uid, gid)
}

// Tie makes fd (e.g. 1 or 2) mirror the log file, see LogFile.Tie.
func (l *Logger) Tie(fd int) error {
	return l.file.Tie(fd)
}

// Untie releases fd and points it at fallback, see LogFile.Untie.
func (l *Logger) Untie(fd int, fallback string) error {
	return l.file.Untie(fd, fallback)
}

// CloseOnExec toggles inheritance of the log file descriptor by child processes.
func (l *Logger) CloseOnExec(value bool) error {
	return l.file.CloseOnExec(value)
}

/////////////////////////////////////////////////////////////////////////////////////////
// Sinks

// AddSink registers a sink. A shared-mask sink takes the logger's mask now.
//
// Not safe while other goroutines are logging: register every sink during
// setup, before logging starts.
func (l *Logger) AddSink(s Sink) *Logger {
	if s == nil {
		return l
	}
	if s.SharedMask() {
		s.SetMask(l.Mask())
	}
	l.sinks = append(l.sinks, &sinkSlot{sink: s})
	return l
}

// Sinks returns the registered sinks in registration order.
func (l *Logger) Sinks() []Sink {
	out := make([]Sink, len(l.sinks))
	for i, slot := range l.sinks {
		out[i] = slot.sink
	}
	return out
}
