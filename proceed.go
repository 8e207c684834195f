package dbglog

/*
proceed.go

The synchronous write path: converts one accepted event into a line and
writes it to the configured destinations. Responsible for:
  - level checks against the primary mask and the sink masks
  - formatting the line exactly once (pooled buffer)
  - console (optionally colored), log file and sink dispatch
  - reporting write errors and sink panics to the fallback writer

Line layout:

	YYYY-MM-DD HH:MM:SS[.fff] XX [PID(TID)]: [prefix ]message {file:func():line}
*/

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/valyala/bytebufferpool"
)

var (
	pid      = os.Getpid()
	linePool bytebufferpool.Pool
	pow10    = [...]int{1, 1e1, 1e2, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9}
)

// Check reports whether an event of the given level would reach at least one
// destination: the primary mask or the mask of any active sink accepts it.
func (l *Logger) Check(level Level) bool {
	return l.Mask().Accepts(level) || l.sinkAccepts(level)
}

// CheckOnce burns guard and then checks the level. It returns true at most
// once per guard, see OnceGuard.
func (l *Logger) CheckOnce(level Level, guard *OnceGuard) bool {
	return guard.Fire() && l.Check(level)
}

// Log writes message with the given level and call site. It returns false if
// no destination accepted the level.
func (l *Logger) Log(level Level, message string, loc Location) bool {
	return l.emit(level, "", message, loc)
}

// LogOnce is Log guarded by guard: only the first attempt can write.
func (l *Logger) LogOnce(guard *OnceGuard, level Level, message string, loc Location) bool {
	return guard.Fire() && l.emit(level, "", message, loc)
}

// Logf formats and logs the message, recording the caller as the location.
// Formatting is skipped when the level is rejected.
func (l *Logger) Logf(level Level, format string, args ...any) bool {
	return l.logf(1, level, "", format, args...)
}

func (l *Logger) Debug(format string, args ...any) bool {
	return l.logf(1, LVL_DEBUG, "", format, args...)
}

func (l *Logger) Info(format string, args ...any) bool {
	return l.logf(1, LVL_INFO3, "", format, args...)
}

func (l *Logger) Warn(format string, args ...any) bool {
	return l.logf(1, LVL_WARN2, "", format, args...)
}

func (l *Logger) Error(format string, args ...any) bool {
	return l.logf(1, LVL_ERR2, "", format, args...)
}

// Fail logs the message and returns it as an error, with the call site
// appended (" @{file:func():line}"). The error is returned even when the
// level is masked out.
func (l *Logger) Fail(level Level, format string, args ...any) error {
	return l.fail(1, level, "", format, args...)
}

/////////////////////////////////////////////////////////////////////////////////////////

func (l *Logger) logf(skip int, level Level, prefix, format string, args ...any) bool {
	if !l.Check(level) {
		return false
	}
	return l.emit(level, prefix, fmt.Sprintf(format, args...), Here(skip+1))
}

func (l *Logger) fail(skip int, level Level, prefix, format string, args ...any) error {
	message := fmt.Sprintf(format, args...)
	loc := Here(skip + 1)
	l.emit(level, prefix, message, loc)
	return errors.New(message + " @" + loc.String())
}

func (l *Logger) sinkAccepts(level Level) bool {
	for _, slot := range l.sinks {
		if !slot.disabled.Load() && slot.sink.Accepts(level) {
			return true
		}
	}
	return false
}

// emit formats the event once and dispatches it. The console and the log file
// are gated by the primary mask, every sink by its own.
func (l *Logger) emit(level Level, prefix, message string, loc Location) bool {
	primary := l.Mask().Accepts(level)
	if !primary && !l.sinkAccepts(level) {
		return false
	}

	e := Entry{
		Time:     time.Now(),
		Level:    level,
		Prefix:   prefix,
		Message:  message,
		Location: loc,
	}
	if l.hasFlag(_SHOW_PID) {
		e.Pid = pid
	}
	if l.hasFlag(_SHOW_THREAD) {
		e.Thread = ThreadID()
	}

	buf := linePool.Get()
	defer linePool.Put(buf)
	buf.B = l.appendLine(buf.B, &e)

	if primary {
		if l.hasFlag(_USE_CONSOLE) {
			l.writeConsole(level, buf.B)
		}
		if l.file.Active() {
			if _, err := l.file.Write(buf.B); err != nil {
				l.handleLogWriteError(_ERROR_MESSAGE_FILE_WRITE + ": " + err.Error())
			}
		}
	}
	if len(l.sinks) > 0 {
		e.Line = buf.String()
		l.writeSinks(&e)
	}
	return true
}

// appendLine renders the event. Pid and thread are rendered as
// " [pid(tid)]", " [pid]", " [(tid)]" or omitted.
func (l *Logger) appendLine(b []byte, e *Entry) []byte {
	b = appendTime(b, e.Time, int(l.precision.Load()))
	b = append(b, ' ')
	b = append(b, e.Level.Code()...)
	switch {
	case e.Pid != 0:
		b = append(b, " ["...)
		b = strconv.AppendInt(b, int64(e.Pid), 10)
		if e.Thread != "" {
			b = append(b, '(')
			b = append(b, e.Thread...)
			b = append(b, ')')
		}
		b = append(b, ']')
	case e.Thread != "":
		b = append(b, " [("...)
		b = append(b, e.Thread...)
		b = append(b, ")]"...)
	}
	b = append(b, ": "...)
	if e.Prefix != "" {
		b = append(b, e.Prefix...)
		b = append(b, ' ')
	}
	b = append(b, e.Message...)
	b = append(b, ' ')
	b = e.Location.appendTo(b)
	return append(b, '\n')
}

// appendTime renders local time with digits (0..6) truncated sub-second digits.
func appendTime(b []byte, t time.Time, digits int) []byte {
	b = t.AppendFormat(b, TIME_LAYOUT)
	if digits <= 0 {
		return b
	}
	if digits > MAX_TIME_PRECISION {
		digits = MAX_TIME_PRECISION
	}
	frac := strconv.Itoa(t.Nanosecond() / pow10[9-digits])
	b = append(b, '.')
	for i := len(frac); i < digits; i++ {
		b = append(b, '0')
	}
	return append(b, frac...)
}

func (l *Logger) writeConsole(level Level, line []byte) {
	l.sync.consMtx.Lock()
	defer l.sync.consMtx.Unlock()
	var err error
	if ColorMode(l.color.Load()) == COLOR_ALWAYS {
		err = writeColored(l.console, level, line)
	} else {
		_, err = l.console.Write(line)
	}
	if err != nil {
		l.handleLogWriteError("error writing log to console: " + err.Error())
	}
}

// writeColored wraps the line (without its '\n') in the category color.
func writeColored(w io.Writer, level Level, line []byte) error {
	buf := linePool.Get()
	defer linePool.Put(buf)
	buf.WriteString(ANSI_COL_PRFX)
	buf.WriteString(LevelColorOnBlackMap[level.category()])
	buf.WriteString(ANSI_COL_SUFX)
	buf.Write(line[:len(line)-1])
	buf.WriteString(ANSI_COL_RESET)
	buf.WriteByte('\n')
	_, err := w.Write(buf.B)
	return err
}

// writeSinks hands the event to every active sink accepting its level. A
// sink that panics is disabled for good.
func (l *Logger) writeSinks(e *Entry) {
	for _, slot := range l.sinks {
		if slot.disabled.Load() || !slot.sink.Accepts(e.Level) {
			continue
		}
		if err := writeSink(slot.sink, e); err != nil {
			slot.disabled.Store(true)
			l.handleLogWriteError(err.Error())
		}
	}
}

// writeSink converts a panic in the sink into an error.
func writeSink(s Sink, e *Entry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(_ERROR_MESSAGE_SINK_PANIC + " <" + s.Name() + ">" + panicDesc(r))
		}
	}()
	if es, ok := s.(EntrySink); ok {
		es.WriteEntry(e)
	} else {
		s.Write(e.Line)
	}
	return nil
}

// handleLogWriteError writes a human-readable error message to the fallback
// writer. A read lock is used since we only need consistent access to fallbck.
func (l *Logger) handleLogWriteError(errormsg string) {
	l.sync.fbckMtx.RLock()
	defer l.sync.fbckMtx.RUnlock()
	if l.fallbck != nil {
		l.fallbck.Write([]byte(errormsg + "\n"))
	}
}
